package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

type ConfigTestSuite struct {
	suite.Suite
}

func (s *ConfigTestSuite) TestDefaults() {
	config := Default()
	require.NotNil(s.T(), config)

	require.Equal(s.T(), 30*time.Second, config.StopTimeout)
	require.Equal(s.T(), ":3000", config.API.ListenAddress)
	require.Equal(s.T(), []string{"*"}, config.API.CorsAllowOrigins)
	require.True(s.T(), config.Ingestion.VerifyCreated)
	require.Equal(s.T(), 10, config.Ingestion.MaxWorkers)
	require.Equal(s.T(), uint16(5432), config.Database.Port)
	require.False(s.T(), config.Redis.Enabled)
	require.Equal(s.T(), "pipes.ingestion", config.Redis.ChannelName)
	require.Equal(s.T(), 10*time.Minute, config.Redis.MaxElapsedTime)
	require.Equal(s.T(), "@every 10m", config.Sweeper.Schedule)
}

func (s *ConfigTestSuite) TestEnv() {
	s.T().Setenv("PIPES_INGESTION_MAX_WORKERS", "3")
	s.T().Setenv("PIPES_INGESTION_VERIFY_CREATED", "false")
	s.T().Setenv("PIPES_API_CORS_ALLOW_ORIGINS", "http://a.com,http://b.com")
	s.T().Setenv("PIPES_REDIS_MAX_INTERVAL", "5s")

	config, err := Load("")
	require.Nil(s.T(), err)
	require.Equal(s.T(), 3, config.Ingestion.MaxWorkers)
	require.False(s.T(), config.Ingestion.VerifyCreated)
	require.Equal(s.T(), []string{"http://a.com", "http://b.com"}, config.API.CorsAllowOrigins)
	require.Equal(s.T(), 5*time.Second, config.Redis.MaxInterval)
}

func (s *ConfigTestSuite) TestFile() {
	path := filepath.Join(s.T().TempDir(), "config.json")
	err := os.WriteFile(path, []byte(`{"Database":{"InMemory":true},"Sweeper":{"Enabled":true,"BatchSize":7}}`), 0600)
	require.Nil(s.T(), err)

	config, err := Load(path)
	require.Nil(s.T(), err)
	require.True(s.T(), config.Database.InMemory)
	require.True(s.T(), config.Sweeper.Enabled)
	require.Equal(s.T(), 7, config.Sweeper.BatchSize)

	_, err = Load(filepath.Join(s.T().TempDir(), "missing.json"))
	require.NotNil(s.T(), err)
}
