package config

import (
	"time"

	"github.com/spf13/viper"
)

// Configuration of the CLI talking to a running server
type Client struct {
	BaseURL string
	Timeout time.Duration
}

func setClientDefaults() {
	viper.SetDefault("Client.BaseURL", "http://localhost:3000")
	viper.SetDefault("Client.Timeout", "30s")
}
