package ingest

import (
	"context"
	"testing"

	"github.com/pipeos/pipes/src/store"
	"github.com/pipeos/pipes/src/utils/config"
	"github.com/pipeos/pipes/src/utils/model"
	monitor_api "github.com/pipeos/pipes/src/utils/monitoring/api"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestRollbackTestSuite(t *testing.T) {
	suite.Run(t, new(RollbackTestSuite))
}

type RollbackTestSuite struct {
	suite.Suite
	ctx          context.Context
	config       *config.Config
	monitor      *monitor_api.Monitor
	repositories *store.Repositories
}

func (s *RollbackTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.config = config.Default()
}

func (s *RollbackTestSuite) SetupTest() {
	s.monitor = monitor_api.NewMonitor()
	s.repositories = store.NewMemoryRepositories()
}

func (s *RollbackTestSuite) addFunctions(containerId string, n int) {
	for i := 0; i < n; i++ {
		_, err := s.repositories.Functions.Create(s.ctx, &model.PipeFunction{ContainerId: containerId, Position: i})
		require.Nil(s.T(), err)
	}
}

func (s *RollbackTestSuite) TestDeleteFunctionsForContainer() {
	s.addFunctions("a", 3)
	s.addFunctions("b", 2)

	count, err := DeleteFunctionsForContainer(s.ctx, s.repositories.Functions, "a")
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(3), count)

	count, err = DeleteFunctionsForContainer(s.ctx, s.repositories.Functions, "a")
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(0), count)

	count, err = s.repositories.Functions.Count(s.ctx, nil)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(2), count)
}

func (s *RollbackTestSuite) TestIdIsMatchedExactly() {
	s.addFunctions("a%", 1)
	s.addFunctions("ab", 2)
	s.addFunctions("a_", 1)

	count, err := DeleteFunctionsForContainer(s.ctx, s.repositories.Functions, "a%")
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(1), count)

	count, err = s.repositories.Functions.Count(s.ctx, nil)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(3), count)
}

func (s *RollbackTestSuite) TestRun() {
	container, err := s.repositories.Containers.Create(s.ctx, newTokenContainer())
	require.Nil(s.T(), err)
	s.addFunctions(container.Id, 2)

	rollback := NewRollback(s.config).
		WithContainers(s.repositories.Containers).
		WithFunctions(s.repositories.Functions).
		WithMonitor(s.monitor)

	err = rollback.Run(s.ctx, container.Id)
	require.Nil(s.T(), err)

	_, err = s.repositories.Containers.FindById(s.ctx, container.Id)
	require.ErrorIs(s.T(), err, store.ErrNotFound)

	count, err := s.repositories.Functions.Count(s.ctx, nil)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(0), count)

	// Container is already gone
	err = rollback.Run(s.ctx, container.Id)
	require.Nil(s.T(), err)
	require.Equal(s.T(), uint64(2), s.monitor.GetReport().Ingester.State.RollbacksFinished.Load())
	require.Equal(s.T(), uint64(0), s.monitor.GetReport().Ingester.Errors.RollbackFailed.Load())
}

func (s *RollbackTestSuite) TestRunFailure() {
	container, err := s.repositories.Containers.Create(s.ctx, newTokenContainer())
	require.Nil(s.T(), err)
	s.addFunctions(container.Id, 2)

	functions := &undeletableFunctions{FunctionRepository: s.repositories.Functions}
	containers := &undeletableContainers{Repository: s.repositories.Containers}

	rollback := NewRollback(s.config).
		WithContainers(containers).
		WithFunctions(functions).
		WithMonitor(s.monitor)

	// Container is still removed when functions can't be
	err = NewRollback(s.config).
		WithContainers(s.repositories.Containers).
		WithFunctions(functions).
		WithMonitor(s.monitor).
		Run(s.ctx, container.Id)
	require.ErrorIs(s.T(), err, errUnavailable)
	require.Equal(s.T(), int32(1), functions.deletes.Load())

	_, err = s.repositories.Containers.FindById(s.ctx, container.Id)
	require.ErrorIs(s.T(), err, store.ErrNotFound)

	// Both deletes are attempted exactly once
	err = rollback.Run(s.ctx, container.Id)
	require.ErrorIs(s.T(), err, errUnavailable)
	require.Equal(s.T(), int32(2), functions.deletes.Load())
	require.Equal(s.T(), int32(1), containers.deletes.Load())

	count, err := s.repositories.Functions.Count(s.ctx, nil)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(2), count)

	require.Equal(s.T(), uint64(2), s.monitor.GetReport().Ingester.Errors.RollbackFailed.Load())
	require.Equal(s.T(), uint64(0), s.monitor.GetReport().Ingester.State.RollbacksFinished.Load())
}
