package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/pipeos/pipes/src/store"
	"github.com/pipeos/pipes/src/utils/config"
	"github.com/pipeos/pipes/src/utils/model"
	monitor_api "github.com/pipeos/pipes/src/utils/monitoring/api"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestRunnerTestSuite(t *testing.T) {
	suite.Run(t, new(RunnerTestSuite))
}

type RunnerTestSuite struct {
	suite.Suite
	ctx          context.Context
	config       *config.Config
	monitor      *monitor_api.Monitor
	repositories *store.Repositories
}

func (s *RunnerTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.config = config.Default()
}

func (s *RunnerTestSuite) SetupTest() {
	s.monitor = monitor_api.NewMonitor()
	s.repositories = store.NewMemoryRepositories()
}

func (s *RunnerTestSuite) newRunner(functions store.FunctionRepository) *Runner {
	deriver := NewDeriver(s.config).
		WithFunctions(functions).
		WithMonitor(s.monitor)

	rollback := NewRollback(s.config).
		WithContainers(s.repositories.Containers).
		WithFunctions(s.repositories.Functions).
		WithMonitor(s.monitor)

	return s.startRunner(deriver, rollback)
}

func (s *RunnerTestSuite) startRunner(deriver *Deriver, rollback *Rollback) *Runner {
	runner := NewRunner(s.config).
		WithDeriver(deriver).
		WithRollback(rollback).
		WithMonitor(s.monitor).
		WithOutput(10)

	err := runner.Start()
	require.Nil(s.T(), err)
	return runner
}

func (s *RunnerTestSuite) wait(done <-chan Result) Result {
	select {
	case result := <-done:
		return result
	case <-time.After(5 * time.Second):
		require.FailNow(s.T(), "derivation didn't finish")
	}
	return Result{}
}

func (s *RunnerTestSuite) TestLifecycle() {
	runner := s.newRunner(s.repositories.Functions)
	runner.StopWait()

	<-runner.CtxRunning.Done()

	// Output is closed once the runner finishes
	_, ok := <-runner.Output
	require.False(s.T(), ok)
}

func (s *RunnerTestSuite) TestDerive() {
	runner := s.newRunner(s.repositories.Functions)
	defer runner.StopWait()

	container, err := s.repositories.Containers.Create(s.ctx, newTokenContainer())
	require.Nil(s.T(), err)

	result := s.wait(runner.Submit(container))
	require.Nil(s.T(), result.Err)
	require.Nil(s.T(), result.RollbackErr)
	require.Len(s.T(), result.Functions, 4)

	notification := <-runner.Output
	require.Equal(s.T(), container.Id, notification.ContainerId)
	require.Equal(s.T(), model.IngestionStatusDerived, notification.Status)
	require.Equal(s.T(), 4, notification.Functions)

	count, err := s.repositories.Functions.Children(container.Id).Count(s.ctx, nil)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(4), count)

	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Ingester.State.DerivationsStarted.Load())
	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Ingester.State.DerivationsFinished.Load())
}

func (s *RunnerTestSuite) TestFailureIsRolledBack() {
	runner := s.newRunner(newLossyFunctions(s.repositories.Functions, 2))
	defer runner.StopWait()

	container, err := s.repositories.Containers.Create(s.ctx, newTokenContainer())
	require.Nil(s.T(), err)

	result := s.wait(runner.Submit(container))
	require.ErrorIs(s.T(), result.Err, ErrIngestion)
	require.Nil(s.T(), result.RollbackErr)

	notification := <-runner.Output
	require.Equal(s.T(), model.IngestionStatusRolledBack, notification.Status)
	require.Equal(s.T(), 0, notification.Functions)
	require.NotEmpty(s.T(), notification.Error)

	// No container and no functions left behind
	_, err = s.repositories.Containers.FindById(s.ctx, container.Id)
	require.ErrorIs(s.T(), err, store.ErrNotFound)

	count, err := s.repositories.Functions.Count(s.ctx, nil)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(0), count)

	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Ingester.Errors.DerivationFailed.Load())
	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Ingester.State.RollbacksFinished.Load())
}

func (s *RunnerTestSuite) TestFailedRollback() {
	functions := &undeletableFunctions{FunctionRepository: s.repositories.Functions}
	containers := &undeletableContainers{Repository: s.repositories.Containers}

	deriver := NewDeriver(s.config).
		WithFunctions(newLossyFunctions(s.repositories.Functions, 3)).
		WithMonitor(s.monitor)

	rollback := NewRollback(s.config).
		WithContainers(containers).
		WithFunctions(functions).
		WithMonitor(s.monitor)

	runner := s.startRunner(deriver, rollback)
	defer runner.StopWait()

	container, err := s.repositories.Containers.Create(s.ctx, newTokenContainer())
	require.Nil(s.T(), err)

	result := s.wait(runner.Submit(container))
	require.ErrorIs(s.T(), result.Err, ErrIngestion)
	require.ErrorIs(s.T(), result.RollbackErr, errUnavailable)

	notification := <-runner.Output
	require.Equal(s.T(), model.IngestionStatusRolledBack, notification.Status)

	// Attempted once, not retried
	require.Equal(s.T(), int32(1), functions.deletes.Load())
	require.Equal(s.T(), int32(1), containers.deletes.Load())

	// Leftovers stay in place
	_, err = s.repositories.Containers.FindById(s.ctx, container.Id)
	require.Nil(s.T(), err)
	count, err := s.repositories.Functions.Children(container.Id).Count(s.ctx, nil)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(2), count)

	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Ingester.Errors.RollbackFailed.Load())
	require.Equal(s.T(), uint64(0), s.monitor.GetReport().Ingester.State.RollbacksFinished.Load())
	require.False(s.T(), s.monitor.IsOK())
}

func (s *RunnerTestSuite) TestSameContainerIsNotInterleaved() {
	functions := newSlowFunctions(s.repositories.Functions, 10*time.Millisecond)

	deriver := NewDeriver(s.config).
		WithFunctions(functions).
		WithMonitor(s.monitor)

	rollback := NewRollback(s.config).
		WithContainers(s.repositories.Containers).
		WithFunctions(s.repositories.Functions).
		WithMonitor(s.monitor)

	runner := s.startRunner(deriver, rollback)
	defer runner.StopWait()

	container, err := s.repositories.Containers.Create(s.ctx, newTokenContainer())
	require.Nil(s.T(), err)

	// Background derivation racing with a synchronous one and another background one
	pending := []<-chan Result{runner.Submit(container)}
	syncErr := make(chan error, 1)
	go func() {
		_, err := deriver.Derive(s.ctx, container)
		syncErr <- err
	}()
	pending = append(pending, runner.Submit(container))

	for _, done := range pending {
		result := s.wait(done)
		require.Nil(s.T(), result.Err)
		<-runner.Output
	}
	require.Nil(s.T(), <-syncErr)

	require.Equal(s.T(), int32(1), functions.maxSeen.Load())

	// Each derivation wrote its records in one uninterrupted run, listed in insertion order
	stored, err := s.repositories.Functions.Find(s.ctx, store.NewFilter().WithWhere("containerid", container.Id))
	require.Nil(s.T(), err)
	require.Len(s.T(), stored, 12)
	for i, function := range stored {
		require.Equal(s.T(), i%4, function.Position)
	}
}

func (s *RunnerTestSuite) TestFullOutputDoesNotBlock() {
	runner := NewRunner(s.config).
		WithDeriver(NewDeriver(s.config).WithFunctions(s.repositories.Functions).WithMonitor(s.monitor)).
		WithRollback(NewRollback(s.config).WithContainers(s.repositories.Containers).WithFunctions(s.repositories.Functions).WithMonitor(s.monitor)).
		WithMonitor(s.monitor).
		WithOutput(1)
	require.Nil(s.T(), runner.Start())
	defer runner.StopWait()

	// Nobody reads the output
	for i := 0; i < 3; i++ {
		container, err := s.repositories.Containers.Create(s.ctx, newTokenContainer())
		require.Nil(s.T(), err)

		result := s.wait(runner.Submit(container))
		require.Nil(s.T(), result.Err)
	}

	require.Len(s.T(), runner.Output, 1)
	require.Equal(s.T(), uint64(3), s.monitor.GetReport().Ingester.State.DerivationsFinished.Load())
}

func (s *RunnerTestSuite) TestManyContainers() {
	runner := s.newRunner(s.repositories.Functions)
	defer runner.StopWait()

	var pending []<-chan Result
	for i := 0; i < 5; i++ {
		container, err := s.repositories.Containers.Create(s.ctx, newTokenContainer())
		require.Nil(s.T(), err)
		pending = append(pending, runner.Submit(container))
	}

	for _, done := range pending {
		result := s.wait(done)
		require.Nil(s.T(), result.Err)
		<-runner.Output
	}

	count, err := s.repositories.Functions.Count(s.ctx, nil)
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(20), count)
}

func (s *RunnerTestSuite) TestSubmitAfterStop() {
	runner := s.newRunner(s.repositories.Functions)
	runner.StopWait()

	container, err := s.repositories.Containers.Create(s.ctx, newTokenContainer())
	require.Nil(s.T(), err)

	result := s.wait(runner.Submit(container))
	require.ErrorIs(s.T(), result.Err, ErrRunnerStopped)

	// Refused jobs aren't rolled back by the runner
	_, err = s.repositories.Containers.FindById(s.ctx, container.Id)
	require.Nil(s.T(), err)
}

func (s *RunnerTestSuite) TestKeyedMutex() {
	locks := newKeyedMutex()

	unlock := locks.Lock("a")
	acquired := make(chan struct{})
	go func() {
		defer close(acquired)
		locks.Lock("a")()
	}()

	// Other keys aren't blocked
	locks.Lock("b")()

	select {
	case <-acquired:
		require.FailNow(s.T(), "lock acquired twice")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	<-acquired

	locks.mtx.Lock()
	defer locks.mtx.Unlock()
	require.Len(s.T(), locks.locks, 0)
}
