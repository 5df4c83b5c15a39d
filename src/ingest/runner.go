package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/pipeos/pipes/src/utils/config"
	"github.com/pipeos/pipes/src/utils/model"
	"github.com/pipeos/pipes/src/utils/monitoring"
	"github.com/pipeos/pipes/src/utils/task"
)

var ErrRunnerStopped = errors.New("ingestion runner is stopped")

// Outcome of one background derivation
type Result struct {
	Container *model.PipeContainer
	Functions []*model.PipeFunction
	Err       error

	// Set when the container was removed after a failure. Nil if the removal succeeded.
	RollbackErr error

	done chan Result
}

// Runner derives functions in the background, without blocking whoever submitted the container.
// Results go through a single channel, failed derivations are rolled back there.
type Runner struct {
	*task.Task

	deriver  *Deriver
	rollback *Rollback
	monitor  monitoring.Monitor

	// Derivations keep running after Stop() is called
	jobCtx context.Context

	mtx     sync.RWMutex
	stopped bool
	results chan *Result

	// Notifications about finished derivations, optional
	Output chan *model.IngestionNotification
}

func NewRunner(config *config.Config) (self *Runner) {
	self = new(Runner)

	self.results = make(chan *Result, config.Ingestion.MaxWorkers)

	self.Task = task.NewTask(config, "ingestion-runner").
		WithWorkerPool(config.Ingestion.MaxWorkers, config.Ingestion.MaxQueueSize).
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop).
		WithOnAfterStop(func() {
			if self.Output != nil {
				close(self.Output)
			}
		})

	self.jobCtx = context.WithoutCancel(self.Ctx)

	return
}

func (self *Runner) WithDeriver(v *Deriver) *Runner {
	self.deriver = v
	return self
}

func (self *Runner) WithRollback(v *Rollback) *Runner {
	self.rollback = v
	return self
}

func (self *Runner) WithMonitor(v monitoring.Monitor) *Runner {
	self.monitor = v
	return self
}

func (self *Runner) WithOutput(size int) *Runner {
	self.Output = make(chan *model.IngestionNotification, size)
	return self
}

// Submit schedules the derivation and returns immediately.
// The returned channel receives the result once the derivation and a possible rollback are done.
func (self *Runner) Submit(container *model.PipeContainer) <-chan Result {
	done := make(chan Result, 1)

	self.mtx.RLock()
	defer self.mtx.RUnlock()

	if self.stopped {
		done <- Result{Container: container, Err: ErrRunnerStopped}
		close(done)
		return done
	}

	ok := self.SubmitToWorker(func() {
		functions, err := self.deriver.Derive(self.jobCtx, container)

		self.results <- &Result{
			Container: container,
			Functions: functions,
			Err:       err,
			done:      done,
		}
	})
	if !ok {
		done <- Result{Container: container, Err: ErrRunnerStopped}
		close(done)
		return done
	}

	self.monitor.GetReport().Ingester.State.DerivationsStarted.Inc()
	return done
}

func (self *Runner) stop() {
	self.mtx.Lock()
	self.stopped = true
	self.mtx.Unlock()

	// Let running derivations finish, then let the result loop drain
	go func() {
		self.Workers.StopWait()
		close(self.results)
	}()
}

func (self *Runner) run() (err error) {
	for result := range self.results {
		self.handle(result)
	}
	return nil
}

func (self *Runner) handle(result *Result) {
	log := self.Log.WithField("container_id", result.Container.Id)

	notification := &model.IngestionNotification{
		ContainerId: result.Container.Id,
		Status:      model.IngestionStatusDerived,
		Functions:   len(result.Functions),
	}

	if result.Err == nil {
		self.monitor.GetReport().Ingester.State.DerivationsFinished.Inc()
		log.WithField("num", len(result.Functions)).Info("Functions derived")
	} else {
		self.monitor.GetReport().Ingester.Errors.DerivationFailed.Inc()
		log.WithError(result.Err).Error("Failed to derive functions, removing container")

		// Nobody waits for this error, the container was already returned to the client
		result.RollbackErr = self.rollback.Run(self.jobCtx, result.Container.Id)

		notification.Status = model.IngestionStatusRolledBack
		notification.Functions = 0
		notification.Error = result.Err.Error()
	}

	// A slow consumer must not hold back rollbacks of later derivations
	if self.Output != nil {
		select {
		case self.Output <- notification:
		default:
			log.WithField("status", notification.Status).Warn("Notification queue is full, dropping notification")
		}
	}

	result.done <- *result
	close(result.done)
}
