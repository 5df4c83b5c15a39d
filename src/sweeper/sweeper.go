package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/pipeos/pipes/src/ingest"
	"github.com/pipeos/pipes/src/store"
	"github.com/pipeos/pipes/src/utils/config"
	"github.com/pipeos/pipes/src/utils/model"
	"github.com/pipeos/pipes/src/utils/monitoring"
	"github.com/pipeos/pipes/src/utils/task"

	"github.com/robfig/cron"
)

// Periodically removes functions whose container no longer exists.
// Such functions are left behind by deleting a container without its functions or by a failed rollback.
type Sweeper struct {
	*task.Task

	cron *cron.Cron

	repositories *store.Repositories
	monitor      monitoring.Monitor
}

func NewSweeper(config *config.Config) (self *Sweeper) {
	self = new(Sweeper)

	self.cron = cron.New()

	self.Task = task.NewTask(config, "sweeper").
		WithOnBeforeStart(self.schedule).
		WithSubtaskFunc(self.run).
		WithOnStop(self.cron.Stop)

	return
}

func (self *Sweeper) WithRepositories(v *store.Repositories) *Sweeper {
	self.repositories = v
	return self
}

func (self *Sweeper) WithMonitor(v monitoring.Monitor) *Sweeper {
	self.monitor = v
	return self
}

func (self *Sweeper) schedule() error {
	return self.cron.AddFunc(self.Config.Sweeper.Schedule, func() {
		removed, err := self.Sweep(self.Ctx)
		if err != nil {
			self.Log.WithError(err).Error("Sweep failed")
			return
		}
		self.Log.WithField("num", removed).Info("Sweep finished")
	})
}

func (self *Sweeper) run() (err error) {
	self.cron.Start()
	<-self.StopChannel
	return nil
}

// Sweep removes orphaned functions and returns how many were removed
func (self *Sweeper) Sweep(ctx context.Context) (removed int64, err error) {
	defer func() {
		if err != nil {
			self.monitor.GetReport().Sweeper.Errors.Sweep.Inc()
			return
		}
		self.monitor.GetReport().Sweeper.State.FunctionsRemoved.Add(uint64(removed))
		self.monitor.GetReport().Sweeper.State.LastSweepTimestamp.Store(time.Now().Unix())
	}()

	orphans, err := self.orphans(ctx)
	if err != nil {
		return
	}

	for _, containerId := range orphans {
		var count int64
		count, err = ingest.DeleteFunctionsForContainer(ctx, self.repositories.Functions, containerId)
		if err != nil {
			return
		}
		self.Log.WithField("container_id", containerId).WithField("num", count).Debug("Removed orphaned functions")
		removed += count
	}
	return
}

// Container ids referenced by functions that don't exist anymore.
// Collected before anything gets deleted, so paging isn't affected.
func (self *Sweeper) orphans(ctx context.Context) (out []string, err error) {
	batchSize := self.Config.Sweeper.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	checked := make(map[string]bool)
	for offset := 0; ; offset += batchSize {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var functions []*model.PipeFunction
		functions, err = self.repositories.Functions.Find(ctx, store.NewFilter().
			WithOrder("_id", false).
			WithLimit(batchSize).
			WithOffset(offset))
		if err != nil {
			return
		}

		for _, function := range functions {
			if _, ok := checked[function.ContainerId]; ok {
				continue
			}

			_, err = self.repositories.Containers.FindById(ctx, function.ContainerId)
			switch {
			case err == nil:
				checked[function.ContainerId] = true
			case errors.Is(err, store.ErrNotFound):
				checked[function.ContainerId] = false
				out = append(out, function.ContainerId)
				err = nil
			default:
				return nil, err
			}
		}

		if len(functions) < batchSize {
			return
		}
	}
}
