package api

import (
	"github.com/pipeos/pipes/src/ingest"
	"github.com/pipeos/pipes/src/store"
	"github.com/pipeos/pipes/src/sweeper"
	"github.com/pipeos/pipes/src/utils/config"
	"github.com/pipeos/pipes/src/utils/model"
	monitor_api "github.com/pipeos/pipes/src/utils/monitoring/api"
	"github.com/pipeos/pipes/src/utils/publisher"
	"github.com/pipeos/pipes/src/utils/task"
)

type Controller struct {
	*task.Task
}

// Main class that orchestrates the REST API and background derivations
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)

	self.Task = task.NewTask(config, "controller")

	monitor := monitor_api.NewMonitor().
		WithMaxHistorySize(30)

	repositories, err := store.NewRepositories(self.Ctx, config, "api")
	if err != nil {
		return
	}

	deriver := ingest.NewDeriver(config).
		WithFunctions(repositories.Functions).
		WithMonitor(monitor)

	rollback := ingest.NewRollback(config).
		WithContainers(repositories.Containers).
		WithFunctions(repositories.Functions).
		WithMonitor(monitor)

	runner := ingest.NewRunner(config).
		WithDeriver(deriver).
		WithRollback(rollback).
		WithMonitor(monitor)

	server := NewServer(config).
		WithMonitor(monitor).
		WithRepositories(repositories).
		WithDeriver(deriver).
		WithRollback(rollback).
		WithRunner(runner).
		Setup()

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(server.Task).
		WithSubtask(runner.Task)

	if config.Redis.Enabled {
		runner.WithOutput(config.Redis.MaxQueueSize)

		notifier := publisher.NewRedisPublisher[*model.IngestionNotification](config, "ingestion-publisher").
			WithInputChannel(runner.Output).
			WithMonitor(monitor)

		self.Task = self.Task.WithSubtask(notifier.Task)
	}

	if config.Sweeper.Enabled {
		orphanSweeper := sweeper.NewSweeper(config).
			WithRepositories(repositories).
			WithMonitor(monitor)

		self.Task = self.Task.WithSubtask(orphanSweeper.Task)
	}

	return
}
