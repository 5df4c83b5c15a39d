package ingest

import (
	"context"
	"errors"

	"github.com/pipeos/pipes/src/store"
	"github.com/pipeos/pipes/src/utils/config"
	"github.com/pipeos/pipes/src/utils/logger"
	"github.com/pipeos/pipes/src/utils/model"
	"github.com/pipeos/pipes/src/utils/monitoring"

	"github.com/sirupsen/logrus"
)

// DeleteFunctionsForContainer removes every function of the container and returns how many were removed
func DeleteFunctionsForContainer(ctx context.Context, functions store.FunctionRepository, containerId string) (int64, error) {
	return functions.Delete(ctx, store.NewFilter().WithLike("containerid", store.EscapeLike(containerId)))
}

// Rollback removes a container whose functions couldn't be derived, together with the functions created so far
type Rollback struct {
	log *logrus.Entry

	containers store.Repository[model.PipeContainer]
	functions  store.FunctionRepository
	monitor    monitoring.Monitor
}

func NewRollback(config *config.Config) (self *Rollback) {
	self = new(Rollback)
	self.log = logger.NewSublogger("rollback")
	return
}

func (self *Rollback) WithContainers(v store.Repository[model.PipeContainer]) *Rollback {
	self.containers = v
	return self
}

func (self *Rollback) WithFunctions(v store.FunctionRepository) *Rollback {
	self.functions = v
	return self
}

func (self *Rollback) WithMonitor(v monitoring.Monitor) *Rollback {
	self.monitor = v
	return self
}

// Run attempts both deletes once, even if the first one fails. Failures are logged and returned.
func (self *Rollback) Run(ctx context.Context, containerId string) (err error) {
	log := self.log.WithField("container_id", containerId)

	count, errFunctions := DeleteFunctionsForContainer(ctx, self.functions, containerId)
	if errFunctions != nil {
		log.WithError(errFunctions).Error("Failed to delete functions")
	} else {
		log.WithField("num", count).Info("Deleted functions")
	}

	errContainer := self.containers.DeleteById(ctx, containerId)
	if errors.Is(errContainer, store.ErrNotFound) {
		// Someone else deleted it already
		errContainer = nil
	}
	if errContainer != nil {
		log.WithError(errContainer).Error("Failed to delete container")
	}

	err = errors.Join(errFunctions, errContainer)
	if err != nil {
		self.monitor.GetReport().Ingester.Errors.RollbackFailed.Inc()
		return
	}

	self.monitor.GetReport().Ingester.State.RollbacksFinished.Inc()
	return
}
