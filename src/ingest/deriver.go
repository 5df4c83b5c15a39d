package ingest

import (
	"context"
	"fmt"

	"github.com/pipeos/pipes/src/store"
	"github.com/pipeos/pipes/src/utils/config"
	"github.com/pipeos/pipes/src/utils/logger"
	"github.com/pipeos/pipes/src/utils/model"
	"github.com/pipeos/pipes/src/utils/monitoring"

	"github.com/sirupsen/logrus"
)

// Deriver creates one function record per ABI entry of a container
type Deriver struct {
	log *logrus.Entry

	functions store.FunctionRepository
	monitor   monitoring.Monitor

	// Re-read every created function before continuing
	verify bool

	// One derivation at a time for a given container
	locks *keyedMutex
}

func NewDeriver(config *config.Config) (self *Deriver) {
	self = new(Deriver)
	self.log = logger.NewSublogger("deriver")
	self.verify = config.Ingestion.VerifyCreated
	self.locks = newKeyedMutex()
	return
}

func (self *Deriver) WithFunctions(v store.FunctionRepository) *Deriver {
	self.functions = v
	return self
}

func (self *Deriver) WithMonitor(v monitoring.Monitor) *Deriver {
	self.monitor = v
	return self
}

func (self *Deriver) WithVerification(v bool) *Deriver {
	self.verify = v
	return self
}

// Derive persists functions in ABI order and stops at the first failure.
// Functions created before the failure are left in place, cleaning up is the caller's job.
// Derivations of the same container never interleave.
func (self *Deriver) Derive(ctx context.Context, container *model.PipeContainer) (out []*model.PipeFunction, err error) {
	if container.Id == "" {
		return nil, fmt.Errorf("%w: container isn't persisted", ErrIngestion)
	}

	unlock := self.locks.Lock(container.Id)
	defer unlock()

	var abi []model.AbiFunction
	if docs := container.Container.Docs(); docs != nil {
		abi = docs.Abi
	}

	log := self.log.WithField("container_id", container.Id)
	log.WithField("num", len(abi)).Debug("Deriving functions")

	children := self.functions.Children(container.Id)

	for i := range abi {
		var (
			function *model.PipeFunction
			created  *model.PipeFunction
		)

		function, err = Assemble(container, i, &abi[i])
		if err != nil {
			return out, &IngestionError{ContainerId: container.Id, Position: i, Err: err}
		}

		created, err = children.Create(ctx, function)
		if err != nil {
			self.monitor.GetReport().Ingester.Errors.DbFunctionInsert.Inc()
			return out, &IngestionError{ContainerId: container.Id, Position: i, Signature: function.Signature, Err: err}
		}

		if self.verify {
			var found []*model.PipeFunction
			found, err = children.Find(ctx, store.NewFilter().WithWhere("_id", created.Id))
			if err != nil {
				return out, &IngestionError{ContainerId: container.Id, Position: i, Signature: function.Signature, Err: err}
			}
			if len(found) == 0 {
				self.monitor.GetReport().Ingester.Errors.FunctionNotFound.Inc()
				return out, &IngestionError{ContainerId: container.Id, Position: i, Signature: function.Signature}
			}
		}

		out = append(out, created)
		self.monitor.GetReport().Ingester.State.FunctionsDerived.Inc()
	}

	log.WithField("num", len(out)).Debug("Derived functions")
	return out, nil
}
