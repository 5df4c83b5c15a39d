package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/pipeos/pipes/src/api/request"
	"github.com/pipeos/pipes/src/api/response"
	"github.com/pipeos/pipes/src/ingest"
	"github.com/pipeos/pipes/src/store"
	. "github.com/pipeos/pipes/src/utils/logger"
	"github.com/pipeos/pipes/src/utils/model"

	"github.com/gin-gonic/gin"
)

func (self *Server) registerContainers(group *gin.RouterGroup) {
	containers := newResource[model.PipeContainer](self, self.repositories.Containers)
	containers.onCreated = func(*model.PipeContainer) {
		self.monitor.GetReport().Api.State.ContainersCreated.Inc()
	}
	containers.onDeleted = func(count int64) {
		self.monitor.GetReport().Api.State.ContainersDeleted.Add(uint64(count))
	}
	containers.register(group)

	group.GET(":id/js", self.onGetJs)
	group.POST("pipefunctions", self.onCreateWithFunctions)
	group.POST(":id/pipefunctions", self.onDeriveFunctions)
	group.GET(":id/pipefunctions", self.onGetFunctions)
	group.DELETE(":id/pipefunctions", self.onDeleteWithFunctions)
}

// Script source of the container, served as is
func (self *Server) onGetJs(c *gin.Context) {
	container, err := self.repositories.Containers.FindById(c, c.Param("id"))
	if err != nil {
		self.onError(c, err).Debug("Failed to get container")
		return
	}

	c.Data(http.StatusOK, "application/javascript", []byte(container.Container.JsSource()))
}

// Creates the container and derives its functions in the background.
// Responds as soon as the container is stored, a failed derivation removes it later.
func (self *Server) onCreateWithFunctions(c *gin.Context) {
	in := new(model.PipeContainer)
	err := c.ShouldBindJSON(in)
	if err != nil {
		onBindError(c, err).Error("Failed to parse request")
		return
	}

	container, err := self.repositories.Containers.Create(c, in)
	if err != nil {
		self.onError(c, err).Error("Failed to create container")
		return
	}
	self.monitor.GetReport().Api.State.ContainersCreated.Inc()

	done := self.runner.Submit(container)

	// Runner refused the job, nobody else will clean up
	select {
	case result := <-done:
		if errors.Is(result.Err, ingest.ErrRunnerStopped) {
			err = self.rollback.Run(context.WithoutCancel(c.Request.Context()), container.Id)
			if err != nil {
				LOG(c).WithError(err).Error("Failed to remove container")
			}
			LOGE(c, result.Err, http.StatusServiceUnavailable).Warn("Derivation not scheduled")
			return
		}
	default:
	}

	LOG(c).WithField("container_id", container.Id).Debug("Derivation scheduled")
	c.JSON(http.StatusOK, container)
}

// Derives functions of an already stored container and waits for the outcome.
// Functions created before a failure are left in place.
func (self *Server) onDeriveFunctions(c *gin.Context) {
	container, err := self.repositories.Containers.FindById(c, c.Param("id"))
	if err != nil {
		self.onError(c, err).Debug("Failed to get container")
		return
	}

	functions, err := self.deriver.Derive(context.WithoutCancel(c.Request.Context()), container)
	if err != nil {
		LOGE(c, err, http.StatusInternalServerError).Error("Failed to derive functions")
		return
	}

	LOG(c).WithField("container_id", container.Id).WithField("num", len(functions)).Debug("Functions derived")
	c.Status(http.StatusNoContent)
}

// Functions of the container in ABI order
func (self *Server) onGetFunctions(c *gin.Context) {
	filter, err := request.ParseFilter(c.Query("filter"))
	if err != nil {
		self.onError(c, err).Debug("Bad filter")
		return
	}

	out, err := self.repositories.Functions.Children(c.Param("id")).Find(c, filter)
	if err != nil {
		self.onError(c, err).Error("Failed to find functions")
		return
	}
	if out == nil {
		out = []*model.PipeFunction{}
	}

	c.JSON(http.StatusOK, out)
}

// Removes the container and all its functions, responds with the number of removed functions
func (self *Server) onDeleteWithFunctions(c *gin.Context) {
	id := c.Param("id")

	err := self.repositories.Containers.DeleteById(c, id)
	switch {
	case err == nil:
		self.monitor.GetReport().Api.State.ContainersDeleted.Inc()
	case errors.Is(err, store.ErrNotFound):
		// Functions may still be there
	default:
		self.onError(c, err).Error("Failed to delete container")
		return
	}

	count, err := ingest.DeleteFunctionsForContainer(c, self.repositories.Functions, id)
	if err != nil {
		self.onError(c, err).Error("Failed to delete functions")
		return
	}
	self.monitor.GetReport().Api.State.FunctionsDeleted.Add(uint64(count))

	c.JSON(http.StatusOK, &response.Count{Count: count})
}
