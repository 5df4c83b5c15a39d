package api

import (
	"github.com/pipeos/pipes/src/utils/model"

	"github.com/gin-gonic/gin"
)

func (self *Server) registerFunctions(group *gin.RouterGroup) {
	functions := newResource[model.PipeFunction](self, self.repositories.Functions)
	functions.onDeleted = func(count int64) {
		self.monitor.GetReport().Api.State.FunctionsDeleted.Add(uint64(count))
	}
	functions.register(group)

	group.DELETE("", functions.deleteAll)
}
