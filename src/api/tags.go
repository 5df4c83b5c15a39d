package api

import (
	"github.com/pipeos/pipes/src/utils/model"

	"github.com/gin-gonic/gin"
)

func (self *Server) registerTags(group *gin.RouterGroup) {
	newResource[model.Tag](self, self.repositories.Tags).register(group)
}
