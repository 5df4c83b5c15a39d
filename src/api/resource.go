package api

import (
	"net/http"

	"github.com/pipeos/pipes/src/api/request"
	"github.com/pipeos/pipes/src/api/response"
	"github.com/pipeos/pipes/src/store"
	. "github.com/pipeos/pipes/src/utils/logger"

	"github.com/gin-gonic/gin"
)

// Handlers shared by all kinds of records
type resource[T any] struct {
	server *Server
	repo   store.Repository[T]

	// Optional hooks
	onCreated func(*T)
	onDeleted func(count int64)
}

func newResource[T any](server *Server, repo store.Repository[T]) *resource[T] {
	return &resource[T]{
		server:    server,
		repo:      repo,
		onCreated: func(*T) {},
		onDeleted: func(int64) {},
	}
}

func (self *resource[T]) register(group *gin.RouterGroup) {
	group.POST("", self.create)
	group.GET("", self.find)
	group.GET("count", self.count)
	group.PATCH("", self.updateAll)
	group.GET(":id", self.findById)
	group.PATCH(":id", self.updateById)
	group.DELETE(":id", self.deleteById)
}

func (self *resource[T]) create(c *gin.Context) {
	in := new(T)
	err := c.ShouldBindJSON(in)
	if err != nil {
		onBindError(c, err).Error("Failed to parse request")
		return
	}

	out, err := self.repo.Create(c, in)
	if err != nil {
		self.server.onError(c, err).Error("Failed to create")
		return
	}
	self.onCreated(out)

	c.JSON(http.StatusOK, out)
}

func (self *resource[T]) find(c *gin.Context) {
	filter, err := request.ParseFilter(c.Query("filter"))
	if err != nil {
		self.server.onError(c, err).Debug("Bad filter")
		return
	}

	out, err := self.repo.Find(c, filter)
	if err != nil {
		self.server.onError(c, err).Error("Failed to find")
		return
	}
	if out == nil {
		out = []*T{}
	}

	c.JSON(http.StatusOK, out)
}

func (self *resource[T]) count(c *gin.Context) {
	filter, err := request.ParseWhere(c.Query("where"))
	if err != nil {
		self.server.onError(c, err).Debug("Bad where")
		return
	}

	count, err := self.repo.Count(c, filter)
	if err != nil {
		self.server.onError(c, err).Error("Failed to count")
		return
	}

	c.JSON(http.StatusOK, &response.Count{Count: count})
}

func (self *resource[T]) updateAll(c *gin.Context) {
	filter, err := request.ParseWhere(c.Query("where"))
	if err != nil {
		self.server.onError(c, err).Debug("Bad where")
		return
	}

	var patch map[string]any
	err = c.ShouldBindJSON(&patch)
	if err != nil {
		LOGE(c, err, http.StatusBadRequest).Error("Failed to parse request")
		return
	}

	count, err := self.repo.UpdateAll(c, patch, filter)
	if err != nil {
		self.server.onError(c, err).Error("Failed to update")
		return
	}

	c.JSON(http.StatusOK, &response.Count{Count: count})
}

func (self *resource[T]) findById(c *gin.Context) {
	out, err := self.repo.FindById(c, c.Param("id"))
	if err != nil {
		self.server.onError(c, err).Debug("Failed to get")
		return
	}

	c.JSON(http.StatusOK, out)
}

func (self *resource[T]) updateById(c *gin.Context) {
	var patch map[string]any
	err := c.ShouldBindJSON(&patch)
	if err != nil {
		LOGE(c, err, http.StatusBadRequest).Error("Failed to parse request")
		return
	}

	err = self.repo.UpdateById(c, c.Param("id"), patch)
	if err != nil {
		self.server.onError(c, err).Debug("Failed to update")
		return
	}

	c.Status(http.StatusNoContent)
}

func (self *resource[T]) deleteById(c *gin.Context) {
	err := self.repo.DeleteById(c, c.Param("id"))
	if err != nil {
		self.server.onError(c, err).Debug("Failed to delete")
		return
	}
	self.onDeleted(1)

	c.Status(http.StatusNoContent)
}

func (self *resource[T]) deleteAll(c *gin.Context) {
	filter, err := request.ParseWhere(c.Query("where"))
	if err != nil {
		self.server.onError(c, err).Debug("Bad where")
		return
	}

	count, err := self.repo.Delete(c, filter)
	if err != nil {
		self.server.onError(c, err).Error("Failed to delete")
		return
	}
	self.onDeleted(count)

	c.JSON(http.StatusOK, &response.Count{Count: count})
}
