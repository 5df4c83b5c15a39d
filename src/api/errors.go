package api

import (
	"errors"
	"net/http"

	"github.com/pipeos/pipes/src/store"
	. "github.com/pipeos/pipes/src/utils/logger"
	"github.com/pipeos/pipes/src/utils/model"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrInvalidFilter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Aborts the request with the status matching the error
func (self *Server) onError(c *gin.Context, err error) *logrus.Entry {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		self.monitor.GetReport().Api.Errors.DbError.Inc()
	}
	return LOGE(c, err, status)
}

// Aborts a request whose body couldn't be parsed
func onBindError(c *gin.Context, err error) *logrus.Entry {
	if errors.Is(err, model.ErrValidation) {
		return LOGE(c, err, http.StatusUnprocessableEntity)
	}
	return LOGE(c, err, http.StatusBadRequest)
}
