package logger

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LOG returns a logger describing the request being handled
func LOG(c *gin.Context) *logrus.Entry {
	return NewSublogger("api").WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	})
}

// LOGE aborts the request with an error body and returns a logger to report the failure
func LOGE(c *gin.Context, err error, status int) *logrus.Entry {
	message := http.StatusText(status)
	if err != nil {
		message = err.Error()
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"statusCode": status,
			"message":    message,
		},
	})

	return LOG(c).WithError(err).WithField("status", status)
}
