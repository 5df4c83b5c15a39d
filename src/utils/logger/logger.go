package logger

import (
	"os"

	"github.com/pipeos/pipes/src/utils/config"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

func init() {
	logger = logrus.New()
}

func Init(config *config.Config) (err error) {
	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		return
	}
	logger.SetLevel(level)
	logger.SetOutput(os.Stdout)

	var formatter logrus.Formatter = &logrus.JSONFormatter{}
	if config.IsDevelopment {
		formatter = &logrus.TextFormatter{
			FullTimestamp: true,
		}
	}
	logger.SetFormatter(formatter)

	return nil
}

func NewSublogger(tag string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{"module": "pipes." + tag})
}
