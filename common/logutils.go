package common

import (
	"os"

	"github.com/sirupsen/logrus"
)

const ServiceName = "worksync"

func init() {
	ConfigureLogger(os.Getenv("GIN_MODE"))
}

// ConfigureLogger sets up the logrus standard logger, json output is used in release mode.
func ConfigureLogger(mode string) {
	logger := logrus.StandardLogger()
	logger.Out = os.Stdout
	if mode == "release" {
		logger.Formatter = &logrus.JSONFormatter{}
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.Formatter = &logrus.TextFormatter{}
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.ReplaceHooks(logrus.LevelHooks{})
	logger.AddHook(&DefaultFieldsHook{})
}

type DefaultFieldsHook struct {
}

func (hook *DefaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *DefaultFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["serviceName"] = ServiceName
	return nil
}
