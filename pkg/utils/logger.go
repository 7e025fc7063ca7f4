package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

// InitLogger builds the process-wide logger: JSON output on stdout, level
// taken from LOG_LEVEL. An unset or unparseable level falls back to info so
// a bad env var never silences the pipeline logs.
func InitLogger() {
	logger = logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

func GetLogger() *logrus.Logger {
	if logger == nil {
		InitLogger()
	}
	return logger
}
