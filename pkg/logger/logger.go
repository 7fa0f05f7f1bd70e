package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetOutput(os.Stdout)
	log.SetReportCaller(false)
	Configure(os.Getenv("ENVIRONMENT"), os.Getenv("LOG_LEVEL"))
}

// Configure switches formatter and level. Production logs are JSON.
func Configure(environment, level string) {
	if environment == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		if environment == "development" {
			lvl = logrus.DebugLevel
		} else {
			lvl = logrus.InfoLevel
		}
	}
	log.SetLevel(lvl)
}

// Logger exposes the underlying logrus instance for structured fields.
func Logger() *logrus.Logger {
	return log
}

func Info(format string, v ...interface{}) {
	log.Infof(format, v...)
}

func Error(format string, v ...interface{}) {
	log.Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	log.Debugf(format, v...)
}

func Warn(format string, v ...interface{}) {
	log.Warnf(format, v...)
}

func Fatal(format string, v ...interface{}) {
	log.Fatalf(format, v...)
}

// WithFields returns an entry carrying structured fields.
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return log.WithFields(logrus.Fields(fields))
}

// LogSwapError records a side-effect failure that must not abort the request.
func LogSwapError(swapID, action string, err error) {
	log.WithFields(logrus.Fields{
		"swap_id": swapID,
		"action":  action,
	}).Warnf("swap side effect failed: %v", err)
}
