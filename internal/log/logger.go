package log

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. Unknown levels fall back to INFO,
// format "JSON" selects the JSON formatter and anything else the text one.
func NewLogger(level, format string, disableTimestamp bool) *logrus.Logger {
	var log = logrus.New()
	if strings.EqualFold(format, "JSON") {
		log.Formatter = &logrus.JSONFormatter{DisableTimestamp: disableTimestamp}
	} else {
		log.Formatter = &logrus.TextFormatter{
			DisableColors:    false,
			DisableTimestamp: disableTimestamp,
			FullTimestamp:    true,
		}
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.Level = lvl
	log.Out = os.Stdout
	return log
}
