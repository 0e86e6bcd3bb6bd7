package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is usable before Init is called.
var Log = logrus.New()

// Init configures the global logger's level and output format.
// format is either "json" or "text"; unknown levels fall back to info.
func Init(level, format string) {
	Log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		Log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
