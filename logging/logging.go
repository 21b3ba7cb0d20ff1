package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout, "info", "text")
)

func newLogger(out io.Writer, level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	if strings.ToLower(format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	switch strings.ToLower(level) {
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "info":
		l.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

// Init replaces the shared logger. format is "json" or "text".
func Init(level, format string) *logrus.Logger {
	return InitWithOutput(os.Stdout, level, format)
}

// InitWithOutput is Init writing to out.
func InitWithOutput(out io.Writer, level, format string) *logrus.Logger {
	l := newLogger(out, level, format)
	mu.Lock()
	logger = l
	mu.Unlock()
	return l
}

// Get returns the shared logger.
func Get() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Component returns an entry tagged with the given component name.
func Component(name string) *logrus.Entry {
	return Get().WithField("component", name)
}
