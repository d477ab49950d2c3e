package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const EnvLogLevel = "SHOPLEDGER_LOG_LEVEL"

var std = NewLogger()

type Logger struct {
	entry *logrus.Entry
}

// Default returns the shared process logger.
func Default() *Logger {
	return std
}

// NewLogger returns a Logger writing to stdout. The level is read from
// SHOPLEDGER_LOG_LEVEL and defaults to info.
func NewLogger() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if lvl, err := logrus.ParseLevel(os.Getenv(EnvLogLevel)); err == nil {
		l.SetLevel(lvl)
	}
	return &Logger{entry: logrus.NewEntry(l)}
}

// Discard returns a Logger that drops everything. Used by tests.
func Discard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(l)}
}

// WithField returns a child logger that tags every line with key=value.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) SetOutput(w io.Writer) {
	l.entry.Logger.SetOutput(w)
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	l.entry.Debugf(format, v...)
}

func (l *Logger) Info(v ...interface{}) {
	l.entry.Info(v...)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.entry.Infof(format, v...)
}

func (l *Logger) Warn(v ...interface{}) {
	l.entry.Warn(v...)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.entry.Warnf(format, v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.entry.Error(v...)
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.entry.Errorf(format, v...)
}
