package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	level string
	entry *logrus.Entry
}

func New(level string) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		level = "info"
	}
	base.SetLevel(lvl)

	return &Logger{
		level: level,
		entry: logrus.NewEntry(base),
	}
}

// SetOutput redirects log output, mostly useful in tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.entry.Logger.SetOutput(w)
}

// WithFields returns a child logger that prefixes every line with the given
// request context.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{
		level: l.level,
		entry: l.entry.WithFields(logrus.Fields(fields)),
	}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.entry.Infof(msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.entry.Debugf(msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.entry.Warnf(msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.entry.Errorf(msg, args...)
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.entry.Fatalf(msg, args...)
}
