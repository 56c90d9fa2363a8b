// Package logging wraps logrus with the four levels the server uses
// for request and lifecycle logging, threaded through constructors as
// an explicit value rather than a process-wide singleton.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a thin façade over *logrus.Logger. It is safe for
// concurrent use by every worker goroutine.
type Logger struct {
	l *logrus.Logger
}

// New returns a Logger writing to stderr at InfoLevel, or DebugLevel
// when debug is true.
func New(debug bool) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return &Logger{l: l}
}

func (lg *Logger) Debug(args ...interface{}) { lg.l.Debug(args...) }
func (lg *Logger) Info(args ...interface{})  { lg.l.Info(args...) }
func (lg *Logger) Warn(args ...interface{})  { lg.l.Warn(args...) }
func (lg *Logger) Error(args ...interface{}) { lg.l.Error(args...) }

func (lg *Logger) Debugf(format string, args ...interface{}) { lg.l.Debugf(format, args...) }
func (lg *Logger) Infof(format string, args ...interface{})  { lg.l.Infof(format, args...) }
func (lg *Logger) Warnf(format string, args ...interface{})  { lg.l.Warnf(format, args...) }
func (lg *Logger) Errorf(format string, args ...interface{}) { lg.l.Errorf(format, args...) }

// WithFields returns a logrus.Entry pre-populated with fields, used by
// the connection handler to log one line per handled request.
func (lg *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return lg.l.WithFields(fields)
}
