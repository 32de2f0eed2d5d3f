package log

import (
	"io"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Log struct singleton
type Log struct {
	AppName  string
	LogLevel int
	Logger   *logrus.Logger
}

var logger Log

var mapOfLogLevel = map[string]int{
	"DEBUG": 1,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 2,
}

// InitLogger initialize logger from Viper
func InitLogger(v *viper.Viper) {
	logger = New(v.GetString("app.name"), v.GetString("log.level"))
}

// New builds a logger without touching the process singleton.
func New(appName, level string) Log {
	lvl, ok := mapOfLogLevel[level]
	if !ok {
		lvl = 1
	}
	return Log{
		AppName:  appName,
		LogLevel: lvl,
		Logger:   newLogrusLogger(level),
	}
}

// Discard is used by tests that do not care about log output.
func Discard() Log {
	l := New("test", "ERROR")
	l.Logger.SetOutput(io.Discard)
	return l
}

// GetLogger return singleton
func GetLogger() Log {
	return logger
}

func newLogrusLogger(levelStr string) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return l
}

func (l Log) entry(context, scope, meta string, skip int) *logrus.Entry {
	base := l.Logger
	if base == nil {
		base = logrus.StandardLogger()
	}
	_, file, line, _ := runtime.Caller(skip)
	return base.WithFields(logrus.Fields{
		"service": l.AppName,
		"context": context,
		"scope":   scope,
		"meta":    meta,
		"file":    file,
		"line":    line,
	})
}

// -----------------------------
// Info
func (l Log) Info(context, message, scope, meta string) {
	if l.LogLevel <= 1 {
		l.entry(context, scope, meta, 2).Info(message)
	}
}

// -----------------------------
// Warn
func (l Log) Warn(context, message, scope, meta string) {
	if l.LogLevel <= 2 {
		l.entry(context, scope, meta, 2).Warn(message)
	}
}

// -----------------------------
// Error
func (l Log) Error(context, message, scope, meta string) {
	if l.LogLevel <= 2 {
		_, file2, line2, _ := runtime.Caller(2)
		l.entry(context, scope, meta, 2).WithFields(logrus.Fields{
			"file2": file2,
			"line2": line2,
		}).Error(message)
	}
}

// -----------------------------
// Slow
func (l Log) Slow(context, message, scope, meta string) {
	if l.LogLevel <= 1 {
		l.entry(context, scope, meta, 3).Info("[SLOW] " + message)
	}
}
