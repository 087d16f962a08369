// Package logger provides the process-wide logging facade. The concrete
// backend is zap; callers go through this package so that packages under
// internal/ never depend on a logging library directly.
package logger

import (
	"go.uber.org/zap"
)

// Logger is the logging interface used across the orchestrator.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
}

var (
	zapLogger    = zap.NewNop()
	globalLogger Logger = &zapFacade{sugar: zapLogger.Sugar()}
)

// Replace installs the given zap logger as the process-wide backend.
func Replace(l *zap.Logger) {
	zapLogger = l
	globalLogger = &zapFacade{sugar: l.Sugar()}
}

// Zap returns the underlying zap logger for callers that want structured fields.
func Zap() *zap.Logger {
	return zapLogger
}

// Sync flushes buffered log entries.
func Sync() error {
	return zapLogger.Sync()
}

func Debug(v ...interface{})                 { globalLogger.Debug(v...) }
func Debugf(format string, v ...interface{}) { globalLogger.Debugf(format, v...) }
func Info(v ...interface{})                  { globalLogger.Info(v...) }
func Infof(format string, v ...interface{})  { globalLogger.Infof(format, v...) }
func Warn(v ...interface{})                  { globalLogger.Warn(v...) }
func Warnf(format string, v ...interface{})  { globalLogger.Warnf(format, v...) }
func Error(v ...interface{})                 { globalLogger.Error(v...) }
func Errorf(format string, v ...interface{}) { globalLogger.Errorf(format, v...) }
func Fatal(v ...interface{})                 { globalLogger.Fatal(v...) }
func Fatalf(format string, v ...interface{}) { globalLogger.Fatalf(format, v...) }

// zapFacade adapts a zap sugared logger to the Logger interface.
type zapFacade struct {
	sugar *zap.SugaredLogger
}

func (l *zapFacade) Debug(v ...interface{})                 { l.sugar.Debug(v...) }
func (l *zapFacade) Debugf(format string, v ...interface{}) { l.sugar.Debugf(format, v...) }
func (l *zapFacade) Info(v ...interface{})                  { l.sugar.Info(v...) }
func (l *zapFacade) Infof(format string, v ...interface{})  { l.sugar.Infof(format, v...) }
func (l *zapFacade) Warn(v ...interface{})                  { l.sugar.Warn(v...) }
func (l *zapFacade) Warnf(format string, v ...interface{})  { l.sugar.Warnf(format, v...) }
func (l *zapFacade) Error(v ...interface{})                 { l.sugar.Error(v...) }
func (l *zapFacade) Errorf(format string, v ...interface{}) { l.sugar.Errorf(format, v...) }
func (l *zapFacade) Fatal(v ...interface{})                 { l.sugar.Fatal(v...) }
func (l *zapFacade) Fatalf(format string, v ...interface{}) { l.sugar.Fatalf(format, v...) }
