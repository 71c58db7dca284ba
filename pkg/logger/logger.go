package logger

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var InfoLogger, FatalLogger *zap.Logger

var (
	serviceName = "forex_bot"
)

const recentErrorsKeep = 10

// кольцо последних ошибок для /diagnostics
var (
	recentMu     sync.Mutex
	recentErrors []string
)

func recordError(msg string) {
	recentMu.Lock()
	defer recentMu.Unlock()
	line := time.Now().UTC().Format("2006-01-02 15:04:05") + " " + msg
	recentErrors = append(recentErrors, line)
	if len(recentErrors) > recentErrorsKeep {
		recentErrors = recentErrors[len(recentErrors)-recentErrorsKeep:]
	}
}

// LastErrors возвращает копию последних записанных ошибок, свежие в конце.
func LastErrors() []string {
	recentMu.Lock()
	defer recentMu.Unlock()
	out := make([]string, len(recentErrors))
	copy(out, recentErrors)
	return out
}

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

// Init поднимает продакшн-логгеры; вызывается один раз на старте.
func Init() error {
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	InfoLogger = l
	FatalLogger = l
	return nil
}

func Sync() {
	if InfoLogger != nil {
		_ = InfoLogger.Sync()
	}
}

func Info(format string, args ...interface{}) {
	if InfoLogger == nil {
		panic("InfoLogger is not initialized")
	}

	msg := fmt.Sprintf(format, args...)
	InfoLogger.With(
		zap.String("service", serviceName),
	).Info(msg)
}

func Error(format string, args ...interface{}) {
	if InfoLogger == nil {
		panic("InfoLogger is not initialized")
	}

	msg := fmt.Sprintf(format, args...)
	recordError(msg)
	InfoLogger.With(
		zap.String("service", serviceName),
	).Error(msg)
}

func Fatal(format string, args ...interface{}) {
	if FatalLogger == nil {
		panic("FatalLogger is not initialized")
	}

	msg := fmt.Sprintf(format, args...)
	FatalLogger.With(
		zap.String("service", serviceName),
	).Fatal(msg)
}
