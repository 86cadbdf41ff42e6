// Package logger provides a singleton zap logger with context-based scoping.
//
// A single global instance is initialised once with Init(). Request
// middlewares may inject a scoped logger (request_id and friends) into the
// context; From(ctx) falls back to the singleton when no scoped logger is
// present, so call sites never need to care which one they got.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// Init initialises the singleton with the given configuration.
// Idempotent: only the first call has any effect. Call it early in main.
func Init(cfg Config) {
	once.Do(func() {
		instance = build(cfg)
	})
}

// L returns the singleton logger. If Init was never called it builds a
// default dev/info logger.
func L() *zap.Logger {
	if instance == nil {
		Init(Config{Env: "dev", Level: "info"})
	}
	return instance
}

// Named returns a logger tagged with a component name.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// With returns a logger carrying additional persistent fields.
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}

// Sync flushes any buffered entries. Defer it in main.
func Sync() error {
	if instance != nil {
		return instance.Sync()
	}
	return nil
}
