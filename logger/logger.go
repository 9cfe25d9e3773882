// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package logger

import (
	"log"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger supports structured logging with key-value pairs.
type Logger interface {
	Debugw(msg string, keyValues ...interface{})
	Infow(msg string, keyValues ...interface{})
	Warnw(msg string, keyValues ...interface{})
	Errorw(msg string, keyValues ...interface{})
	Fatalw(msg string, keyValues ...interface{})
}

type zapLogger struct {
	logger *zap.SugaredLogger
}

var _ Logger = (*zapLogger)(nil)

func (zl *zapLogger) Debugw(msg string, kv ...interface{}) { zl.logger.Debugw(msg, kv...) }
func (zl *zapLogger) Infow(msg string, kv ...interface{})  { zl.logger.Infow(msg, kv...) }
func (zl *zapLogger) Warnw(msg string, kv ...interface{})  { zl.logger.Warnw(msg, kv...) }
func (zl *zapLogger) Errorw(msg string, kv ...interface{}) { zl.logger.Errorw(msg, kv...) }
func (zl *zapLogger) Fatalw(msg string, kv ...interface{}) { zl.logger.Fatalw(msg, kv...) }

// Config selects logger verbosity.
type Config struct {
	Debug bool
	Level zapcore.Level
}

// New creates a production logger.
func New() Logger {
	return NewWithConfig(Config{})
}

// NewWithConfig returns a new logger per cfg.
func NewWithConfig(cfg Config) Logger {
	var (
		zlog *zap.Logger
		err  error
	)
	if cfg.Debug {
		zlog, err = zap.NewDevelopment()
	} else {
		zlog, err = zap.NewProduction(zap.IncreaseLevel(cfg.Level))
	}
	if err != nil {
		log.Fatalf("cannot initialize zap logger: %v", err)
	}
	return &zapLogger{zlog.Sugar()}
}

var (
	instance Logger
	mtx      sync.Mutex
)

// Init installs the global logger. Only the first call has effect.
func Init(l Logger) {
	mtx.Lock()
	defer mtx.Unlock()
	if instance == nil {
		instance = l
	}
}

// I returns the global Logger, initializing a default production logger
// on first use if Init was never called.
func I() Logger {
	mtx.Lock()
	defer mtx.Unlock()
	if instance == nil {
		instance = New()
	}
	return instance
}
