// Package logging provides structured logging using zap
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// NewDefaultLogger creates a logger with default configuration using zap
func NewDefaultLogger() Logger {
	logger, err := NewZapLogger(DefaultLogConfig())
	if err != nil {
		panic(fmt.Sprintf("failed to initialize default zap logger: %v", err))
	}
	return logger
}

// Options drive InitGlobalLogger. They mirror LOG_LEVEL, LOG_FORMAT and LOG_FILE.
type Options struct {
	Level  string
	Format string
	File   string
}

// InitGlobalLogger builds the global logger. An empty File logs to stdout.
// The returned closer releases the log file, if one was opened.
func InitGlobalLogger(opts Options) (io.Closer, error) {
	config := LogConfig{
		Level:      ParseLevel(opts.Level),
		Format:     ParseFormat(opts.Format),
		TimeFormat: time.RFC3339,
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", opts.File, err)
		}
		config.Output = file
		closer = file
	}

	logger, err := NewZapLogger(config)
	if err != nil {
		closer.Close()
		return nil, err
	}
	SetGlobalLogger(logger)

	logger.Info("Logger initialized",
		Field{"level", config.Level.String()},
		Field{"format", string(config.Format)},
		Field{"log_file", opts.File},
	)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// MustSync flushes any buffered log entries for zap loggers
// This should be called before application exit
func MustSync() {
	if zapLogger, ok := GetGlobalLogger().(*ZapAdapter); ok {
		_ = zapLogger.Sync()
	}
}

// WithContext is a convenience function to add context to the global logger
func WithContext(ctx context.Context) Logger {
	return GetGlobalLogger().WithContext(ctx)
}

// WithFields is a convenience function to add fields to the global logger
func WithFields(fields ...Field) Logger {
	return GetGlobalLogger().WithFields(fields...)
}
