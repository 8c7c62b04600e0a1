// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for semgate components.
//
// The package is built on Go's standard library slog package. By default
// logs go to stderr in text format so the CLI stays pipe-friendly; an
// optional log directory enables a JSON file sink for CI debugging.
//
// # Basic Usage
//
//	logger := logging.Default()
//	logger.Info("analysis started", "files", len(tasks))
//
// # File Logging
//
//	logger := logging.New(logging.Config{
//	    Level:   logging.LevelDebug,
//	    LogDir:  "~/.semgate/logs",
//	    Service: "semgate",
//	})
//	defer logger.Close()
//
// # Thread Safety
//
// Logger is safe for concurrent use. The underlying slog.Logger is
// thread-safe and file state is protected by a mutex.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents log severity, ordered Debug < Info < Warn < Error.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota

	// LevelInfo is for normal operational messages.
	LevelInfo

	// LevelWarn is for recoverable, unexpected situations.
	LevelWarn

	// LevelError is for failed operations the system survives.
	LevelError
)

// String returns "DEBUG", "INFO", "WARN", "ERROR", or "UNKNOWN".
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a config string to a Level.
//
// Accepts "debug", "info", "warn", "error" in any case.
// Unknown values fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// toSlogLevel bridges Level to slog.Level.
func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures Logger behavior. The zero value writes Info+
// messages to stderr in text format.
type Config struct {
	// Level sets the minimum log level. Default: LevelInfo.
	Level Level

	// LogDir enables JSON file logging to the given directory.
	// The file is named "{Service}_{YYYY-MM-DD}.log". Supports ~ expansion.
	// Default: "" (file logging disabled).
	LogDir string

	// Service is attached to every entry as the "service" attribute.
	Service string

	// JSON switches stderr output to JSON format. File logs are
	// always JSON regardless of this setting.
	JSON bool

	// Quiet disables stderr output entirely.
	Quiet bool
}

// Logger wraps slog.Logger with optional file output.
//
// Thread Safety: safe for concurrent use.
type Logger struct {
	*slog.Logger

	mu   sync.Mutex
	file *os.File
}

// New creates a Logger from the given Config.
//
// File-sink setup failures degrade to stderr-only logging with a
// warning rather than failing the caller.
func New(cfg Config) *Logger {
	var writers []io.Writer
	if !cfg.Quiet {
		writers = append(writers, os.Stderr)
	}

	l := &Logger{}

	if cfg.LogDir != "" {
		if f, err := openLogFile(cfg.LogDir, cfg.Service); err != nil {
			fmt.Fprintf(os.Stderr, "semgate: file logging disabled: %v\n", err)
		} else {
			l.file = f
			writers = append(writers, f)
		}
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 1:
		out = writers[0]
	default:
		if len(writers) > 1 {
			out = io.MultiWriter(writers...)
		}
	}

	opts := &slog.HandlerOptions{Level: cfg.Level.toSlogLevel()}
	var handler slog.Handler
	if cfg.JSON || (cfg.Quiet && l.file != nil) {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With(slog.String("service", cfg.Service))
	}
	l.Logger = logger
	return l
}

// Default returns a stderr text logger at Info level.
func Default() *Logger {
	return New(Config{})
}

// Close flushes and closes the log file, if any.
//
// Safe to call multiple times and on loggers without a file sink.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// openLogFile creates the log directory (0750) and opens the dated file.
func openLogFile(dir, service string) (*os.File, error) {
	expanded, err := expandHome(dir)
	if err != nil {
		return nil, fmt.Errorf("expanding log dir: %w", err)
	}
	if err := os.MkdirAll(expanded, 0o750); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	name := service
	if name == "" {
		name = "semgate"
	}
	path := filepath.Join(expanded, fmt.Sprintf("%s_%s.log", name, time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// expandHome replaces a leading ~ with the user home directory.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
