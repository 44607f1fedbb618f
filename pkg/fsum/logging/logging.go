// Package logging provides component-scoped structured logging for fsum.
//
// Basic usage:
//
//	cfg := logging.Config{Level: "info", ConsoleLevel: "warn"}
//	if err := logging.Init(cfg); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Close()
//
//	logger := logging.Get("scanner")
//	logger.Info("scan started", "root", "/data")
//
// A Logger is a lightweight handle: its sinks are resolved through the
// global state on every emit, so loggers held at package level before Init
// pick up the configuration the moment Init runs. Before Init every message
// is discarded.
package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// toCharmLevel converts our Level to a charmbracelet/log level.
func (l Level) toCharmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty uses DefaultLogPath(). "-" disables
	// the file entirely.
	Path string

	// ConsoleLevel enables stderr output at the given level. Empty string
	// disables console output.
	ConsoleLevel string

	// Components maps component names to per-component level overrides.
	Components map[string]string
}

// Logger identifies a component and optional bound context. It holds no
// writers itself; the active sinks are looked up on every emit.
type Logger struct {
	component string
	ctx       []any
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) { l.emit(LevelDebug, msg, args...) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) { l.emit(LevelInfo, msg, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) { l.emit(LevelWarn, msg, args...) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) { l.emit(LevelError, msg, args...) }

// With returns a new logger with additional context.
func (l *Logger) With(args ...any) *Logger {
	ctx := make([]any, 0, len(l.ctx)+len(args))
	ctx = append(append(ctx, l.ctx...), args...)
	return &Logger{component: l.component, ctx: ctx}
}

func (l *Logger) emit(level Level, msg string, args ...any) {
	fileSink, consoleSink := sinks(l.component)
	if fileSink == nil && consoleSink == nil {
		return
	}

	merged := args
	if len(l.ctx) > 0 {
		merged = make([]any, 0, len(l.ctx)+len(args))
		merged = append(append(merged, l.ctx...), args...)
	}
	if fileSink != nil {
		logTo(fileSink, level, msg, merged...)
	}
	if consoleSink != nil {
		logTo(consoleSink, level, msg, merged...)
	}
}

func logTo(logger *log.Logger, level Level, msg string, args ...any) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, args...)
	case LevelInfo:
		logger.Info(msg, args...)
	case LevelWarn:
		logger.Warn(msg, args...)
	case LevelError:
		logger.Error(msg, args...)
	}
}

// state holds the global logging state. The sink maps cache one charm
// logger per component and are discarded whenever Init or Close changes the
// configuration, so handed-out Loggers never go stale.
type state struct {
	mu           sync.RWMutex
	initialized  bool
	file         *os.File
	level        Level
	consoleOn    bool
	consoleLvl   Level
	components   map[string]Level
	fileSinks    map[string]*log.Logger
	consoleSinks map[string]*log.Logger
}

var globalState = &state{
	components:   make(map[string]Level),
	fileSinks:    make(map[string]*log.Logger),
	consoleSinks: make(map[string]*log.Logger),
}

// Init initializes the logging system. Loggers obtained before Init start
// writing with the new configuration on their next emit.
func Init(cfg Config) error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.initialized && globalState.file != nil {
		if err := globalState.file.Close(); err != nil {
			return fmt.Errorf("closing existing log file: %w", err)
		}
		globalState.file = nil
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	globalState.level = level

	globalState.components = make(map[string]Level)
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		globalState.components[comp] = parsed
	}

	globalState.consoleOn = false
	if cfg.ConsoleLevel != "" {
		consoleLvl, err := ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
		globalState.consoleLvl = consoleLvl
		globalState.consoleOn = true
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	if path != "-" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		globalState.file = f
	}

	globalState.initialized = true
	globalState.fileSinks = make(map[string]*log.Logger)
	globalState.consoleSinks = make(map[string]*log.Logger)
	return nil
}

// Get returns a logger for the given component.
func Get(component string) *Logger {
	return &Logger{component: component}
}

// sinks returns the active file and console sinks for component, or nils
// when logging is uninitialized or the corresponding output is disabled.
func sinks(component string) (*log.Logger, *log.Logger) {
	globalState.mu.RLock()
	if !globalState.initialized {
		globalState.mu.RUnlock()
		return nil, nil
	}
	fileSink, fileOK := globalState.fileSinks[component]
	consoleSink, consoleOK := globalState.consoleSinks[component]
	if fileOK && consoleOK {
		globalState.mu.RUnlock()
		return fileSink, consoleSink
	}
	globalState.mu.RUnlock()

	globalState.mu.Lock()
	defer globalState.mu.Unlock()
	if !globalState.initialized {
		return nil, nil
	}
	return sinkFor(component, globalState.fileSinks, fileWriter()),
		sinkFor(component, globalState.consoleSinks, consoleWriter())
}

// fileWriter returns the log file, or nil when disabled. Caller holds mu.
func fileWriter() *os.File {
	return globalState.file
}

// consoleWriter returns stderr when console output is on. Caller holds mu.
func consoleWriter() *os.File {
	if !globalState.consoleOn {
		return nil
	}
	return os.Stderr
}

// sinkFor returns the cached charm logger for component in cache, creating
// it if needed. A nil writer caches and returns nil. Caller holds mu.
func sinkFor(component string, cache map[string]*log.Logger, w *os.File) *log.Logger {
	if sink, ok := cache[component]; ok {
		return sink
	}
	if w == nil {
		cache[component] = nil
		return nil
	}

	level := globalState.level
	timeFormat := time.RFC3339
	if w == os.Stderr {
		level = globalState.consoleLvl
		timeFormat = "15:04:05"
	} else if compLevel, ok := globalState.components[component]; ok {
		level = compLevel
	}

	sink := log.NewWithOptions(w, log.Options{
		Level:           level.toCharmLevel(),
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Prefix:          component,
	})
	cache[component] = sink
	return sink
}

// Close flushes and closes the log file.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if !globalState.initialized {
		return nil
	}
	if globalState.file != nil {
		if err := globalState.file.Close(); err != nil {
			return fmt.Errorf("closing log file: %w", err)
		}
		globalState.file = nil
	}
	globalState.initialized = false
	globalState.components = make(map[string]Level)
	globalState.fileSinks = make(map[string]*log.Logger)
	globalState.consoleSinks = make(map[string]*log.Logger)
	return nil
}

// DefaultLogPath returns the default log file path under the XDG state dir.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "fsum", "fsum.log")
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{Level: "info", Path: DefaultLogPath()}
}
