package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

const historySize = 500

// Logger is a duck-typed interface satisfied by *slog.Logger.
// Subsystems accept this instead of the concrete type so tests and
// embedders can supply their own sink.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

var (
	mu              sync.RWMutex
	globalConfig    Config
	initialized     bool
	moduleLoggers   = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	globalLevelVar  = &slog.LevelVar{}
	history         *RingBuffer
)

// Initialize sets up the logging system. Existing module loggers are
// recreated so that their levels and handler chains reflect the new config.
func Initialize(config Config) {
	mu.Lock()
	defer mu.Unlock()

	globalConfig = config
	initialized = true
	history = NewRingBuffer(historySize)

	globalLevel := levelOrDefault(config.Level, slog.LevelInfo)
	globalLevelVar.Set(globalLevel)

	for module, levelVar := range moduleLevelVars {
		moduleLevel := globalLevel
		if levelStr, ok := config.Modules[module]; ok {
			moduleLevel = levelOrDefault(levelStr, moduleLevel)
		}
		levelVar.Set(moduleLevel)
		moduleLoggers[module] = slog.New(newHandler(config.Format, levelVar)).With("module", module)
	}

	slog.SetDefault(slog.New(newHandler(config.Format, globalLevelVar)))
}

// SetLevel changes the global log level at runtime. Module-specific
// overrides from Initialize keep their own levels.
func SetLevel(level string) {
	if parsed := parseLevel(level); parsed != nil {
		globalLevelVar.Set(*parsed)
	}
}

// History returns the ring buffer of recent log entries, or nil before
// Initialize has been called.
func History() *RingBuffer {
	mu.RLock()
	defer mu.RUnlock()
	return history
}

// GetLogger returns a logger for the specified module, creating it if needed.
func GetLogger(module string) *slog.Logger {
	mu.RLock()
	if logger, ok := moduleLoggers[module]; ok {
		mu.RUnlock()
		return logger
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	if logger, ok := moduleLoggers[module]; ok {
		return logger
	}

	levelVar := &slog.LevelVar{}
	format := "text"
	moduleLevel := slog.LevelInfo
	if initialized {
		format = globalConfig.Format
		moduleLevel = levelOrDefault(globalConfig.Level, slog.LevelInfo)
		if levelStr, ok := globalConfig.Modules[module]; ok {
			moduleLevel = levelOrDefault(levelStr, moduleLevel)
		}
	}
	levelVar.Set(moduleLevel)

	logger := slog.New(newHandler(format, levelVar)).With("module", module)
	moduleLoggers[module] = logger
	moduleLevelVars[module] = levelVar
	return logger
}

// newHandler builds the handler chain: stdout (text or json), systemd
// journal when available, and the in-memory history buffer.
func newHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var stdoutHandler slog.Handler
	if format == "json" {
		stdoutHandler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		stdoutHandler = slog.NewTextHandler(os.Stdout, opts)
	}

	handlers := []slog.Handler{stdoutHandler}
	if IsJournalAvailable() {
		handlers = append(handlers, NewJournalHandler(level))
	}
	handlers = append(handlers, NewBufferHandler(level))

	if len(handlers) == 1 {
		return handlers[0]
	}
	return NewMultiHandler(handlers...)
}

// levelOrDefault parses a level string, returning fallback on failure.
func levelOrDefault(level string, fallback slog.Level) slog.Level {
	if parsed := parseLevel(level); parsed != nil {
		return *parsed
	}
	return fallback
}

// parseLevel converts a string level to slog.Level, nil if unrecognized.
func parseLevel(level string) *slog.Level {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil
	}
	return &l
}
