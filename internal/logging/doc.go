// Package logging provides structured logging built on log/slog.
//
// Loggers are created per module via GetLogger and carry a "module"
// attribute. Each logger writes to a handler chain: stdout (text or
// json), the systemd journal when the process runs under systemd, and an
// in-memory ring buffer of recent entries that callers can dump on
// failure.
//
// Levels are held in slog.LevelVars so Initialize (or SetLevel at
// runtime) can change them without recreating loggers. Per-module level
// overrides come from Config.Modules.
package logging
