package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func watcherTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatcherNotifiesOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	w := NewWatcher(path, func(p string) (string, error) {
		data, err := os.ReadFile(p)
		return string(data), err
	}, watcherTestLogger())
	w.SetDebounce(50 * time.Millisecond)

	reloaded := make(chan string, 1)
	w.OnReload(func(cfg string) {
		select {
		case reloaded <- cfg:
		default:
		}
	})

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg != "[logging]\nlevel = \"debug\"\n" {
			t.Errorf("handler got stale config: %q", cfg)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for reload notification")
	}
}

func TestWatcherUnsubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("a = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	w := NewWatcher(path, func(p string) (int, error) { return 1, nil }, watcherTestLogger())
	w.SetDebounce(20 * time.Millisecond)

	calls := make(chan struct{}, 4)
	unsub := w.OnReload(func(int) { calls <- struct{}{} })
	unsub()

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("a = 2\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case <-calls:
		t.Error("unsubscribed handler was notified")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherMissingFile(t *testing.T) {
	w := NewWatcher("/nonexistent/config.toml", func(string) (int, error) { return 0, nil }, watcherTestLogger())
	if err := w.Start(); err == nil {
		w.Stop()
		t.Error("expected error watching a missing file")
	}
}
