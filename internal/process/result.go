package process

import (
	"errors"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Result is the normalized outcome of a completed or failed launch.
// Exactly one of ExitCode and Signal is set: a process either exits with
// a code or is terminated by a signal, never both.
type Result struct {
	// ExitCode is the normal exit status, nil if the process was
	// terminated by a signal before exiting.
	ExitCode *int

	// Signal is the terminating signal name (e.g. "SIGTERM"), empty if
	// the process exited normally.
	Signal string

	// Stdout and Stderr hold the accumulated output bytes.
	Stdout []byte
	Stderr []byte

	// Duration is the wall-clock time from launch to termination.
	Duration time.Duration

	// Killed reports that termination was requested via Kill, including
	// the timeout path.
	Killed bool

	// TimedOut reports that the configured timeout caused the kill.
	TimedOut bool
}

// Code returns the exit code, or fallback when the process was
// signal-terminated.
func (r *Result) Code(fallback int) int {
	if r.ExitCode != nil {
		return *r.ExitCode
	}
	return fallback
}

// Ok reports a normal zero exit.
func (r *Result) Ok() bool {
	return r.ExitCode != nil && *r.ExitCode == 0
}

// classifyExit fills ExitCode or Signal from a cmd.Wait error. Errors
// that are not exit statuses (lost child, I/O failure) are normalized to
// exit code 1 with the error text appended to stderr.
func (r *Result) classifyExit(waitErr error) {
	if waitErr == nil {
		code := 0
		r.ExitCode = &code
		return
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			r.Signal = unix.SignalName(ws.Signal())
			return
		}
		code := exitErr.ExitCode()
		r.ExitCode = &code
		return
	}

	code := 1
	r.ExitCode = &code
	r.Stderr = appendLine(r.Stderr, waitErr.Error())
}

// truncateTo caps the combined output size. Stdout has priority; stderr
// keeps whatever budget remains.
func (r *Result) truncateTo(maxOutput int64) {
	if maxOutput <= 0 {
		return
	}
	if int64(len(r.Stdout)) > maxOutput {
		r.Stdout = r.Stdout[:maxOutput]
	}
	remaining := maxOutput - int64(len(r.Stdout))
	if int64(len(r.Stderr)) > remaining {
		r.Stderr = r.Stderr[:remaining]
	}
}

// appendLine appends text to buf, inserting a newline separator when buf
// has content that does not already end with one.
func appendLine(buf []byte, text string) []byte {
	if len(buf) > 0 && buf[len(buf)-1] != '\n' {
		buf = append(buf, '\n')
	}
	return append(buf, text...)
}
