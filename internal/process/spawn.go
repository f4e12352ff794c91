package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/smazurov/procex/internal/cmdline"
)

// ErrEmptyCommand is returned when a command string or program name
// resolves to nothing to launch. This is a caller programming error, the
// only launch-path condition surfaced as an immediate fault.
var ErrEmptyCommand = errors.New("empty command")

// splitCommand is the launcher's view of the command line splitter.
func splitCommand(command string) (string, []string) {
	return cmdline.Split(command)
}

// SpawnCommand splits or shells the command string per the options and
// launches it. See Spawn.
func SpawnCommand(command string, opts *Options, handler OutputHandler) (*Handle, error) {
	o := opts.withDefaults()
	program, args := o.shellArgv(command)
	if program == "" {
		return nil, ErrEmptyCommand
	}
	return spawn(program, args, o, handler)
}

// Spawn launches a process with captured I/O and returns its Handle.
// Output chunks are delivered to handler as they arrive. If a timeout is
// configured, a timer marks the eventual result timed-out and kills the
// child with the configured signal.
//
// Launch failures (binary not found, permission denied) do not return an
// error: they produce a Handle whose Wait resolves immediately with exit
// code 1 and the failure text in stderr, so callers have one shape to
// inspect. Only an empty program is an immediate fault.
func Spawn(program string, args []string, opts *Options, handler OutputHandler) (*Handle, error) {
	if program == "" {
		return nil, ErrEmptyCommand
	}
	return spawn(program, args, opts.withDefaults(), handler)
}

func spawn(program string, args []string, o Options, handler OutputHandler) (*Handle, error) {
	cmd := newCommand(program, args, &o)

	h := &Handle{
		cmd:     cmd,
		opts:    o,
		logger:  o.Logger,
		handler: handler,
		done:    make(chan struct{}),
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return failedHandle(h, fmt.Errorf("stdin pipe: %w", err)), nil
	}
	h.stdin = stdin
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return failedHandle(h, fmt.Errorf("stdout pipe: %w", err)), nil
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdout.Close()
		return failedHandle(h, fmt.Errorf("stderr pipe: %w", err)), nil
	}

	h.started = time.Now()
	if err := cmd.Start(); err != nil {
		o.Logger.Error("Failed to start process", "program", program, "error", err)
		return failedHandle(h, err), nil
	}

	h.pid = cmd.Process.Pid
	o.Logger.Debug("Process started", "pid", h.pid, "program", program)

	if o.Timeout > 0 {
		h.timer = time.AfterFunc(o.Timeout, func() {
			o.Logger.Warn("Process timed out", "pid", h.pid, "timeout", o.Timeout)
			h.markTimedOut()
			h.Kill(0)
		})
	}

	// One reader per stream; the monitor waits for both before Wait so
	// no output chunk can arrive after the terminal notification.
	outputDone := make(chan struct{}, 2)
	go func() {
		h.consume(stdout, "stdout")
		outputDone <- struct{}{}
	}()
	go func() {
		h.consume(stderr, "stderr")
		outputDone <- struct{}{}
	}()

	go func() {
		<-outputDone
		<-outputDone
		h.finish(cmd.Wait())
	}()

	return h, nil
}

// consume reads a stream in chunks until EOF, feeding the accumulators
// and the streaming handler.
func (h *Handle) consume(r io.Reader, source string) {
	buf := make([]byte, 8192)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.appendOutput(source, buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// failedHandle completes a Handle without a live process: exit code 1,
// error text in stderr. Wait resolves immediately. Any pipe end created
// before the failure is released, since cmd.Start never ran its cleanup.
func failedHandle(h *Handle, err error) *Handle {
	if h.stdin != nil {
		_ = h.stdin.Close()
		h.stdin = nil
	}
	h.mu.Lock()
	h.finished = true
	h.mu.Unlock()
	code := 1
	h.result = &Result{
		ExitCode: &code,
		Stderr:   appendLine(nil, err.Error()),
	}
	close(h.done)
	return h
}

// newCommand builds an exec.Cmd with the working directory, merged
// environment, and launch attributes from the options.
func newCommand(program string, args []string, o *Options) *exec.Cmd {
	cmd := exec.Command(program, args...)
	cmd.Dir = o.Cwd
	cmd.Env = mergedEnv(o.Env)
	cmd.SysProcAttr = sysProcAttr(o)
	return cmd
}

// mergedEnv overlays the caller's variables on the inherited environment.
// Later duplicates win in os/exec.
func mergedEnv(overlay map[string]string) []string {
	if len(overlay) == 0 {
		return nil // inherit as-is
	}
	env := os.Environ()
	for k, v := range overlay {
		env = append(env, k+"="+v)
	}
	return env
}

// sysProcAttr builds the launch attributes: the child always gets its own
// process group so the whole tree can be signaled; Detached upgrades that
// to a new session. UID/GID switch the child's credentials.
func sysProcAttr(o *Options) *syscall.SysProcAttr {
	attr := &syscall.SysProcAttr{}
	if o.Detached {
		attr.Setsid = true
	} else {
		attr.Setpgid = true
	}
	if o.UID != nil || o.GID != nil {
		cred := &syscall.Credential{
			Uid: uint32(os.Getuid()),
			Gid: uint32(os.Getgid()),
		}
		if o.UID != nil {
			cred.Uid = *o.UID
		}
		if o.GID != nil {
			cred.Gid = *o.GID
		}
		attr.Credential = cred
	}
	return attr
}
