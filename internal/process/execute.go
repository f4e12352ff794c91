package process

import (
	"bytes"
	"sync"
	"time"
)

// Execute runs a command to completion and returns its normalized
// Result. The command string is split (or handed to a shell) per the
// options; output beyond Options.MaxOutput is truncated, not an error.
// Launch failures land in the Result with exit code 1; the returned
// error is non-nil only for an empty command.
func Execute(command string, opts *Options) (*Result, error) {
	o := opts.withDefaults()
	h, err := SpawnCommand(command, &o, nil)
	if err != nil {
		return nil, err
	}
	res := h.Wait()
	res.truncateTo(o.MaxOutput)
	return res, nil
}

// ExecuteSync is behaviorally equivalent to Execute but runs the child
// over plain buffer writers with no streaming machinery, for simple
// callers that need a single deterministic outcome. Process failure of
// any kind still yields a well-formed Result.
func ExecuteSync(command string, opts *Options) (*Result, error) {
	o := opts.withDefaults()
	program, args := o.shellArgv(command)
	if program == "" {
		return nil, ErrEmptyCommand
	}

	cmd := newCommand(program, args, &o)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := &Result{}
	started := time.Now()
	if err := cmd.Start(); err != nil {
		o.Logger.Error("Failed to start process", "program", program, "error", err)
		res.classifyExit(err)
		return res, nil
	}

	var mu sync.Mutex
	timedOut := false
	var timer *time.Timer
	if o.Timeout > 0 {
		pid := cmd.Process.Pid
		timer = time.AfterFunc(o.Timeout, func() {
			o.Logger.Warn("Process timed out", "pid", pid, "timeout", o.Timeout)
			mu.Lock()
			timedOut = true
			mu.Unlock()
			KillTree(pid, o.KillSignal)
		})
	}

	waitErr := cmd.Wait()
	if timer != nil {
		timer.Stop()
	}

	mu.Lock()
	res.TimedOut = timedOut
	res.Killed = timedOut
	mu.Unlock()

	res.Stdout = stdout.Bytes()
	res.Stderr = stderr.Bytes()
	res.Duration = time.Since(started)
	res.classifyExit(waitErr)
	res.truncateTo(o.MaxOutput)
	return res, nil
}
