package process

import (
	"syscall"
	"time"

	"github.com/smazurov/procex/internal/logging"
)

// Defaults applied by Execute, ExecuteSync and the Pool when the
// corresponding Options field is zero.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultMaxOutput = 10 * 1024 * 1024 // combined stdout+stderr bytes

	// DefaultShell is the shell used when Options.Shell is set to "default".
	DefaultShell = "/bin/sh"
)

// Options configures a single process launch. The zero value is usable;
// absent fields take the documented defaults.
type Options struct {
	// Cwd is the working directory of the child. Empty means inherit.
	Cwd string

	// Env is overlaid on the inherited environment.
	Env map[string]string

	// Timeout is the maximum run duration, measured from launch. The
	// child is killed with KillSignal when it fires. Zero means
	// DefaultTimeout; negative disables the timeout.
	Timeout time.Duration

	// MaxOutput caps the combined stdout+stderr size returned by the
	// blocking entry points. Output beyond the cap is truncated, not an
	// error. Zero means DefaultMaxOutput.
	MaxOutput int64

	// Shell selects how the command string is interpreted by
	// SpawnCommand and the blocking entry points: empty splits it into
	// argv with no shell, "default" runs it through DefaultShell -c,
	// any other value is used as the shell binary itself.
	Shell string

	// UID and GID run the child under a different numeric identity.
	// Requires the usual OS privileges.
	UID *uint32
	GID *uint32

	// KillSignal is sent on timeout and by Kill(0). Zero means SIGTERM.
	KillSignal syscall.Signal

	// Detached starts the child in its own session, detaching it from
	// the caller's process group.
	Detached bool

	// Logger receives diagnostic events. Nil means the package logger.
	Logger logging.Logger
}

// withDefaults returns a copy with zero fields replaced by defaults.
func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Timeout == 0 {
		out.Timeout = DefaultTimeout
	}
	if out.MaxOutput == 0 {
		out.MaxOutput = DefaultMaxOutput
	}
	if out.KillSignal == 0 {
		out.KillSignal = syscall.SIGTERM
	}
	if out.Logger == nil {
		out.Logger = logging.GetLogger("process")
	}
	return out
}

// shellArgv maps a raw command string to the program and arguments to
// launch, honoring the shell-invocation mode.
func (o *Options) shellArgv(command string) (string, []string) {
	switch o.Shell {
	case "":
		return splitCommand(command)
	case "default":
		return DefaultShell, []string{"-c", command}
	default:
		return o.Shell, []string{"-c", command}
	}
}
