//go:build !windows

package process

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// KillTree sends sig to a process and its descendants, best effort. The
// primary strategy signals the negated process group id, taking the whole
// group down at once; if the group lookup or group signal fails (the
// process was not a group leader), it falls back to signaling the single
// pid. Both failure paths are swallowed: the target may already be dead,
// which is not an error for this operation.
func KillTree(pid int, sig syscall.Signal) {
	if pid <= 0 {
		return
	}
	if pgid, err := unix.Getpgid(pid); err == nil && pgid > 0 {
		if unix.Kill(-pgid, sig) == nil {
			return
		}
	}
	_ = unix.Kill(pid, sig)
}
