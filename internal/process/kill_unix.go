//go:build !windows

package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, taking the
// browser's renderer and GPU helpers down with it.
func KillProcessGroup(pid int) {
	// launcher.Kill still runs afterwards, so the error is not actionable.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
