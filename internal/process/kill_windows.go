//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup terminates the browser process tree with taskkill.
func KillProcessGroup(pid int) {
	// launcher.Kill still runs afterwards, so the error is not actionable.
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
