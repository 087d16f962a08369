//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the subprocess in its own process group so the whole
// tree can be signalled on timeout or cancellation.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// setProcessGroupTerm makes context cancellation send SIGTERM to the group;
// cmd.WaitDelay escalates to a kill if the group ignores it.
func setProcessGroupTerm(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
}
