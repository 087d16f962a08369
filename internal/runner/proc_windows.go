//go:build windows

package runner

import "os/exec"

// Process groups are a POSIX notion; on Windows the exec package's default
// kill-on-cancel behavior is the best available.
func setProcessGroup(cmd *exec.Cmd)     {}
func setProcessGroupTerm(cmd *exec.Cmd) {}
