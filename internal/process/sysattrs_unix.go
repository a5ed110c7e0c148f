//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr detaches the child into its own session so it is not
// tied to the controller's terminal or process group.
func configureSysProcAttr(cmd *exec.Cmd, detached bool) {
	if !detached {
		return
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

// RootDir returns the filesystem root.
func RootDir() string { return "/" }
