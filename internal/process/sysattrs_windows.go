//go:build windows

package process

import (
	"os"
	"os/exec"
	"syscall"
)

// Windows creation flags
const (
	CREATE_NO_WINDOW = 0x08000000
)

// configureSysProcAttr gives a detached child its own hidden console. A
// console is required: Terminate attaches to it to deliver CTRL_C. The child
// is deliberately not placed in a new process group, since that disables its
// CTRL_C handling.
func configureSysProcAttr(cmd *exec.Cmd, detached bool) {
	if !detached {
		return
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: CREATE_NO_WINDOW,
		HideWindow:    true,
	}
}

// RootDir returns the root of the system drive.
func RootDir() string {
	if d := os.Getenv("SystemDrive"); d != "" {
		return d + `\`
	}
	return `C:\`
}
