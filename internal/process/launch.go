package process

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/loykin/svcctl/internal/control"
)

// FindExecutable resolves a service id to an executable using the standard
// search path. Ids containing a path separator are checked directly.
func FindExecutable(serviceID string) (string, error) {
	if serviceID == "" {
		return "", fmt.Errorf("%w: empty service id", control.ErrExecutableNotFound)
	}
	bin, err := exec.LookPath(serviceID)
	if err != nil {
		return "", fmt.Errorf("%w: unable to find executable for service with id %q", control.ErrExecutableNotFound, serviceID)
	}
	return bin, nil
}

// Spawn starts the process described by s and returns its PID. A single
// attempt is made.
//
// Debug mode forwards the caller's stdio and keeps the child in the caller's
// session; the handle is only held until the child has started and is then
// reaped in the background. Otherwise the child is fully detached with all
// three standard streams on the null device.
func Spawn(s LaunchSpec) (int, error) {
	if !CanSpawn {
		return 0, fmt.Errorf("%w: process spawning is not available on this platform", control.ErrUnsupported)
	}
	cmd := s.Command()
	if s.Debug {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
		if err != nil {
			return 0, spawnError(err)
		}
		defer func() { _ = null.Close() }()
		cmd.Stdin = null
		cmd.Stdout = null
		cmd.Stderr = null
		configureSysProcAttr(cmd, true)
	}
	if err := cmd.Start(); err != nil {
		return 0, spawnError(err)
	}
	pid := cmd.Process.Pid
	// the controller may outlive the child (serve mode); never leave zombies
	go func() { _ = cmd.Wait() }()
	return pid, nil
}

func spawnError(err error) error {
	return fmt.Errorf("%w: failed to start service process with error: %v", control.ErrSpawnFailed, err)
}
