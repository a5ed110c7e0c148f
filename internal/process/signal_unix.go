//go:build unix

package process

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/loykin/svcctl/internal/control"
)

// TerminateBlocking reports how Terminate behaves: signal delivery is
// immediate.
const TerminateBlocking = control.NonBlocking

// Terminate sends SIGTERM to pid. Success means the signal was delivered, not
// that the process has exited. stopped is unused on this platform.
func Terminate(pid int, _ func() bool) error {
	if pid <= 0 {
		return fmt.Errorf("%w: invalid pid %d", control.ErrPidUnresolvable, pid)
	}
	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		return fmt.Errorf("%w: failed to send stop signal with error: %v", control.ErrSignalDelivery, err)
	}
	return nil
}
