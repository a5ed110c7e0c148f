package process

import (
	"fmt"
	"time"

	"github.com/loykin/svcctl/internal/control"
)

const (
	stopAttempts     = 10
	stopPollInterval = 500 * time.Millisecond
)

// interruptUntilStopped raises the stop event up to attempts times and checks
// stopped after each one, sleeping interval in between. A failed raise ends
// the sequence with ErrInterrupt; running out of attempts yields
// ErrStopTimeout.
func interruptUntilStopped(raise func() error, stopped func() bool, attempts int, interval time.Duration) error {
	for i := 0; i < attempts; i++ {
		if err := raise(); err != nil {
			return fmt.Errorf("%w: failed to send stop signal with error: %v", control.ErrInterrupt, err)
		}
		if stopped() {
			return nil
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("%w: service did not stop yet", control.ErrStopTimeout)
}
