//go:build !unix && !windows

package process

import (
	"fmt"

	"github.com/loykin/svcctl/internal/control"
)

const TerminateBlocking = control.Undetermined

func Terminate(int, func() bool) error {
	return fmt.Errorf("%w: process termination is not available on this platform", control.ErrUnsupported)
}
