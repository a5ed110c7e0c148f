package control

import (
	"fmt"
	"sync"
)

// Base carries the service id and last error shared by all backends and
// supplies defaults for operations a backend does not support. Embed it and
// override what the backend implements.
type Base struct {
	id string

	mu      sync.Mutex
	lastErr error
}

func NewBase(serviceID string) Base { return Base{id: serviceID} }

func (b *Base) ServiceID() string { return b.id }

func (b *Base) ServiceName() string { return b.id }

// Fail records err as the last error and returns it.
func (b *Base) Fail(err error) error {
	b.mu.Lock()
	b.lastErr = err
	b.mu.Unlock()
	return err
}

// Failf wraps kind with a formatted message, records and returns it.
func (b *Base) Failf(kind error, format string, args ...any) error {
	return b.Fail(fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)))
}

// Err returns the last recorded error.
func (b *Base) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

func (b *Base) LastError() string {
	if err := b.Err(); err != nil {
		return err.Error()
	}
	return ""
}

func (b *Base) SupportFlags() SupportFlags { return 0 }

func (b *Base) ServiceExists() bool { return false }

func (b *Base) IsEnabled() bool {
	_ = b.unsupported("isEnabled")
	return false
}

func (b *Base) SetEnabled(bool) error { return b.unsupported("setEnabled") }

func (b *Base) Status() (Status, error) { return Unknown, b.unsupported("status") }

func (b *Base) Start() error { return b.unsupported("start") }

func (b *Base) Stop() error { return b.unsupported("stop") }

func (b *Base) Blocking() BlockMode { return Undetermined }

func (b *Base) CallGenericCommand(string, ...any) any { return nil }

func (b *Base) unsupported(op string) error {
	return b.Failf(ErrUnsupported, "%s is not supported by this backend", op)
}
