package standard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/loykin/svcctl/internal/control"
)

// fallback poll for filesystems without change notification
const waitPollInterval = 250 * time.Millisecond

// WaitRunning blocks until the service reports Running or ctx is done.
// It watches the runtime directory for lock file writes and re-probes on
// every event.
func (c *Control) WaitRunning(ctx context.Context) error {
	dir := filepath.Dir(c.lockPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create runtime dir: %w", err)
	}

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	w, err := fsnotify.NewWatcher()
	if err == nil {
		defer func() { _ = w.Close() }()
		if err := w.Add(dir); err == nil {
			events, errs = w.Events, w.Errors
		} else {
			c.log.Debug("watch runtime dir failed, polling", "error", err)
		}
	}

	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()
	for {
		if st, _ := c.Status(); st == control.Running {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for %s: %w", c.ServiceName(), ctx.Err())
		case <-events:
		case <-errs:
		case <-ticker.C:
		}
	}
}
