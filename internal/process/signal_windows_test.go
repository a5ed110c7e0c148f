//go:build windows

package process

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loykin/svcctl/internal/control"
)

func TestTerminate_WaitsForConsoleOwner(t *testing.T) {
	consoleMu.Lock()
	done := make(chan error, 1)
	go func() {
		// this process has no console to attach to once it has freed its own
		done <- Terminate(os.Getpid(), func() bool { return false })
	}()

	select {
	case err := <-done:
		consoleMu.Unlock()
		t.Fatalf("Terminate ran while the console was in use: %v", err)
	case <-time.After(200 * time.Millisecond):
	}
	consoleMu.Unlock()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, control.ErrConsoleAttach)
	case <-time.After(5 * time.Second):
		t.Fatal("Terminate did not proceed after the console was released")
	}
}

func TestTerminate_InvalidPid(t *testing.T) {
	assert.ErrorIs(t, Terminate(0, func() bool { return true }), control.ErrPidUnresolvable)
}
