package standard

import (
	"fmt"
	"os"
	"strings"

	"github.com/loykin/svcctl/internal/lockfile"
	"github.com/loykin/svcctl/internal/process"
)

// Register is called by the service process after startup. It takes the
// status lock for serviceID and publishes the caller's PID. The lock must be
// held until the service exits; the OS releases it if the process dies.
func Register(serviceID string, opts Options) (*lockfile.Lock, error) {
	name := LockKey(serviceID)
	path := LockPath(opts.RuntimeDir, name)
	host, _ := os.Hostname()
	pid := os.Getpid()
	lock, err := lockfile.Acquire(path, lockfile.Info{
		PID:       pid,
		AppID:     name,
		Hostname:  host,
		StartUnix: process.StartUnix(pid),
	})
	if err != nil {
		return nil, fmt.Errorf("register service %s: %w", name, err)
	}
	return lock, nil
}

// ParseBackendArg returns the value of the --backend argument passed to a
// spawned service.
func ParseBackendArg(args []string) (string, bool) {
	for i, a := range args {
		if a == process.BackendFlag && i+1 < len(args) {
			return args[i+1], true
		}
		if v, ok := strings.CutPrefix(a, process.BackendFlag+"="); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
