// Package standard implements the process based service control backend.
//
// Run state is tracked through a status lock that the service process holds
// for its whole lifetime. The controller never owns the service: it only
// probes the lock, spawns the executable and signals the PID recorded in the
// lock's metadata.
package standard

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/loykin/svcctl/internal/control"
	"github.com/loykin/svcctl/internal/lockfile"
	"github.com/loykin/svcctl/internal/process"
)

const (
	BackendStandard = "standard"
	BackendDebug    = "debug"

	lockName = "standard.lock"
)

// Options configures a Control.
type Options struct {
	// Debug launches the service with forwarded stdio.
	Debug bool
	// RuntimeDir overrides the base runtime directory.
	RuntimeDir string
	Logger     *slog.Logger
}

// Control is the standard/debug backend.
type Control struct {
	control.Base

	debug    bool
	lockPath string
	log      *slog.Logger
}

var _ control.ServiceControl = (*Control)(nil)

func New(serviceID string, opts Options) *Control {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Control{
		Base:  control.NewBase(serviceID),
		debug: opts.Debug,
	}
	c.lockPath = LockPath(opts.RuntimeDir, LockKey(serviceID))
	c.log = log.With("component", "control", "backend", c.Backend(), "service", serviceID)
	c.log.Debug("using lock file", "path", c.lockPath)
	return c
}

// LockPath returns the status lock path for a lock key.
func LockPath(runtimeBase, key string) string {
	return filepath.Join(lockfile.RuntimeDir(runtimeBase, key), lockName)
}

// LockKey names the runtime directory of a service. It only looks at the id
// string: the last path segment with its extension removed. Controllers and
// the service itself agree on the key whatever their working directory or
// the form (bare name, relative or absolute path) the id takes.
func LockKey(serviceID string) string {
	parts := strings.FieldsFunc(serviceID, func(r rune) bool { return r == '/' || r == '\\' })
	if len(parts) == 0 {
		return "_"
	}
	base := parts[len(parts)-1]
	if key := strings.TrimSuffix(base, filepath.Ext(base)); key != "" && key != "." {
		return key
	}
	if base == "." || base == ".." {
		return "_"
	}
	return base
}

func (c *Control) LockPath() string { return c.lockPath }

func (c *Control) Backend() string {
	if c.debug {
		return BackendDebug
	}
	return BackendStandard
}

func (c *Control) SupportFlags() control.SupportFlags {
	flags := control.SupportStatus | control.SupportStop
	if process.CanSpawn {
		flags |= control.SupportStart
	}
	return flags
}

func (c *Control) ServiceExists() bool {
	_, err := process.FindExecutable(c.ServiceID())
	return err == nil
}

// ServiceName derives a display name from the service id: the base name
// without extension when the id is an executable file, otherwise the last
// path segment. Display only; the lock location comes from LockKey.
func (c *Control) ServiceName() string { return ServiceName(c.ServiceID()) }

func ServiceName(serviceID string) string {
	if isExecutable(serviceID) {
		base := filepath.Base(serviceID)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	parts := strings.FieldsFunc(serviceID, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return serviceID
	}
	return parts[len(parts)-1]
}

func (c *Control) Blocking() control.BlockMode { return process.TerminateBlocking }

func (c *Control) statusLock() *lockfile.Lock { return lockfile.New(c.lockPath) }

// Status probes the status lock. A free lock means Stopped, a lock held by
// another process means Running. Any other failure yields Unknown.
func (c *Control) Status() (control.Status, error) {
	lock := c.statusLock()
	err := lock.TryLock()
	if err == nil {
		_ = lock.Unlock()
		return control.Stopped, nil
	}
	if errors.Is(err, lockfile.ErrLocked) {
		return control.Running, nil
	}
	return control.Unknown, c.Failf(control.ErrLockAccess, "failed to access lockfile with error: %v", err)
}

// Pid returns the PID published by the lock holder, or -1 if the lock is
// free or its metadata cannot be read.
func (c *Control) Pid() int {
	info, ok := c.holderInfo()
	if !ok {
		return -1
	}
	return info.PID
}

func (c *Control) holderInfo() (lockfile.Info, bool) {
	if st, _ := c.Status(); st != control.Running {
		return lockfile.Info{}, false
	}
	info, err := c.statusLock().ReadInfo()
	if err != nil {
		return lockfile.Info{}, false
	}
	return info, true
}

// Start launches the service unless it is already running.
func (c *Control) Start() error {
	if !process.CanSpawn {
		return c.Base.Start()
	}
	if st, _ := c.Status(); st == control.Running {
		c.log.Debug("service already running", "pid", c.Pid())
		return nil
	}

	bin, err := process.FindExecutable(c.ServiceID())
	if err != nil {
		return c.Fail(err)
	}

	spec := process.NewLaunchSpec(bin, c.Backend(), c.debug)
	if c.debug {
		c.log.Debug("launching service subprocess", "program", spec.Program, "args", spec.Args)
	} else {
		c.log.Debug("launching service detached", "program", spec.Program, "args", spec.Args)
	}
	pid, err := process.Spawn(spec)
	if err != nil {
		return c.Fail(err)
	}
	c.log.Debug("started service process", "pid", pid, "debug", c.debug)
	return nil
}

// Stop asks the running service to terminate. A stopped service is left
// alone.
func (c *Control) Stop() error {
	st, err := c.Status()
	if err == nil && st == control.Stopped {
		c.log.Debug("service already stopped")
		return nil
	}

	info, ok := c.holderInfo()
	if !ok {
		return c.Failf(control.ErrPidUnresolvable, "failed to get pid of running service")
	}
	if !process.SameProcess(info.PID, info.StartUnix) {
		return c.Failf(control.ErrPidUnresolvable, "pid %d no longer belongs to the service", info.PID)
	}

	c.log.Debug("stopping service", "pid", info.PID)
	if err := process.Terminate(info.PID, c.stopped); err != nil {
		return c.Fail(err)
	}
	return nil
}

func (c *Control) stopped() bool {
	st, _ := c.Status()
	return st == control.Stopped
}

// Generic command kinds understood by CallGenericCommand.
const (
	CmdGetPid         = control.CmdGetPid
	CmdGetProcessName = "getProcessName"
	CmdGetLockPath    = "getLockPath"
)

func (c *Control) CallGenericCommand(kind string, _ ...any) any {
	switch kind {
	case CmdGetPid:
		return int64(c.Pid())
	case CmdGetProcessName:
		return process.ProcessName(c.Pid())
	case CmdGetLockPath:
		return c.lockPath
	default:
		return nil
	}
}

func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		ext := strings.ToLower(filepath.Ext(path))
		return ext == ".exe" || ext == ".bat" || ext == ".cmd" || ext == ".com"
	}
	return fi.Mode().Perm()&0o111 != 0
}
