// Package svcctl controls background services without a supervisor.
//
// A control is obtained per backend and service id with Open. The standard
// and debug backends track run state through a lock file held by the service
// process; the android backend goes through the platform's service framework.
package svcctl

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/loykin/svcctl/internal/android"
	cfg "github.com/loykin/svcctl/internal/config"
	"github.com/loykin/svcctl/internal/control"
	"github.com/loykin/svcctl/internal/lockfile"
	"github.com/loykin/svcctl/internal/metrics"
	"github.com/loykin/svcctl/internal/server"
	"github.com/loykin/svcctl/internal/standard"
	svctls "github.com/loykin/svcctl/internal/tls"
)

// Re-export core types for external consumers.

type (
	ServiceControl = control.ServiceControl
	Status         = control.Status
	SupportFlags   = control.SupportFlags
	BlockMode      = control.BlockMode
	Config         = cfg.Config
	ServerConfig   = cfg.ServerConfig
	StatusLock     = lockfile.Lock

	AndroidPlatform   = android.Platform
	ServiceConnection = android.ServiceConnection
	Intent            = android.Intent
)

const (
	StatusUnknown = control.Unknown
	StatusStopped = control.Stopped
	StatusRunning = control.Running

	BackendStandard = standard.BackendStandard
	BackendDebug    = standard.BackendDebug
	BackendAndroid  = android.Backend

	// CmdGetPid asks a control for its service PID through CallGenericCommand.
	CmdGetPid = control.CmdGetPid
)

var (
	ErrUnknownBackend     = control.ErrUnknownBackend
	ErrExecutableNotFound = control.ErrExecutableNotFound
	ErrSpawnFailed        = control.ErrSpawnFailed
	ErrLockAccess         = control.ErrLockAccess
	ErrPidUnresolvable    = control.ErrPidUnresolvable
	ErrSignalDelivery     = control.ErrSignalDelivery
	ErrStopTimeout        = control.ErrStopTimeout
	ErrConsoleAttach      = control.ErrConsoleAttach
	ErrHandlerInstall     = control.ErrHandlerInstall
	ErrInterrupt          = control.ErrInterrupt
	ErrPlatformQuery      = control.ErrPlatformQuery
	ErrUnsupported        = control.ErrUnsupported
)

// Options configures controls created by Open.
type Options struct {
	RuntimeDir string
	// AndroidPackage is the application package for android ids without one.
	AndroidPackage string
	// AndroidPlatform overrides the shell based platform bridge.
	AndroidPlatform android.Platform
	Logger          *slog.Logger
}

// OptionsFromConfig maps loaded configuration onto Options.
func OptionsFromConfig(c *Config, log *slog.Logger) Options {
	return Options{
		RuntimeDir:     c.RuntimeDir,
		AndroidPackage: c.Android.Package,
		Logger:         log,
	}
}

func LoadConfig(path string) (*Config, error) { return cfg.Load(path) }

type factory func(serviceID string, opts Options) (control.ServiceControl, error)

var backends = map[string]factory{
	BackendStandard: func(id string, o Options) (control.ServiceControl, error) {
		return standard.New(id, standard.Options{RuntimeDir: o.RuntimeDir, Logger: o.Logger}), nil
	},
	BackendDebug: func(id string, o Options) (control.ServiceControl, error) {
		return standard.New(id, standard.Options{RuntimeDir: o.RuntimeDir, Logger: o.Logger, Debug: true}), nil
	},
	BackendAndroid: func(id string, o Options) (control.ServiceControl, error) {
		if o.AndroidPlatform == nil && runtime.GOOS != "android" {
			return nil, fmt.Errorf("%w: android backend needs a platform bridge on %s", control.ErrUnsupported, runtime.GOOS)
		}
		return android.New(id, android.Options{Package: o.AndroidPackage, Platform: o.AndroidPlatform, Logger: o.Logger})
	},
}

// Backends lists the backend ids usable on this platform.
func Backends() []string {
	out := []string{BackendDebug, BackendStandard}
	if runtime.GOOS == "android" {
		out = append(out, BackendAndroid)
	}
	sort.Strings(out)
	return out
}

// Open returns a control for serviceID on the given backend. Operations on
// the returned control are recorded in the package metrics.
func Open(backend, serviceID string, opts Options) (ServiceControl, error) {
	f, ok := backends[backend]
	if !ok {
		return nil, fmt.Errorf("%w: %q", control.ErrUnknownBackend, backend)
	}
	c, err := f(serviceID, opts)
	if err != nil {
		return nil, err
	}
	return &instrumented{ServiceControl: c}, nil
}

// Unwrap returns the backend implementation behind a control from Open.
func Unwrap(c ServiceControl) ServiceControl {
	if ic, ok := c.(interface{ Unwrap() ServiceControl }); ok {
		return ic.Unwrap()
	}
	return c
}

// Register is called inside a service process launched by the standard or
// debug backend. It takes the status lock and publishes the caller's PID.
// Keep the returned lock until shutdown, then Unlock it.
func Register(serviceID string, opts Options) (*StatusLock, error) {
	return standard.Register(serviceID, standard.Options{RuntimeDir: opts.RuntimeDir})
}

// ParseBackendArg extracts the backend id a service was launched with.
func ParseBackendArg(args []string) (string, bool) { return standard.ParseBackendArg(args) }

// NewHTTPServer starts the control API described by sc, over HTTPS when
// sc.TLS is enabled. Requests without a backend query parameter use
// defaultBackend.
func NewHTTPServer(sc ServerConfig, defaultBackend string, opts Options) (*http.Server, error) {
	tc, err := svctls.Setup(sc.TLS)
	if err != nil {
		return nil, err
	}
	open := func(backend, serviceID string) (control.ServiceControl, error) {
		return Open(backend, serviceID, opts)
	}
	return server.NewServer(sc.Listen, open, server.Options{
		BasePath:       sc.BasePath,
		DefaultBackend: defaultBackend,
		Backends:       Backends(),
		Logger:         opts.Logger,
		TLS:            tc,
	})
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

type instrumented struct {
	control.ServiceControl
}

func (c *instrumented) Unwrap() control.ServiceControl { return c.ServiceControl }

func (c *instrumented) observe(op string, start time.Time, err error) {
	metrics.ObserveOp(c.Backend(), op, err, time.Since(start))
}

func (c *instrumented) Status() (control.Status, error) {
	start := time.Now()
	st, err := c.ServiceControl.Status()
	c.observe("status", start, err)
	metrics.SetStatus(c.Backend(), c.ServiceName(), st.String())
	return st, err
}

func (c *instrumented) Start() error {
	start := time.Now()
	err := c.ServiceControl.Start()
	c.observe("start", start, err)
	return err
}

func (c *instrumented) Stop() error {
	start := time.Now()
	err := c.ServiceControl.Stop()
	c.observe("stop", start, err)
	return err
}

func (c *instrumented) SetEnabled(enabled bool) error {
	start := time.Now()
	err := c.ServiceControl.SetEnabled(enabled)
	c.observe("set_enabled", start, err)
	return err
}
