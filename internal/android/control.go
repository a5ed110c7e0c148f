package android

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/loykin/svcctl/internal/control"
)

const Backend = "android"

// Generic command kinds understood by CallGenericCommand.
const (
	CmdBind            = "bind"
	CmdUnbind          = "unbind"
	CmdStartWithIntent = "startWithIntent"
)

type Options struct {
	// Package is the application package used for ids without one.
	Package  string
	Platform Platform
	Logger   *slog.Logger
}

// Control is the Android bound-service backend.
type Control struct {
	control.Base

	component Component
	platform  Platform
	log       *slog.Logger
	bound     []ServiceConnection
}

var _ control.ServiceControl = (*Control)(nil)

func New(serviceID string, opts Options) (*Control, error) {
	comp, err := ParseComponent(serviceID, opts.Package)
	if err != nil {
		return nil, err
	}
	p := opts.Platform
	if p == nil {
		p = NewShellPlatform()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Control{
		Base:      control.NewBase(serviceID),
		component: comp,
		platform:  p,
		log:       log.With("component", "control", "backend", Backend, "service", comp.ShortString()),
	}, nil
}

func (c *Control) Component() Component { return c.component }

func (c *Control) Backend() string { return Backend }

func (c *Control) ServiceName() string { return c.component.SimpleName() }

func (c *Control) SupportFlags() control.SupportFlags {
	return control.SupportStatus | control.SupportStart | control.SupportStop | control.SupportSetEnabled
}

func (c *Control) Blocking() control.BlockMode { return control.NonBlocking }

func (c *Control) serviceInfo() (ServiceInfo, error) {
	info, err := c.platform.ResolveService(c.component)
	if err != nil {
		return ServiceInfo{}, c.platformErr("resolve service", err)
	}
	return info, nil
}

func (c *Control) ServiceExists() bool {
	_, err := c.serviceInfo()
	return err == nil
}

func (c *Control) IsEnabled() bool {
	info, err := c.serviceInfo()
	return err == nil && info.Enabled
}

func (c *Control) SetEnabled(enabled bool) error {
	if err := c.platform.SetComponentEnabled(c.component, enabled); err != nil {
		return c.platformErr("set enabled state", err)
	}
	c.log.Debug("changed component state", "enabled", enabled)
	return nil
}

func (c *Control) Status() (control.Status, error) {
	running, err := c.platform.ServiceRunning(c.component)
	if err != nil {
		return control.Unknown, c.platformErr("query service state", err)
	}
	if running {
		return control.Running, nil
	}
	return control.Stopped, nil
}

// Start sends an explicit intent for the component, as a foreground start
// when the resolved service declares it.
func (c *Control) Start() error {
	info, err := c.serviceInfo()
	if err != nil {
		return err
	}
	return c.startWithIntent(NewIntent(c.component), info.Foreground)
}

// Stop releases every connection bound through this control and asks the
// platform to stop the service.
func (c *Control) Stop() error {
	for len(c.bound) > 0 {
		if err := c.unbind(c.bound[0]); err != nil {
			return err
		}
	}
	if err := c.platform.StopService(NewIntent(c.component)); err != nil {
		return c.platformErr("stop service", err)
	}
	c.log.Debug("requested service stop")
	return nil
}

func (c *Control) CallGenericCommand(kind string, args ...any) any {
	switch kind {
	case CmdBind:
		conn, ok := argAt[ServiceConnection](args, 0)
		if !ok {
			_ = c.Failf(control.ErrPlatformQuery, "bind expects a service connection")
			return false
		}
		flags, ok := argAt[BindFlags](args, 1)
		if !ok {
			flags = BindAutoCreate
		}
		return c.bind(conn, flags)
	case CmdUnbind:
		if conn, ok := argAt[ServiceConnection](args, 0); ok {
			_ = c.unbind(conn)
		}
		return nil
	case CmdStartWithIntent:
		in, ok := argAt[Intent](args, 0)
		if !ok {
			in = NewIntent(c.component)
		}
		return c.startWithIntent(in, false) == nil
	default:
		return nil
	}
}

func (c *Control) bind(conn ServiceConnection, flags BindFlags) bool {
	ok, err := c.platform.BindService(NewIntent(c.component), conn, flags)
	if err != nil {
		_ = c.platformErr("bind service", err)
		return false
	}
	if ok {
		c.bound = append(c.bound, conn)
	}
	return ok
}

func (c *Control) unbind(conn ServiceConnection) error {
	for i, b := range c.bound {
		if b == conn {
			c.bound = append(c.bound[:i], c.bound[i+1:]...)
			break
		}
	}
	if err := c.platform.UnbindService(conn); err != nil {
		return c.platformErr("unbind service", err)
	}
	return nil
}

func (c *Control) startWithIntent(in Intent, foreground bool) error {
	if err := c.platform.StartService(in, foreground); err != nil {
		return c.platformErr("start service", err)
	}
	c.log.Debug("requested service start", "foreground", foreground, "action", in.Action)
	return nil
}

func (c *Control) platformErr(op string, err error) error {
	return c.Fail(fmt.Errorf("%w: %s %s: %v", control.ErrPlatformQuery, op, c.component.ShortString(), err))
}

func argAt[T any](args []any, i int) (T, bool) {
	var zero T
	if i >= len(args) {
		return zero, false
	}
	v, ok := args[i].(T)
	return v, ok
}
