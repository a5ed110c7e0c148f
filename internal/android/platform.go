// Package android implements service control through Android's service
// framework. There are no PIDs or signals here: a service is started through
// an explicit intent, stopped through the activity manager or by unbinding,
// and enabled or disabled through the package manager.
package android

// ServiceInfo is what the package manager reports for a resolved service.
type ServiceInfo struct {
	Component  Component `json:"component"`
	Enabled    bool      `json:"enabled"`
	Exported   bool      `json:"exported"`
	Foreground bool      `json:"foreground"`
	Process    string    `json:"process,omitempty"`
}

// Intent is an explicit intent targeting one component.
type Intent struct {
	Component Component         `json:"component"`
	Action    string            `json:"action,omitempty"`
	Extras    map[string]string `json:"extras,omitempty"`
}

func NewIntent(c Component) Intent { return Intent{Component: c} }

// BindFlags mirror Context.BIND_* values.
type BindFlags int

const (
	BindAutoCreate    BindFlags = 0x0001
	BindDebugUnbind   BindFlags = 0x0002
	BindNotForeground BindFlags = 0x0004
	BindAboveClient   BindFlags = 0x0008
	BindImportant     BindFlags = 0x0040
)

// ServiceConnection receives binding callbacks from the platform.
type ServiceConnection interface {
	OnServiceConnected(c Component, binder any)
	OnServiceDisconnected(c Component)
}

// Platform is the bridge to the Android framework.
type Platform interface {
	// ResolveService queries the package manager. It fails when no
	// component matches.
	ResolveService(c Component) (ServiceInfo, error)
	SetComponentEnabled(c Component, enabled bool) error
	StartService(in Intent, foreground bool) error
	StopService(in Intent) error
	BindService(in Intent, conn ServiceConnection, flags BindFlags) (bool, error)
	UnbindService(conn ServiceConnection) error
	ServiceRunning(c Component) (bool, error)
}
