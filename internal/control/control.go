// Package control defines the contract every service control backend implements.
package control

import "strings"

// Status is the run state of a controlled service.
type Status int

const (
	Unknown Status = iota
	Stopped
	Running
)

func (s Status) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// SupportFlags describes which operations a backend supports.
type SupportFlags uint8

const (
	SupportStatus SupportFlags = 1 << iota
	SupportStart
	SupportStop
	SupportSetEnabled
)

// Has reports whether all bits of f are set.
func (s SupportFlags) Has(f SupportFlags) bool { return s&f == f }

func (s SupportFlags) String() string {
	if s == 0 {
		return "none"
	}
	names := []struct {
		f SupportFlags
		n string
	}{
		{SupportStatus, "status"},
		{SupportStart, "start"},
		{SupportStop, "stop"},
		{SupportSetEnabled, "enable"},
	}
	parts := make([]string, 0, len(names))
	for _, e := range names {
		if s.Has(e.f) {
			parts = append(parts, e.n)
		}
	}
	return strings.Join(parts, "|")
}

// BlockMode tells callers whether control calls may block.
type BlockMode int

const (
	Undetermined BlockMode = iota
	Blocking
	NonBlocking
)

func (b BlockMode) String() string {
	switch b {
	case Blocking:
		return "blocking"
	case NonBlocking:
		return "non-blocking"
	default:
		return "undetermined"
	}
}

// ServiceControl queries and manipulates the run state of one service.
// Calls are synchronous; callers serialize calls on a single instance.
type ServiceControl interface {
	// Backend returns the backend identifier, e.g. "standard".
	Backend() string
	// ServiceID returns the identity the control was created for.
	ServiceID() string
	// ServiceName returns a display name derived from the service id.
	ServiceName() string
	SupportFlags() SupportFlags
	ServiceExists() bool
	IsEnabled() bool
	SetEnabled(enabled bool) error
	Status() (Status, error)
	Start() error
	Stop() error
	Blocking() BlockMode
	// CallGenericCommand runs a backend specific query. Unknown kinds return nil.
	CallGenericCommand(kind string, args ...any) any
	// LastError returns the message of the most recent failure, or "".
	LastError() string
}

// CmdGetPid is the generic command kind backends with a process id answer
// with an int64 (-1 when not running).
const CmdGetPid = "getPid"
