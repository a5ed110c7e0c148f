package control

import "errors"

var (
	ErrExecutableNotFound = errors.New("executable not found")
	ErrSpawnFailed        = errors.New("spawn failed")
	ErrLockAccess         = errors.New("lock access error")
	ErrPidUnresolvable    = errors.New("pid unresolvable")
	ErrSignalDelivery     = errors.New("signal delivery failed")
	ErrConsoleAttach      = errors.New("console attach failed")
	ErrHandlerInstall     = errors.New("console handler install failed")
	ErrInterrupt          = errors.New("interrupt event failed")
	ErrStopTimeout        = errors.New("stop timeout")
	ErrPlatformQuery      = errors.New("platform service query failed")
	ErrUnsupported        = errors.New("operation not supported")
	ErrUnknownBackend     = errors.New("unknown backend")
)
