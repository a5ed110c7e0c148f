package process

import (
	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// ProcessName returns the executable name of pid, or "" when it cannot be
// determined.
func ProcessName(pid int) string {
	if pid <= 0 {
		return ""
	}
	p, err := gopsproc.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, err := p.Name()
	if err != nil {
		return ""
	}
	return name
}

// SameProcess reports whether pid still refers to the process that was
// started at startUnix. Unknown start times are treated as a match.
func SameProcess(pid int, startUnix int64) bool {
	if startUnix <= 0 {
		return true
	}
	cur := StartUnix(pid)
	return cur <= 0 || cur == startUnix
}
