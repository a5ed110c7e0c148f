// Package process launches and terminates service processes.
package process

import (
	"os/exec"
	"slices"
)

// BackendFlag is the argument that tells a spawned service which backend
// launched it.
const BackendFlag = "--backend"

// LaunchSpec describes how a service executable is spawned.
type LaunchSpec struct {
	Program string   `json:"program"`
	Args    []string `json:"args"`
	WorkDir string   `json:"work_dir"`
	// Debug forwards stdio to the caller instead of detaching.
	Debug bool `json:"debug"`
}

// NewLaunchSpec builds the launch spec for bin launched by the given backend.
// The working directory is the filesystem root to avoid relative-path
// ambiguity in the service.
func NewLaunchSpec(bin, backend string, debug bool) LaunchSpec {
	return LaunchSpec{
		Program: bin,
		Args:    []string{BackendFlag, backend},
		WorkDir: RootDir(),
		Debug:   debug,
	}
}

// Command constructs the *exec.Cmd for s. Stdio and process attributes are
// applied by Spawn.
func (s LaunchSpec) Command() *exec.Cmd {
	// ok: program comes from a search-path lookup, not a shell string
	// #nosec G204
	cmd := exec.Command(s.Program, slices.Clone(s.Args)...)
	cmd.Dir = s.WorkDir
	return cmd
}
