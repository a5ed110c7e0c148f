//go:build !unix && !windows

package process

import "os/exec"

func configureSysProcAttr(*exec.Cmd, bool) {}

func RootDir() string { return "/" }
