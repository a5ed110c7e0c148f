//go:build !(darwin || dragonfly || freebsd || linux || netbsd || openbsd || windows)

package lockfile

import (
	"errors"
	"os"
)

var errNoLocking = errors.New("file locking is not available on this platform")

func lockFile(*os.File) error   { return errNoLocking }
func unlockFile(*os.File) error { return errNoLocking }
