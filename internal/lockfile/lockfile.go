// Package lockfile implements an exclusive, advisory, non-blocking file lock
// whose holder publishes a small metadata record inside the file.
//
// Locks never go stale. Only the OS (when the holder exits and its descriptor
// is closed) or an explicit Unlock releases them.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrLocked is returned by TryLock when another holder owns the lock.
var ErrLocked = errors.New("lock held by another process")

// Info is the metadata record written by the lock holder.
type Info struct {
	PID       int
	AppID     string
	Hostname  string
	StartUnix int64 // holder process creation time, 0 when unknown
}

// Lock is a single lock file. It is not safe for concurrent use.
type Lock struct {
	path  string
	f     *os.File
	wrote bool
}

func New(path string) *Lock { return &Lock{path: path} }

func (l *Lock) Path() string { return l.path }

// Held reports whether this Lock currently owns the file lock.
func (l *Lock) Held() bool { return l.f != nil }

// TryLock attempts to take the lock without waiting.
func (l *Lock) TryLock() error {
	if l.f != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Clean(l.path), os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return err
	}
	l.f = f
	return nil
}

// WriteInfo replaces the metadata record. The lock must be held.
func (l *Lock) WriteInfo(info Info) error {
	if l.f == nil {
		return errors.New("lock not held")
	}
	if err := l.f.Truncate(0); err != nil {
		return fmt.Errorf("truncate lock file: %w", err)
	}
	if _, err := l.f.WriteAt([]byte(info.encode()), 0); err != nil {
		return fmt.Errorf("write lock info: %w", err)
	}
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("sync lock file: %w", err)
	}
	l.wrote = true
	return nil
}

// Unlock releases the lock. Metadata written through this Lock is cleared
// first so readers never see a released holder's PID.
func (l *Lock) Unlock() error {
	if l.f == nil {
		return nil
	}
	f := l.f
	l.f = nil
	if l.wrote {
		_ = f.Truncate(0)
		l.wrote = false
	}
	uerr := unlockFile(f)
	cerr := f.Close()
	if uerr != nil {
		return uerr
	}
	return cerr
}

// ReadInfo reads the metadata record without acquiring the lock.
func (l *Lock) ReadInfo() (Info, error) {
	b, err := os.ReadFile(filepath.Clean(l.path))
	if err != nil {
		return Info{}, err
	}
	return parseInfo(string(b))
}

// Acquire takes the lock at path and publishes info. It is called by the
// service process itself.
func Acquire(path string, info Info) (*Lock, error) {
	l := New(path)
	if err := l.TryLock(); err != nil {
		return nil, err
	}
	if err := l.WriteInfo(info); err != nil {
		_ = l.Unlock()
		return nil, err
	}
	return l, nil
}

func (i Info) encode() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(i.PID))
	sb.WriteByte('\n')
	sb.WriteString(i.AppID)
	sb.WriteByte('\n')
	sb.WriteString(i.Hostname)
	sb.WriteByte('\n')
	sb.WriteString(strconv.FormatInt(i.StartUnix, 10))
	sb.WriteByte('\n')
	return sb.String()
}

func parseInfo(s string) (Info, error) {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	pidStr := strings.TrimSpace(lines[0])
	if pidStr == "" {
		return Info{}, errors.New("empty lock info")
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return Info{}, fmt.Errorf("invalid pid %q in lock info", pidStr)
	}
	info := Info{PID: pid}
	if len(lines) > 1 {
		info.AppID = strings.TrimSpace(lines[1])
	}
	if len(lines) > 2 {
		info.Hostname = strings.TrimSpace(lines[2])
	}
	if len(lines) > 3 {
		// older records carry no start time
		if v, err := strconv.ParseInt(strings.TrimSpace(lines[3]), 10, 64); err == nil {
			info.StartUnix = v
		}
	}
	return info, nil
}

// RuntimeDir returns the per-user runtime directory for a service.
// base wins when set; otherwise $XDG_RUNTIME_DIR, then <tmp>/runtime-<user>.
func RuntimeDir(base, serviceName string) string {
	if base == "" {
		base = DefaultRuntimeBase()
	}
	return filepath.Join(base, serviceName)
}

func DefaultRuntimeBase() string {
	if d := os.Getenv("XDG_RUNTIME_DIR"); d != "" {
		return d
	}
	name := "default"
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = sanitize(u.Username)
	}
	return filepath.Join(os.TempDir(), "runtime-"+name)
}

// domain accounts on Windows contain a backslash
func sanitize(s string) string {
	return strings.NewReplacer(`\`, "_", "/", "_", ":", "_").Replace(s)
}
