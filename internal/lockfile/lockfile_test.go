package lockfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryLock_FreshPathSucceeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svc", "standard.lock")
	l := New(path)
	require.NoError(t, l.TryLock())
	assert.True(t, l.Held())
	require.NoError(t, l.Unlock())
	assert.False(t, l.Held())

	// a probe leaves no metadata behind
	_, err := l.ReadInfo()
	assert.Error(t, err)
}

func TestTryLock_ContendedReturnsErrLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "standard.lock")
	holder, err := Acquire(path, Info{PID: os.Getpid(), AppID: "svc", Hostname: "host"})
	require.NoError(t, err)
	defer func() { _ = holder.Unlock() }()

	probe := New(path)
	start := time.Now()
	err = probe.TryLock()
	assert.ErrorIs(t, err, ErrLocked)
	assert.Less(t, time.Since(start), time.Second, "TryLock must not wait")
	assert.False(t, probe.Held())
}

func TestAcquire_PublishesInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "standard.lock")
	want := Info{PID: os.Getpid(), AppID: "svc", Hostname: "box", StartUnix: 1700000000}
	holder, err := Acquire(path, want)
	require.NoError(t, err)

	got, err := New(path).ReadInfo()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, holder.Unlock())
	_, err = New(path).ReadInfo()
	assert.Error(t, err, "metadata must be cleared on unlock")

	// free again after release
	probe := New(path)
	require.NoError(t, probe.TryLock())
	require.NoError(t, probe.Unlock())
}

func TestWriteInfo_RequiresHeldLock(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "x.lock"))
	assert.Error(t, l.WriteInfo(Info{PID: 1}))
}

func TestParseInfo(t *testing.T) {
	info, err := parseInfo("42\n")
	require.NoError(t, err)
	assert.Equal(t, Info{PID: 42}, info)

	info, err = parseInfo("42\r\napp\r\nhost\r\n99\r\n")
	require.NoError(t, err)
	assert.Equal(t, Info{PID: 42, AppID: "app", Hostname: "host", StartUnix: 99}, info)

	info, err = parseInfo("7\napp\nhost\nnot-a-number\n")
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.StartUnix)

	for _, bad := range []string{"", "\n", "abc\n", "-3\n", "0\n"} {
		_, err := parseInfo(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestRuntimeDir(t *testing.T) {
	assert.Equal(t, filepath.Join("/base", "svc"), RuntimeDir("/base", "svc"))

	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, filepath.Join("/run/user/1000", "svc"), RuntimeDir("", "svc"))

	t.Setenv("XDG_RUNTIME_DIR", "")
	assert.Contains(t, DefaultRuntimeBase(), "runtime-")
}
