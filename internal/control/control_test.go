package control

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusString(t *testing.T) {
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "unknown", Status(42).String())
}

func TestSupportFlags(t *testing.T) {
	f := SupportStatus | SupportStart | SupportStop
	assert.True(t, f.Has(SupportStart))
	assert.True(t, f.Has(SupportStart|SupportStop))
	assert.False(t, f.Has(SupportSetEnabled))
	assert.False(t, f.Has(SupportStop|SupportSetEnabled))
	assert.Equal(t, "status|start|stop", f.String())
	assert.Equal(t, "enable", SupportSetEnabled.String())
	assert.Equal(t, "none", SupportFlags(0).String())
}

func TestBlockModeString(t *testing.T) {
	assert.Equal(t, "undetermined", Undetermined.String())
	assert.Equal(t, "blocking", Blocking.String())
	assert.Equal(t, "non-blocking", NonBlocking.String())
}

type minimal struct {
	Base
}

var _ ServiceControl = (*minimal)(nil)

func (m *minimal) Backend() string { return "minimal" }

func TestBaseDefaults(t *testing.T) {
	m := &minimal{Base: NewBase("svc")}
	assert.Equal(t, "svc", m.ServiceID())
	assert.Equal(t, "svc", m.ServiceName())
	assert.Equal(t, SupportFlags(0), m.SupportFlags())
	assert.False(t, m.ServiceExists())
	assert.Equal(t, Undetermined, m.Blocking())
	assert.Nil(t, m.CallGenericCommand(CmdGetPid))
	assert.Empty(t, m.LastError())

	st, err := m.Status()
	assert.Equal(t, Unknown, st)
	require.ErrorIs(t, err, ErrUnsupported)

	for name, op := range map[string]func() error{
		"start":      m.Start,
		"stop":       m.Stop,
		"setEnabled": func() error { return m.SetEnabled(true) },
	} {
		err := op()
		require.ErrorIs(t, err, ErrUnsupported, name)
		assert.Contains(t, m.LastError(), name)
	}

	assert.False(t, m.IsEnabled())
	assert.Contains(t, m.LastError(), "isEnabled")
}

func TestBaseFailRecordsLastError(t *testing.T) {
	m := &minimal{Base: NewBase("svc")}
	err := m.Failf(ErrLockAccess, "failed to access lockfile with error: %v", errors.New("denied"))
	require.ErrorIs(t, err, ErrLockAccess)
	assert.Equal(t, "lock access error: failed to access lockfile with error: denied", m.LastError())
	assert.Equal(t, err, m.Err())

	_ = m.Fail(nil)
	assert.Empty(t, m.LastError())
}
