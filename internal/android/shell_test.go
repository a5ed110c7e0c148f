package android

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loykin/svcctl/internal/control"
)

type scriptedRunner struct {
	calls   []string
	replies map[string]string
	err     error
}

func (r *scriptedRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	line := name + " " + strings.Join(args, " ")
	r.calls = append(r.calls, line)
	for prefix, out := range r.replies {
		if strings.HasPrefix(line, prefix) {
			return []byte(out), r.err
		}
	}
	return nil, r.err
}

const dumpsysPackage = `Packages:
  Package [com.example.app] (1a2b3c):
    userId=10123
    User 0: ceDataInode=1234 installed=true hidden=false
      disabledComponents:
        com.example.app.SyncService
      enabledComponents:
        com.example.app.Other
`

func TestShell_ResolveService(t *testing.T) {
	r := &scriptedRunner{replies: map[string]string{
		"cmd package query-services": "com.example.app/.SyncService\n",
		"dumpsys package":            dumpsysPackage,
	}}
	p := &ShellPlatform{Run: r.run}

	info, err := p.ResolveService(svc)
	require.NoError(t, err)
	assert.Equal(t, svc, info.Component)
	assert.False(t, info.Enabled)
	assert.Equal(t, "cmd package query-services --components --query-flags 512 -n com.example.app/com.example.app.SyncService", r.calls[0])

	other := Component{Package: "com.example.app", Class: "com.example.app.Other"}
	_, err = p.ResolveService(other)
	assert.Error(t, err)
}

func TestShell_CommandLines(t *testing.T) {
	r := &scriptedRunner{replies: map[string]string{
		"dumpsys activity services": "ACTIVITY MANAGER SERVICES\n  * ServiceRecord{abc u0 com.example.app/.SyncService}\n",
	}}
	p := &ShellPlatform{Run: r.run}

	require.NoError(t, p.SetComponentEnabled(svc, true))
	require.NoError(t, p.SetComponentEnabled(svc, false))
	require.NoError(t, p.StartService(Intent{Component: svc, Action: "go"}, false))
	require.NoError(t, p.StartService(NewIntent(svc), true))
	require.NoError(t, p.StopService(NewIntent(svc)))
	running, err := p.ServiceRunning(svc)
	require.NoError(t, err)
	assert.True(t, running)

	flat := svc.FlattenToString()
	assert.Equal(t, []string{
		"pm enable " + flat,
		"pm disable " + flat,
		"am start-service -n " + flat + " -a go",
		"am start-foreground-service -n " + flat,
		"am stop-service -n " + flat,
		"dumpsys activity services " + flat,
	}, r.calls)
}

func TestShell_ErrorsInOutput(t *testing.T) {
	r := &scriptedRunner{replies: map[string]string{
		"am start-service": "Error: Not found; no service started.\n",
	}}
	p := &ShellPlatform{Run: r.run}
	err := p.StartService(NewIntent(svc), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no service started")

	r = &scriptedRunner{err: errors.New("exit status 255")}
	p = &ShellPlatform{Run: r.run}
	_, err = p.ServiceRunning(svc)
	assert.Error(t, err)
}

func TestShell_BindingUnsupported(t *testing.T) {
	p := NewShellPlatform()
	_, err := p.BindService(NewIntent(svc), &conn{}, BindAutoCreate)
	assert.ErrorIs(t, err, control.ErrUnsupported)
	assert.ErrorIs(t, p.UnbindService(&conn{}), control.ErrUnsupported)
}

func TestDisabledComponents(t *testing.T) {
	assert.Equal(t, []string{"com.example.app.SyncService"}, disabledComponents(dumpsysPackage))
	assert.Empty(t, disabledComponents("nothing here"))
}
