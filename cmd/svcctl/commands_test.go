package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loykin/svcctl"
	"github.com/loykin/svcctl/internal/control"
	"github.com/loykin/svcctl/internal/server"
	"github.com/loykin/svcctl/pkg/client"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	root := buildRoot()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func missingService(t *testing.T) (runtimeDir, id string) {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "run"), filepath.Join(dir, "bin", "no-such-service")
}

func TestStatusNeverStarted(t *testing.T) {
	rt, id := missingService(t)
	out, err := runCLI(t, "--runtime-dir", rt, "status", id)
	require.NoError(t, err)
	assert.Contains(t, out, "(standard): stopped")
}

func TestPidAndExistsForMissingService(t *testing.T) {
	rt, id := missingService(t)

	out, err := runCLI(t, "--runtime-dir", rt, "pid", id)
	require.NoError(t, err)
	assert.Equal(t, "-1", strings.TrimSpace(out))

	out, err = runCLI(t, "--runtime-dir", rt, "--debug", "exists", id)
	require.NoError(t, err)
	assert.Equal(t, "false", strings.TrimSpace(out))
}

func TestStartMissingExecutable(t *testing.T) {
	rt, id := missingService(t)
	_, err := runCLI(t, "--runtime-dir", rt, "start", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to find executable")
}

func TestStopNeverStartedIsNoop(t *testing.T) {
	rt, id := missingService(t)
	out, err := runCLI(t, "--runtime-dir", rt, "stop", id)
	require.NoError(t, err)
	assert.Contains(t, out, "stop requested")
}

func TestEnableUnsupportedOnStandard(t *testing.T) {
	rt, id := missingService(t)
	_, err := runCLI(t, "--runtime-dir", rt, "disable", id)
	require.Error(t, err)
	assert.ErrorIs(t, err, control.ErrUnsupported)
}

func TestUnknownBackend(t *testing.T) {
	rt, id := missingService(t)
	_, err := runCLI(t, "--runtime-dir", rt, "--backend", "launchd", "status", id)
	require.Error(t, err)
	assert.ErrorIs(t, err, svcctl.ErrUnknownBackend)
}

func TestInfoAndBackendsJSON(t *testing.T) {
	rt, id := missingService(t)

	out, err := runCLI(t, "--runtime-dir", rt, "--debug", "info", id)
	require.NoError(t, err)
	var info client.InfoResponse
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "debug", info.Backend)
	assert.Equal(t, "stopped", info.Status)
	assert.Equal(t, int64(-1), info.Pid)
	assert.Equal(t, "no-such-service", info.Name)

	out, err = runCLI(t, "backends")
	require.NoError(t, err)
	var b client.BackendsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &b))
	assert.Equal(t, "standard", b.Default)
	assert.Contains(t, b.Backends, "debug")
}

func TestRemoteStatusViaAPI(t *testing.T) {
	rt, id := missingService(t)
	gin.SetMode(gin.TestMode)
	opts := svcctl.Options{RuntimeDir: rt}
	r := server.NewRouter(func(backend, serviceID string) (control.ServiceControl, error) {
		return svcctl.Open(backend, serviceID, opts)
	}, server.Options{BasePath: "/api", DefaultBackend: svcctl.BackendStandard, Backends: svcctl.Backends()})
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	out, err := runCLI(t, "--api-url", srv.URL+"/api", "status", id)
	require.NoError(t, err)
	assert.Contains(t, out, "stopped")

	out, err = runCLI(t, "--api-url", srv.URL+"/api", "pid", id)
	require.NoError(t, err)
	assert.Equal(t, "-1", strings.TrimSpace(out))

	_, err = runCLI(t, "--api-url", srv.URL+"/api", "start", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to find executable")

	_, err = runCLI(t, "--api-url", srv.URL+"/api", "serve")
	require.Error(t, err)
}

func TestBackendPrecedence(t *testing.T) {
	cfg := &svcctl.Config{Backend: "standard"}
	assert.Equal(t, "standard", command{flags: &GlobalFlags{}}.backendName(cfg))
	assert.Equal(t, "android", command{flags: &GlobalFlags{Backend: "android"}}.backendName(cfg))
	assert.Equal(t, "debug", command{flags: &GlobalFlags{Backend: "android", Debug: true}}.backendName(cfg))
}

func TestArgsRequired(t *testing.T) {
	_, err := runCLI(t, "status")
	require.Error(t, err)
}

func TestConfigTemplate(t *testing.T) {
	out, err := runCLI(t, "config-template", "server", "--name", "fleet")
	require.NoError(t, err)
	assert.Regexp(t, `backend = ['"]standard['"]`, out)
	assert.Contains(t, out, "/var/log/fleet/svcctl.log")

	_, err = runCLI(t, "config-template", "supervisor")
	require.Error(t, err)
}
