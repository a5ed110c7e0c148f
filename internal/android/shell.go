package android

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/loykin/svcctl/internal/control"
)

// Runner executes a device shell command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// matchDisabledComponents is PackageManager.MATCH_DISABLED_COMPONENTS.
const matchDisabledComponents = "512"

// ShellPlatform drives the framework through the on-device shell tools
// (cmd, pm, am, dumpsys). Binding needs an in-process Context and is not
// available here.
type ShellPlatform struct {
	Run     Runner
	Timeout time.Duration
}

var _ Platform = (*ShellPlatform)(nil)

func NewShellPlatform() *ShellPlatform {
	return &ShellPlatform{Run: execRunner, Timeout: 10 * time.Second}
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func (p *ShellPlatform) run(name string, args ...string) (string, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	run := p.Run
	if run == nil {
		run = execRunner
	}
	out, err := run(ctx, name, args...)
	s := string(out)
	if err != nil {
		return s, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(s))
	}
	// am and pm report most failures on stdout with a zero exit code
	for _, marker := range []string{"Error:", "Exception", "Unknown component"} {
		if strings.Contains(s, marker) {
			return s, fmt.Errorf("%s %s: %s", name, strings.Join(args, " "), strings.TrimSpace(s))
		}
	}
	return s, nil
}

func (p *ShellPlatform) ResolveService(c Component) (ServiceInfo, error) {
	out, err := p.run("cmd", "package", "query-services", "--components",
		"--query-flags", matchDisabledComponents, "-n", c.FlattenToString())
	if err != nil {
		return ServiceInfo{}, err
	}
	if !containsComponent(out, c) {
		return ServiceInfo{}, fmt.Errorf("no service matches %s", c.ShortString())
	}
	info := ServiceInfo{Component: c, Enabled: true}
	dump, err := p.run("dumpsys", "package", c.Package)
	if err != nil {
		return ServiceInfo{}, err
	}
	if slices.Contains(disabledComponents(dump), c.Class) {
		info.Enabled = false
	}
	return info, nil
}

func (p *ShellPlatform) SetComponentEnabled(c Component, enabled bool) error {
	verb := "disable"
	if enabled {
		verb = "enable"
	}
	_, err := p.run("pm", verb, c.FlattenToString())
	return err
}

func (p *ShellPlatform) StartService(in Intent, foreground bool) error {
	verb := "start-service"
	if foreground {
		verb = "start-foreground-service"
	}
	_, err := p.run("am", append([]string{verb}, intentArgs(in)...)...)
	return err
}

func (p *ShellPlatform) StopService(in Intent) error {
	_, err := p.run("am", append([]string{"stop-service"}, intentArgs(in)...)...)
	return err
}

func (p *ShellPlatform) BindService(Intent, ServiceConnection, BindFlags) (bool, error) {
	return false, fmt.Errorf("%w: binding requires an application context", control.ErrUnsupported)
}

func (p *ShellPlatform) UnbindService(ServiceConnection) error {
	return fmt.Errorf("%w: binding requires an application context", control.ErrUnsupported)
}

func (p *ShellPlatform) ServiceRunning(c Component) (bool, error) {
	out, err := p.run("dumpsys", "activity", "services", c.FlattenToString())
	if err != nil {
		return false, err
	}
	return strings.Contains(out, "ServiceRecord{"), nil
}

func intentArgs(in Intent) []string {
	args := []string{"-n", in.Component.FlattenToString()}
	if in.Action != "" {
		args = append(args, "-a", in.Action)
	}
	for k, v := range in.Extras {
		args = append(args, "--es", k, v)
	}
	return args
}

func containsComponent(out string, c Component) bool {
	flat, short := c.FlattenToString(), c.ShortString()
	s := bufio.NewScanner(strings.NewReader(out))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == flat || line == short {
			return true
		}
	}
	return false
}

// disabledComponents extracts the class names listed under
// "disabledComponents:" in dumpsys package output.
func disabledComponents(dump string) []string {
	var (
		out    []string
		inList bool
		indent int
	)
	s := bufio.NewScanner(strings.NewReader(dump))
	for s.Scan() {
		raw := s.Text()
		trimmed := strings.TrimSpace(raw)
		lead := len(raw) - len(strings.TrimLeft(raw, " \t"))
		if trimmed == "disabledComponents:" {
			inList, indent = true, lead
			continue
		}
		if !inList {
			continue
		}
		if trimmed == "" || lead <= indent || strings.HasSuffix(trimmed, ":") {
			inList = false
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
