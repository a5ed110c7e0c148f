package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/loykin/svcctl/pkg/template"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GlobalFlags holds the persistent flags shared by all commands
type GlobalFlags struct {
	ConfigPath string
	Backend    string
	Debug      bool
	RuntimeDir string
	LogLevel   string
	// API connection
	APIUrl     string
	APITimeout time.Duration
	APICACert  string
}

// StartFlags holds flags for the start command
type StartFlags struct {
	Wait bool
}

// EnableFlags holds flags for the enable and disable commands
type EnableFlags struct {
	Enabled bool
}

// buildRoot creates the root command with all subcommands
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	startFlags := &StartFlags{}

	root := createRootCommand(globalFlags)
	c := command{flags: globalFlags}

	root.AddCommand(
		createStatusCommand(c),
		createStartCommand(c, startFlags),
		createStopCommand(c),
		createEnableCommand(c, EnableFlags{Enabled: true}),
		createEnableCommand(c, EnableFlags{Enabled: false}),
		createExistsCommand(c),
		createPidCommand(c),
		createInfoCommand(c),
		createBackendsCommand(c),
		createServeCommand(c),
		createConfigTemplateCommand(),
	)
	return root
}

// createRootCommand creates the root command with persistent flags
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "svcctl",
		Short: "Background service control tool",
		Long: `Svcctl queries and controls background services without supervising them.
A service registers itself by holding a status lock; svcctl probes that lock,
launches the service executable and asks it to stop.

Examples:
  svcctl status /opt/app/bin/worker
  svcctl start /opt/app/bin/worker --wait
  svcctl stop /opt/app/bin/worker
  svcctl serve                                  # Start the control API
  svcctl status worker --api-url=http://host:8780/api  # Remote status`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")
	pf.StringVar(&flags.Backend, "backend", "", "control backend (standard, debug, android)")
	pf.BoolVar(&flags.Debug, "debug", false, "use the debug backend (service keeps this terminal's stdio)")
	pf.StringVar(&flags.RuntimeDir, "runtime-dir", "", "base directory for status locks")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.APIUrl, "api-url", "", "control API URL (e.g. http://host:8780/api)")
	pf.DurationVar(&flags.APITimeout, "api-timeout", 10*time.Second, "request timeout")
	pf.StringVar(&flags.APICACert, "api-ca-cert", "", "CA certificate to trust for an https --api-url")
	return root
}

func createStatusCommand(c command) *cobra.Command {
	return &cobra.Command{
		Use:   "status <service-id>",
		Short: "Show whether a service is running",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *session) error { return s.status(args[0]) })
		},
	}
}

func createStartCommand(c command, flags *StartFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <service-id>",
		Short: "Start a service",
		Long: `Start launches the service executable unless it is already running.
With --wait the command returns once the service reports running or
wait_timeout elapses.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *session) error { return s.start(args[0], flags.Wait) })
		},
	}
	cmd.Flags().BoolVar(&flags.Wait, "wait", false, "wait until the service reports running")
	return cmd
}

func createStopCommand(c command) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <service-id>",
		Short: "Ask a running service to stop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *session) error { return s.stop(args[0]) })
		},
	}
}

func createEnableCommand(c command, flags EnableFlags) *cobra.Command {
	use, short := "enable", "Enable a service"
	if !flags.Enabled {
		use, short = "disable", "Disable a service"
	}
	return &cobra.Command{
		Use:   use + " <service-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *session) error { return s.setEnabled(args[0], flags.Enabled) })
		},
	}
}

func createExistsCommand(c command) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <service-id>",
		Short: "Report whether the backend can find the service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *session) error { return s.exists(args[0]) })
		},
	}
}

func createPidCommand(c command) *cobra.Command {
	return &cobra.Command{
		Use:   "pid <service-id>",
		Short: "Print the process id of a running service (-1 if none)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *session) error { return s.pid(args[0]) })
		},
	}
}

func createInfoCommand(c command) *cobra.Command {
	return &cobra.Command{
		Use:   "info <service-id>",
		Short: "Describe the control for a service as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *session) error { return s.info(args[0]) })
		},
	}
}

func createBackendsCommand(c command) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List available backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *session) error { return s.backends() })
		},
	}
}

func createServeCommand(c command) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the control API",
		Long: `Serve exposes the control operations over HTTP on server.listen
(default 127.0.0.1:8780) under server.base_path (default /api), plus
Prometheus metrics on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *session) error { return s.serve(cmd.Context()) })
		},
	}
}

func createConfigTemplateCommand() *cobra.Command {
	var name string
	gen := template.NewGenerator()
	cmd := &cobra.Command{
		Use:   "config-template <type>",
		Short: "Print a starter config file",
		Long: `Print a starter TOML config for one of: ` + strings.Join(gen.GetSupportedTypes(), ", ") + `.

Examples:
  svcctl config-template local > svcctl.toml
  svcctl config-template tls --name=fleet > /etc/fleet/svcctl.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := gen.GenerateTOML(template.TemplateType(args[0]), name)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "svcctl", "deployment name used in paths")
	return cmd
}
