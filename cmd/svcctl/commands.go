package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/loykin/svcctl"
	"github.com/loykin/svcctl/internal/logger"
	"github.com/loykin/svcctl/pkg/client"
)

type command struct {
	flags *GlobalFlags
}

// session carries the resolved config for one command invocation.
type session struct {
	cfg     *svcctl.Config
	backend string
	opts    svcctl.Options
	log     *slog.Logger
	out     io.Writer
	api     *client.Client
}

// run resolves config, logging and the transport, then runs fn.
func (c command) run(cmd *cobra.Command, fn func(*session) error) error {
	s, closeLog, err := c.newSession(cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = closeLog.Close() }()
	return fn(s)
}

func (c command) newSession(out, errOut io.Writer) (*session, io.Closer, error) {
	cfg, err := svcctl.LoadConfig(c.flags.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	if c.flags.LogLevel != "" {
		cfg.Log.Level = c.flags.LogLevel
	}
	if c.flags.RuntimeDir != "" {
		cfg.RuntimeDir = c.flags.RuntimeDir
	}
	log, closer, err := logger.New(cfg.Log, errOut)
	if err != nil {
		return nil, nil, fmt.Errorf("error configuring logger: %w", err)
	}

	s := &session{
		cfg:     cfg,
		backend: c.backendName(cfg),
		opts:    svcctl.OptionsFromConfig(cfg, log),
		log:     log,
		out:     out,
	}
	if c.flags.APIUrl != "" {
		cc := client.Config{BaseURL: c.flags.APIUrl, Timeout: c.flags.APITimeout, Logger: log}
		if c.flags.APICACert != "" {
			cc.TLS = &client.TLSClientConfig{Enabled: true, CACert: c.flags.APICACert}
		}
		s.api = client.New(cc)
	}
	return s, closer, nil
}

// backendName applies --debug, then --backend, then the config file.
func (c command) backendName(cfg *svcctl.Config) string {
	switch {
	case c.flags.Debug:
		return svcctl.BackendDebug
	case c.flags.Backend != "":
		return c.flags.Backend
	default:
		return cfg.Backend
	}
}

func (s *session) target(id string) client.Target {
	return client.Target{Service: id, Backend: s.backend}
}

func (s *session) open(id string) (svcctl.ServiceControl, error) {
	return svcctl.Open(s.backend, id, s.opts)
}

func (s *session) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.cfg.WaitTimeout+30*time.Second)
}

func (s *session) status(id string) error {
	var state, msg string
	if s.api != nil {
		ctx, cancel := s.requestContext()
		defer cancel()
		st, err := s.api.Status(ctx, s.target(id))
		if err != nil {
			return err
		}
		state, msg = st.Status, st.Error
	} else {
		sc, err := s.open(id)
		if err != nil {
			return err
		}
		st, err := sc.Status()
		state = st.String()
		if err != nil {
			msg = err.Error()
		}
	}
	_, _ = fmt.Fprintf(s.out, "%s (%s): %s\n", id, s.backend, colorStatus(state))
	if msg != "" {
		_, _ = fmt.Fprintf(s.out, "  Error: %s\n", color.RedString(msg))
	}
	return nil
}

func colorStatus(state string) string {
	switch state {
	case "running":
		return color.GreenString(state)
	case "stopped":
		return color.YellowString(state)
	default:
		return color.RedString(state)
	}
}

type runningWaiter interface {
	WaitRunning(ctx context.Context) error
}

func (s *session) start(id string, wait bool) error {
	var timeout time.Duration
	if wait {
		timeout = s.cfg.WaitTimeout
	}
	if s.api != nil {
		ctx, cancel := s.requestContext()
		defer cancel()
		if err := s.api.Start(ctx, s.target(id), timeout); err != nil {
			return err
		}
	} else {
		sc, err := s.open(id)
		if err != nil {
			return err
		}
		if err := sc.Start(); err != nil {
			return err
		}
		if w, ok := svcctl.Unwrap(sc).(runningWaiter); ok && timeout > 0 {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := w.WaitRunning(ctx); err != nil {
				return fmt.Errorf("service %s did not report running within %s: %w", id, timeout, err)
			}
		}
	}
	if wait {
		return s.status(id)
	}
	_, _ = fmt.Fprintf(s.out, "start requested for %s\n", id)
	return nil
}

func (s *session) stop(id string) error {
	if s.api != nil {
		ctx, cancel := s.requestContext()
		defer cancel()
		if err := s.api.Stop(ctx, s.target(id)); err != nil {
			return err
		}
	} else {
		sc, err := s.open(id)
		if err != nil {
			return err
		}
		if err := sc.Stop(); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(s.out, "stop requested for %s\n", id)
	return nil
}

func (s *session) setEnabled(id string, enabled bool) error {
	if s.api != nil {
		ctx, cancel := s.requestContext()
		defer cancel()
		if err := s.api.SetEnabled(ctx, s.target(id), enabled); err != nil {
			return err
		}
	} else {
		sc, err := s.open(id)
		if err != nil {
			return err
		}
		if err := sc.SetEnabled(enabled); err != nil {
			return err
		}
	}
	word := "enabled"
	if !enabled {
		word = "disabled"
	}
	_, _ = fmt.Fprintf(s.out, "%s %s\n", id, word)
	return nil
}

func (s *session) exists(id string) error {
	var found bool
	if s.api != nil {
		ctx, cancel := s.requestContext()
		defer cancel()
		ok, err := s.api.Exists(ctx, s.target(id))
		if err != nil {
			return err
		}
		found = ok
	} else {
		sc, err := s.open(id)
		if err != nil {
			return err
		}
		found = sc.ServiceExists()
	}
	_, _ = fmt.Fprintln(s.out, found)
	return nil
}

func (s *session) pid(id string) error {
	pid := int64(-1)
	if s.api != nil {
		ctx, cancel := s.requestContext()
		defer cancel()
		p, err := s.api.Pid(ctx, s.target(id))
		if err != nil {
			return err
		}
		pid = p
	} else {
		sc, err := s.open(id)
		if err != nil {
			return err
		}
		if p, ok := sc.CallGenericCommand(svcctl.CmdGetPid).(int64); ok {
			pid = p
		}
	}
	_, _ = fmt.Fprintln(s.out, pid)
	return nil
}

func (s *session) info(id string) error {
	if s.api != nil {
		ctx, cancel := s.requestContext()
		defer cancel()
		info, err := s.api.Info(ctx, s.target(id))
		if err != nil {
			return err
		}
		return s.printJSON(info)
	}
	sc, err := s.open(id)
	if err != nil {
		return err
	}
	st, _ := sc.Status()
	info := client.InfoResponse{
		Backend:   sc.Backend(),
		Service:   sc.ServiceID(),
		Name:      sc.ServiceName(),
		Supports:  sc.SupportFlags().String(),
		Exists:    sc.ServiceExists(),
		Enabled:   sc.IsEnabled(),
		Blocking:  sc.Blocking().String(),
		Status:    st.String(),
		Pid:       -1,
		LastError: sc.LastError(),
	}
	if p, ok := sc.CallGenericCommand(svcctl.CmdGetPid).(int64); ok {
		info.Pid = p
	}
	return s.printJSON(info)
}

func (s *session) backends() error {
	if s.api != nil {
		ctx, cancel := s.requestContext()
		defer cancel()
		b, err := s.api.Backends(ctx)
		if err != nil {
			return err
		}
		return s.printJSON(b)
	}
	return s.printJSON(client.BackendsResponse{Default: s.backend, Backends: svcctl.Backends()})
}

func (s *session) serve(ctx context.Context) error {
	if s.api != nil {
		return errors.New("serve runs the control API locally; drop --api-url")
	}
	if err := svcctl.RegisterMetricsDefault(); err != nil {
		s.log.Warn("failed to register metrics", "error", err)
	}
	srv, err := svcctl.NewHTTPServer(s.cfg.Server, s.backend, s.opts)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}
	s.log.Info("control API listening", "addr", s.cfg.Server.Listen, "base_path", s.cfg.Server.BasePath,
		"backend", s.backend, "tls", s.cfg.Server.TLS.Enabled)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	s.log.Info("shutting down control API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *session) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.out, string(b))
	return err
}
