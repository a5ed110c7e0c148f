package server

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loykin/svcctl/internal/control"
	"github.com/loykin/svcctl/internal/metrics"
)

// Opener returns a control for serviceID on backend.
type Opener func(backend, serviceID string) (control.ServiceControl, error)

// Router provides embeddable HTTP handlers for controlling services.
// Endpoints:
//   GET  {basePath}/status    query: service=...&backend=...
//   POST {basePath}/start     query: service=...&backend=...&wait=5s (wait optional)
//   POST {basePath}/stop      query: service=...&backend=...
//   POST {basePath}/enable    query: service=...&backend=...&enabled=true|false
//   GET  {basePath}/exists    query: service=...&backend=...
//   GET  {basePath}/pid       query: service=...&backend=...
//   GET  {basePath}/info      query: service=...&backend=...
//   GET  {basePath}/backends
//   GET  /metrics
// backend falls back to the router's default backend when omitted.
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	open           Opener
	defaultBackend string
	backends       []string
	basePath       string
	log            *slog.Logger
}

// Options configures a Router.
type Options struct {
	BasePath       string
	DefaultBackend string
	// Backends is reported by the backends endpoint.
	Backends []string
	Logger   *slog.Logger
	// TLS switches NewServer to HTTPS.
	TLS *tls.Config
}

// NewRouter constructs a new Router.
// Example basePath: "/api" results in /api/status, /api/start, ...
func NewRouter(open Opener, opts Options) *Router {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		open:           open,
		defaultBackend: opts.DefaultBackend,
		backends:       opts.Backends,
		basePath:       sanitizeBase(opts.BasePath),
		log:            log,
	}
}

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	g.GET("/metrics", gin.WrapH(metrics.Handler()))
	group := g.Group(r.basePath)
	group.GET("/status", r.handleStatus)
	group.POST("/start", r.handleStart)
	group.POST("/stop", r.handleStop)
	group.POST("/enable", r.handleEnable)
	group.GET("/exists", r.handleExists)
	group.GET("/pid", r.handlePid)
	group.GET("/info", r.handleInfo)
	group.GET("/backends", r.handleBackends)
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// Call Shutdown or Close on the returned server to stop it.
func NewServer(addr string, open Opener, opts Options) (*http.Server, error) {
	r := NewRouter(open, opts)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// start?wait= can hold the request until the service registers
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	serve := server.ListenAndServe
	if opts.TLS != nil {
		server.TLSConfig = opts.TLS
		serve = func() error { return server.ListenAndServeTLS("", "") }
	}
	go func() {
		if err := serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.log.Error("control API server stopped", "addr", addr, "error", err)
		}
	}()
	return server, nil
}

// --- Responses ---

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

type statusResp struct {
	Backend string `json:"backend"`
	Service string `json:"service"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

type existsResp struct {
	Exists bool `json:"exists"`
}

type pidResp struct {
	Pid int64 `json:"pid"`
}

type infoResp struct {
	Backend   string `json:"backend"`
	Service   string `json:"service"`
	Name      string `json:"name"`
	Supports  string `json:"supports"`
	Exists    bool   `json:"exists"`
	Enabled   bool   `json:"enabled"`
	Blocking  string `json:"blocking"`
	Status    string `json:"status"`
	Pid       int64  `json:"pid"`
	LastError string `json:"last_error,omitempty"`
}

type backendsResp struct {
	Default  string   `json:"default"`
	Backends []string `json:"backends"`
}

// --- Handlers ---

const maxStartWait = time.Minute

// resolve opens the control addressed by the request query. On failure it
// writes the error response and returns nil.
func (r *Router) resolve(c *gin.Context) control.ServiceControl {
	id := c.Query("service")
	if id == "" {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "service query param required"})
		return nil
	}
	if !isSafeServiceID(id) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid service: no control characters or '..' segments allowed"})
		return nil
	}
	backend := c.DefaultQuery("backend", r.defaultBackend)
	sc, err := r.open(backend, id)
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, control.ErrUnsupported) {
			code = http.StatusNotImplemented
		}
		writeJSON(c, code, errorResp{Error: err.Error()})
		return nil
	}
	return sc
}

func (r *Router) writeOpError(c *gin.Context, sc control.ServiceControl, op string, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, control.ErrUnsupported):
		code = http.StatusNotImplemented
	case errors.Is(err, control.ErrExecutableNotFound):
		code = http.StatusNotFound
	}
	r.log.Warn("control operation failed", "op", op, "backend", sc.Backend(), "service", sc.ServiceID(), "error", err)
	writeJSON(c, code, errorResp{Error: err.Error()})
}

func (r *Router) handleStatus(c *gin.Context) {
	sc := r.resolve(c)
	if sc == nil {
		return
	}
	st, err := sc.Status()
	resp := statusResp{Backend: sc.Backend(), Service: sc.ServiceID(), Status: st.String()}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(c, http.StatusOK, resp)
}

type runningWaiter interface {
	WaitRunning(ctx context.Context) error
}

func (r *Router) handleStart(c *gin.Context) {
	var wait time.Duration
	if ws := c.Query("wait"); ws != "" {
		d, err := time.ParseDuration(ws)
		if err != nil || d < 0 || d > maxStartWait {
			writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid wait: expected a duration up to " + maxStartWait.String()})
			return
		}
		wait = d
	}
	sc := r.resolve(c)
	if sc == nil {
		return
	}
	if err := sc.Start(); err != nil {
		r.writeOpError(c, sc, "start", err)
		return
	}
	if wait > 0 {
		if w, ok := unwrap(sc).(runningWaiter); ok {
			ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
			defer cancel()
			if err := w.WaitRunning(ctx); err != nil {
				writeJSON(c, http.StatusGatewayTimeout, errorResp{Error: "service did not report running: " + err.Error()})
				return
			}
		}
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleStop(c *gin.Context) {
	sc := r.resolve(c)
	if sc == nil {
		return
	}
	if err := sc.Stop(); err != nil {
		r.writeOpError(c, sc, "stop", err)
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleEnable(c *gin.Context) {
	enabled, err := strconv.ParseBool(c.DefaultQuery("enabled", "true"))
	if err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid enabled: expected true or false"})
		return
	}
	sc := r.resolve(c)
	if sc == nil {
		return
	}
	if err := sc.SetEnabled(enabled); err != nil {
		r.writeOpError(c, sc, "set_enabled", err)
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleExists(c *gin.Context) {
	sc := r.resolve(c)
	if sc == nil {
		return
	}
	writeJSON(c, http.StatusOK, existsResp{Exists: sc.ServiceExists()})
}

func (r *Router) handlePid(c *gin.Context) {
	sc := r.resolve(c)
	if sc == nil {
		return
	}
	writeJSON(c, http.StatusOK, pidResp{Pid: pidOf(sc)})
}

func (r *Router) handleInfo(c *gin.Context) {
	sc := r.resolve(c)
	if sc == nil {
		return
	}
	st, _ := sc.Status()
	writeJSON(c, http.StatusOK, infoResp{
		Backend:   sc.Backend(),
		Service:   sc.ServiceID(),
		Name:      sc.ServiceName(),
		Supports:  sc.SupportFlags().String(),
		Exists:    sc.ServiceExists(),
		Enabled:   sc.IsEnabled(),
		Blocking:  sc.Blocking().String(),
		Status:    st.String(),
		Pid:       pidOf(sc),
		LastError: sc.LastError(),
	})
}

func (r *Router) handleBackends(c *gin.Context) {
	writeJSON(c, http.StatusOK, backendsResp{Default: r.defaultBackend, Backends: r.backends})
}

// pidOf asks the backend for the service PID; -1 when it has none.
func pidOf(sc control.ServiceControl) int64 {
	switch v := sc.CallGenericCommand(control.CmdGetPid).(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return -1
	}
}

func unwrap(sc control.ServiceControl) control.ServiceControl {
	if u, ok := sc.(interface{ Unwrap() control.ServiceControl }); ok {
		return u.Unwrap()
	}
	return sc
}
