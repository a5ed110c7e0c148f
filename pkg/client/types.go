package client

// Target addresses one service on one backend. An empty Backend uses the
// server's default backend.
type Target struct {
	Service string
	Backend string
}

// StatusResponse is returned by the status endpoint.
type StatusResponse struct {
	Backend string `json:"backend"`
	Service string `json:"service"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// Running reports whether the service was observed running.
func (s StatusResponse) Running() bool { return s.Status == "running" }

// InfoResponse describes a control and the last observed state of its service.
type InfoResponse struct {
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

// BackendsResponse lists the backends the server can open.
type BackendsResponse struct {
	Default  string   `json:"default"`
	Backends []string `json:"backends"`
}

type existsResponse struct {
	Exists bool `json:"exists"`
}

type pidResponse struct {
	Pid int64 `json:"pid"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}
