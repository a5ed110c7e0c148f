// Package config loads controller settings from an optional TOML file and
// SVCCTL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/loykin/svcctl/internal/logger"
)

const envPrefix = "SVCCTL"

// Defaults
const (
	DefaultBackend     = "standard"
	DefaultWaitTimeout = 5 * time.Second
	DefaultListen      = "127.0.0.1:8780"
	DefaultBasePath    = "/api"
)

type Config struct {
	Backend     string        `toml:"backend" mapstructure:"backend"`
	RuntimeDir  string        `toml:"runtime_dir" mapstructure:"runtime_dir"`
	WaitTimeout time.Duration `toml:"wait_timeout" mapstructure:"wait_timeout"`
	Log         logger.Config `toml:"log" mapstructure:"log"`
	Android     AndroidConfig `toml:"android" mapstructure:"android"`
	Server      ServerConfig  `toml:"server" mapstructure:"server"`
}

type AndroidConfig struct {
	// Package is the application package for service ids without one.
	Package string `toml:"package" mapstructure:"package"`
}

type ServerConfig struct {
	Listen   string    `toml:"listen" mapstructure:"listen"`
	BasePath string    `toml:"base_path" mapstructure:"base_path"`
	TLS      TLSConfig `toml:"tls" mapstructure:"tls"`
}

// TLSConfig enables HTTPS for the control API. CertFile/KeyFile take
// precedence over Dir; with AutoGenerate a self-signed pair is created in Dir.
type TLSConfig struct {
	Enabled      bool   `toml:"enabled" mapstructure:"enabled"`
	CertFile     string `toml:"cert_file" mapstructure:"cert_file"`
	KeyFile      string `toml:"key_file" mapstructure:"key_file"`
	Dir          string `toml:"dir" mapstructure:"dir"`
	AutoGenerate bool   `toml:"auto_generate" mapstructure:"auto_generate"`
	// MinVersion is "1.2" or "1.3" (default).
	MinVersion string `toml:"min_version" mapstructure:"min_version"`
}

// keys bound to the environment; viper only consults env for known keys
var envKeys = []string{
	"backend", "runtime_dir", "wait_timeout",
	"log.level", "log.format", "log.color",
	"log.file.path", "log.file.max_size_mb", "log.file.max_backups", "log.file.max_age_days", "log.file.compress",
	"android.package",
	"server.listen", "server.base_path",
	"server.tls.enabled", "server.tls.cert_file", "server.tls.key_file",
	"server.tls.dir", "server.tls.auto_generate", "server.tls.min_version",
}

// Load reads path (may be empty) and applies environment overrides.
// SVCCTL_LOG_FILE_PATH maps to log.file.path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range envKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}
	v.SetDefault("backend", DefaultBackend)
	v.SetDefault("wait_timeout", DefaultWaitTimeout)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.listen", DefaultListen)
	v.SetDefault("server.base_path", DefaultBasePath)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend) == "" {
		return errors.New("backend must not be empty")
	}
	if c.WaitTimeout < 0 {
		return fmt.Errorf("wait_timeout must not be negative, got %s", c.WaitTimeout)
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("server.base_path must start with '/', got %q", c.Server.BasePath)
	}
	if t := c.Server.TLS; t.Enabled && (t.CertFile == "") != (t.KeyFile == "") {
		return errors.New("server.tls.cert_file and server.tls.key_file must be set together")
	}
	if t := c.Server.TLS; t.Enabled && t.CertFile == "" && t.Dir == "" {
		return errors.New("server.tls needs cert_file/key_file or dir")
	}
	return nil
}
