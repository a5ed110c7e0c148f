// Package template generates starter svcctl configuration files.
package template

import (
	"fmt"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// TemplateType represents the type of template to generate
type TemplateType string

const (
	TypeLocal   TemplateType = "local"
	TypeBasic   TemplateType = "basic"
	TypeDebug   TemplateType = "debug"
	TypeServer  TemplateType = "server"
	TypeTLS     TemplateType = "tls"
	TypeAndroid TemplateType = "android"
)

// ConfigTemplate mirrors the keys of a svcctl TOML config file.
type ConfigTemplate struct {
	Backend     string           `toml:"backend"`
	RuntimeDir  string           `toml:"runtime_dir,omitempty"`
	WaitTimeout string           `toml:"wait_timeout"`
	Log         LogTemplate      `toml:"log"`
	Android     *AndroidTemplate `toml:"android,omitempty"`
	Server      *ServerTemplate  `toml:"server,omitempty"`
}

type LogTemplate struct {
	Level  string        `toml:"level"`
	Format string        `toml:"format"`
	Color  bool          `toml:"color,omitempty"`
	File   *FileTemplate `toml:"file,omitempty"`
}

type FileTemplate struct {
	Path       string `toml:"path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

type AndroidTemplate struct {
	Package string `toml:"package"`
}

type ServerTemplate struct {
	Listen   string       `toml:"listen"`
	BasePath string       `toml:"base_path"`
	TLS      *TLSTemplate `toml:"tls,omitempty"`
}

type TLSTemplate struct {
	Enabled      bool   `toml:"enabled"`
	Dir          string `toml:"dir"`
	AutoGenerate bool   `toml:"auto_generate"`
	MinVersion   string `toml:"min_version"`
}

// Generator provides template generation functionality
type Generator struct{}

// NewGenerator creates a new template generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate creates a config template of the given type. name labels the
// deployment and is used for the log file and android package.
func (g *Generator) Generate(templateType TemplateType, name string) (*ConfigTemplate, error) {
	if name == "" {
		name = "svcctl"
	}
	switch templateType {
	case TypeLocal, TypeBasic:
		return g.generateLocalTemplate(), nil
	case TypeDebug:
		return g.generateDebugTemplate(), nil
	case TypeServer:
		return g.generateServerTemplate(name), nil
	case TypeTLS:
		return g.generateTLSTemplate(name), nil
	case TypeAndroid:
		return g.generateAndroidTemplate(name), nil
	default:
		return nil, fmt.Errorf("unsupported template type: %s", templateType)
	}
}

// GenerateTOML renders the template as a TOML document.
func (g *Generator) GenerateTOML(templateType TemplateType, name string) ([]byte, error) {
	t, err := g.Generate(templateType, name)
	if err != nil {
		return nil, err
	}
	b, err := toml.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal template: %w", err)
	}
	return b, nil
}

// GetSupportedTypes returns the primary template type names, sorted.
func (g *Generator) GetSupportedTypes() []string {
	types := []string{
		string(TypeLocal),
		string(TypeDebug),
		string(TypeServer),
		string(TypeTLS),
		string(TypeAndroid),
	}
	sort.Strings(types)
	return types
}

func (g *Generator) baseTemplate(backend string) *ConfigTemplate {
	return &ConfigTemplate{
		Backend:     backend,
		WaitTimeout: "5s",
		Log:         LogTemplate{Level: "info", Format: "text"},
	}
}

func (g *Generator) generateLocalTemplate() *ConfigTemplate {
	return g.baseTemplate("standard")
}

func (g *Generator) generateDebugTemplate() *ConfigTemplate {
	t := g.baseTemplate("debug")
	t.WaitTimeout = "30s"
	t.Log.Level = "debug"
	t.Log.Color = true
	return t
}

func (g *Generator) generateServerTemplate(name string) *ConfigTemplate {
	t := g.baseTemplate("standard")
	t.RuntimeDir = "/run/" + name
	t.Log.Format = "json"
	t.Log.File = &FileTemplate{
		Path:       "/var/log/" + name + "/svcctl.log",
		MaxSizeMB:  50,
		MaxBackups: 5,
		MaxAgeDays: 14,
		Compress:   true,
	}
	t.Server = &ServerTemplate{Listen: "127.0.0.1:8780", BasePath: "/api"}
	return t
}

func (g *Generator) generateTLSTemplate(name string) *ConfigTemplate {
	t := g.generateServerTemplate(name)
	t.Server.Listen = "0.0.0.0:8780"
	t.Server.TLS = &TLSTemplate{
		Enabled:      true,
		Dir:          "/etc/" + name + "/tls",
		AutoGenerate: true,
		MinVersion:   "1.3",
	}
	return t
}

func (g *Generator) generateAndroidTemplate(name string) *ConfigTemplate {
	t := g.baseTemplate("android")
	t.Android = &AndroidTemplate{Package: "com.example." + name}
	return t
}
