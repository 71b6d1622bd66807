package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/1broseidon/rcgl/internal/egl"
	"github.com/1broseidon/rcgl/internal/runtimepath"
	"github.com/1broseidon/rcgl/internal/tracelog"
	"gopkg.in/yaml.v3"
)

// Config is the effective configuration after defaults and every loaded
// file have been applied.
type Config struct {
	// Socket overrides the runtime socket path when set.
	Socket  string        `yaml:"socket,omitempty"`
	Logging LoggingConfig `yaml:"logging"`
	Host    HostConfig    `yaml:"host"`
}

// LoggingConfig configures process logging and the host call trace.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// Trace enables the host call trace file.
	Trace     bool   `yaml:"trace"`
	File      string `yaml:"file,omitempty"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

// HostConfig describes what the reference host reports to clients.
type HostConfig struct {
	RendererVersion int              `yaml:"renderer_version"`
	EGLMajor        int              `yaml:"egl_major"`
	EGLMinor        int              `yaml:"egl_minor"`
	Vendor          string           `yaml:"vendor"`
	Extensions      []string         `yaml:"extensions"`
	MaxTextureUnits int              `yaml:"max_texture_units"`
	DrawHistory     int              `yaml:"draw_history"`
	Configs         []map[string]int `yaml:"configs"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	surfaces := int(egl.WindowBit | egl.PbufferBit)
	es := int(egl.OpenGLESBit)
	return &Config{
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
		Host: HostConfig{
			RendererVersion: 1,
			EGLMajor:        1,
			EGLMinor:        4,
			Vendor:          "rcgl reference host",
			Extensions: []string{
				"EGL_KHR_image_base",
				"EGL_KHR_gl_texture_2D_image",
				"EGL_KHR_fence_sync",
			},
			MaxTextureUnits: 2,
			DrawHistory:     256,
			Configs: []map[string]int{
				{"config_id": 1, "red_size": 8, "green_size": 8, "blue_size": 8, "alpha_size": 8, "depth_size": 24, "stencil_size": 8, "surface_type": surfaces, "renderable_type": es},
				{"config_id": 2, "red_size": 8, "green_size": 8, "blue_size": 8, "alpha_size": 0, "depth_size": 24, "stencil_size": 8, "surface_type": surfaces, "renderable_type": es},
				{"config_id": 3, "red_size": 5, "green_size": 6, "blue_size": 5, "alpha_size": 0, "depth_size": 16, "stencil_size": 0, "surface_type": surfaces, "renderable_type": es},
			},
		},
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}

	h := c.Host
	if h.RendererVersion < 1 {
		return &ValidationError{Path: "host.renderer_version", Err: fmt.Errorf("renderer_version must be >= 1")}
	}
	if h.EGLMajor != 1 {
		return &ValidationError{Path: "host.egl_major", Err: fmt.Errorf("egl_major must be 1")}
	}
	if h.EGLMinor < 0 {
		return &ValidationError{Path: "host.egl_minor", Err: fmt.Errorf("egl_minor must be >= 0")}
	}
	if strings.TrimSpace(h.Vendor) == "" {
		return &ValidationError{Path: "host.vendor", Err: fmt.Errorf("vendor must not be empty")}
	}
	for i, ext := range h.Extensions {
		if strings.TrimSpace(ext) == "" || strings.ContainsAny(ext, " \t") {
			return &ValidationError{Path: "host.extensions", Err: fmt.Errorf("extension %d must be a single non-empty name", i)}
		}
	}
	if h.MaxTextureUnits < 1 || h.MaxTextureUnits > 8 {
		return &ValidationError{Path: "host.max_texture_units", Err: fmt.Errorf("max_texture_units must be between 1 and 8")}
	}
	if h.DrawHistory < 0 {
		return &ValidationError{Path: "host.draw_history", Err: fmt.Errorf("draw_history must be >= 0")}
	}
	if len(h.Configs) == 0 {
		return &ValidationError{Path: "host.configs", Err: fmt.Errorf("configs must not be empty")}
	}
	for i, cfg := range h.Configs {
		for name := range cfg {
			if _, ok := egl.AttribByName(name); !ok {
				return &ValidationError{Path: fmt.Sprintf("host.configs.%d.%s", i, name), Err: fmt.Errorf("unknown config attribute %q", name)}
			}
		}
		for _, required := range []string{"red_size", "green_size", "blue_size", "surface_type"} {
			if _, ok := cfg[required]; !ok {
				return &ValidationError{Path: fmt.Sprintf("host.configs.%d", i), Err: fmt.Errorf("%s is required", required)}
			}
		}
	}
	return nil
}

// ConfigTable converts the host configs into the table served to clients.
// Columns are every attribute named by any config, ordered by enumerant;
// attributes a config leaves out are 0.
func (c *Config) ConfigTable() egl.ConfigTable {
	seen := map[int32]bool{}
	for _, cfg := range c.Host.Configs {
		for name := range cfg {
			if attr, ok := egl.AttribByName(name); ok {
				seen[attr] = true
			}
		}
	}
	attribs := make([]int32, 0, len(seen))
	for attr := range seen {
		attribs = append(attribs, attr)
	}
	sort.Slice(attribs, func(i, j int) bool { return attribs[i] < attribs[j] })

	values := make([][]int32, len(c.Host.Configs))
	for i, cfg := range c.Host.Configs {
		row := make([]int32, len(attribs))
		for j, attr := range attribs {
			row[j] = int32(cfg[egl.AttribName(attr)])
		}
		values[i] = row
	}
	return egl.ConfigTable{Attribs: attribs, Values: values}
}

// SocketPath returns the configured socket or the runtime default.
func (c *Config) SocketPath() (string, error) {
	if c.Socket != "" {
		return c.Socket, nil
	}
	return runtimepath.SocketPath()
}

// SlogLevel maps logging.level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// TraceConfig returns the host call trace settings. The trace file
// defaults to the runtime directory.
func (c *Config) TraceConfig() (tracelog.LogConfig, error) {
	path := c.Logging.File
	if path == "" && c.Logging.Trace {
		p, err := runtimepath.TracePath()
		if err != nil {
			return tracelog.LogConfig{}, err
		}
		path = p
	}
	return tracelog.LogConfig{
		Enabled:   c.Logging.Trace,
		Level:     tracelog.ParseLogLevel(c.Logging.Level),
		FilePath:  path,
		MaxSizeMB: c.Logging.MaxSizeMB,
		MaxFiles:  c.Logging.MaxFiles,
	}, nil
}

// Save validates the config and writes it to the default config path.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo validates the config and writes it to path, creating the parent
// directory when needed.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
