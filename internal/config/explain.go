package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	socket
//	logging.level
//	logging.trace
//	logging.file
//	logging.max_size_mb
//	logging.max_files
//	host.renderer_version
//	host.egl_major
//	host.egl_minor
//	host.vendor
//	host.extensions
//	host.max_texture_units
//	host.draw_history
//	host.configs
//	host.configs.<n>
//	host.configs.<n>.<attribute>
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// List items are tracked one by one, so an exact miss means default.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}

	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	switch parts[0] {
	case "socket":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path %q", path)
		}
		return cfg.Socket, nil
	case "logging":
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path %q", path)
		}
		switch parts[1] {
		case "level":
			return cfg.Logging.Level, nil
		case "trace":
			return cfg.Logging.Trace, nil
		case "file":
			return cfg.Logging.File, nil
		case "max_size_mb":
			return cfg.Logging.MaxSizeMB, nil
		case "max_files":
			return cfg.Logging.MaxFiles, nil
		}
	case "host":
		if len(parts) < 2 {
			return cfg.Host, nil
		}
		if parts[1] == "configs" {
			return lookupHostConfig(cfg, path, parts[2:])
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path %q", path)
		}
		switch parts[1] {
		case "renderer_version":
			return cfg.Host.RendererVersion, nil
		case "egl_major":
			return cfg.Host.EGLMajor, nil
		case "egl_minor":
			return cfg.Host.EGLMinor, nil
		case "vendor":
			return cfg.Host.Vendor, nil
		case "extensions":
			return cfg.Host.Extensions, nil
		case "max_texture_units":
			return cfg.Host.MaxTextureUnits, nil
		case "draw_history":
			return cfg.Host.DrawHistory, nil
		}
	}
	return nil, fmt.Errorf("unknown path %q", path)
}

func lookupHostConfig(cfg *Config, path string, rest []string) (any, error) {
	if len(rest) == 0 {
		return cfg.Host.Configs, nil
	}
	idx, err := strconv.Atoi(rest[0])
	if err != nil || idx < 0 || idx >= len(cfg.Host.Configs) {
		return nil, fmt.Errorf("config index %q out of range", rest[0])
	}
	entry := cfg.Host.Configs[idx]
	switch len(rest) {
	case 1:
		return entry, nil
	case 2:
		v, ok := entry[rest[1]]
		if !ok {
			return nil, fmt.Errorf("config %d has no attribute %q", idx, rest[1])
		}
		return v, nil
	}
	return nil, fmt.Errorf("unknown path %q", path)
}
