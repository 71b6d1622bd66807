package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawLoggingConfig struct {
	Level     *string `yaml:"level"`
	Trace     *bool   `yaml:"trace"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

type RawHostConfig struct {
	RendererVersion *int              `yaml:"renderer_version"`
	EGLMajor        *int              `yaml:"egl_major"`
	EGLMinor        *int              `yaml:"egl_minor"`
	Vendor          *string           `yaml:"vendor"`
	Extensions      *[]string         `yaml:"extensions"`
	MaxTextureUnits *int              `yaml:"max_texture_units"`
	DrawHistory     *int              `yaml:"draw_history"`
	Configs         *[]map[string]int `yaml:"configs"`
}

// RawConfig is one file as written. Nil fields were not set and leave the
// value from earlier files or the defaults in place.
type RawConfig struct {
	Include IncludeList       `yaml:"include"`
	Socket  *string           `yaml:"socket"`
	Logging *RawLoggingConfig `yaml:"logging"`
	Host    *RawHostConfig    `yaml:"host"`
}

// merge returns r with every field set in other applied on top. Lists are
// replaced, not appended.
func (r RawConfig) merge(other RawConfig) RawConfig {
	out := r
	if other.Socket != nil {
		out.Socket = other.Socket
	}
	if other.Logging != nil {
		merged := RawLoggingConfig{}
		if r.Logging != nil {
			merged = *r.Logging
		}
		o := other.Logging
		if o.Level != nil {
			merged.Level = o.Level
		}
		if o.Trace != nil {
			merged.Trace = o.Trace
		}
		if o.File != nil {
			merged.File = o.File
		}
		if o.MaxSizeMB != nil {
			merged.MaxSizeMB = o.MaxSizeMB
		}
		if o.MaxFiles != nil {
			merged.MaxFiles = o.MaxFiles
		}
		out.Logging = &merged
	}
	if other.Host != nil {
		merged := RawHostConfig{}
		if r.Host != nil {
			merged = *r.Host
		}
		o := other.Host
		if o.RendererVersion != nil {
			merged.RendererVersion = o.RendererVersion
		}
		if o.EGLMajor != nil {
			merged.EGLMajor = o.EGLMajor
		}
		if o.EGLMinor != nil {
			merged.EGLMinor = o.EGLMinor
		}
		if o.Vendor != nil {
			merged.Vendor = o.Vendor
		}
		if o.Extensions != nil {
			merged.Extensions = o.Extensions
		}
		if o.MaxTextureUnits != nil {
			merged.MaxTextureUnits = o.MaxTextureUnits
		}
		if o.DrawHistory != nil {
			merged.DrawHistory = o.DrawHistory
		}
		if o.Configs != nil {
			merged.Configs = o.Configs
		}
		out.Host = &merged
	}
	return out
}
