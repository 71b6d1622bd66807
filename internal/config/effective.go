package config

import "fmt"

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Socket != nil {
		cfg.Socket = *raw.Socket
	}

	if l := raw.Logging; l != nil {
		if l.Level != nil {
			cfg.Logging.Level = *l.Level
		}
		if l.Trace != nil {
			cfg.Logging.Trace = *l.Trace
		}
		if l.File != nil {
			cfg.Logging.File = *l.File
		}
		if l.MaxSizeMB != nil {
			cfg.Logging.MaxSizeMB = *l.MaxSizeMB
		}
		if l.MaxFiles != nil {
			cfg.Logging.MaxFiles = *l.MaxFiles
		}
	}

	if h := raw.Host; h != nil {
		if h.RendererVersion != nil {
			cfg.Host.RendererVersion = *h.RendererVersion
		}
		if h.EGLMajor != nil {
			cfg.Host.EGLMajor = *h.EGLMajor
		}
		if h.EGLMinor != nil {
			cfg.Host.EGLMinor = *h.EGLMinor
		}
		if h.Vendor != nil {
			cfg.Host.Vendor = *h.Vendor
		}
		if h.Extensions != nil {
			cfg.Host.Extensions = append([]string(nil), (*h.Extensions)...)
		}
		if h.MaxTextureUnits != nil {
			cfg.Host.MaxTextureUnits = *h.MaxTextureUnits
		}
		if h.DrawHistory != nil {
			cfg.Host.DrawHistory = *h.DrawHistory
		}
		if h.Configs != nil {
			configs := make([]map[string]int, len(*h.Configs))
			for i, c := range *h.Configs {
				m := make(map[string]int, len(c))
				for k, v := range c {
					m[k] = v
				}
				configs[i] = m
			}
			cfg.Host.Configs = configs
		}
	}

	return cfg
}
