package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

// Source is where an effective value came from.
type Source struct {
	Kind   SourceKind
	Name   string // for default
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config *Config
	// Sources maps dotted key paths to the file position that last set them.
	// List items are keyed by index, e.g. host.configs.1.red_size.
	Sources map[string]Source
	Files   []string // in load order
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "rcgl", "config.yaml"), nil
}

// Load reads the configuration from the standard location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources is Load with per-key sources for config explain.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes on top of the defaults. A
// missing file yields the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &loader{
		sources: make(map[string]Source),
		done:    make(map[string]bool),
	}
	if _, err := os.Stat(path); err == nil {
		if err := l.loadFile(path, nil); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg := BuildEffectiveConfig(l.raw)
	if err := cfg.Validate(); err != nil {
		return nil, l.locate(err)
	}
	return &LoadResult{Config: cfg, Sources: l.sources, Files: l.files}, nil
}

// loader merges one config file and everything it includes.
type loader struct {
	raw     RawConfig
	sources map[string]Source
	files   []string
	done    map[string]bool
}

// loadFile merges the includes of path in order, then path itself. chain
// lists the files whose includes are being expanded.
func (l *loader) loadFile(path string, chain []string) error {
	file, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(file); err == nil {
		file = real
	}
	if slices.Contains(chain, file) {
		return fmt.Errorf("include cycle detected: %s -> %s", strings.Join(chain, " -> "), file)
	}
	if l.done[file] {
		return nil
	}
	l.done[file] = true

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("%s: failed to read: %w", file, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	var raw RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w", file, err)
	}

	sources, lists := keyPositions(&doc, file)
	next := append(chain[:len(chain):len(chain)], file)
	for i, include := range raw.Include {
		at, ok := sources["include."+strconv.Itoa(i)]
		if !ok {
			at = sources["include"]
		}
		paths, err := includePaths(file, include)
		if err != nil {
			return fmt.Errorf("%s:%d:%d: include %q: %w", file, at.Line, at.Column, include, err)
		}
		for _, p := range paths {
			if err := l.loadFile(p, next); err != nil {
				return err
			}
		}
	}

	l.raw = l.raw.merge(raw)
	// A list replaces the earlier one whole, items included.
	for _, list := range lists {
		for key := range l.sources {
			if strings.HasPrefix(key, list+".") {
				delete(l.sources, key)
			}
		}
	}
	for key, src := range sources {
		l.sources[key] = src
	}
	l.files = append(l.files, file)
	return nil
}

// locate attaches the closest known source to a validation error.
func (l *loader) locate(err error) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := nearestSource(l.sources, verr.Path); ok {
		verr.Source = src
	}
	return err
}

// nearestSource looks up path, then its parents.
func nearestSource(sources map[string]Source, path string) (Source, bool) {
	for {
		if src, ok := sources[path]; ok {
			return src, true
		}
		i := strings.LastIndex(path, ".")
		if i < 0 {
			return Source{}, false
		}
		path = path[:i]
	}
}

// keyPositions maps every dotted key path in doc to the position of its
// value and reports the paths that hold lists.
func keyPositions(doc *yaml.Node, file string) (map[string]Source, []string) {
	out := make(map[string]Source)
	var lists []string
	var walk func(n *yaml.Node, path string)
	walk = func(n *yaml.Node, path string) {
		if path != "" {
			out[path] = Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
		}
		switch n.Kind {
		case yaml.DocumentNode:
			for _, c := range n.Content {
				walk(c, path)
			}
		case yaml.MappingNode:
			for i := 0; i+1 < len(n.Content); i += 2 {
				walk(n.Content[i+1], joinPath(path, n.Content[i].Value))
			}
		case yaml.SequenceNode:
			lists = append(lists, path)
			for i, item := range n.Content {
				walk(item, joinPath(path, strconv.Itoa(i)))
			}
		}
	}
	walk(doc, "")
	return out, lists
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// includePaths resolves an include relative to the including file. A
// directory expands to its *.yaml and *.yml files in name order.
func includePaths(from, include string) ([]string, error) {
	if include == "" {
		return nil, fmt.Errorf("path is empty")
	}
	if rest, ok := strings.CutPrefix(include, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		include = filepath.Join(home, rest)
	}
	if !filepath.IsAbs(include) {
		include = filepath.Join(filepath.Dir(from), include)
	}

	info, err := os.Stat(include)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{include}, nil
	}
	entries, err := os.ReadDir(include)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		ext := strings.ToLower(filepath.Ext(ent.Name()))
		if ent.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		files = append(files, filepath.Join(include, ent.Name()))
	}
	sort.Strings(files)
	return files, nil
}
