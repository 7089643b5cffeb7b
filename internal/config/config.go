// Package config holds the reserved names a MineScript program may never
// redeclare and the small per-project YAML file (`minescript.yaml`) used
// by cmd/minescript to fill in a pack name/description/output directory
// without requiring flags for every build.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Reserved function and storage names, fixed by the wire format the
// generated datapack must speak (spec.md §6).
const (
	SetupFunction = "_setup"
	VarsFunction  = "_vars"
	LoadFunction  = "load"
	TickFunction  = "tick"

	FakePlayer       = "#MineScript"
	StorageKey       = "minescript"
	LocalSuffix      = "+local"
	TempVarPrefix    = "_var"
	LoopFunctionStem = "_loop"
)

// Compiler-wide defaults, overridable per project via minescript.yaml.
const (
	DefaultPackFormat   = 1
	DefaultDescription  = "Generated using MineScript 2.0"
	DefaultOutputDir    = "dist"
	ProjectFileName     = "minescript.yaml"
	ProjectFileNameAlt  = "minescript.yml"
)

// Project is the optional `minescript.yaml` project file: everything a
// build needs that isn't already implied by the source file's own name.
type Project struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Output      string `yaml:"output,omitempty"`
}

// LoadProject reads and parses a minescript.yaml file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file %s: %w", path, err)
	}
	return ParseProject(data, path)
}

// ParseProject parses minescript.yaml content from bytes; path is used
// only in error messages.
func ParseProject(data []byte, path string) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("%s: name is required", path)
	}
	p.applyDefaults()
	return &p, nil
}

func (p *Project) applyDefaults() {
	if p.Description == "" {
		p.Description = DefaultDescription
	}
	if p.Output == "" {
		p.Output = DefaultOutputDir
	}
}

// FindProject searches for minescript.yaml (or .yml) starting at dir and
// walking up through parent directories, the way funxy's ext.FindConfig
// locates funxy.yaml.
func FindProject(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range [...]string{ProjectFileName, ProjectFileNameAlt} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
