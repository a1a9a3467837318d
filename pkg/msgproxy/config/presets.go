// Package config loads pipeline presets: a YAML file mapping a preset
// name to an ordered list of stage tokens, so a frequently used pipeline
// can be invoked by name instead of spelling out every token on the
// command line. This is a domain-stack addition beyond the distilled
// spec (see SPEC_FULL.md §4.I), repurposing the teacher's own
// gopkg.in/yaml.v3 config-loading idiom (pkg/snmpcollector/config/loader.go)
// for a new document shape.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Presets maps a preset name to its ordered stage-token list, e.g.:
//
//	presets:
//	  echo-tcp:
//	    - "tcp:0.0.0.0:9000"
//	    - "-"
type Presets struct {
	Presets map[string][]string `yaml:"presets"`
}

// LoadPresets reads and parses a presets YAML file at path.
func LoadPresets(path string) (Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Presets{}, fmt.Errorf("config: read presets %s: %w", path, err)
	}
	var p Presets
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Presets{}, fmt.Errorf("config: parse presets %s: %w", path, err)
	}
	return p, nil
}

// Lookup returns the stage-token list for name, or an error naming the
// preset file and the unknown name.
func (p Presets) Lookup(path, name string) ([]string, error) {
	tokens, ok := p.Presets[name]
	if !ok {
		return nil, fmt.Errorf("config: preset %q not found in %s", name, path)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("config: preset %q in %s has no stages", name, path)
	}
	return tokens, nil
}
