package seed

import (
	_ "embed"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var builtinPresets []byte

type presetFile struct {
	Presets map[string]Options `yaml:"presets"`
}

// Presets is a named set of seed configurations.
type Presets map[string]Options

// DefaultPresets returns the presets compiled into the binary.
func DefaultPresets() Presets {
	p, err := ParsePresets(builtinPresets)
	if err != nil {
		panic(fmt.Sprintf("seed: invalid built-in presets: %v", err))
	}
	return p
}

// ParsePresets decodes a YAML document with a top-level "presets" map.
func ParsePresets(raw []byte) (Presets, error) {
	var doc presetFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	if len(doc.Presets) == 0 {
		return nil, fmt.Errorf("parse presets: no presets defined")
	}
	for name, opts := range doc.Presets {
		if err := opts.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
	}
	return Presets(doc.Presets), nil
}

// LoadPresetFile reads presets from path and layers them over the built-ins.
func LoadPresetFile(path string) (Presets, error) {
	f, err := os.Open(path) // #nosec G304 -- operator-supplied path
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	extra, err := ParsePresets(raw)
	if err != nil {
		return nil, err
	}

	merged := DefaultPresets()
	maps.Copy(merged, extra)
	return merged, nil
}

// Get returns the named preset with defaults applied.
func (p Presets) Get(name string) (Options, error) {
	opts, ok := p[name]
	if !ok {
		return Options{}, fmt.Errorf("unknown preset %q (available: %v)", name, p.Names())
	}
	return opts.withDefaults(), nil
}

// Names lists the preset names in sorted order.
func (p Presets) Names() []string {
	return slices.Sorted(maps.Keys(p))
}
