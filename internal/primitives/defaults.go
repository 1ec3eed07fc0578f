package primitives

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mycad/internal/geom"
)

// DefaultsPath is where a user override of the primitive defaults is looked up.
const DefaultsPath = "assets/primitives.yaml"

//go:embed defaults.yaml
var embeddedDefaults []byte

// Def is the YAML definition for a default primitive: the entry name it is inserted under and
// the dimensions used when the command gives none.
type Def struct {
	Kind   geom.PrimitiveKind   `yaml:"kind"`
	Name   string               `yaml:"name"`
	Params geom.PrimitiveParams `yaml:"params"`
}

type defsFile struct {
	Primitives []Def `yaml:"primitives"`
}

// Defaults maps each primitive kind to its definition.
type Defaults map[geom.PrimitiveKind]Def

// LoadDefaults reads the defaults at path, falling back to the embedded file when path is
// missing. Kinds absent from the file keep their embedded definition.
func LoadDefaults(path string) (Defaults, error) {
	base, err := parseDefaults(embeddedDefaults)
	if err != nil {
		return nil, fmt.Errorf("embedded primitive defaults: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return base, nil
	}
	over, err := parseDefaults(data)
	if err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}
	for k, d := range over {
		base[k] = d
	}
	return base, nil
}

// EmbeddedDefaults returns the built-in definitions.
func EmbeddedDefaults() Defaults {
	d, err := parseDefaults(embeddedDefaults)
	if err != nil {
		panic(err)
	}
	return d
}

func parseDefaults(data []byte) (Defaults, error) {
	var f defsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	out := make(Defaults, len(f.Primitives))
	for _, d := range f.Primitives {
		if d.Name == "" {
			d.Name = d.Kind.String()
		}
		out[d.Kind] = d
	}
	return out, nil
}

// Get returns the definition of kind. Unknown kinds return a definition named after the kind
// with zero dimensions, which the geometry engine rejects.
func (d Defaults) Get(kind geom.PrimitiveKind) Def {
	if def, ok := d[kind]; ok {
		return def
	}
	return Def{Kind: kind, Name: kind.String()}
}
