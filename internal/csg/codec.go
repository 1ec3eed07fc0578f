package csg

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"mycad/internal/geom"
)

// Codec is the kernel's interchange format: a Solid tree as YAML text.
type Codec struct{}

var _ geom.Codec = Codec{}

// Encode writes s as YAML.
func (Codec) Encode(s geom.Shape) (string, error) {
	sol, ok := asSolid(s)
	if !ok {
		return "", fmt.Errorf("csg: cannot encode %T", s)
	}
	data, err := yaml.Marshal(sol)
	if err != nil {
		return "", fmt.Errorf("csg: encode: %w", err)
	}
	return string(data), nil
}

// Decode parses a YAML tree and validates it.
func (Codec) Decode(blob string) (geom.Shape, error) {
	var sol Solid
	if err := yaml.Unmarshal([]byte(blob), &sol); err != nil {
		return nil, fmt.Errorf("csg: decode: %w", err)
	}
	if err := sol.validate(); err != nil {
		return nil, err
	}
	return &sol, nil
}
