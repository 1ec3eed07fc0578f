// Package csg is a small constructive-solid-geometry kernel. A shape is a tree of placed
// primitive leaves joined by boolean nodes. Booleans are kept symbolic; volume, bounds and
// emptiness are answered by point classification.
package csg

import (
	"fmt"

	"github.com/jinzhu/copier"

	"mycad/internal/geom"
)

// NodeKind tells a leaf from a boolean node.
type NodeKind int

const (
	Leaf NodeKind = iota
	UnionNode
	CutNode
	IntersectNode
)

var nodeNames = [...]string{"leaf", "union", "cut", "intersect"}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(nodeNames) {
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
	return nodeNames[k]
}

func (k NodeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *NodeKind) UnmarshalText(b []byte) error {
	for i, n := range nodeNames {
		if n == string(b) {
			*k = NodeKind(i)
			return nil
		}
	}
	return fmt.Errorf("csg: unknown node kind %q", b)
}

// Solid is one node of a CSG tree. Leaves carry a primitive and its placement in world space;
// boolean nodes carry exactly two children. Trees are treated as immutable once built:
// operations that move geometry clone first.
type Solid struct {
	Kind      NodeKind             `yaml:"kind"`
	Prim      geom.PrimitiveKind   `yaml:"prim,omitempty"`
	Params    geom.PrimitiveParams `yaml:"params,omitempty"`
	Placement Mat4                 `yaml:"placement,flow,omitempty"`
	Children  []*Solid             `yaml:"children,omitempty"`
}

// IsLeaf reports whether s is a placed primitive.
func (s *Solid) IsLeaf() bool { return s.Kind == Leaf }

// Leaves returns the leaves of s in left-to-right order.
func (s *Solid) Leaves() []*Solid {
	var out []*Solid
	s.walk(func(n *Solid) {
		if n.IsLeaf() {
			out = append(out, n)
		}
	})
	return out
}

func (s *Solid) walk(fn func(*Solid)) {
	fn(s)
	for _, c := range s.Children {
		c.walk(fn)
	}
}

// Clone returns a deep copy of s.
func Clone(s *Solid) (*Solid, error) {
	out := new(Solid)
	if err := copier.CopyWithOption(out, s, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("csg: clone: %w", err)
	}
	return out, nil
}

// validate checks the structural rules a decoded or constructed tree must satisfy.
func (s *Solid) validate() error {
	if s == nil {
		return fmt.Errorf("csg: nil node")
	}
	switch s.Kind {
	case Leaf:
		if len(s.Children) != 0 {
			return fmt.Errorf("csg: leaf with children")
		}
		return validParams(s.Prim, s.Params)
	case UnionNode, CutNode, IntersectNode:
		if len(s.Children) != 2 {
			return fmt.Errorf("csg: %s node needs 2 children, has %d", s.Kind, len(s.Children))
		}
		for _, c := range s.Children {
			if err := c.validate(); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("csg: unknown node kind %d", s.Kind)
}

func validParams(kind geom.PrimitiveKind, p geom.PrimitiveParams) error {
	switch kind {
	case geom.Box:
		if p.DX <= 0 || p.DY <= 0 || p.DZ <= 0 {
			return fmt.Errorf("csg: box dimensions must be positive")
		}
	case geom.Cylinder:
		if p.Radius <= 0 || p.Height <= 0 {
			return fmt.Errorf("csg: cylinder radius and height must be positive")
		}
	case geom.Sphere:
		if p.Radius <= 0 {
			return fmt.Errorf("csg: sphere radius must be positive")
		}
	case geom.Cone:
		if p.Radius < 0 || p.Radius2 < 0 || p.Radius+p.Radius2 == 0 || p.Height <= 0 {
			return fmt.Errorf("csg: cone needs a positive height and at least one positive radius")
		}
	default:
		return fmt.Errorf("csg: unknown primitive %v", kind)
	}
	return nil
}
