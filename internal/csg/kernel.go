package csg

import (
	"github.com/chewxy/math32"

	"mycad/internal/geom"
)

// DefaultResolution is the number of classification samples per axis used for volume estimates.
const DefaultResolution = 24

// Kernel implements geom.Engine over Solid trees.
type Kernel struct {
	// Resolution is the per-axis sample count for volume, centroid and emptiness checks.
	Resolution int
}

// New returns a kernel with DefaultResolution.
func New() *Kernel {
	return &Kernel{Resolution: DefaultResolution}
}

var _ geom.Engine = (*Kernel)(nil)

func asSolid(s geom.Shape) (*Solid, bool) {
	v, ok := s.(*Solid)
	return v, ok && v != nil
}

// MakePrimitive builds a primitive at the origin: a box spans (0,0,0)-(dx,dy,dz), a cylinder and
// a cone stand on the XY plane along +Z, a sphere is centered on the origin.
// Invalid dimensions yield nil.
func (k *Kernel) MakePrimitive(kind geom.PrimitiveKind, p geom.PrimitiveParams) geom.Shape {
	if validParams(kind, p) != nil {
		return nil
	}
	return &Solid{Kind: Leaf, Prim: kind, Params: p, Placement: Identity()}
}

// Boolean combines a and b. Children are shared, not copied. A cut or intersection that
// classifies as empty returns nil.
func (k *Kernel) Boolean(op geom.BooleanOp, a, b geom.Shape) geom.Shape {
	sa, ok := asSolid(a)
	if !ok {
		return nil
	}
	sb, ok := asSolid(b)
	if !ok {
		return nil
	}
	var kind NodeKind
	switch op {
	case geom.Union:
		kind = UnionNode
	case geom.Cut:
		kind = CutNode
	case geom.Intersect:
		kind = IntersectNode
		if Bounds(sa).Intersect(Bounds(sb)).IsEmpty() {
			return nil
		}
	default:
		return nil
	}
	out := &Solid{Kind: kind, Children: []*Solid{sa, sb}}
	if kind != UnionNode {
		if _, n := k.sample(out); n == 0 {
			return nil
		}
	}
	return out
}

// Transform returns a moved copy of s.
func (k *Kernel) Transform(kind geom.TransformKind, s geom.Shape, p geom.TransformParams) geom.Shape {
	src, ok := asSolid(s)
	if !ok {
		return nil
	}
	var m Mat4
	switch kind {
	case geom.Translate:
		m = Translation(p.Offset)
	case geom.Rotate:
		if p.Axis.IsZero() {
			return nil
		}
		m = Rotation(p.Origin, p.Axis, p.Angle*math32.Pi/180)
	case geom.Mirror:
		if p.Axis.IsZero() {
			return nil
		}
		m = Reflection(p.Origin, p.Axis)
	default:
		return nil
	}
	out, err := place(src, m)
	if err != nil {
		return nil
	}
	return out
}

// Array returns Count copies of s. Copy 0 coincides with s.
func (k *Kernel) Array(kind geom.ArrayKind, s geom.Shape, p geom.ArrayParams) []geom.Shape {
	src, ok := asSolid(s)
	if !ok || p.Count <= 0 {
		return nil
	}
	var out []geom.Shape
	switch kind {
	case geom.Linear:
		for i := 0; i < p.Count; i++ {
			off := p.Direction.Scale(float32(i) * p.Spacing)
			if c := k.Transform(geom.Translate, src, geom.TransformParams{Offset: off}); c != nil {
				out = append(out, c)
			}
		}
	case geom.Circular:
		if p.Axis.IsZero() {
			return nil
		}
		step := p.Angle / float32(p.Count)
		for i := 0; i < p.Count; i++ {
			tp := geom.TransformParams{Origin: p.Origin, Axis: p.Axis, Angle: float32(i) * step}
			if c := k.Transform(geom.Rotate, src, tp); c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}

// place clones s and premultiplies every leaf placement by m.
func place(s *Solid, m Mat4) (*Solid, error) {
	c, err := Clone(s)
	if err != nil {
		return nil, err
	}
	for _, l := range c.Leaves() {
		l.Placement = m.Mul(l.Placement)
	}
	return c, nil
}
