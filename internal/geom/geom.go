// Package geom declares the boundary between the editor and a geometry kernel.
// Shapes are opaque: the editor only passes them around and tests them for nil.
package geom

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// Shape is an opaque value produced and consumed by an Engine. A nil Shape is the null shape.
type Shape any

// Vec3 is a point or direction in model space. Z is up.
type Vec3 struct {
	X float32 `yaml:"x" json:"x"`
	Y float32 `yaml:"y" json:"y"`
	Z float32 `yaml:"z" json:"z"`
}

// V is shorthand for Vec3{x, y, z}.
func V(x, y, z float32) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (a Vec3) Add(b Vec3) Vec3      { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3      { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float32) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float32   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Len() float32         { return math32.Sqrt(a.Dot(a)) }
func (a Vec3) IsZero() bool         { return a.X == 0 && a.Y == 0 && a.Z == 0 }
func (a Vec3) String() string       { return fmt.Sprintf("(%.3g, %.3g, %.3g)", a.X, a.Y, a.Z) }
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{a.Y*b.Z - a.Z*b.Y, a.Z*b.X - a.X*b.Z, a.X*b.Y - a.Y*b.X}
}

// Normalize returns a unit vector in the direction of a, or the zero vector when a is zero.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// Box3 is an axis-aligned bounding box. A box with Min > Max on any axis is empty.
type Box3 struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// EmptyBox returns a box that any Extend call will replace.
func EmptyBox() Box3 {
	inf := math32.Inf(1)
	return Box3{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

// IsEmpty reports whether b contains no points.
func (b Box3) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend grows b to contain p.
func (b Box3) Extend(p Vec3) Box3 {
	b.Min = Vec3{math32.Min(b.Min.X, p.X), math32.Min(b.Min.Y, p.Y), math32.Min(b.Min.Z, p.Z)}
	b.Max = Vec3{math32.Max(b.Max.X, p.X), math32.Max(b.Max.Y, p.Y), math32.Max(b.Max.Z, p.Z)}
	return b
}

// Union returns the smallest box containing both boxes.
func (b Box3) Union(o Box3) Box3 {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Intersect returns the overlap of two boxes, which may be empty.
func (b Box3) Intersect(o Box3) Box3 {
	return Box3{
		Min: Vec3{math32.Max(b.Min.X, o.Min.X), math32.Max(b.Min.Y, o.Min.Y), math32.Max(b.Min.Z, o.Min.Z)},
		Max: Vec3{math32.Min(b.Max.X, o.Max.X), math32.Min(b.Max.Y, o.Max.Y), math32.Min(b.Max.Z, o.Max.Z)},
	}
}

func (b Box3) Center() Vec3 { return b.Min.Add(b.Max).Scale(0.5) }
func (b Box3) Size() Vec3   { return b.Max.Sub(b.Min) }

// TopoKind is a topological sub-shape granularity.
type TopoKind int

const (
	TopoShape TopoKind = iota
	TopoVertex
	TopoEdge
	TopoWire
	TopoFace
	TopoShell
	TopoSolid
	TopoCompSolid
	TopoCompound
)

var topoNames = [...]string{"Shape", "Vertex", "Edge", "Wire", "Face", "Shell", "Solid", "CompSolid", "Compound"}

func (k TopoKind) String() string {
	if k < 0 || int(k) >= len(topoNames) {
		return fmt.Sprintf("TopoKind(%d)", int(k))
	}
	return topoNames[k]
}

// PrimitiveKind names a primitive solid.
type PrimitiveKind int

const (
	Box PrimitiveKind = iota
	Cylinder
	Sphere
	Cone
)

var primitiveNames = [...]string{"box", "cylinder", "sphere", "cone"}

func (k PrimitiveKind) String() string {
	if k < 0 || int(k) >= len(primitiveNames) {
		return fmt.Sprintf("PrimitiveKind(%d)", int(k))
	}
	return primitiveNames[k]
}

// ParsePrimitive maps a case-insensitive primitive name to its kind.
func ParsePrimitive(s string) (PrimitiveKind, error) {
	for i, n := range primitiveNames {
		if strings.EqualFold(s, n) {
			return PrimitiveKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown primitive %q", s)
}

// MarshalText lets primitive kinds appear by name in YAML and JSON.
func (k PrimitiveKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText is the inverse of MarshalText.
func (k *PrimitiveKind) UnmarshalText(b []byte) error {
	v, err := ParsePrimitive(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// PrimitiveParams carries the dimensions of a primitive. Which fields matter depends on the kind:
// Box uses DX, DY, DZ; Cylinder uses Radius and Height; Sphere uses Radius;
// Cone uses Radius (base), Radius2 (top) and Height.
type PrimitiveParams struct {
	DX      float32 `yaml:"dx,omitempty"`
	DY      float32 `yaml:"dy,omitempty"`
	DZ      float32 `yaml:"dz,omitempty"`
	Radius  float32 `yaml:"radius,omitempty"`
	Radius2 float32 `yaml:"radius2,omitempty"`
	Height  float32 `yaml:"height,omitempty"`
}

// BooleanOp is a binary solid operation.
type BooleanOp int

const (
	Union BooleanOp = iota
	Cut
	Intersect
)

// String returns the name the edit pipeline gives a boolean result.
func (op BooleanOp) String() string {
	switch op {
	case Union:
		return "Union"
	case Cut:
		return "Cut"
	case Intersect:
		return "Intersect"
	}
	return fmt.Sprintf("BooleanOp(%d)", int(op))
}

// TransformKind is a rigid transform.
type TransformKind int

const (
	Translate TransformKind = iota
	Rotate
	Mirror
)

// ResultName is the entry name given to a transformed copy.
func (k TransformKind) ResultName() string {
	switch k {
	case Translate:
		return "Translated"
	case Rotate:
		return "Rotated"
	case Mirror:
		return "Mirrored"
	}
	return "Transformed"
}

// TransformParams parameterizes a transform. Translate uses Offset. Rotate turns by Angle degrees
// about the axis through Origin along Axis. Mirror reflects across the plane through Origin with
// normal Axis.
type TransformParams struct {
	Offset Vec3
	Origin Vec3
	Axis   Vec3
	Angle  float32
}

// ArrayKind is a patterned copy operation.
type ArrayKind int

const (
	Linear ArrayKind = iota
	Circular
)

// ArrayParams parameterizes an array. Linear copy i is offset by Direction*i*Spacing.
// Circular copy i is rotated by i*Angle/Count degrees about the axis through Origin along Axis.
type ArrayParams struct {
	Count     int
	Direction Vec3
	Spacing   float32
	Origin    Vec3
	Axis      Vec3
	Angle     float32
}

// Properties describes a shape for inspection.
type Properties struct {
	Type     string
	Volume   float32
	Bounds   Box3
	Centroid Vec3
	Counts   map[TopoKind]int
}

// Engine computes shapes. Every method may return nil or empty on geometric failure;
// callers treat that as an engine failure.
type Engine interface {
	MakePrimitive(kind PrimitiveKind, p PrimitiveParams) Shape
	Boolean(op BooleanOp, a, b Shape) Shape
	Transform(kind TransformKind, s Shape, p TransformParams) Shape
	Array(kind ArrayKind, s Shape, p ArrayParams) []Shape
	Properties(s Shape) (Properties, bool)
}

// Codec converts shapes to and from the kernel's interchange text.
type Codec interface {
	Encode(s Shape) (string, error)
	Decode(blob string) (Shape, error)
}
