package csg

import (
	"github.com/chewxy/math32"

	"mycad/internal/geom"
)

// Contains reports whether the world point p lies inside s (boundary counts as inside).
func Contains(s *Solid, p geom.Vec3) bool {
	switch s.Kind {
	case Leaf:
		return leafContains(s, s.Placement.Inverse().Apply(p))
	case UnionNode:
		return Contains(s.Children[0], p) || Contains(s.Children[1], p)
	case CutNode:
		return Contains(s.Children[0], p) && !Contains(s.Children[1], p)
	case IntersectNode:
		return Contains(s.Children[0], p) && Contains(s.Children[1], p)
	}
	return false
}

func leafContains(s *Solid, q geom.Vec3) bool {
	p := s.Params
	switch s.Prim {
	case geom.Box:
		return q.X >= 0 && q.X <= p.DX && q.Y >= 0 && q.Y <= p.DY && q.Z >= 0 && q.Z <= p.DZ
	case geom.Cylinder:
		return q.Z >= 0 && q.Z <= p.Height && q.X*q.X+q.Y*q.Y <= p.Radius*p.Radius
	case geom.Sphere:
		return q.Dot(q) <= p.Radius*p.Radius
	case geom.Cone:
		if q.Z < 0 || q.Z > p.Height {
			return false
		}
		r := p.Radius + (p.Radius2-p.Radius)*q.Z/p.Height
		return q.X*q.X+q.Y*q.Y <= r*r
	}
	return false
}

// localBounds is the leaf's box in its own frame.
func localBounds(s *Solid) geom.Box3 {
	p := s.Params
	switch s.Prim {
	case geom.Box:
		return geom.Box3{Max: geom.V(p.DX, p.DY, p.DZ)}
	case geom.Cylinder:
		return geom.Box3{Min: geom.V(-p.Radius, -p.Radius, 0), Max: geom.V(p.Radius, p.Radius, p.Height)}
	case geom.Sphere:
		return geom.Box3{Min: geom.V(-p.Radius, -p.Radius, -p.Radius), Max: geom.V(p.Radius, p.Radius, p.Radius)}
	case geom.Cone:
		r := math32.Max(p.Radius, p.Radius2)
		return geom.Box3{Min: geom.V(-r, -r, 0), Max: geom.V(r, r, p.Height)}
	}
	return geom.EmptyBox()
}

// Bounds returns a world-space box enclosing s. Cuts are bounded by their left operand and
// intersections by the overlap of both operands.
func Bounds(s *Solid) geom.Box3 {
	switch s.Kind {
	case Leaf:
		lb := localBounds(s)
		out := geom.EmptyBox()
		for i := 0; i < 8; i++ {
			c := geom.Vec3{X: lb.Min.X, Y: lb.Min.Y, Z: lb.Min.Z}
			if i&1 != 0 {
				c.X = lb.Max.X
			}
			if i&2 != 0 {
				c.Y = lb.Max.Y
			}
			if i&4 != 0 {
				c.Z = lb.Max.Z
			}
			out = out.Extend(s.Placement.Apply(c))
		}
		return out
	case UnionNode:
		return Bounds(s.Children[0]).Union(Bounds(s.Children[1]))
	case CutNode:
		return Bounds(s.Children[0])
	case IntersectNode:
		return Bounds(s.Children[0]).Intersect(Bounds(s.Children[1]))
	}
	return geom.EmptyBox()
}

// sample classifies a regular grid of cell centers inside Bounds(s). It returns the sum of the
// inside points and how many there were.
func (k *Kernel) sample(s *Solid) (sum geom.Vec3, n int) {
	b := Bounds(s)
	if b.IsEmpty() {
		return geom.Vec3{}, 0
	}
	res := k.Resolution
	if res <= 0 {
		res = DefaultResolution
	}
	size := b.Size()
	step := size.Scale(1 / float32(res))
	for i := 0; i < res; i++ {
		for j := 0; j < res; j++ {
			for l := 0; l < res; l++ {
				p := geom.Vec3{
					X: b.Min.X + (float32(i)+0.5)*step.X,
					Y: b.Min.Y + (float32(j)+0.5)*step.Y,
					Z: b.Min.Z + (float32(l)+0.5)*step.Z,
				}
				if Contains(s, p) {
					sum = sum.Add(p)
					n++
				}
			}
		}
	}
	return sum, n
}

// leafVolume is exact for every primitive.
func leafVolume(s *Solid) float32 {
	p := s.Params
	switch s.Prim {
	case geom.Box:
		return p.DX * p.DY * p.DZ
	case geom.Cylinder:
		return math32.Pi * p.Radius * p.Radius * p.Height
	case geom.Sphere:
		return 4.0 / 3.0 * math32.Pi * p.Radius * p.Radius * p.Radius
	case geom.Cone:
		return math32.Pi * p.Height / 3 * (p.Radius*p.Radius + p.Radius*p.Radius2 + p.Radius2*p.Radius2)
	}
	return 0
}

// leafCentroid is exact in the leaf frame for every primitive.
func leafCentroid(s *Solid) geom.Vec3 {
	p := s.Params
	var c geom.Vec3
	switch s.Prim {
	case geom.Box:
		c = geom.V(p.DX/2, p.DY/2, p.DZ/2)
	case geom.Cylinder:
		c = geom.V(0, 0, p.Height/2)
	case geom.Cone:
		a, b := p.Radius, p.Radius2
		c = geom.V(0, 0, p.Height*(a*a+2*a*b+3*b*b)/(4*(a*a+a*b+b*b)))
	}
	return s.Placement.Apply(c)
}

// Properties reports the inspection values of a shape. Leaves are computed exactly;
// boolean trees are estimated by grid classification.
func (k *Kernel) Properties(shape geom.Shape) (geom.Properties, bool) {
	s, ok := asSolid(shape)
	if !ok {
		return geom.Properties{}, false
	}
	props := geom.Properties{Bounds: Bounds(s), Counts: Explore(s).Counts()}
	if s.IsLeaf() {
		props.Type = "Solid"
		props.Volume = leafVolume(s)
		props.Centroid = leafCentroid(s)
		return props, true
	}
	props.Type = "Compound"
	sum, n := k.sample(s)
	if n == 0 {
		return props, true
	}
	size := props.Bounds.Size()
	res := float32(k.Resolution)
	if res <= 0 {
		res = DefaultResolution
	}
	props.Volume = float32(n) * size.X * size.Y * size.Z / (res * res * res)
	props.Centroid = sum.Scale(1 / float32(n))
	return props, true
}
