package csg

import (
	"github.com/chewxy/math32"

	"mycad/internal/geom"
)

// circleSegments is the polyline resolution of circular edges.
const circleSegments = 32

// Face is one bounded surface of a leaf. Normal is the outward normal of a planar face and
// zero for curved faces.
type Face struct {
	Leaf   int
	Center geom.Vec3
	Normal geom.Vec3
}

// Topology lists the sub-shapes of a tree in world space, leaf by leaf.
// Edges are polylines; circular edges are tessellated.
type Topology struct {
	Vertices []geom.Vec3
	Edges    [][]geom.Vec3
	Faces    []Face
	Leaves   []*Solid
	compound bool
}

// Explore enumerates the sub-shapes of s.
func Explore(s *Solid) Topology {
	t := Topology{Leaves: s.Leaves(), compound: !s.IsLeaf()}
	for i, l := range t.Leaves {
		t.addLeaf(i, l)
	}
	return t
}

// Counts returns the number of sub-shapes per topological kind. Each face is bounded by one wire.
func (t Topology) Counts() map[geom.TopoKind]int {
	c := map[geom.TopoKind]int{
		geom.TopoVertex: len(t.Vertices),
		geom.TopoEdge:   len(t.Edges),
		geom.TopoWire:   len(t.Faces),
		geom.TopoFace:   len(t.Faces),
		geom.TopoShell:  len(t.Leaves),
		geom.TopoSolid:  len(t.Leaves),
	}
	if t.compound {
		c[geom.TopoCompound] = 1
	}
	return c
}

func (t *Topology) addLeaf(idx int, s *Solid) {
	m := s.Placement
	p := s.Params
	face := func(center, normal geom.Vec3) {
		f := Face{Leaf: idx, Center: m.Apply(center)}
		if !normal.IsZero() {
			f.Normal = m.ApplyDir(normal).Normalize()
		}
		t.Faces = append(t.Faces, f)
	}
	switch s.Prim {
	case geom.Box:
		var corners [8]geom.Vec3
		for i := range corners {
			c := geom.Vec3{}
			if i&1 != 0 {
				c.X = p.DX
			}
			if i&2 != 0 {
				c.Y = p.DY
			}
			if i&4 != 0 {
				c.Z = p.DZ
			}
			corners[i] = m.Apply(c)
			t.Vertices = append(t.Vertices, corners[i])
		}
		for i := 0; i < 8; i++ {
			for _, bit := range []int{1, 2, 4} {
				if i&bit == 0 {
					t.Edges = append(t.Edges, []geom.Vec3{corners[i], corners[i|bit]})
				}
			}
		}
		half := geom.V(p.DX/2, p.DY/2, p.DZ/2)
		face(geom.V(0, half.Y, half.Z), geom.V(-1, 0, 0))
		face(geom.V(p.DX, half.Y, half.Z), geom.V(1, 0, 0))
		face(geom.V(half.X, 0, half.Z), geom.V(0, -1, 0))
		face(geom.V(half.X, p.DY, half.Z), geom.V(0, 1, 0))
		face(geom.V(half.X, half.Y, 0), geom.V(0, 0, -1))
		face(geom.V(half.X, half.Y, p.DZ), geom.V(0, 0, 1))
	case geom.Cylinder, geom.Cone:
		r1, r2 := p.Radius, p.Radius
		if s.Prim == geom.Cone {
			r2 = p.Radius2
		}
		top := geom.V(0, 0, p.Height)
		t.Vertices = append(t.Vertices, m.Apply(geom.V(r1, 0, 0)), m.Apply(geom.V(r2, 0, p.Height)))
		if r1 > 0 {
			t.Edges = append(t.Edges, circle(m, geom.Vec3{}, r1))
			face(geom.Vec3{}, geom.V(0, 0, -1))
		}
		if r2 > 0 {
			t.Edges = append(t.Edges, circle(m, top, r2))
			face(top, geom.V(0, 0, 1))
		}
		t.Edges = append(t.Edges, []geom.Vec3{m.Apply(geom.V(r1, 0, 0)), m.Apply(geom.V(r2, 0, p.Height))})
		face(geom.V(0, 0, p.Height/2), geom.Vec3{})
	case geom.Sphere:
		r := p.Radius
		t.Vertices = append(t.Vertices, m.Apply(geom.V(0, 0, -r)), m.Apply(geom.V(0, 0, r)))
		seam := make([]geom.Vec3, 0, circleSegments/2+1)
		for i := 0; i <= circleSegments/2; i++ {
			a := -math32.Pi/2 + math32.Pi*float32(i)/float32(circleSegments/2)
			seam = append(seam, m.Apply(geom.V(r*math32.Cos(a), 0, r*math32.Sin(a))))
		}
		t.Edges = append(t.Edges, seam)
		face(geom.Vec3{}, geom.Vec3{})
	}
}

// circle tessellates a closed circle of radius r around the local Z axis at center.
func circle(m Mat4, center geom.Vec3, r float32) []geom.Vec3 {
	pts := make([]geom.Vec3, 0, circleSegments+1)
	for i := 0; i <= circleSegments; i++ {
		a := 2 * math32.Pi * float32(i) / circleSegments
		pts = append(pts, m.Apply(center.Add(geom.V(r*math32.Cos(a), r*math32.Sin(a), 0))))
	}
	return pts
}
