package csg

import (
	"github.com/chewxy/math32"

	"mycad/internal/geom"
)

// Mat4 is a row-major affine placement: three rows of (rotation | translation).
// Placements built by this package are always orthonormal (rotations and reflections),
// so Inverse is a transpose.
type Mat4 [12]float32

// Identity returns the identity placement.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	}
}

// Translation returns a placement that moves points by v.
func Translation(v geom.Vec3) Mat4 {
	m := Identity()
	m[3], m[7], m[11] = v.X, v.Y, v.Z
	return m
}

// Rotation returns a rotation by angle radians about the axis through origin along axis.
func Rotation(origin, axis geom.Vec3, angle float32) Mat4 {
	a := axis.Normalize()
	s, c := math32.Sincos(angle)
	t := 1 - c
	r := Mat4{
		t*a.X*a.X + c, t*a.X*a.Y - s*a.Z, t*a.X*a.Z + s*a.Y, 0,
		t*a.X*a.Y + s*a.Z, t*a.Y*a.Y + c, t*a.Y*a.Z - s*a.X, 0,
		t*a.X*a.Z - s*a.Y, t*a.Y*a.Z + s*a.X, t*a.Z*a.Z + c, 0,
	}
	return Translation(origin).Mul(r).Mul(Translation(origin.Scale(-1)))
}

// Reflection returns a mirror across the plane through origin with the given normal.
func Reflection(origin, normal geom.Vec3) Mat4 {
	n := normal.Normalize()
	d := 2 * origin.Dot(n)
	return Mat4{
		1 - 2*n.X*n.X, -2 * n.X * n.Y, -2 * n.X * n.Z, d * n.X,
		-2 * n.X * n.Y, 1 - 2*n.Y*n.Y, -2 * n.Y * n.Z, d * n.Y,
		-2 * n.X * n.Z, -2 * n.Y * n.Z, 1 - 2*n.Z*n.Z, d * n.Z,
	}
}

// Mul returns m∘o: o is applied first.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			v := m[row*4+0]*o[0*4+col] + m[row*4+1]*o[1*4+col] + m[row*4+2]*o[2*4+col]
			if col == 3 {
				v += m[row*4+3]
			}
			r[row*4+col] = v
		}
	}
	return r
}

// Apply transforms a point.
func (m Mat4) Apply(p geom.Vec3) geom.Vec3 {
	return geom.Vec3{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7],
		Z: m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11],
	}
}

// ApplyDir transforms a direction (no translation).
func (m Mat4) ApplyDir(v geom.Vec3) geom.Vec3 {
	return geom.Vec3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[4]*v.X + m[5]*v.Y + m[6]*v.Z,
		Z: m[8]*v.X + m[9]*v.Y + m[10]*v.Z,
	}
}

// Inverse returns the inverse of an orthonormal placement.
func (m Mat4) Inverse() Mat4 {
	r := Mat4{
		m[0], m[4], m[8], 0,
		m[1], m[5], m[9], 0,
		m[2], m[6], m[10], 0,
	}
	t := r.ApplyDir(geom.Vec3{X: m[3], Y: m[7], Z: m[11]})
	r[3], r[7], r[11] = -t.X, -t.Y, -t.Z
	return r
}

// Origin is the translation part.
func (m Mat4) Origin() geom.Vec3 { return geom.Vec3{X: m[3], Y: m[7], Z: m[11]} }
