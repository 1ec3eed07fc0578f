// Package pick answers "what is under the pointer" for csg solids seen through an orbit camera.
// Whole objects are hit by marching the view ray through the solid; sub-shapes are hit in
// screen space against their projected points and polylines.
package pick

import (
	"github.com/chewxy/math32"

	"mycad/internal/camera"
	"mycad/internal/csg"
	"mycad/internal/geom"
	"mycad/internal/render"
)

const (
	// Tolerance is the pixel distance within which a sub-shape counts as under the pointer.
	Tolerance = 8
	// PointSize is the largest rectangle side, in pixels, that InRect treats as a pick at
	// the rectangle's center rather than a containment test.
	PointSize = 4
	// marchSteps is the number of samples taken along the part of a ray inside a solid's bounds.
	marchSteps = 256
)

// RayHit returns the distance along the unit ray (origin, dir) to the first point inside s.
func RayHit(s *csg.Solid, origin, dir geom.Vec3) (float32, bool) {
	b := csg.Bounds(s)
	t0, t1, ok := slab(b, origin, dir)
	if !ok {
		return 0, false
	}
	step := (t1 - t0) / marchSteps
	if step <= 0 {
		step = 1e-4
	}
	for t := t0; t <= t1; t += step {
		if csg.Contains(s, origin.Add(dir.Scale(t))) {
			return t, true
		}
	}
	return 0, false
}

// slab clips the ray against b, returning the entry and exit distances (entry clamped to 0).
func slab(b geom.Box3, o, d geom.Vec3) (t0, t1 float32, ok bool) {
	if b.IsEmpty() {
		return 0, 0, false
	}
	t0, t1 = 0, math32.Inf(1)
	axes := [3][4]float32{
		{o.X, d.X, b.Min.X, b.Max.X},
		{o.Y, d.Y, b.Min.Y, b.Max.Y},
		{o.Z, d.Z, b.Min.Z, b.Max.Z},
	}
	for _, a := range axes {
		org, dir, lo, hi := a[0], a[1], a[2], a[3]
		if math32.Abs(dir) < 1e-9 {
			if org < lo || org > hi {
				return 0, 0, false
			}
			continue
		}
		near, far := (lo-org)/dir, (hi-org)/dir
		if near > far {
			near, far = far, near
		}
		t0 = math32.Max(t0, near)
		t1 = math32.Min(t1, far)
		if t0 > t1 {
			return 0, 0, false
		}
	}
	return t0, t1, true
}

// Candidate is one sub-shape with its world-space geometry. A single point is a marker
// (vertex, face center); several points form a polyline (edge).
type Candidate struct {
	Sub    render.SubShape
	Points []geom.Vec3
}

// Candidates lists the sub-shapes of kind in s. Wires are reported at their face centers,
// shells and solids at their leaf centers, and a compound as a whole at its bounds center.
func Candidates(s *csg.Solid, kind geom.TopoKind) []Candidate {
	topo := csg.Explore(s)
	var out []Candidate
	add := func(i int, pts ...geom.Vec3) {
		out = append(out, Candidate{Sub: render.SubShape{Kind: kind, Index: i}, Points: pts})
	}
	switch kind {
	case geom.TopoVertex:
		for i, v := range topo.Vertices {
			add(i, v)
		}
	case geom.TopoEdge:
		for i, e := range topo.Edges {
			add(i, e...)
		}
	case geom.TopoWire, geom.TopoFace:
		for i, f := range topo.Faces {
			add(i, f.Center)
		}
	case geom.TopoShell, geom.TopoSolid:
		for i, l := range topo.Leaves {
			add(i, csg.Bounds(l).Center())
		}
	case geom.TopoCompound:
		if !s.IsLeaf() {
			add(0, csg.Bounds(s).Center())
		}
	}
	return out
}

// Distance is the screen distance in pixels from (x, y) to c, or +Inf when c is behind the eye.
func Distance(cam *camera.Orbit, c Candidate, x, y float32) float32 {
	best := math32.Inf(1)
	var px, py float32
	prev := false
	for _, p := range c.Points {
		sx, sy, ok := cam.Project(p)
		if !ok {
			prev = false
			continue
		}
		d := math32.Hypot(sx-x, sy-y)
		if prev {
			d = segment(px, py, sx, sy, x, y)
		}
		best = math32.Min(best, d)
		px, py, prev = sx, sy, true
	}
	return best
}

// segment is the distance from (x, y) to the segment (ax, ay)-(bx, by).
func segment(ax, ay, bx, by, x, y float32) float32 {
	dx, dy := bx-ax, by-ay
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math32.Hypot(x-ax, y-ay)
	}
	t := math32.Max(0, math32.Min(1, ((x-ax)*dx+(y-ay)*dy)/l2))
	return math32.Hypot(x-(ax+t*dx), y-(ay+t*dy))
}

// Nearest returns the candidate closest to (x, y) within Tolerance pixels.
func Nearest(cam *camera.Orbit, cands []Candidate, x, y int) (Candidate, float32, bool) {
	var hit Candidate
	best := float32(Tolerance)
	found := false
	for _, c := range cands {
		if d := Distance(cam, c, float32(x), float32(y)); d <= best {
			hit, best, found = c, d, true
		}
	}
	return hit, best, found
}

// Inside reports whether every point of pts projects inside r. Points behind the eye never are.
func Inside(cam *camera.Orbit, r render.Rect, pts ...geom.Vec3) bool {
	if len(pts) == 0 {
		return false
	}
	for _, p := range pts {
		x, y, ok := cam.Project(p)
		if !ok || !r.Contains(x, y) {
			return false
		}
	}
	return true
}

// Corners returns the eight corners of b.
func Corners(b geom.Box3) []geom.Vec3 {
	out := make([]geom.Vec3, 8)
	for i := range out {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		out[i] = c
	}
	return out
}

// Target is one displayed solid and the selection modes active on it.
type Target struct {
	Handle render.Handle
	Solid  *csg.Solid
	Modes  []render.Mode
}

// Hit returns the owner under (x, y). Sub-shapes within Tolerance win over whole objects, and
// among whole objects the nearest along the view ray wins. The zero Owner means nothing.
func Hit(cam *camera.Orbit, targets []Target, x, y int) render.Owner {
	origin, dir := cam.Ray(x, y)
	var (
		whole    render.Owner
		depth    float32
		sub      render.Owner
		subDist  float32
		foundSub bool
	)
	for _, tg := range targets {
		for _, m := range tg.Modes {
			if m == render.ModeWhole {
				if t, ok := RayHit(tg.Solid, origin, dir); ok && (whole.IsZero() || t < depth) {
					whole, depth = render.Owner{Handle: tg.Handle}, t
				}
				continue
			}
			c, d, ok := Nearest(cam, Candidates(tg.Solid, geom.TopoKind(m)), x, y)
			if ok && (!foundSub || d < subDist) {
				sub, subDist, foundSub = render.Owner{Handle: tg.Handle, Sub: c.Sub}, d, true
			}
		}
	}
	if foundSub {
		return sub
	}
	return whole
}

// InRect returns the owners selected by the screen rectangle r. A rectangle no larger than
// PointSize on either side picks what Hit finds at its center; a larger one takes every owner
// whose geometry lies entirely inside it.
func InRect(cam *camera.Orbit, targets []Target, r render.Rect) []render.Owner {
	r = r.Canon()
	if r.X1-r.X0 <= PointSize && r.Y1-r.Y0 <= PointSize {
		if o := Hit(cam, targets, (r.X0+r.X1)/2, (r.Y0+r.Y1)/2); !o.IsZero() {
			return []render.Owner{o}
		}
		return nil
	}
	var hits []render.Owner
	for _, tg := range targets {
		for _, m := range tg.Modes {
			if m == render.ModeWhole {
				if Inside(cam, r, Corners(csg.Bounds(tg.Solid))...) {
					hits = append(hits, render.Owner{Handle: tg.Handle})
				}
				continue
			}
			for _, c := range Candidates(tg.Solid, geom.TopoKind(m)) {
				if Inside(cam, r, c.Points...) {
					hits = append(hits, render.Owner{Handle: tg.Handle, Sub: c.Sub})
				}
			}
		}
	}
	return hits
}
