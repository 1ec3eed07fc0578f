package camera

import (
	"image"
	"slices"

	"github.com/chewxy/math32"

	"mycad/internal/geom"
)

// GizmoAxis is one end of the orientation gizmo. Clicking it looks along the axis from that side.
type GizmoAxis struct {
	Dir    geom.Vec3
	Preset Preset
	End    image.Point
	// Depth grows toward the viewer; ends are returned back to front.
	Depth float32
}

var gizmoAxes = []struct {
	dir    geom.Vec3
	preset Preset
}{
	{geom.V(1, 0, 0), Right},
	{geom.V(-1, 0, 0), Left},
	{geom.V(0, 1, 0), Back},
	{geom.V(0, -1, 0), Front},
	{geom.V(0, 0, 1), Top},
	{geom.V(0, 0, -1), Bottom},
}

// Gizmo lays out the six axis ends around center for the current orientation.
func (o *Orbit) Gizmo(center image.Point, length float32) []GizmoAxis {
	fwd, right, up := o.Basis()
	out := make([]GizmoAxis, 0, len(gizmoAxes))
	for _, a := range gizmoAxes {
		x := a.dir.Dot(right) * length
		y := -a.dir.Dot(up) * length
		out = append(out, GizmoAxis{
			Dir:    a.dir,
			Preset: a.preset,
			End:    center.Add(image.Pt(int(math32.Round(x)), int(math32.Round(y)))),
			Depth:  -a.dir.Dot(fwd),
		})
	}
	slices.SortStableFunc(out, func(a, b GizmoAxis) int {
		switch {
		case a.Depth < b.Depth:
			return -1
		case a.Depth > b.Depth:
			return 1
		}
		return 0
	})
	return out
}

// GizmoHit returns the front-most axis end within radius pixels of p.
func GizmoHit(axes []GizmoAxis, p image.Point, radius int) (GizmoAxis, bool) {
	for i := len(axes) - 1; i >= 0; i-- {
		d := axes[i].End.Sub(p)
		if d.X*d.X+d.Y*d.Y <= radius*radius {
			return axes[i], true
		}
	}
	return GizmoAxis{}, false
}
