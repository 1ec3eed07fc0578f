package viewer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"mycad/internal/csg"
	"mycad/internal/geom"
	"mycad/internal/pick"
	"mycad/internal/render"
)

const (
	hoverLighten = 0.35
	// Marker sizes scale with the camera distance so they keep a steady on-screen size.
	markerScale = 0.008
	edgeScale   = 0.0025
	toolAlpha   = 90
)

var (
	axisRed   = rl.NewColor(220, 80, 80, 255)
	axisGreen = rl.NewColor(80, 200, 80, 255)
	axisBlue  = rl.NewColor(80, 120, 230, 255)
	gizmoBack = rl.NewColor(40, 42, 48, 200)
)

func vec(p geom.Vec3) rl.Vector3 { return rl.NewVector3(p.X, p.Y, p.Z) }

// matrix converts a row-major csg placement into raylib's column-major matrix.
func matrix(m csg.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M4: m[1], M8: m[2], M12: m[3],
		M1: m[4], M5: m[5], M9: m[6], M13: m[7],
		M2: m[8], M6: m[9], M10: m[10], M14: m[11],
		M15: 1,
	}
}

// mirrored reports whether m flips handedness, which reverses triangle winding.
func mirrored(m csg.Mat4) bool {
	det := m[0]*(m[5]*m[10]-m[6]*m[9]) - m[1]*(m[4]*m[10]-m[6]*m[8]) + m[2]*(m[4]*m[9]-m[5]*m[8])
	return det < 0
}

// camera3D builds the raylib camera matching the orbit camera.
func (v *Viewer) camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   vec(v.Cam.Eye()),
		Target:     vec(v.Cam.Target),
		Up:         vec(v.Cam.Up()),
		Fovy:       v.Cam.Fovy,
		Projection: rl.CameraPerspective,
	}
}

// eachLeaf calls fn for every leaf of s. Leaves removed by a cut or clipped by an
// intersection are reported as tools.
func eachLeaf(s *csg.Solid, tool bool, fn func(leaf *csg.Solid, tool bool)) {
	if s.IsLeaf() {
		fn(s, tool)
		return
	}
	for i, c := range s.Children {
		eachLeaf(c, tool || (i > 0 && s.Kind != csg.UnionNode), fn)
	}
}

func withAlpha(c color.RGBA, transparency float32) color.RGBA {
	c.A = uint8(float32(c.A) * (1 - transparency))
	return c
}

// Draw renders grid, shapes, selection markers and the gizmo. Call between BeginDrawing and
// EndDrawing, before any 2D overlay.
func (v *Viewer) Draw() {
	fwd, right, up := v.Cam.Basis()
	eye := v.Cam.Eye()
	light := fwd.Scale(-1).Add(up.Scale(0.6)).Add(right.Scale(0.4)).Normalize()
	v.meshes.SetView([3]float32{eye.X, eye.Y, eye.Z}, [3]float32{light.X, light.Y, light.Z})

	selected := make(map[render.Owner]bool)
	for _, o := range v.Selected() {
		selected[o] = true
	}
	detected := v.Detected()

	rl.BeginMode3D(v.camera3D())
	if v.grid.Visible {
		v.grid.Draw()
	}
	// Opaque shapes first so transparent ones blend over them.
	for _, transparent := range []bool{false, true} {
		for _, h := range v.Handles() {
			obj, _ := v.Object(h)
			s, ok := solidOf(obj)
			if !ok || !obj.Visible || (obj.Transparency > 0) != transparent {
				continue
			}
			whole := render.Owner{Handle: h}
			v.drawShape(s, obj, selected[whole], detected == whole)
		}
	}
	for o := range selected {
		v.drawSub(o, v.palette.Selection)
	}
	if !detected.IsZero() && !selected[detected] {
		v.drawSub(detected, v.palette.Highlight)
	}
	rl.EndMode3D()

	v.drawGizmo(detected.Handle == v.gizmo)
}

func (v *Viewer) drawShape(s *csg.Solid, obj *render.Object, selected, hovered bool) {
	body := obj.Color
	switch {
	case selected:
		body = v.palette.Selection
	case hovered:
		body = render.Lighten(body, hoverLighten)
	}
	body = withAlpha(body, obj.Transparency)
	eachLeaf(s, false, func(l *csg.Solid, tool bool) {
		place := matrix(l.Placement)
		if tool {
			v.meshes.DrawWires(l.Prim, l.Params, place, withAlpha(body, 1-float32(toolAlpha)/255))
			return
		}
		flip := mirrored(l.Placement)
		if flip {
			rl.DisableBackfaceCulling()
		}
		v.meshes.Draw(l.Prim, l.Params, place, body)
		if flip {
			rl.EnableBackfaceCulling()
		}
		switch {
		case selected:
			v.meshes.DrawWires(l.Prim, l.Params, place, v.palette.Selection)
		case hovered:
			v.meshes.DrawWires(l.Prim, l.Params, place, v.palette.Highlight)
		}
	})
}

// drawSub marks one sub-shape: a dot for point-like kinds and a tube along edges.
func (v *Viewer) drawSub(o render.Owner, col color.RGBA) {
	if o.Sub.Kind == geom.TopoShape {
		return
	}
	obj, ok := v.Object(o.Handle)
	if !ok || !obj.Visible {
		return
	}
	s, ok := solidOf(obj)
	if !ok {
		return
	}
	cands := pick.Candidates(s, o.Sub.Kind)
	if o.Sub.Index < 0 || o.Sub.Index >= len(cands) {
		return
	}
	pts := cands[o.Sub.Index].Points
	if len(pts) == 1 {
		rl.DrawSphere(vec(pts[0]), v.Cam.Distance*markerScale, col)
		return
	}
	r := v.Cam.Distance * edgeScale
	for i := 1; i < len(pts); i++ {
		rl.DrawCylinderEx(vec(pts[i-1]), vec(pts[i]), r, r, 6, col)
	}
}

// drawGizmo draws the axis tripod in the bottom-left corner, back to front.
func (v *Viewer) drawGizmo(hot bool) {
	c := v.gizmoCenter()
	center := rl.NewVector2(float32(c.X), float32(c.Y))
	rl.DrawCircleV(center, gizmoLength+gizmoRadius+4, gizmoBack)
	for _, a := range v.Cam.Gizmo(c, gizmoLength) {
		col := axisBlue
		label := "Z"
		switch {
		case a.Dir.X != 0:
			col, label = axisRed, "X"
		case a.Dir.Y != 0:
			col, label = axisGreen, "Y"
		}
		end := rl.NewVector2(float32(a.End.X), float32(a.End.Y))
		negative := a.Dir.X+a.Dir.Y+a.Dir.Z < 0
		if negative {
			col = rl.Fade(col, 0.45)
		} else {
			rl.DrawLineEx(center, end, 3, col)
		}
		r := float32(gizmoRadius)
		if hot && a.Preset == v.gizmoAxis {
			r += 3
			col = v.palette.Highlight
		}
		rl.DrawCircleV(end, r, col)
		if !negative {
			rl.DrawText(label, int32(a.End.X)-4, int32(a.End.Y)-6, 14, rl.Black)
		}
	}
}
