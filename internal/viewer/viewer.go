// Package viewer is the raylib render engine: it draws the document's csg shapes with an orbit
// camera, answers picks and owns the orientation gizmo. Display state lives in the embedded
// render.Registry; everything here runs on the window thread.
package viewer

import (
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"

	"mycad/internal/camera"
	"mycad/internal/csg"
	"mycad/internal/editorconfig"
	"mycad/internal/geom"
	"mycad/internal/logger"
	"mycad/internal/pick"
	"mycad/internal/render"
)

const (
	gizmoLength = 40
	gizmoMargin = 70
	gizmoRadius = 9
)

// Viewer implements render.Engine and render.View.
type Viewer struct {
	*render.Registry

	Cam     *camera.Orbit
	log     *logger.Logger
	meshes  *Meshes
	palette editorconfig.Palette
	grid    Grid

	gizmo     render.Handle
	gizmoAxis camera.Preset
	redraws   int
}

var (
	_ render.Engine = (*Viewer)(nil)
	_ render.View   = (*Viewer)(nil)
)

// New returns a viewer for a w x h window with the gizmo registered as a decoration.
func New(w, h int, prefs editorconfig.Prefs, log *logger.Logger) *Viewer {
	v := &Viewer{
		Registry: render.NewRegistry(),
		Cam:      camera.New(w, h),
		log:      log,
		meshes:   NewMeshes(),
	}
	v.gizmo = v.RegisterDecoration()
	v.Apply(prefs)
	return v
}

// Apply takes the grid and palette from prefs. Malformed colors keep their defaults.
func (v *Viewer) Apply(prefs editorconfig.Prefs) {
	pal, err := prefs.Palette()
	if err != nil {
		v.log.Warnf("%v", err)
	}
	v.palette = pal
	v.grid = Grid{Visible: prefs.GridVisible, Size: prefs.GridSize, Spacing: prefs.GridSpacing}
}

// Palette returns the active colors.
func (v *Viewer) Palette() editorconfig.Palette { return v.palette }

// SetGridVisible shows or hides the working-plane grid.
func (v *Viewer) SetGridVisible(on bool) { v.grid.Visible = on }

// Resize follows the window size.
func (v *Viewer) Resize(w, h int) { v.Cam.Resize(w, h) }

// Unload releases GPU resources. Call before the window closes.
func (v *Viewer) Unload() { v.meshes.Unload() }

func solidOf(o *render.Object) (*csg.Solid, bool) {
	s, ok := o.Shape.(*csg.Solid)
	return s, ok && s != nil
}

// gizmoCenter is the bottom-left anchor of the orientation gizmo.
func (v *Viewer) gizmoCenter() image.Point {
	return image.Pt(gizmoMargin, v.Cam.Height-gizmoMargin)
}

// MoveTo detects what lies under (x, y). The gizmo wins over shapes; sub-shapes within
// pick.Tolerance win over whole objects, and among whole objects the nearest along the ray wins.
func (v *Viewer) MoveTo(x, y int) render.Owner {
	axes := v.Cam.Gizmo(v.gizmoCenter(), gizmoLength)
	if a, ok := camera.GizmoHit(axes, image.Pt(x, y), gizmoRadius); ok {
		v.gizmoAxis = a.Preset
		return v.SetDetected(render.Owner{Handle: v.gizmo})
	}
	return v.SetDetected(pick.Hit(v.Cam, v.targets(), x, y))
}

// targets lists the visible solids with their active selection modes.
func (v *Viewer) targets() []pick.Target {
	var out []pick.Target
	for _, h := range v.Handles() {
		obj, _ := v.Object(h)
		if s, ok := solidOf(obj); ok && obj.Visible {
			out = append(out, pick.Target{Handle: h, Solid: s, Modes: v.ActiveModes(h)})
		}
	}
	return out
}

// SelectRect selects what r covers; see pick.InRect. A pick-sized square selects the nearest
// hit at its center.
func (v *Viewer) SelectRect(r render.Rect, s render.Scheme) {
	v.Select(pick.InRect(v.Cam, v.targets(), r), s)
}

// ActivateDecoration turns the camera to the gizmo axis under the pointer and fits.
func (v *Viewer) ActivateDecoration(h render.Handle) {
	if h != v.gizmo {
		return
	}
	v.SetPreset(v.gizmoAxis)
}

// SetPreset turns the camera to p and fits the visible shapes.
func (v *Viewer) SetPreset(p camera.Preset) {
	v.Cam.SetPreset(p)
	v.FitAll()
	v.log.Debugf("view %s", p)
}

// Unproject maps (x, y) onto the z=0 working plane.
func (v *Viewer) Unproject(x, y int) (geom.Vec3, bool) { return v.Cam.Unproject(x, y) }

// Bounds returns the box around all visible shapes.
func (v *Viewer) Bounds() geom.Box3 {
	b := geom.EmptyBox()
	for _, h := range v.Handles() {
		obj, _ := v.Object(h)
		if s, ok := solidOf(obj); ok && obj.Visible {
			b = b.Union(csg.Bounds(s))
		}
	}
	return b
}

// FitAll frames every visible shape.
func (v *Viewer) FitAll() { v.Cam.Fit(v.Bounds()) }

// Redraw and RedrawImmediate only count requests; the frame loop redraws every frame.
func (v *Viewer) Redraw()          { v.redraws++ }
func (v *Viewer) RedrawImmediate() { v.redraws++ }

func (v *Viewer) Pan(dx, dy int)                             { v.Cam.Pan(dx, dy) }
func (v *Viewer) StartRotation(x, y int, sensitivity float32) { v.Cam.StartRotation(x, y, sensitivity) }
func (v *Viewer) Rotation(x, y int)                          { v.Cam.Rotation(x, y) }
func (v *Viewer) ZoomAt(x, y int, factor float32)            { v.Cam.ZoomAt(x, y, factor) }

// SetCursor maps the editor cursors onto raylib's system cursors.
func (v *Viewer) SetCursor(c render.Cursor) {
	switch c {
	case render.CursorClosedHand:
		rl.SetMouseCursor(rl.MouseCursorPointingHand)
	case render.CursorSizeAll:
		rl.SetMouseCursor(rl.MouseCursorResizeAll)
	default:
		rl.SetMouseCursor(rl.MouseCursorArrow)
	}
}
