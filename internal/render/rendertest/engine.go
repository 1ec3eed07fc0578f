// Package rendertest provides a windowless render.Engine and render.View for tests.
// Owners are placed at screen points by the test; picks resolve against those points.
package rendertest

import (
	"fmt"

	"mycad/internal/geom"
	"mycad/internal/render"
)

// Engine is a render.Engine over a real Registry with scripted hit positions.
type Engine struct {
	*render.Registry

	// RegisterErr, when set, is returned by Register instead of registering.
	RegisterErr error
	// RegisterPanic, when set, makes Register panic with this value.
	RegisterPanic any
	// NoView makes Unproject report no active view.
	NoView bool

	Redraws          int
	Fits             int
	DecorationClicks []render.Handle
	Unregistered     []render.Handle
	placed           []placement
}

type placement struct {
	owner render.Owner
	x, y  int
}

var _ render.Engine = (*Engine)(nil)

// New returns an Engine with an empty registry.
func New() *Engine {
	return &Engine{Registry: render.NewRegistry()}
}

// Place puts owner o at screen point (x, y).
func (e *Engine) Place(o render.Owner, x, y int) {
	e.placed = append(e.placed, placement{owner: o, x: x, y: y})
}

// Register honors RegisterErr and RegisterPanic before delegating to the registry.
func (e *Engine) Register(s geom.Shape) (render.Handle, error) {
	if e.RegisterPanic != nil {
		panic(e.RegisterPanic)
	}
	if e.RegisterErr != nil {
		return render.NoHandle, e.RegisterErr
	}
	return e.Registry.Register(s)
}

// Unregister records the handle and delegates.
func (e *Engine) Unregister(h render.Handle) {
	e.Unregistered = append(e.Unregistered, h)
	e.Registry.Unregister(h)
}

// MoveTo detects the first pickable owner placed within 2 px of (x, y).
func (e *Engine) MoveTo(x, y int) render.Owner {
	for _, p := range e.placed {
		if abs(p.x-x) <= 2 && abs(p.y-y) <= 2 && e.Pickable(p.owner) {
			return e.SetDetected(p.owner)
		}
	}
	return e.SetDetected(render.Owner{})
}

// SelectRect selects every pickable owner placed inside r.
func (e *Engine) SelectRect(r render.Rect, s render.Scheme) {
	var hits []render.Owner
	for _, p := range e.placed {
		if r.Contains(float32(p.x), float32(p.y)) && e.Pickable(p.owner) {
			hits = append(hits, p.owner)
		}
	}
	e.Select(hits, s)
}

func (e *Engine) ActivateDecoration(h render.Handle) {
	e.DecorationClicks = append(e.DecorationClicks, h)
}

// Unproject maps (x, y) onto the z=0 plane one unit per pixel.
func (e *Engine) Unproject(x, y int) (geom.Vec3, bool) {
	if e.NoView {
		return geom.Vec3{}, false
	}
	return geom.V(float32(x), float32(y), 0), true
}

func (e *Engine) FitAll() { e.Fits++ }
func (e *Engine) Redraw() { e.Redraws++ }

// View records camera calls as strings.
type View struct {
	Calls  []string
	Cursor render.Cursor
}

var _ render.View = (*View)(nil)

func (v *View) Pan(dx, dy int) { v.Calls = append(v.Calls, fmt.Sprintf("pan %d %d", dx, dy)) }
func (v *View) StartRotation(x, y int, sensitivity float32) {
	v.Calls = append(v.Calls, fmt.Sprintf("start-rotation %d %d %.1f", x, y, sensitivity))
}
func (v *View) Rotation(x, y int) { v.Calls = append(v.Calls, fmt.Sprintf("rotation %d %d", x, y)) }
func (v *View) ZoomAt(x, y int, factor float32) {
	v.Calls = append(v.Calls, fmt.Sprintf("zoom %d %d %.1f", x, y, factor))
}
func (v *View) FitAll()                   { v.Calls = append(v.Calls, "fit") }
func (v *View) RedrawImmediate()          { v.Calls = append(v.Calls, "redraw") }
func (v *View) SetCursor(c render.Cursor) { v.Cursor = c }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
