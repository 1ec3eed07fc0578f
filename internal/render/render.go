// Package render declares the editor's view of a render and pick engine. Display state is kept
// in a Registry arena keyed by Handle so it can be exercised without a window.
package render

import (
	"image/color"

	"mycad/internal/geom"
)

// Handle identifies one registered shape. The zero Handle is never issued.
type Handle uint32

// NoHandle marks an entry whose shape is not displayed.
const NoHandle Handle = 0

// Mode is a per-handle selection mode slot. Mode n makes sub-shapes of TopoKind n pickable,
// mode 0 picks the whole object.
type Mode int

const (
	ModeWhole Mode = 0
	// MaxModeSlot is the highest mode slot an engine may have active on a handle.
	MaxModeSlot Mode = 10
)

// ModeFor returns the selection mode that makes sub-shapes of kind k pickable.
func ModeFor(k geom.TopoKind) Mode { return Mode(k) }

// Scheme says how a pick combines with the current selection.
type Scheme int

const (
	Replace Scheme = iota
	Add
	// XOR toggles picked owners, the shift-select behavior.
	XOR
)

// SubShape addresses part of a displayed shape. Kind TopoShape means the whole object.
type SubShape struct {
	Kind  geom.TopoKind
	Index int
}

// Owner is a pickable thing: a handle and optionally one of its sub-shapes.
type Owner struct {
	Handle Handle
	Sub    SubShape
}

// IsZero reports whether o refers to nothing.
func (o Owner) IsZero() bool { return o.Handle == NoHandle }

// Rect is a screen rectangle in pixels. Corners may be given in any order.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Canon returns r with X0<=X1 and Y0<=Y1.
func (r Rect) Canon() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Contains reports whether (x, y) lies inside the canonical rectangle, edges included.
func (r Rect) Contains(x, y float32) bool {
	c := r.Canon()
	return x >= float32(c.X0) && x <= float32(c.X1) && y >= float32(c.Y0) && y <= float32(c.Y1)
}

// Engine displays shapes and answers picks. Coordinates are window pixels with Y down.
type Engine interface {
	Register(s geom.Shape) (Handle, error)
	Unregister(h Handle)
	Activate(h Handle, m Mode)
	Deactivate(h Handle, m Mode)
	Show(h Handle)
	Hide(h Handle)
	SetColor(h Handle, c color.RGBA)
	SetTransparency(h Handle, t float32)

	// MoveTo runs hover detection at (x, y) and returns the detected owner.
	MoveTo(x, y int) Owner
	SelectDetected(s Scheme)
	SelectRect(r Rect, s Scheme)
	// Select applies owners directly, bypassing detection.
	Select(owners []Owner, s Scheme)
	ClearSelected()
	Selected() []Owner

	IsDecoration(h Handle) bool
	ActivateDecoration(h Handle)

	Unproject(x, y int) (geom.Vec3, bool)
	FitAll()
	Redraw()
}

// Cursor is a pointer shape.
type Cursor int

const (
	CursorArrow Cursor = iota
	CursorClosedHand
	CursorSizeAll
)

// View is the camera side of the viewport.
type View interface {
	Pan(dx, dy int)
	StartRotation(x, y int, sensitivity float32)
	Rotation(x, y int)
	ZoomAt(x, y int, factor float32)
	FitAll()
	RedrawImmediate()
	SetCursor(c Cursor)
}
