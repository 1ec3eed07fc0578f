// Package viewport turns raw pointer and keyboard input into camera moves and selection calls.
//
// The Controller is a small state machine. A middle drag rotates, a right drag pans once it
// moves past a jitter threshold, and a left press starts a box selection that resolves to a
// click or a rectangle on release. Hover detection without a button held is throttled.
package viewport

import (
	"image"
	"time"

	"mycad/internal/document"
	"mycad/internal/geom"
	"mycad/internal/logger"
	"mycad/internal/render"
	"mycad/internal/selection"
)

const (
	// PanJitter is the per-move manhattan distance a right drag must exceed to pan.
	PanJitter = 3
	// RotateJitter is the per-move manhattan distance a middle drag must exceed to rotate.
	RotateJitter = 2
	// ClickTolerance is the largest left drag, in manhattan pixels, still treated as a click.
	ClickTolerance = 5
	// HoverInterval is the minimum time between two hover detections.
	HoverInterval = 16 * time.Millisecond
	// RotationSensitivity is passed to the view when a rotation starts.
	RotationSensitivity = 0.4
	// ZoomInFactor and ZoomOutFactor scale the view per wheel step, toward and away from the pointer.
	ZoomInFactor  = 1.1
	ZoomOutFactor = 0.9
	// FitKey fits the camera to the scene.
	FitKey Key = 'F'
)

// State is the active interaction.
type State int

const (
	Idle State = iota
	Rotating
	Panning
	BoxSelecting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Rotating:
		return "rotating"
	case Panning:
		return "panning"
	case BoxSelecting:
		return "box-selecting"
	}
	return "unknown"
}

// Button is a pointer button.
type Button int

const (
	Primary Button = iota
	Secondary
	Tertiary
)

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	// Ctrl makes click and box selection additive.
	Ctrl Modifiers = 1 << iota
	Shift
)

// Key is a keyboard key, upper case for letters.
type Key rune

// Controller runs the viewport state machine. All methods must be called from the
// interaction thread.
type Controller struct {
	doc  *document.Document
	sel  *selection.Controller
	view render.View
	geo  geom.Engine
	log  *logger.Logger
	now  func() time.Time

	state     State
	secondary bool
	last      image.Point
	start     image.Point
	didPan    bool

	lastHover    time.Time
	pendingHover image.Point
	hoverPending bool
}

// New returns an idle controller. view may be nil until the window exists; camera input is
// then dropped.
func New(doc *document.Document, sel *selection.Controller, view render.View, geo geom.Engine, log *logger.Logger) *Controller {
	return &Controller{doc: doc, sel: sel, view: view, geo: geo, log: log, now: time.Now}
}

// SetView attaches the camera.
func (c *Controller) SetView(v render.View) { c.view = v }

// SetClock replaces the clock used by the hover throttle.
func (c *Controller) SetClock(now func() time.Time) { c.now = now }

// State returns the active interaction.
func (c *Controller) State() State { return c.state }

// DidPan reports whether the current or last right-button gesture panned.
func (c *Controller) DidPan() bool { return c.didPan }

// Band returns the rubber-band rectangle while a drag selection is in progress.
func (c *Controller) Band() (render.Rect, bool) {
	if c.state != BoxSelecting || manhattan(c.last.Sub(c.start)) <= ClickTolerance {
		return render.Rect{}, false
	}
	return render.Rect{X0: c.start.X, Y0: c.start.Y, X1: c.last.X, Y1: c.last.Y}, true
}

func manhattan(d image.Point) int {
	return abs(d.X) + abs(d.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (c *Controller) setCursor(cur render.Cursor) {
	if c.view != nil {
		c.view.SetCursor(cur)
	}
}

func (c *Controller) redrawImmediate() {
	if c.view != nil {
		c.view.RedrawImmediate()
	}
}

// Press handles a button going down at p.
func (c *Controller) Press(b Button, p image.Point, mods Modifiers) {
	c.last = p
	switch b {
	case Secondary:
		// Panning waits for movement so a plain right click can open the context menu.
		c.secondary = true
		c.didPan = false
	case Tertiary:
		if c.view == nil {
			c.log.Debugf("rotate: no view bound")
			return
		}
		c.state = Rotating
		c.view.StartRotation(p.X, p.Y, RotationSensitivity)
		c.setCursor(render.CursorSizeAll)
	case Primary:
		owner := c.sel.Detect(p.X, p.Y)
		if eng := c.doc.Engine(); eng != nil && !owner.IsZero() && eng.IsDecoration(owner.Handle) {
			eng.ActivateDecoration(owner.Handle)
			eng.Redraw()
			return
		}
		c.state = BoxSelecting
		c.start = p
	}
}

// Move handles pointer motion to p.
func (c *Controller) Move(p image.Point, mods Modifiers) {
	delta := p.Sub(c.last)
	switch {
	case c.secondary:
		if manhattan(delta) > PanJitter && c.view != nil {
			if c.state != Panning {
				c.state = Panning
				c.didPan = true
				c.setCursor(render.CursorClosedHand)
			}
			c.view.Pan(delta.X, -delta.Y)
		}
	case c.state == Rotating:
		if manhattan(delta) > RotateJitter {
			c.view.Rotation(p.X, p.Y)
		}
	case c.state == BoxSelecting:
		if manhattan(p.Sub(c.start)) > ClickTolerance {
			c.sel.SelectRect(render.Rect{X0: c.start.X, Y0: c.start.Y, X1: p.X, Y1: p.Y}, mods&Ctrl != 0)
		} else {
			c.sel.Detect(p.X, p.Y)
			c.redrawImmediate()
		}
	default:
		c.hover(p)
	}
	c.last = p
}

// hover coalesces to the latest position and detects at most once per HoverInterval.
func (c *Controller) hover(p image.Point) {
	c.pendingHover = p
	c.hoverPending = true
	now := c.now()
	if c.lastHover.IsZero() || now.Sub(c.lastHover) >= HoverInterval {
		c.flushHover(now)
	}
}

func (c *Controller) flushHover(now time.Time) {
	c.hoverPending = false
	c.lastHover = now
	c.sel.Detect(c.pendingHover.X, c.pendingHover.Y)
	c.redrawImmediate()
}

// Tick runs a coalesced hover that the throttle held back, once it is due.
func (c *Controller) Tick(now time.Time) {
	if c.hoverPending && now.Sub(c.lastHover) >= HoverInterval {
		c.flushHover(now)
	}
}

// Release handles a button going up at p. Every release leaves the controller Idle.
func (c *Controller) Release(b Button, p image.Point, mods Modifiers) {
	switch b {
	case Secondary:
		c.secondary = false
		c.setCursor(render.CursorArrow)
	case Tertiary:
		c.setCursor(render.CursorArrow)
	case Primary:
		if c.state == BoxSelecting {
			c.sel.Detect(p.X, p.Y)
			if manhattan(p.Sub(c.start)) <= ClickTolerance {
				c.sel.SelectDetected(mods&Ctrl != 0)
			}
		}
	}
	c.state = Idle
	c.last = p
}

// Scroll zooms at p, in for positive steps and out for negative ones.
func (c *Controller) Scroll(p image.Point, steps float32) {
	if c.view == nil || steps == 0 {
		return
	}
	f := float32(ZoomOutFactor)
	if steps > 0 {
		f = ZoomInFactor
	}
	c.view.ZoomAt(p.X, p.Y, f)
}

// KeyPress handles a key going down. Only FitKey is bound.
func (c *Controller) KeyPress(k Key) {
	if c.view == nil {
		return
	}
	if k == FitKey || k == FitKey+('a'-'A') {
		c.view.FitAll()
	}
}

// ContextMenu is evaluated after a right-button release. A gesture that panned yields no menu;
// either way the pan flag is consumed.
func (c *Controller) ContextMenu(p image.Point) (*Menu, bool) {
	if c.didPan {
		c.didPan = false
		if c.state == Panning {
			c.state = Idle
		}
		return nil, false
	}
	m := buildMenu(c.doc, c.sel, c.geo, c.log, p)
	if m == nil {
		return nil, false
	}
	return m, true
}
