// Package selection maps the user's topological filter onto the render engine's selection modes
// and reads the engine's selection back as document entries.
package selection

import (
	"fmt"
	"strings"

	"mycad/internal/document"
	"mycad/internal/geom"
	"mycad/internal/logger"
	"mycad/internal/render"
)

// PickTolerance is the half-size in pixels of the square tested by PickAt. Engines treat a
// square this small as a pick of the nearest hit at its center.
const PickTolerance = 2

// Filter is the granularity a pick may return.
type Filter int

const (
	None Filter = iota
	Vertex
	Edge
	Wire
	Face
	Shell
	Solid
	Compound
)

var filterNames = [...]string{"none", "vertex", "edge", "wire", "face", "shell", "solid", "compound"}

func (f Filter) String() string {
	if f < 0 || int(f) >= len(filterNames) {
		return fmt.Sprintf("Filter(%d)", int(f))
	}
	return filterNames[f]
}

// ParseFilter maps a case-insensitive name to a Filter.
func ParseFilter(s string) (Filter, error) {
	for i, n := range filterNames {
		if strings.EqualFold(s, n) {
			return Filter(i), nil
		}
	}
	return None, fmt.Errorf("unknown selection filter %q (want one of %s)", s, strings.Join(filterNames[:], ", "))
}

// Topo returns the sub-shape kind the filter selects. None selects whole shapes.
func (f Filter) Topo() geom.TopoKind {
	switch f {
	case Vertex:
		return geom.TopoVertex
	case Edge:
		return geom.TopoEdge
	case Wire:
		return geom.TopoWire
	case Face:
		return geom.TopoFace
	case Shell:
		return geom.TopoShell
	case Solid:
		return geom.TopoSolid
	case Compound:
		return geom.TopoCompound
	}
	return geom.TopoShape
}

// Entry is one selected document entry.
type Entry struct {
	Index   int
	Name    string
	Shape   geom.Shape
	Display render.Handle
	// Subs lists the selected sub-shapes of this entry; empty when the whole shape is selected.
	Subs []render.SubShape
}

// Controller owns the current filter and all selection traffic to the render engine.
// Until a document with a bound engine is attached every call is a logged no-op.
type Controller struct {
	doc      *document.Document
	filter   Filter
	log      *logger.Logger
	onChange []func()
}

// New returns a controller with filter None and no document.
func New(log *logger.Logger) *Controller {
	return &Controller{log: log}
}

// Bind attaches doc, applies the current filter to its entries, and keeps entries added later
// in the same mode.
func (c *Controller) Bind(doc *document.Document) {
	c.doc = doc
	doc.Subscribe(func(ev document.Event) {
		if ev.Kind != document.ShapeAdded || ev.Display == render.NoHandle {
			return
		}
		if eng := c.engine(); eng != nil {
			applyMode(eng, ev.Display, render.ModeFor(c.filter.Topo()))
		}
	})
	c.SetFilter(c.filter)
}

// OnChange registers fn to run after any selection mutation made through the controller.
func (c *Controller) OnChange(fn func()) {
	c.onChange = append(c.onChange, fn)
}

func (c *Controller) changed() {
	for _, fn := range c.onChange {
		fn()
	}
}

// engine returns the render engine of the bound document, or nil while unbound.
func (c *Controller) engine() render.Engine {
	if c.doc == nil {
		return nil
	}
	return c.doc.Engine()
}

// Filter returns the current filter.
func (c *Controller) Filter() Filter { return c.filter }

// SetFilter stores f and, when bound, makes exactly f's mode active on every document handle.
func (c *Controller) SetFilter(f Filter) {
	c.filter = f
	eng := c.engine()
	if eng == nil {
		c.log.Debugf("selection filter %s deferred: no document bound", f)
		return
	}
	mode := render.ModeFor(f.Topo())
	for _, h := range c.doc.Displays() {
		if h != render.NoHandle {
			applyMode(eng, h, mode)
		}
	}
	eng.Redraw()
	c.log.Debugf("selection filter set to %s (mode %d)", f, mode)
}

func applyMode(eng render.Engine, h render.Handle, mode render.Mode) {
	for m := render.ModeWhole; m <= render.MaxModeSlot; m++ {
		eng.Deactivate(h, m)
	}
	eng.Activate(h, mode)
}

func scheme(additive bool) render.Scheme {
	if additive {
		return render.XOR
	}
	return render.Replace
}

// PickAt replaces the selection with the nearest hit within PickTolerance pixels of (x, y).
func (c *Controller) PickAt(x, y int) {
	c.SelectRect(render.Rect{X0: x - PickTolerance, Y0: y - PickTolerance, X1: x + PickTolerance, Y1: y + PickTolerance}, false)
}

// AddPickAt toggles whatever is detected at (x, y) in the selection.
func (c *Controller) AddPickAt(x, y int) {
	if c.engine() == nil {
		c.log.Debugf("add pick at %d,%d: no document bound", x, y)
		return
	}
	c.Detect(x, y)
	c.SelectDetected(true)
}

// Detect runs hover detection at (x, y).
func (c *Controller) Detect(x, y int) render.Owner {
	eng := c.engine()
	if eng == nil {
		c.log.Debugf("detect at %d,%d: no document bound", x, y)
		return render.Owner{}
	}
	return eng.MoveTo(x, y)
}

// SelectDetected applies the last detection: toggled when additive, replacing otherwise.
func (c *Controller) SelectDetected(additive bool) {
	eng := c.engine()
	if eng == nil {
		c.log.Debugf("select detected: no document bound")
		return
	}
	eng.SelectDetected(scheme(additive))
	eng.Redraw()
	c.changed()
}

// SelectRect selects everything inside r. Additive selection adds to the current set.
func (c *Controller) SelectRect(r render.Rect, additive bool) {
	eng := c.engine()
	if eng == nil {
		c.log.Debugf("select rect: no document bound")
		return
	}
	s := render.Replace
	if additive {
		s = render.Add
	}
	eng.SelectRect(r, s)
	eng.Redraw()
	c.changed()
}

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() {
	eng := c.engine()
	if eng == nil {
		return
	}
	eng.ClearSelected()
	eng.Redraw()
	c.changed()
}

// SelectHandles replaces the selection with the whole-object owners of hs, regardless of the
// filter. Used by commands that select by name.
func (c *Controller) SelectHandles(hs []render.Handle) {
	eng := c.engine()
	if eng == nil {
		return
	}
	owners := make([]render.Owner, 0, len(hs))
	for _, h := range hs {
		owners = append(owners, render.Owner{Handle: h})
	}
	eng.Select(owners, render.Replace)
	eng.Redraw()
	c.changed()
}

// SelectedEntries returns the selected document entries in selection order. Decorations and
// handles the document does not own are skipped, and each entry appears once with all of its
// selected sub-shapes.
func (c *Controller) SelectedEntries() []Entry {
	eng := c.engine()
	if eng == nil {
		return nil
	}
	var out []Entry
	pos := make(map[render.Handle]int)
	for _, o := range eng.Selected() {
		if eng.IsDecoration(o.Handle) {
			continue
		}
		idx, ok := c.doc.FindIndex(o.Handle)
		if !ok {
			continue
		}
		i, seen := pos[o.Handle]
		if !seen {
			i = len(out)
			pos[o.Handle] = i
			out = append(out, Entry{Index: idx, Name: c.doc.Name(idx), Shape: c.doc.Shape(idx), Display: o.Handle})
		}
		if o.Sub.Kind != geom.TopoShape {
			out[i].Subs = append(out[i].Subs, o.Sub)
		}
	}
	return out
}

// SelectedObjects returns the display handles of the selected entries.
func (c *Controller) SelectedObjects() []render.Handle {
	entries := c.SelectedEntries()
	out := make([]render.Handle, len(entries))
	for i, e := range entries {
		out[i] = e.Display
	}
	return out
}

// SelectedShapes returns the shapes of the selected entries, owning shapes for sub-shape picks.
func (c *Controller) SelectedShapes() []geom.Shape {
	entries := c.SelectedEntries()
	out := make([]geom.Shape, len(entries))
	for i, e := range entries {
		out[i] = e.Shape
	}
	return out
}

// PickPoint converts a viewport coordinate to a model point on the current view plane.
func (c *Controller) PickPoint(x, y int) (geom.Vec3, bool) {
	eng := c.engine()
	if eng == nil {
		c.log.Debugf("pick point: no document bound")
		return geom.Vec3{}, false
	}
	return eng.Unproject(x, y)
}
