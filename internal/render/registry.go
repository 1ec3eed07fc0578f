package render

import (
	"fmt"
	"image/color"
	"slices"

	"mycad/internal/geom"
)

// DefaultColor is the shading color of newly registered shapes.
var DefaultColor = color.RGBA{R: 176, G: 180, B: 188, A: 255}

// Object is the display state of one handle.
type Object struct {
	Shape        geom.Shape
	Visible      bool
	Color        color.RGBA
	Transparency float32
	Decoration   bool
	modes        map[Mode]bool
}

// Registry is the arena behind an Engine: handle allocation, per-handle display state,
// the detected owner and the ordered selection. It does no geometry; engines decide what
// lies under the pointer and report it here.
type Registry struct {
	objects  map[Handle]*Object
	order    []Handle
	next     Handle
	detected Owner
	selected []Owner
}

// NewRegistry returns an empty arena.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[Handle]*Object), next: 1}
}

// Register adds a visible shape with only ModeWhole active, matching a fresh display.
func (r *Registry) Register(s geom.Shape) (Handle, error) {
	if s == nil {
		return NoHandle, fmt.Errorf("render: cannot register a null shape")
	}
	h := r.alloc(&Object{Shape: s, Visible: true, Color: DefaultColor})
	r.objects[h].modes[ModeWhole] = true
	return h, nil
}

// RegisterDecoration adds a non-document handle (for example an orientation gizmo).
func (r *Registry) RegisterDecoration() Handle {
	return r.alloc(&Object{Visible: true, Decoration: true})
}

func (r *Registry) alloc(o *Object) Handle {
	h := r.next
	r.next++
	o.modes = make(map[Mode]bool)
	r.objects[h] = o
	r.order = append(r.order, h)
	return h
}

// Unregister drops h and any detection or selection that refers to it. Unknown handles are ignored.
func (r *Registry) Unregister(h Handle) {
	if _, ok := r.objects[h]; !ok {
		return
	}
	delete(r.objects, h)
	r.order = slices.DeleteFunc(r.order, func(x Handle) bool { return x == h })
	r.dropSelected(h)
	if r.detected.Handle == h {
		r.detected = Owner{}
	}
}

// Object returns the display state of h.
func (r *Registry) Object(h Handle) (*Object, bool) {
	o, ok := r.objects[h]
	return o, ok
}

// Handles returns registered handles in registration order.
func (r *Registry) Handles() []Handle {
	return slices.Clone(r.order)
}

func (r *Registry) Activate(h Handle, m Mode) {
	if o, ok := r.objects[h]; ok && m >= 0 && m <= MaxModeSlot {
		o.modes[m] = true
	}
}

func (r *Registry) Deactivate(h Handle, m Mode) {
	if o, ok := r.objects[h]; ok {
		delete(o.modes, m)
	}
}

// ActiveModes returns the active modes of h in ascending order.
func (r *Registry) ActiveModes(h Handle) []Mode {
	o, ok := r.objects[h]
	if !ok {
		return nil
	}
	out := make([]Mode, 0, len(o.modes))
	for m := range o.modes {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// Pickable reports whether o may be detected: its handle is visible and the mode for its
// sub-shape kind is active. Decorations are always pickable while visible.
func (r *Registry) Pickable(o Owner) bool {
	obj, ok := r.objects[o.Handle]
	if !ok || !obj.Visible {
		return false
	}
	return obj.Decoration || obj.modes[ModeFor(o.Sub.Kind)]
}

func (r *Registry) Show(h Handle) {
	if o, ok := r.objects[h]; ok {
		o.Visible = true
	}
}

// Hide makes h invisible and deselects it.
func (r *Registry) Hide(h Handle) {
	if o, ok := r.objects[h]; ok {
		o.Visible = false
		r.dropSelected(h)
		if r.detected.Handle == h {
			r.detected = Owner{}
		}
	}
}

func (r *Registry) SetColor(h Handle, c color.RGBA) {
	if o, ok := r.objects[h]; ok {
		o.Color = c
	}
}

// SetTransparency sets h's transparency, clamped to [0, 1].
func (r *Registry) SetTransparency(h Handle, t float32) {
	if o, ok := r.objects[h]; ok {
		o.Transparency = min(max(t, 0), 1)
	}
}

func (r *Registry) IsDecoration(h Handle) bool {
	o, ok := r.objects[h]
	return ok && o.Decoration
}

// SetDetected records the owner under the pointer. Owners that are not pickable clear detection.
func (r *Registry) SetDetected(o Owner) Owner {
	if o.IsZero() || !r.Pickable(o) {
		o = Owner{}
	}
	r.detected = o
	return o
}

func (r *Registry) Detected() Owner { return r.detected }

// SelectDetected applies the detected owner to the selection. With nothing detected a
// Replace clears the selection and the other schemes do nothing. Decorations are never selected.
func (r *Registry) SelectDetected(s Scheme) {
	if r.detected.IsZero() || r.IsDecoration(r.detected.Handle) {
		if s == Replace {
			r.selected = nil
		}
		return
	}
	r.Select([]Owner{r.detected}, s)
}

// Select combines owners with the current selection. Hidden, unknown and decorative handles
// are skipped; selection modes are not consulted, so engines filter hits with Pickable first.
func (r *Registry) Select(owners []Owner, s Scheme) {
	if s == Replace {
		r.selected = nil
	}
	for _, o := range owners {
		obj, ok := r.objects[o.Handle]
		if !ok || !obj.Visible || obj.Decoration {
			continue
		}
		i := slices.Index(r.selected, o)
		switch {
		case i < 0:
			r.selected = append(r.selected, o)
		case s == XOR:
			r.selected = slices.Delete(r.selected, i, i+1)
		}
	}
}

func (r *Registry) ClearSelected() { r.selected = nil }

// Selected returns the selected owners in selection order.
func (r *Registry) Selected() []Owner { return slices.Clone(r.selected) }

// IsSelected reports whether any owner of h is selected.
func (r *Registry) IsSelected(h Handle) bool {
	return slices.ContainsFunc(r.selected, func(o Owner) bool { return o.Handle == h })
}

func (r *Registry) dropSelected(h Handle) {
	r.selected = slices.DeleteFunc(r.selected, func(o Owner) bool { return o.Handle == h })
}
