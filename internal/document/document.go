// Package document holds the editor's scene: an ordered list of shapes, each paired with its
// display handle and a name. Index i denotes the same entry in all three lists at all times.
package document

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"mycad/internal/geom"
	"mycad/internal/logger"
	"mycad/internal/render"
)

// ErrEngine wraps a render engine fault raised while registering a shape.
var ErrEngine = errors.New("document: render engine failure")

// namePrefix is used for generated names: Shape_1, Shape_2, ...
const namePrefix = "Shape"

// EventKind tells observers what happened.
type EventKind int

const (
	ShapeAdded EventKind = iota
	ShapeRemoved
	DocumentChanged
)

func (k EventKind) String() string {
	switch k {
	case ShapeAdded:
		return "shapeAdded"
	case ShapeRemoved:
		return "shapeRemoved"
	case DocumentChanged:
		return "documentChanged"
	}
	return "EventKind(" + strconv.Itoa(int(k)) + ")"
}

// Event is delivered to observers. Name, Index and Display are set for ShapeAdded and ShapeRemoved;
// Index is the entry's position at the time of the event.
type Event struct {
	Kind    EventKind
	Name    string
	Index   int
	Display render.Handle
}

// Document is the authoritative list of scene entries. It is used from the interaction thread only.
type Document struct {
	shapes   []geom.Shape
	displays []render.Handle
	names    []string
	nextID   int

	engine    render.Engine
	log       *logger.Logger
	observers []func(Event)
	batch     int
	dirty     bool
}

// New returns an empty document with no render engine bound.
func New(log *logger.Logger) *Document {
	return &Document{nextID: 1, log: log}
}

// Bind attaches the render engine and registers any entries that have no display yet.
func (d *Document) Bind(e render.Engine) {
	d.engine = e
	if e == nil {
		return
	}
	for i, h := range d.displays {
		if h != render.NoHandle {
			continue
		}
		if nh, err := d.register(d.shapes[i]); err == nil {
			d.displays[i] = nh
		} else {
			d.log.Warnf("display %q: %v", d.names[i], err)
		}
	}
}

// Engine returns the bound render engine, or nil.
func (d *Document) Engine() render.Engine { return d.engine }

// Subscribe adds an observer. Observers run in subscription order.
func (d *Document) Subscribe(fn func(Event)) {
	d.observers = append(d.observers, fn)
}

func (d *Document) emit(ev Event) {
	for _, fn := range d.observers {
		fn(ev)
	}
}

// changed emits DocumentChanged now, or once when the outermost batch ends.
func (d *Document) changed() {
	if d.batch > 0 {
		d.dirty = true
		return
	}
	d.emit(Event{Kind: DocumentChanged})
}

// Batch runs fn with DocumentChanged coalesced: ShapeAdded and ShapeRemoved are still delivered
// as they happen, and a single DocumentChanged follows if anything changed.
func (d *Document) Batch(fn func()) {
	d.batch++
	defer func() {
		d.batch--
		if d.batch == 0 && d.dirty {
			d.dirty = false
			d.emit(Event{Kind: DocumentChanged})
		}
	}()
	fn()
}

// register asks the engine for a handle, turning a panic into ErrEngine.
func (d *Document) register(s geom.Shape) (h render.Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			h, err = render.NoHandle, fmt.Errorf("%w: %v", ErrEngine, r)
		}
	}()
	h, err = d.engine.Register(s)
	if err != nil {
		return render.NoHandle, fmt.Errorf("%w: %w", ErrEngine, err)
	}
	return h, nil
}

// AddShape appends s under name, or under a generated Shape_<n> name when name is empty.
// A nil shape is ignored. If the engine fails to display the shape the entry is kept
// without a display handle rather than dropped.
func (d *Document) AddShape(s geom.Shape, name string) (int, bool) {
	if s == nil {
		d.log.Warnf("add shape: null shape ignored")
		return -1, false
	}
	if name == "" {
		name = namePrefix + "_" + strconv.Itoa(d.nextID)
		d.nextID++
	}
	h := render.NoHandle
	if d.engine != nil {
		var err error
		if h, err = d.register(s); err != nil {
			d.log.Errorf("display %q: %v", name, err)
		}
	} else {
		d.log.Debugf("add shape %q: no render engine bound", name)
	}
	d.shapes = append(d.shapes, s)
	d.displays = append(d.displays, h)
	d.names = append(d.names, name)
	idx := len(d.shapes) - 1
	d.emit(Event{Kind: ShapeAdded, Name: name, Index: idx, Display: h})
	d.changed()
	return idx, true
}

// RemoveAt retires the display of entry i and then drops the entry. Out-of-range indices are ignored.
func (d *Document) RemoveAt(i int) bool {
	if i < 0 || i >= len(d.shapes) {
		return false
	}
	h, name := d.displays[i], d.names[i]
	if h != render.NoHandle && d.engine != nil {
		d.engine.Unregister(h)
	}
	d.shapes = slices.Delete(d.shapes, i, i+1)
	d.displays = slices.Delete(d.displays, i, i+1)
	d.names = slices.Delete(d.names, i, i+1)
	d.emit(Event{Kind: ShapeRemoved, Name: name, Index: i, Display: h})
	d.changed()
	return true
}

// RemoveNamed removes the first entry called name.
func (d *Document) RemoveNamed(name string) bool {
	i, ok := d.IndexOf(name)
	if !ok {
		return false
	}
	return d.RemoveAt(i)
}

// FindIndex returns the index of the entry displayed by h. NoHandle never matches.
func (d *Document) FindIndex(h render.Handle) (int, bool) {
	if h == render.NoHandle {
		return -1, false
	}
	i := slices.Index(d.displays, h)
	return i, i >= 0
}

// IndexOf returns the index of the first entry called name.
func (d *Document) IndexOf(name string) (int, bool) {
	i := slices.Index(d.names, name)
	return i, i >= 0
}

// Clear retires every display, empties the document and restarts name generation at 1.
func (d *Document) Clear() {
	if d.engine != nil {
		for _, h := range d.displays {
			if h != render.NoHandle {
				d.engine.Unregister(h)
			}
		}
	}
	d.shapes, d.displays, d.names = nil, nil, nil
	d.nextID = 1
	d.changed()
}

func (d *Document) Len() int       { return len(d.shapes) }
func (d *Document) IsEmpty() bool  { return len(d.shapes) == 0 }
func (d *Document) Names() []string { return slices.Clone(d.names) }

// Displays returns the display handles in entry order, NoHandle included.
func (d *Document) Displays() []render.Handle { return slices.Clone(d.displays) }

// Shape returns entry i's shape, or nil when i is out of range.
func (d *Document) Shape(i int) geom.Shape {
	if i < 0 || i >= len(d.shapes) {
		return nil
	}
	return d.shapes[i]
}

// Display returns entry i's handle, or NoHandle when i is out of range.
func (d *Document) Display(i int) render.Handle {
	if i < 0 || i >= len(d.displays) {
		return render.NoHandle
	}
	return d.displays[i]
}

// Name returns entry i's name, or "" when i is out of range.
func (d *Document) Name(i int) string {
	if i < 0 || i >= len(d.names) {
		return ""
	}
	return d.names[i]
}

// ShapeNamed returns the shape of the first entry called name, or nil.
func (d *Document) ShapeNamed(name string) geom.Shape {
	i, _ := d.IndexOf(name)
	return d.Shape(i)
}

// DisplayNamed returns the handle of the first entry called name, or NoHandle.
func (d *Document) DisplayNamed(name string) render.Handle {
	i, _ := d.IndexOf(name)
	return d.Display(i)
}
