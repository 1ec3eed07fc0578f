package viewport

import (
	"errors"
	"fmt"
	"image"
	"slices"
	"strconv"
	"strings"

	"mycad/internal/document"
	"mycad/internal/geom"
	"mycad/internal/logger"
	"mycad/internal/render"
	"mycad/internal/selection"
)

// Action is one context-menu entry.
type Action int

const (
	Inspect Action = iota
	SetColor
	SetTransparency
	Hide
	ShowOnly
	ShowAll
	HideAll
	Clear
)

var actionLabels = [...]string{"Inspect", "Color", "Transparency", "Hide", "Show only", "Show all", "Hide all", "Clear"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionLabels) {
		return "Action(" + strconv.Itoa(int(a)) + ")"
	}
	return actionLabels[a]
}

// CancelArg, passed to SetTransparency, restores full opacity.
const CancelArg = "cancel"

var (
	// ErrMenuUsed is returned when a menu that already ran an action is run again.
	ErrMenuUsed = errors.New("viewport: menu already used")
	// ErrNoAction is returned for an action the menu does not offer.
	ErrNoAction = errors.New("viewport: action not offered")
)

// Menu is a context menu built from the selection at the time it was opened.
// Exactly one action runs per menu.
type Menu struct {
	At      image.Point
	Actions []Action

	doc     *document.Document
	geo     geom.Engine
	log     *logger.Logger
	entries []selection.Entry
	used    bool
}

func buildMenu(doc *document.Document, sel *selection.Controller, geo geom.Engine, log *logger.Logger, at image.Point) *Menu {
	if doc == nil || doc.Engine() == nil {
		log.Debugf("context menu: no document bound")
		return nil
	}
	m := &Menu{At: at, doc: doc, geo: geo, log: log, entries: sel.SelectedEntries()}
	switch {
	case len(m.entries) > 0:
		m.Actions = []Action{Inspect, SetColor, SetTransparency, Hide, ShowOnly, ShowAll, HideAll, Clear}
	case !doc.IsEmpty():
		m.Actions = []Action{ShowAll, HideAll, Clear}
	default:
		return nil
	}
	return m
}

// SelectionMenu builds the menu for the current selection without a pointer gesture, for
// callers such as terminal commands. It reports false when there is nothing to act on.
func SelectionMenu(doc *document.Document, sel *selection.Controller, geo geom.Engine, log *logger.Logger) (*Menu, bool) {
	m := buildMenu(doc, sel, geo, log, image.Point{})
	return m, m != nil
}

// Offers reports whether a is in the menu.
func (m *Menu) Offers(a Action) bool { return slices.Contains(m.Actions, a) }

// Run executes a. arg is a hex color for SetColor and a value in [0, 1] or CancelArg for
// SetTransparency; other actions ignore it. The returned text is the inspection report for
// Inspect and a status line otherwise.
func (m *Menu) Run(a Action, arg string) (string, error) {
	if m.used {
		return "", ErrMenuUsed
	}
	if !m.Offers(a) {
		return "", fmt.Errorf("%w: %s", ErrNoAction, a)
	}
	eng := m.doc.Engine()
	if eng == nil {
		return "", fmt.Errorf("%s: no render engine bound", a)
	}
	var (
		msg string
		err error
	)
	switch a {
	case Inspect:
		msg, err = m.inspect()
	case SetColor:
		msg, err = m.setColor(eng, arg)
	case SetTransparency:
		msg, err = m.setTransparency(eng, arg)
	case Hide:
		for _, e := range m.entries {
			eng.Hide(e.Display)
		}
		eng.ClearSelected()
		msg = fmt.Sprintf("hid %d object(s)", len(m.entries))
	case ShowOnly:
		for _, h := range m.doc.Displays() {
			if h != render.NoHandle {
				eng.Hide(h)
			}
		}
		for _, e := range m.entries {
			eng.Show(e.Display)
		}
		// Hiding dropped the selection; restore it on the shown objects.
		owners := make([]render.Owner, len(m.entries))
		for i, e := range m.entries {
			owners[i] = render.Owner{Handle: e.Display}
		}
		eng.Select(owners, render.Replace)
		msg = fmt.Sprintf("showing %d object(s)", len(m.entries))
	case ShowAll:
		n := 0
		for _, h := range m.doc.Displays() {
			if h != render.NoHandle {
				eng.Show(h)
				n++
			}
		}
		msg = fmt.Sprintf("showing all %d object(s)", n)
	case HideAll:
		for _, h := range m.doc.Displays() {
			if h != render.NoHandle {
				eng.Hide(h)
			}
		}
		eng.ClearSelected()
		msg = "all objects hidden"
	case Clear:
		m.doc.Clear()
		msg = "document cleared"
	}
	if err != nil {
		return "", err
	}
	m.used = true
	eng.Redraw()
	m.log.Infof("%s: %s", a, firstLine(msg))
	return msg, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func (m *Menu) inspect() (string, error) {
	if m.geo == nil {
		return "", errors.New("inspect: no geometry engine")
	}
	var b strings.Builder
	b.WriteString("Selected object parameters\n")
	n := 0
	for _, e := range m.entries {
		p, ok := m.geo.Properties(e.Shape)
		if !ok {
			continue
		}
		n++
		fmt.Fprintf(&b, "\nObject %d (%s):\n", n, e.Name)
		writeProperties(&b, p)
	}
	if n == 0 {
		return "", errors.New("inspect: no properties available for the selection")
	}
	return b.String(), nil
}

func writeProperties(b *strings.Builder, p geom.Properties) {
	fmt.Fprintf(b, "  type: %s\n", p.Type)
	fmt.Fprintf(b, "  volume: %.6f\n", p.Volume)
	if !p.Bounds.IsEmpty() {
		mn, mx, sz := p.Bounds.Min, p.Bounds.Max, p.Bounds.Size()
		b.WriteString("  bounds:\n")
		fmt.Fprintf(b, "    X: [%.6f, %.6f]\n", mn.X, mx.X)
		fmt.Fprintf(b, "    Y: [%.6f, %.6f]\n", mn.Y, mx.Y)
		fmt.Fprintf(b, "    Z: [%.6f, %.6f]\n", mn.Z, mx.Z)
		fmt.Fprintf(b, "  size: %.6f x %.6f x %.6f\n", sz.X, sz.Y, sz.Z)
	}
	fmt.Fprintf(b, "  centroid: (%.6f, %.6f, %.6f)\n", p.Centroid.X, p.Centroid.Y, p.Centroid.Z)
	for k := geom.TopoVertex; k <= geom.TopoCompound; k++ {
		if n := p.Counts[k]; n > 0 {
			fmt.Fprintf(b, "  %s count: %d\n", k, n)
		}
	}
}

func (m *Menu) setColor(eng render.Engine, arg string) (string, error) {
	c, err := render.ParseColor(arg)
	if err != nil {
		return "", err
	}
	for _, e := range m.entries {
		eng.SetColor(e.Display, c)
	}
	return fmt.Sprintf("color %s applied to %d object(s)", render.Hex(c), len(m.entries)), nil
}

func (m *Menu) setTransparency(eng render.Engine, arg string) (string, error) {
	var t float64
	if strings.EqualFold(strings.TrimSpace(arg), CancelArg) {
		t = 0
	} else {
		v, err := strconv.ParseFloat(strings.TrimSpace(arg), 32)
		if err != nil || v < 0 || v > 1 {
			return "", fmt.Errorf("transparency %q: want a number in [0, 1] or %q", arg, CancelArg)
		}
		t = v
	}
	for _, e := range m.entries {
		eng.SetTransparency(e.Display, float32(t))
	}
	return fmt.Sprintf("transparency %.2f applied to %d object(s)", t, len(m.entries)), nil
}
