package ui

import (
	"image"
	"strings"

	"mycad/internal/viewport"
)

// Measure returns the width in pixels of text drawn at size.
type Measure func(text string, size int) int

const (
	screenMargin = 8
	reportTop    = 64
	lineGap      = 4
)

// Row is one laid-out menu entry.
type Row struct {
	Action viewport.Action
	Label  string
	Rect   image.Rectangle
	Hot    bool
}

// Result reports what a popup interaction did. Ran is true when a menu action executed;
// Err carries its failure.
type Result struct {
	Action  viewport.Action
	Ran     bool
	Message string
	Err     error
}

// Popup is the context menu as the user sees it: its rows, the argument prompt that color and
// transparency need, and the inspection report. Only one menu is open at a time.
type Popup struct {
	sheet   *Stylesheet
	measure Measure
	screen  image.Point

	menu *viewport.Menu
	box  image.Rectangle
	rows []Row

	prompting bool
	action    viewport.Action
	input     string
	promptBox image.Rectangle

	report    []string
	reportBox image.Rectangle
}

// NewPopup returns a closed popup laid out with sheet and measure.
func NewPopup(sheet *Stylesheet, measure Measure) *Popup {
	return &Popup{sheet: sheet, measure: measure}
}

// SetStylesheet replaces the stylesheet; it applies from the next Open.
func (p *Popup) SetStylesheet(sheet *Stylesheet) { p.sheet = sheet }

func needsArg(a viewport.Action) bool {
	return a == viewport.SetColor || a == viewport.SetTransparency
}

func promptLabel(a viewport.Action) string {
	if a == viewport.SetColor {
		return "Color (#rrggbb): "
	}
	return "Transparency (0-1, Esc resets): "
}

// clamp moves r so it lies inside the screen when it fits.
func (p *Popup) clamp(r image.Rectangle) image.Rectangle {
	if p.screen.X > 0 && r.Max.X > p.screen.X-screenMargin {
		r = r.Sub(image.Pt(r.Max.X-(p.screen.X-screenMargin), 0))
	}
	if p.screen.Y > 0 && r.Max.Y > p.screen.Y-screenMargin {
		r = r.Sub(image.Pt(0, r.Max.Y-(p.screen.Y-screenMargin)))
	}
	if r.Min.X < 0 {
		r = r.Add(image.Pt(-r.Min.X, 0))
	}
	if r.Min.Y < 0 {
		r = r.Add(image.Pt(0, -r.Min.Y))
	}
	return r
}

// Open lays out m at its anchor on a screen of the given size. A previous menu is dropped.
func (p *Popup) Open(m *viewport.Menu, screen image.Point) {
	p.Close()
	p.menu, p.screen = m, screen
	outer := p.sheet.Resolve("menu", "")
	item := p.sheet.Resolve("menu-item", "")
	rowH := item.FontSize + 2*item.Padding
	w := outer.MinWidth
	for _, a := range m.Actions {
		w = max(w, p.measure(a.String(), item.FontSize)+2*item.Padding)
	}
	h := rowH*len(m.Actions) + 2*outer.Padding
	p.box = p.clamp(image.Rect(m.At.X, m.At.Y, m.At.X+w+2*outer.Padding, m.At.Y+h))
	p.rows = make([]Row, len(m.Actions))
	y := p.box.Min.Y + outer.Padding
	for i, a := range m.Actions {
		x := p.box.Min.X + outer.Padding
		p.rows[i] = Row{Action: a, Label: a.String(), Rect: image.Rect(x, y, x+w, y+rowH)}
		y += rowH
	}
}

// Close drops the menu and any pending prompt. The report stays up.
func (p *Popup) Close() {
	p.menu, p.rows, p.prompting, p.input = nil, nil, false, ""
}

// MenuOpen reports whether the menu rows are showing.
func (p *Popup) MenuOpen() bool { return p.menu != nil && !p.prompting }

// Prompting reports whether the argument prompt is taking keyboard input.
func (p *Popup) Prompting() bool { return p.prompting }

// Captures reports whether pt is over something the popup draws, so the viewport must
// not see the pointer.
func (p *Popup) Captures(pt image.Point) bool {
	switch {
	case p.MenuOpen() && pt.In(p.box):
		return true
	case p.prompting && pt.In(p.promptBox):
		return true
	case len(p.report) > 0 && pt.In(p.reportBox):
		return true
	}
	return false
}

// Hover marks the row under pt.
func (p *Popup) Hover(pt image.Point) {
	for i := range p.rows {
		p.rows[i].Hot = pt.In(p.rows[i].Rect)
	}
}

// Click handles a primary click at pt. A row runs its action or opens the prompt; a click
// elsewhere closes the menu. A click on the report dismisses it.
func (p *Popup) Click(pt image.Point) Result {
	if len(p.report) > 0 && pt.In(p.reportBox) {
		p.report = nil
		return Result{}
	}
	if !p.MenuOpen() {
		return Result{}
	}
	for _, r := range p.rows {
		if !pt.In(r.Rect) {
			continue
		}
		if needsArg(r.Action) {
			p.openPrompt(r.Action)
			return Result{Action: r.Action}
		}
		return p.run(r.Action, "")
	}
	p.Close()
	return Result{}
}

func (p *Popup) openPrompt(a viewport.Action) {
	st := p.sheet.Resolve("prompt", "")
	label := promptLabel(a)
	w := max(st.MinWidth, p.measure(label+"#000000", st.FontSize)+2*st.Padding)
	h := st.FontSize + 2*st.Padding
	p.prompting, p.action, p.input = true, a, ""
	p.promptBox = p.clamp(image.Rect(p.box.Min.X, p.box.Min.Y, p.box.Min.X+w, p.box.Min.Y+h))
}

// Type appends typed text to the prompt.
func (p *Popup) Type(s string) {
	if p.prompting {
		p.input += s
	}
}

// Backspace deletes the last rune of the prompt input.
func (p *Popup) Backspace() {
	if p.prompting && p.input != "" {
		r := []rune(p.input)
		p.input = string(r[:len(r)-1])
	}
}

// Submit runs the prompted action with the typed argument.
func (p *Popup) Submit() Result {
	if !p.prompting {
		return Result{}
	}
	return p.run(p.action, strings.TrimSpace(p.input))
}

// Cancel abandons the prompt or closes the menu. Cancelling the transparency prompt resets
// transparency, which still counts as the menu's one action.
func (p *Popup) Cancel() Result {
	switch {
	case p.prompting && p.action == viewport.SetTransparency:
		return p.run(viewport.SetTransparency, viewport.CancelArg)
	case p.menu != nil:
		p.Close()
	default:
		p.report = nil
	}
	return Result{}
}

func (p *Popup) run(a viewport.Action, arg string) Result {
	m := p.menu
	p.Close()
	msg, err := m.Run(a, arg)
	res := Result{Action: a, Ran: err == nil, Message: msg, Err: err}
	if err == nil && a == viewport.Inspect {
		p.showReport(msg)
	}
	return res
}

func (p *Popup) showReport(text string) {
	p.report = strings.Split(strings.TrimRight(text, "\n"), "\n")
	st := p.sheet.Resolve("report", "")
	w := st.MinWidth
	for _, l := range p.report {
		w = max(w, p.measure(l, st.FontSize))
	}
	w += 2 * st.Padding
	h := len(p.report)*(st.FontSize+lineGap) + 2*st.Padding
	x := p.screen.X - w - screenMargin
	p.reportBox = p.clamp(image.Rect(x, reportTop, x+w, reportTop+h))
}

// MenuRows returns the menu frame and its rows while the menu is showing.
func (p *Popup) MenuRows() (image.Rectangle, []Row, bool) {
	if !p.MenuOpen() {
		return image.Rectangle{}, nil, false
	}
	return p.box, p.rows, true
}

// Prompt returns the prompt label, typed text and frame while prompting.
func (p *Popup) Prompt() (label, text string, box image.Rectangle, ok bool) {
	if !p.prompting {
		return "", "", image.Rectangle{}, false
	}
	return promptLabel(p.action), p.input, p.promptBox, true
}

// Report returns the last inspection report and its frame until dismissed.
func (p *Popup) Report() ([]string, image.Rectangle, bool) {
	if len(p.report) == 0 {
		return nil, image.Rectangle{}, false
	}
	return p.report, p.reportBox, true
}
