// Package overlay draws the editor's 2D layer over the 3D view: the context menu, its
// argument prompt, the inspection report, the status line and the frame statistics.
// Layout and styles come from package ui; this package only draws and reads raylib input.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"mycad/internal/document"
	"mycad/internal/fonts"
	"mycad/internal/logger"
	"mycad/internal/selection"
	"mycad/internal/ui"
	"mycad/internal/viewport"
)

const (
	fontSpacing = 1
	fontBase    = 32
	maxStatus   = 160
)

// Overlay owns the popup and draws every 2D element except the terminal.
type Overlay struct {
	Stats

	log   *logger.Logger
	doc   *document.Document
	sel   *selection.Controller
	sheet *ui.Stylesheet
	popup *ui.Popup
	font  rl.Font
	// consumed is set for the frame in which the overlay took a mouse press.
	consumed bool
}

// New returns an overlay styled with sheet (nil means the built-in styles).
func New(log *logger.Logger, doc *document.Document, sel *selection.Controller, sheet *ui.Stylesheet) *Overlay {
	if sheet == nil {
		sheet = ui.DefaultSheet()
	}
	o := &Overlay{log: log, doc: doc, sel: sel, sheet: sheet}
	o.popup = ui.NewPopup(sheet, o.measure)
	return o
}

// SetStylesheet replaces the styles; an open menu keeps its layout until reopened.
func (o *Overlay) SetStylesheet(sheet *ui.Stylesheet) {
	if sheet == nil {
		return
	}
	o.sheet = sheet
	o.popup.SetStylesheet(sheet)
}

// LoadFont loads the named font for all overlay text. Call after the window exists.
// An empty name restores raylib's built-in font.
func (o *Overlay) LoadFont(name string) error {
	o.unloadFont()
	if name == "" {
		return nil
	}
	path, err := fonts.Find(fonts.BaseDirs(), name)
	if err != nil {
		return fmt.Errorf("font %q: %w", name, err)
	}
	f := rl.LoadFontEx(path, fontBase, nil)
	if f.Texture.ID == 0 {
		return fmt.Errorf("font %q: could not load %s", name, path)
	}
	o.font = f
	o.log.Infof("overlay font: %s", path)
	return nil
}

// Font returns the loaded font; its texture ID is zero when the built-in font is in use.
func (o *Overlay) Font() rl.Font { return o.font }

func (o *Overlay) unloadFont() {
	if o.font.Texture.ID != 0 {
		rl.UnloadFont(o.font)
		o.font = rl.Font{}
	}
}

// Unload releases the font. Call before the window closes.
func (o *Overlay) Unload() { o.unloadFont() }

func (o *Overlay) style(class string) ui.Style { return o.sheet.Resolve(class, "") }

func (o *Overlay) measure(text string, size int) int {
	if o.font.Texture.ID != 0 {
		return int(rl.MeasureTextEx(o.font, text, float32(size), fontSpacing).X)
	}
	return int(rl.MeasureText(text, int32(size)))
}

func (o *Overlay) text(s string, x, y, size int, col color.RGBA) {
	if o.font.Texture.ID != 0 {
		rl.DrawTextEx(o.font, s, rl.NewVector2(float32(x), float32(y)), float32(size), fontSpacing, col)
		return
	}
	rl.DrawText(s, int32(x), int32(y), int32(size), col)
}

func screen() image.Point {
	return image.Pt(int(rl.GetScreenWidth()), int(rl.GetScreenHeight()))
}

func mouse() image.Point {
	mp := rl.GetMousePosition()
	return image.Pt(int(mp.X), int(mp.Y))
}

// OpenMenu shows m at its anchor.
func (o *Overlay) OpenMenu(m *viewport.Menu) {
	o.popup.Open(m, screen())
}

// Active reports whether the popup wants the keyboard (menu, prompt or report showing).
func (o *Overlay) Active() bool {
	_, _, report := o.popup.Report()
	return o.popup.MenuOpen() || o.popup.Prompting() || report
}

// Blocked reports whether the viewport must not see this frame's mouse input.
func (o *Overlay) Blocked() bool {
	return o.consumed || o.popup.Prompting() || o.popup.Captures(mouse())
}

// Update routes this frame's input to the popup. It returns true when the popup used the
// keyboard, so the terminal must not also act on it. Call before the viewport input.
func (o *Overlay) Update() bool {
	o.consumed = false
	p := mouse()
	o.popup.Hover(p)
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && (o.popup.Captures(p) || o.popup.MenuOpen()) {
		o.consumed = true
		o.report(o.popup.Click(p))
	}
	if !o.Active() {
		return false
	}
	if o.popup.Prompting() {
		for c := rl.GetCharPressed(); c != 0; c = rl.GetCharPressed() {
			o.popup.Type(string(rune(c)))
		}
		if rl.IsKeyPressed(rl.KeyBackspace) || rl.IsKeyPressedRepeat(rl.KeyBackspace) {
			o.popup.Backspace()
		}
		if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeyKpEnter) {
			o.report(o.popup.Submit())
		}
	}
	if rl.IsKeyPressed(rl.KeyEscape) {
		o.report(o.popup.Cancel())
		return true
	}
	return o.popup.Prompting()
}

func (o *Overlay) report(r ui.Result) {
	if r.Err != nil {
		o.log.Errorf("%s: %v", r.Action, r.Err)
	}
}

// Draw draws the status line, the popup and the stats. Call in 2D after the 3D view.
// bottom is the height reserved at the bottom of the screen (the open terminal).
func (o *Overlay) Draw(bottom int) {
	o.drawStatus(bottom)
	o.drawMenu()
	o.drawPrompt()
	o.drawReport()
	o.Stats.draw(o)
}

func (o *Overlay) box(r image.Rectangle, st ui.Style) {
	rect := rl.NewRectangle(float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()))
	if st.Background.A > 0 {
		rl.DrawRectangleRec(rect, st.Background)
	}
	if st.HasBorder {
		rl.DrawRectangleLinesEx(rect, 1, st.Border)
	}
}

func (o *Overlay) drawStatus(bottom int) {
	st := o.style("status")
	sc := screen()
	h := st.FontSize + 2*st.Padding
	y := sc.Y - bottom - h
	o.box(image.Rect(0, y, sc.X, y+h), st)

	right := fmt.Sprintf("filter: %s | selected: %d | objects: %d", o.sel.Filter(), len(o.sel.SelectedEntries()), o.doc.Len())
	rw := o.measure(right, st.FontSize)
	o.text(right, sc.X-rw-st.Padding, y+st.Padding, st.FontSize, st.Color)

	last := o.log.Last()
	if len(last) > maxStatus {
		last = last[:maxStatus-3] + "..."
	}
	col := st.Color
	if logger.LevelOf(last) >= logger.LevelWarn {
		col = color.RGBA{R: 255, G: 120, B: 110, A: 255}
	}
	o.text(last, st.Padding, y+st.Padding, st.FontSize, col)
}

func (o *Overlay) drawMenu() {
	box, rows, ok := o.popup.MenuRows()
	if !ok {
		return
	}
	o.box(box, o.style("menu"))
	for _, r := range rows {
		class := "menu-item"
		if r.Hot {
			class = "menu-item-hot"
		}
		st := o.style(class)
		o.box(r.Rect, st)
		o.text(r.Label, r.Rect.Min.X+st.Padding, r.Rect.Min.Y+st.Padding, st.FontSize, st.Color)
	}
}

func (o *Overlay) drawPrompt() {
	label, text, box, ok := o.popup.Prompt()
	if !ok {
		return
	}
	st := o.style("prompt")
	o.box(box, st)
	o.text(label+text+"|", box.Min.X+st.Padding, box.Min.Y+st.Padding, st.FontSize, st.Color)
}

func (o *Overlay) drawReport() {
	lines, box, ok := o.popup.Report()
	if !ok {
		return
	}
	st := o.style("report")
	o.box(box, st)
	y := box.Min.Y + st.Padding
	for _, l := range lines {
		o.text(l, box.Min.X+st.Padding, y, st.FontSize, st.Color)
		y += st.FontSize + 4
	}
}
