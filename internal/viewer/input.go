package viewer

import (
	"image"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"mycad/internal/viewport"
)

var bandColor = rl.NewColor(120, 180, 255, 40)

var buttons = []struct {
	rl  rl.MouseButton
	btn viewport.Button
}{
	{rl.MouseButtonLeft, viewport.Primary},
	{rl.MouseButtonRight, viewport.Secondary},
	{rl.MouseButtonMiddle, viewport.Tertiary},
}

// Input polls raylib's mouse and keyboard once per frame and feeds the viewport controller.
type Input struct {
	ctl *viewport.Controller
	// Blocked, when set and true, routes input elsewhere (terminal open, pointer over a menu).
	// Button releases and the hover tick still reach the controller.
	Blocked func() bool
	// OnMenu receives the context menu opened by a right click.
	OnMenu func(*viewport.Menu)
}

// NewInput returns an input poller for ctl.
func NewInput(ctl *viewport.Controller) *Input {
	return &Input{ctl: ctl}
}

func modifiers() viewport.Modifiers {
	var m viewport.Modifiers
	if rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) {
		m |= viewport.Ctrl
	}
	if rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift) {
		m |= viewport.Shift
	}
	return m
}

func poll() viewport.Frame {
	mp := rl.GetMousePosition()
	f := viewport.Frame{
		Pos:   image.Pt(int(mp.X), int(mp.Y)),
		Mods:  modifiers(),
		Wheel: rl.GetMouseWheelMove(),
	}
	for _, b := range buttons {
		if rl.IsMouseButtonPressed(b.rl) {
			f.Pressed = append(f.Pressed, b.btn)
		}
		if rl.IsMouseButtonReleased(b.rl) {
			f.Released = append(f.Released, b.btn)
		}
	}
	if rl.IsKeyPressed(rl.KeyF) {
		f.Keys = append(f.Keys, viewport.FitKey)
	}
	return f
}

// Update runs one frame of input. Call before drawing.
func (in *Input) Update(now time.Time) {
	blocked := in.Blocked != nil && in.Blocked()
	if m, ok := in.ctl.Feed(poll(), blocked); ok && in.OnMenu != nil {
		in.OnMenu(m)
	}
	in.ctl.Tick(now)
}

// DrawBand draws the rubber-band rectangle of a drag selection. Call in 2D after the scene.
func (in *Input) DrawBand(outline rl.Color) {
	r, ok := in.ctl.Band()
	if !ok {
		return
	}
	r = r.Canon()
	rect := rl.NewRectangle(float32(r.X0), float32(r.Y0), float32(r.X1-r.X0), float32(r.Y1-r.Y0))
	rl.DrawRectangleRec(rect, bandColor)
	rl.DrawRectangleLinesEx(rect, 1, outline)
}
