// Package terminal draws the command bar and feeds it raylib keyboard input. Line editing,
// history and command dispatch live in commands.Console.
package terminal

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"mycad/internal/commands"
	"mycad/internal/logger"
)

const (
	BarHeight = 40
	prompt    = "> "
	fontSize  = 20
	padding   = 8
	// log lines shown above the bar
	maxLinesOnScreen = 14
	lineHeight       = fontSize + 4
	maxLineChars     = 200
	historyLimit     = 200
)

var (
	barColor   = rl.NewColor(40, 40, 40, 255)
	ruleColor  = rl.NewColor(80, 80, 80, 255)
	backColor  = rl.NewColor(24, 24, 24, 240)
	errorColor = rl.NewColor(255, 120, 110, 255)
)

// Terminal is the command bar at the bottom of the screen, shown and hidden with ESC.
// While open it captures the keyboard.
type Terminal struct {
	con  *commands.Console
	open bool
	font rl.Font
}

// New returns a closed Terminal that runs lines through reg and shows log.
func New(log *logger.Logger, reg *commands.Registry) *Terminal {
	return &Terminal{con: commands.NewConsole(reg, log, historyLimit)}
}

// IsOpen reports whether the bar is visible and capturing input.
func (t *Terminal) IsOpen() bool { return t.open }

// SetFont sets the font for the bar and log. A zero font uses raylib's default.
func (t *Terminal) SetFont(font rl.Font) { t.font = font }

// Submit runs one line as if typed.
func (t *Terminal) Submit(line string) { t.con.Submit(line) }

func pasteDown() bool {
	return rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) ||
		rl.IsKeyDown(rl.KeyLeftSuper) || rl.IsKeyDown(rl.KeyRightSuper)
}

// Update toggles the bar on ESC and, while open, edits the line. Call once per frame.
func (t *Terminal) Update() {
	if rl.IsKeyPressed(rl.KeyEscape) {
		t.open = !t.open
	}
	if !t.open {
		return
	}
	if rl.IsKeyPressed(rl.KeyV) && pasteDown() {
		t.con.Insert(rl.GetClipboardText())
	} else {
		for c := rl.GetCharPressed(); c != 0; c = rl.GetCharPressed() {
			t.con.Insert(string(rune(c)))
		}
	}
	switch {
	case rl.IsKeyPressed(rl.KeyUp):
		t.con.Prev()
	case rl.IsKeyPressed(rl.KeyDown):
		t.con.Next()
	case rl.IsKeyPressed(rl.KeyTab):
		t.con.Complete()
	case rl.IsKeyPressed(rl.KeyBackspace) || rl.IsKeyPressedRepeat(rl.KeyBackspace):
		t.con.Backspace()
	case rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeyKpEnter):
		t.con.Enter()
	}
}

func (t *Terminal) text(s string, x, y int, col rl.Color) {
	if t.font.Texture.ID != 0 {
		rl.DrawTextEx(t.font, s, rl.NewVector2(float32(x), float32(y)), fontSize, 1, col)
		return
	}
	rl.DrawText(s, int32(x), int32(y), fontSize, col)
}

// Draw draws the bar and the newest log lines above it when open.
func (t *Terminal) Draw() {
	if !t.open {
		return
	}
	w, h := int(rl.GetScreenWidth()), int(rl.GetScreenHeight())
	barY := h - BarHeight

	logH := maxLinesOnScreen * lineHeight
	logY := max(barY-logH, 0)
	logH = barY - logY
	if logH > 0 {
		rl.DrawRectangle(0, int32(logY), int32(w), int32(logH), backColor)
	}
	for i, line := range t.con.Tail(maxLinesOnScreen, maxLineChars) {
		col := rl.LightGray
		if logger.LevelOf(line) >= logger.LevelWarn {
			col = errorColor
		}
		t.text(line, padding, logY+i*lineHeight+padding, col)
	}

	rl.DrawRectangle(0, int32(barY), int32(w), BarHeight, barColor)
	rl.DrawRectangle(0, int32(barY), int32(w), 1, ruleColor)
	t.text(prompt+t.con.Input()+"|", padding, barY+padding, rl.White)
}
