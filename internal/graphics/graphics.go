package graphics

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	minWidth  = 640
	minHeight = 400
)

// Window describes the main window.
type Window struct {
	Title         string
	Width, Height int
	// Background is read every frame so a config reload can change it.
	Background func() color.RGBA
	// OnInit runs once after the window and OpenGL context exist, before the first frame.
	OnInit func()
	// OnResize receives the new size after the user resizes the window.
	OnResize func(w, h int)
	// OnClose runs once the loop ends, while the OpenGL context still exists.
	OnClose func()
}

// Run opens the window and runs the main loop. Each frame it calls update (input, queued work),
// then clears the screen and calls draw (3D view, then overlays).
// ESC toggles the terminal rather than quitting; close via the window button.
func Run(win Window, update, draw func()) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(win.Width), int32(win.Height), win.Title)
	defer rl.CloseWindow()

	rl.SetWindowMinSize(minWidth, minHeight)
	rl.SetExitKey(rl.KeyNull)
	rl.SetTargetFPS(60)
	if win.OnInit != nil {
		win.OnInit()
	}

	for !rl.WindowShouldClose() {
		if rl.IsWindowResized() && win.OnResize != nil {
			win.OnResize(rl.GetScreenWidth(), rl.GetScreenHeight())
		}
		update()

		rl.BeginDrawing()
		bg := rl.Black
		if win.Background != nil {
			bg = win.Background()
		}
		rl.ClearBackground(bg)
		draw()
		rl.EndDrawing()
	}
	if win.OnClose != nil {
		win.OnClose()
	}
}
