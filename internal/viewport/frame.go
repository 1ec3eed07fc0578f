package viewport

import (
	"image"
	"slices"
)

// Frame is one frame of polled input.
type Frame struct {
	Pos      image.Point
	Mods     Modifiers
	Pressed  []Button
	Released []Button
	Wheel    float32
	Keys     []Key
}

// Feed runs one frame of input through the state machine and returns the context menu a
// right-button release opened. While blocked (terminal open, pointer over a popup) only
// releases get through, so a drag that ends under an overlay still returns to Idle; no menu
// opens then.
func (c *Controller) Feed(f Frame, blocked bool) (*Menu, bool) {
	if !blocked {
		for _, b := range f.Pressed {
			c.Press(b, f.Pos, f.Mods)
		}
		if f.Pos != c.last {
			c.Move(f.Pos, f.Mods)
		}
	}
	var (
		menu   *Menu
		opened bool
	)
	for _, b := range f.Released {
		tracked := c.secondary
		c.Release(b, f.Pos, f.Mods)
		if b == Secondary && tracked && !blocked {
			menu, opened = c.ContextMenu(f.Pos)
		}
	}
	if blocked {
		return menu, opened
	}
	if f.Wheel != 0 {
		c.Scroll(f.Pos, f.Wheel)
	}
	if slices.Contains(f.Keys, FitKey) {
		c.KeyPress(FitKey)
	}
	return menu, opened
}
