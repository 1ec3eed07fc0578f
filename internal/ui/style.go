// Package ui styles and lays out the editor's 2D overlays: the context menu, the inspection
// report and the status line. It does no drawing; the overlay package renders what is laid out here.
package ui

import (
	_ "embed"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"mycad/internal/render"
)

//go:embed default.css
var defaultCSS string

// Rule is a single CSS rule: one selector and a set of property values (raw strings).
type Rule struct {
	Selector string            // e.g. ".menu" or "#status"
	Props    map[string]string // e.g. "background" -> "#333"
}

// Stylesheet is a list of rules (order matters: later overrides earlier).
type Stylesheet struct {
	Rules []Rule
}

// Style holds resolved values used for drawing.
type Style struct {
	Background color.RGBA
	Color      color.RGBA
	Border     color.RGBA
	HasBorder  bool
	// Padding is the offset in pixels from the box edge to its text.
	Padding  int
	FontSize int
	// MinWidth is the smallest box width; boxes grow to fit their text.
	MinWidth int
}

// DefaultStyle returns a minimal style: transparent background, white 20px text, no border.
func DefaultStyle() Style {
	return Style{
		Color:    color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Padding:  4,
		FontSize: 20,
	}
}

// DefaultSheet returns the built-in overlay stylesheet.
func DefaultSheet() *Stylesheet { return ParseCSS(defaultCSS) }

// LoadCSS reads a stylesheet from path and layers it over the built-in one.
func LoadCSS(path string) (*Stylesheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultSheet(), err
	}
	sheet := DefaultSheet()
	sheet.Rules = append(sheet.Rules, ParseCSS(string(data)).Rules...)
	return sheet, nil
}

// Resolve merges every rule whose selector names class (".class") or id ("#id").
// Unknown properties and malformed values are ignored.
func (s *Stylesheet) Resolve(class, id string) Style {
	out := DefaultStyle()
	if s == nil {
		return out
	}
	opacity := float32(1)
	for _, r := range s.Rules {
		if r.Selector != "."+class && (id == "" || r.Selector != "#"+id) {
			continue
		}
		for k, v := range r.Props {
			switch k {
			case "background":
				if c, err := render.ParseColor(v); err == nil {
					out.Background = c
				}
			case "color":
				if c, err := render.ParseColor(v); err == nil {
					out.Color = c
				}
			case "border":
				if c, err := render.ParseColor(v); err == nil {
					out.Border, out.HasBorder = c, true
				}
			case "opacity":
				if f, err := strconv.ParseFloat(v, 32); err == nil && f >= 0 && f <= 1 {
					opacity = float32(f)
				}
			case "padding":
				if n, ok := ParsePx(v); ok && n >= 0 {
					out.Padding = n
				}
			case "font-size":
				if n, ok := ParsePx(v); ok && n > 0 {
					out.FontSize = n
				}
			case "min-width", "width":
				if n, ok := ParsePx(v); ok && n >= 0 {
					out.MinWidth = n
				}
			}
		}
	}
	out.Background.A = uint8(float32(out.Background.A) * opacity)
	return out
}

// ParsePx parses a number, with optional "px" suffix. Unitless is treated as pixels.
func ParsePx(s string) (int, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// String renders a style for debugging.
func (s Style) String() string {
	return fmt.Sprintf("bg=%s fg=%s pad=%d size=%d", render.Hex(s.Background), render.Hex(s.Color), s.Padding, s.FontSize)
}
