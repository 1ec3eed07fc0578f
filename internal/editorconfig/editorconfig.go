package editorconfig

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"mycad/internal/render"
)

// DefaultPath is the path to the editor config file, relative to the process working directory.
const DefaultPath = "config/editor.json"

// Prefs holds editor-only preferences (overlays, grid, window, palette). Persisted across runs.
// Documents are saved separately through the terminal's save command.
type Prefs struct {
	ShowFPS      bool `json:"show_fps"`
	ShowMemAlloc bool `json:"show_memalloc"`
	GridVisible  bool `json:"grid_visible"`
	// GridSize is the number of grid cells on each side; GridSpacing is the cell size in model units.
	GridSize     int     `json:"grid_size"`
	GridSpacing  float32 `json:"grid_spacing"`
	WindowWidth  int     `json:"window_width"`
	WindowHeight int     `json:"window_height"`
	// Colors are "#rrggbb" strings.
	Background string `json:"background"`
	ShapeColor string `json:"shape_color"`
	Highlight  string `json:"highlight"`
	Selection  string `json:"selection"`
	// Filter is the selection filter applied at startup (none, vertex, edge, face, ...).
	Filter string `json:"filter,omitempty"`
	// Font names a font under assets/fonts (or a file path) for overlay text; empty uses the built-in font.
	Font string `json:"font,omitempty"`
	// Stylesheet is an optional CSS file layered over the built-in overlay styles.
	Stylesheet string `json:"stylesheet,omitempty"`
}

// Default returns default editor preferences (overlays off, grid on, 1280x800 window).
func Default() Prefs {
	return Prefs{
		GridVisible:  true,
		GridSize:     20,
		GridSpacing:  10,
		WindowWidth:  1280,
		WindowHeight: 800,
		Background:   "#1e1f24",
		ShapeColor:   render.Hex(render.DefaultColor),
		Highlight:    "#4fc3f7",
		Selection:    "#ffb300",
		Filter:       "none",
	}
}

// Load reads preferences from path. If the file is missing or invalid, returns Default() and
// does not create a file; the error says why the file was not used.
// Fields missing from the file keep their default values.
func Load(path string) (Prefs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), nil
	}
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return p, nil
}

// Save writes preferences to path, creating the config directory if needed.
func Save(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Palette is Prefs' colors, parsed.
type Palette struct {
	Background color.RGBA
	Shape      color.RGBA
	Highlight  color.RGBA
	Selection  color.RGBA
}

// Palette parses the color fields. A malformed field falls back to its default.
func (p Prefs) Palette() (Palette, error) {
	def := Default()
	var errs []error
	parse := func(s, fallback string) color.RGBA {
		c, err := render.ParseColor(s)
		if err != nil {
			errs = append(errs, err)
			c, _ = render.ParseColor(fallback)
		}
		return c
	}
	pal := Palette{
		Background: parse(p.Background, def.Background),
		Shape:      parse(p.ShapeColor, def.ShapeColor),
		Highlight:  parse(p.Highlight, def.Highlight),
		Selection:  parse(p.Selection, def.Selection),
	}
	if len(errs) > 0 {
		return pal, fmt.Errorf("palette: %v", errs)
	}
	return pal, nil
}
