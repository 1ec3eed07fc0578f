package app

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycad/internal/camera"
	"mycad/internal/commands"
	"mycad/internal/edit"
	"mycad/internal/editorconfig"
	"mycad/internal/logger"
	"mycad/internal/render/rendertest"
	"mycad/internal/selection"
)

type presetView struct {
	rendertest.View
	presets []camera.Preset
}

func (v *presetView) SetPreset(p camera.Preset) { v.presets = append(v.presets, p) }

func (v *presetView) fits() int {
	n := 0
	for _, c := range v.Calls {
		if c == "fit" {
			n++
		}
	}
	return n
}

type harness struct {
	ed    *Editor
	eng   *rendertest.Engine
	view  *presetView
	files hackpadfs.FS
	start time.Time
}

func newHarness(t *testing.T, prefs *editorconfig.Prefs) harness {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "editor.json")
	if prefs != nil {
		require.NoError(t, editorconfig.Save(cfg, *prefs))
	}
	files, err := mem.NewFS()
	require.NoError(t, err)

	h := harness{eng: rendertest.New(), view: &presetView{}, files: files, start: time.Unix(1000, 0)}
	h.ed = New(logger.New(""), Options{
		ConfigPath:   cfg,
		DefaultsPath: filepath.Join(dir, "primitives.yaml"),
		Files:        files,
	})
	h.ed.Queue.SetClock(func() time.Time { return h.start })
	h.ed.Attach(h.eng, h.view)
	return h
}

func (h harness) run(t *testing.T, line string) error {
	t.Helper()
	args, ok := commands.Parse(line)
	require.True(t, ok, line)
	return h.ed.Commands.Execute(args)
}

func (h harness) must(t *testing.T, lines ...string) {
	t.Helper()
	for _, l := range lines {
		require.NoError(t, h.run(t, l), l)
	}
}

func (h harness) selected() []string {
	var out []string
	for _, e := range h.ed.Sel.SelectedEntries() {
		out = append(out, e.Name)
	}
	return out
}

func (h harness) logged(sub string) bool {
	for _, l := range h.ed.Log.Lines() {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

func TestAllCommandsRegistered(t *testing.T) {
	h := newHarness(t, nil)
	want := []string{
		"array", "box", "clear-selection", "color", "cone", "cut", "cylinder", "filter", "fit",
		"help", "hide", "hide-all", "inspect", "intersect", "list", "mirror", "new", "open",
		"remove", "rotate", "save", "select", "show-all", "sphere", "translate", "transparency",
		"union", "view",
	}
	assert.Equal(t, want, h.ed.Commands.Names())
}

func TestPrimitiveUsesDefaultsAndFitsLater(t *testing.T) {
	h := newHarness(t, nil)
	h.must(t, "box")
	require.Equal(t, []string{"Box"}, h.ed.Doc.Names())

	p, ok := h.ed.Geo.Properties(h.ed.Doc.Shape(0))
	require.True(t, ok)
	assert.InDelta(t, 1000, p.Volume, 1e-3)

	h.ed.Tick(h.start.Add(50 * time.Millisecond))
	assert.Zero(t, h.view.fits())
	h.ed.Tick(h.start.Add(fitDelay))
	assert.Equal(t, 1, h.view.fits())
	h.ed.Tick(h.start.Add(time.Second))
	assert.Equal(t, 1, h.view.fits(), "the fit runs once")

	h.must(t, "cone -r1 4 -r2 0 -h 3 -name Tip")
	assert.Equal(t, []string{"Box", "Tip"}, h.ed.Doc.Names())
	p, _ = h.ed.Geo.Properties(h.ed.Doc.Shape(1))
	assert.InDelta(t, 3, p.Bounds.Size().Z, 1e-4)
}

func TestFitDroppedWhenShapeRemoved(t *testing.T) {
	h := newHarness(t, nil)
	h.must(t, "sphere -r 2", "remove 0")
	h.ed.Tick(h.start.Add(time.Second))
	assert.Zero(t, h.view.fits())
	assert.Zero(t, h.ed.Queue.Len())
}

func TestInvalidPrimitiveIsEngineFailure(t *testing.T) {
	h := newHarness(t, nil)
	err := h.run(t, "sphere -r 0")
	assert.ErrorIs(t, err, edit.ErrEngineFailure)
	assert.Zero(t, h.ed.Doc.Len())

	err = h.run(t, "box -dx abc")
	assert.Error(t, err)
}

func TestBooleanClearsSelectionAndFits(t *testing.T) {
	h := newHarness(t, nil)
	h.must(t, "box", "cylinder -r 2 -h 20", "select all")
	assert.Equal(t, []string{"Box", "Cylinder"}, h.selected())

	h.must(t, "union")
	assert.Equal(t, []string{"Union"}, h.ed.Doc.Names())
	assert.Empty(t, h.selected())
	assert.Equal(t, 1, h.view.fits())
}

func TestBooleanNeedsTwoShapes(t *testing.T) {
	h := newHarness(t, nil)
	h.must(t, "box", "select 0")
	err := h.run(t, "cut")
	assert.ErrorIs(t, err, edit.ErrInput)
	assert.Equal(t, []string{"Box"}, h.ed.Doc.Names())
	assert.Equal(t, []string{"Box"}, h.selected())
}

func TestTransformsAddCopies(t *testing.T) {
	h := newHarness(t, nil)
	h.must(t, "box", "select Box", "translate -dx 5")
	require.Equal(t, []string{"Box", "Translated"}, h.ed.Doc.Names())
	p, _ := h.ed.Geo.Properties(h.ed.Doc.Shape(1))
	assert.InDelta(t, 5, p.Bounds.Min.X, 1e-4)

	h.must(t, "select Box", "mirror -ox -1")
	p, _ = h.ed.Geo.Properties(h.ed.Doc.Shape(2))
	assert.Equal(t, "Mirrored", h.ed.Doc.Name(2))
	assert.InDelta(t, -12, p.Bounds.Min.X, 1e-4)

	assert.ErrorIs(t, h.run(t, "rotate -az 0"), edit.ErrInput)
	assert.ErrorIs(t, h.run(t, "mirror -nx 0"), edit.ErrInput)
	h.must(t, "clear-selection")
	assert.ErrorIs(t, h.run(t, "translate -dx 1"), edit.ErrInput)
}

func TestArrayCommand(t *testing.T) {
	h := newHarness(t, nil)
	h.must(t, "box", "select 0", "array -n 3")
	assert.Equal(t, []string{"Box", "ArrayItem", "ArrayItem", "ArrayItem"}, h.ed.Doc.Names())

	assert.ErrorIs(t, h.run(t, "array -kind spiral"), edit.ErrInput)
	assert.ErrorIs(t, h.run(t, "array -n 0"), edit.ErrInput)

	h.must(t, "select 0", "array -kind circular -n 4 -angle 360")
	assert.Equal(t, 8, h.ed.Doc.Len())
}

func TestSelectAndRemove(t *testing.T) {
	h := newHarness(t, nil)
	h.must(t, "box", "sphere", "cone", "select Sphere")
	assert.Equal(t, []string{"Sphere"}, h.selected())
	h.must(t, "select -add 2")
	assert.Equal(t, []string{"Sphere", "Cone"}, h.selected())

	h.must(t, "remove")
	assert.Equal(t, []string{"Box"}, h.ed.Doc.Names())

	assert.ErrorIs(t, h.run(t, "remove 5"), edit.ErrInput)
	assert.ErrorIs(t, h.run(t, "remove Nope"), edit.ErrInput)
	assert.ErrorIs(t, h.run(t, "select"), edit.ErrInput)
	h.must(t, "clear-selection")
	assert.ErrorIs(t, h.run(t, "remove"), edit.ErrInput)

	h.must(t, "box", "remove Box")
	assert.Zero(t, h.ed.Doc.Len(), "every entry with the name goes")
}

func TestFilterCommand(t *testing.T) {
	h := newHarness(t, nil)
	h.must(t, "filter face")
	assert.Equal(t, selection.Face, h.ed.Sel.Filter())
	assert.Error(t, h.run(t, "filter bogus"))
	assert.Equal(t, selection.Face, h.ed.Sel.Filter())
	h.must(t, "filter")
	assert.True(t, h.logged("filter: face"))
}

func TestSaveOpenNew(t *testing.T) {
	h := newHarness(t, nil)
	h.must(t, "box", "sphere -r 3", "save work/part")
	_, err := fs.Stat(h.files, "work/part"+DocumentExt)
	require.NoError(t, err)

	h.must(t, "new")
	assert.Zero(t, h.ed.Doc.Len())
	assert.ErrorIs(t, h.run(t, "save"), edit.ErrInput, "new forgets the path")

	fitsBefore := h.view.fits()
	h.must(t, "open work/part")
	assert.Equal(t, []string{"Box", "Sphere"}, h.ed.Doc.Names())
	assert.Equal(t, fitsBefore+1, h.view.fits())
	p, _ := h.ed.Geo.Properties(h.ed.Doc.Shape(1))
	assert.InDelta(t, 6, p.Bounds.Size().X, 1e-4)

	h.must(t, "remove 0", "save")
	h.must(t, "open work/part.mycad")
	assert.Equal(t, []string{"Sphere"}, h.ed.Doc.Names())

	assert.Error(t, h.run(t, "open missing"))
	assert.Equal(t, []string{"Sphere"}, h.ed.Doc.Names())
	assert.Error(t, h.run(t, "save ../outside"))
}

func TestViewCommand(t *testing.T) {
	h := newHarness(t, nil)
	h.must(t, "view top", "view ISO")
	assert.Equal(t, []camera.Preset{camera.Top, camera.Iso}, h.view.presets)
	assert.Error(t, h.run(t, "view sideways"))
	assert.ErrorIs(t, h.run(t, "view"), edit.ErrInput)

	h.must(t, "fit")
	assert.Equal(t, 1, h.view.fits())
}

func TestDisplayCommands(t *testing.T) {
	h := newHarness(t, nil)
	assert.ErrorIs(t, h.run(t, "hide-all"), edit.ErrInput, "empty document")

	h.must(t, "box", "sphere")
	assert.ErrorIs(t, h.run(t, "color #ff0000"), edit.ErrInput, "nothing selected")

	h.must(t, "select Box", "color #ff0000", "transparency 0.5")
	box, ok := h.eng.Object(h.ed.Doc.DisplayNamed("Box"))
	require.True(t, ok)
	assert.Equal(t, uint8(255), box.Color.R)
	assert.Zero(t, box.Color.G)
	assert.InDelta(t, 0.5, box.Transparency, 1e-6)
	assert.Error(t, h.run(t, "transparency 2"))
	assert.ErrorIs(t, h.run(t, "color"), edit.ErrInput)

	h.must(t, "inspect")
	assert.True(t, h.logged("type: Solid"))
	assert.True(t, h.logged("volume: 1000.000000"))

	h.must(t, "hide")
	assert.False(t, box.Visible)
	h.must(t, "show-all")
	assert.True(t, box.Visible)
	h.must(t, "hide-all")
	sphere, _ := h.eng.Object(h.ed.Doc.DisplayNamed("Sphere"))
	assert.False(t, box.Visible)
	assert.False(t, sphere.Visible)
}

func TestHelpAndList(t *testing.T) {
	h := newHarness(t, nil)
	h.must(t, "help box")
	assert.True(t, h.logged("-dx (default \"10\")"))
	assert.Error(t, h.run(t, "help nope"))

	h.must(t, "help")
	assert.True(t, h.logged("transparency"))

	h.must(t, "box", "select 0", "list")
	assert.True(t, h.logged("[0] Box *"))
}

func TestConfigFilterAndReload(t *testing.T) {
	prefs := editorconfig.Default()
	prefs.Filter = "edge"
	h := newHarness(t, &prefs)
	assert.Equal(t, selection.Edge, h.ed.Sel.Filter())

	var got []editorconfig.Prefs
	h.ed.OnPrefs(func(p editorconfig.Prefs) { got = append(got, p) })
	next := prefs
	next.Filter = "solid"
	next.GridVisible = false
	h.ed.ApplyPrefs(next)
	assert.Equal(t, selection.Solid, h.ed.Sel.Filter())
	require.Len(t, got, 1)
	assert.False(t, got[0].GridVisible)
	assert.Equal(t, next, h.ed.Prefs())
}

func TestWatchedConfigAppliesOnTick(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "editor.json")
	require.NoError(t, editorconfig.Save(cfg, editorconfig.Default()))
	files, err := mem.NewFS()
	require.NoError(t, err)
	ed := New(logger.New(""), Options{ConfigPath: cfg, DefaultsPath: filepath.Join(dir, "p.yaml"), Watch: true, Files: files})
	defer ed.Close()
	ed.Attach(rendertest.New(), &presetView{})

	next := editorconfig.Default()
	next.Filter = "vertex"
	require.NoError(t, editorconfig.Save(cfg, next))
	require.Eventually(t, func() bool {
		ed.Tick(time.Now())
		return ed.Sel.Filter() == selection.Vertex
	}, 5*time.Second, 10*time.Millisecond)
}

func TestPrimitiveDefaultsOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := "primitives:\n  - kind: sphere\n    name: Ball\n    params: {radius: 1}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.yaml"), []byte(yaml), 0o644))
	files, err := mem.NewFS()
	require.NoError(t, err)
	ed := New(logger.New(""), Options{ConfigPath: filepath.Join(dir, "c.json"), DefaultsPath: filepath.Join(dir, "p.yaml"), Files: files})
	ed.Attach(rendertest.New(), &presetView{})

	require.NoError(t, ed.Commands.Execute([]string{"sphere"}))
	require.NoError(t, ed.Commands.Execute([]string{"box"}))
	assert.Equal(t, []string{"Ball", "Box"}, ed.Doc.Names())
	p, _ := ed.Geo.Properties(ed.Doc.Shape(0))
	assert.InDelta(t, 2, p.Bounds.Size().X, 1e-4)
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in, want string
		err      bool
	}{
		{"doc.mycad", "doc.mycad", false},
		{"/abs/dir/doc", "abs/dir/doc", false},
		{"a/./b/../c", "a/c", false},
		{"..", "", true},
		{"../x", "", true},
		{"/", "", true},
	}
	for _, tt := range tests {
		got, err := CleanName(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, "a"+DocumentExt, withExt("a"))
	assert.Equal(t, "a.bin", withExt("a.bin"))
}

