package viewport

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycad/internal/render"
)

func (r rig) menuFor(t *testing.T, selected ...string) *Menu {
	t.Helper()
	hs := make([]render.Handle, len(selected))
	for i, n := range selected {
		hs[i] = r.handle(n)
	}
	r.sel.SelectHandles(hs)
	m, ok := r.ctl.ContextMenu(pt(0, 0))
	require.True(t, ok)
	return m
}

func (r rig) visible(t *testing.T, name string) bool {
	t.Helper()
	o, ok := r.eng.Object(r.handle(name))
	require.True(t, ok)
	return o.Visible
}

func TestMenuRunsExactlyOneAction(t *testing.T) {
	r := newRig(t, "A", "B")
	m := r.menuFor(t, "A")

	_, err := m.Run(Hide, "")
	require.NoError(t, err)
	assert.False(t, r.visible(t, "A"))
	assert.True(t, r.visible(t, "B"))
	assert.Empty(t, r.sel.SelectedObjects())

	_, err = m.Run(ShowAll, "")
	assert.ErrorIs(t, err, ErrMenuUsed)
	assert.False(t, r.visible(t, "A"))
}

func TestMenuRejectsActionsNotOffered(t *testing.T) {
	r := newRig(t, "A")
	m, ok := r.ctl.ContextMenu(pt(0, 0))
	require.True(t, ok)
	_, err := m.Run(Inspect, "")
	assert.ErrorIs(t, err, ErrNoAction)

	_, err = m.Run(HideAll, "")
	require.NoError(t, err, "a rejected action does not use up the menu")
	assert.False(t, r.visible(t, "A"))
}

func TestShowOnlyAndShowAll(t *testing.T) {
	r := newRig(t, "A", "B", "C")
	_, err := r.menuFor(t, "B").Run(ShowOnly, "")
	require.NoError(t, err)
	assert.False(t, r.visible(t, "A"))
	assert.True(t, r.visible(t, "B"))
	assert.False(t, r.visible(t, "C"))
	assert.Equal(t, []render.Handle{r.handle("B")}, r.sel.SelectedObjects())

	msg, err := r.menuFor(t, "B").Run(ShowAll, "")
	require.NoError(t, err)
	assert.Equal(t, "showing all 3 object(s)", msg)
	for _, n := range []string{"A", "B", "C"} {
		assert.True(t, r.visible(t, n), n)
	}
}

func TestColorAndTransparencyAreRenderOnly(t *testing.T) {
	r := newRig(t, "A")

	_, err := r.menuFor(t, "A").Run(SetColor, "#ff8000")
	require.NoError(t, err)
	o, _ := r.eng.Object(r.handle("A"))
	assert.Equal(t, color.RGBA{R: 255, G: 128, B: 0, A: 255}, o.Color)

	m := r.menuFor(t, "A")
	_, err = m.Run(SetTransparency, "2")
	assert.Error(t, err)
	_, err = m.Run(SetTransparency, "0.5")
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), o.Transparency)

	_, err = r.menuFor(t, "A").Run(SetTransparency, CancelArg)
	require.NoError(t, err)
	assert.Equal(t, float32(0), o.Transparency)
	assert.Equal(t, 1, r.doc.Len())
}

func TestInspectReportsProperties(t *testing.T) {
	r := newRig(t, "A", "B")
	report, err := r.menuFor(t, "B", "A").Run(Inspect, "")
	require.NoError(t, err)
	assert.Contains(t, report, "Object 1 (B):")
	assert.Contains(t, report, "Object 2 (A):")
	assert.Contains(t, report, "type: Token")
}

func TestMenuClearEmptiesDocument(t *testing.T) {
	r := newRig(t, "A", "B")
	_, err := r.menuFor(t).Run(Clear, "")
	require.NoError(t, err)
	assert.True(t, r.doc.IsEmpty())
	assert.ElementsMatch(t, []render.Handle{1, 2}, r.eng.Unregistered)

	_, ok := r.ctl.ContextMenu(pt(0, 0))
	assert.False(t, ok)
}
