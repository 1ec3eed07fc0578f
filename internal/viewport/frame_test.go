package viewport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycad/internal/render"
)

func (r rig) pans() int {
	n := 0
	for _, c := range r.view.Calls {
		if strings.HasPrefix(c, "pan ") {
			n++
		}
	}
	return n
}

func TestBlockedReleaseEndsBoxSelection(t *testing.T) {
	r := newRig(t, "A", "B")
	r.place("A", 50, 50)
	r.place("B", 300, 300)

	r.ctl.Feed(Frame{Pos: pt(10, 10), Pressed: []Button{Primary}}, false)
	r.ctl.Feed(Frame{Pos: pt(100, 100)}, false)
	require.Equal(t, BoxSelecting, r.ctl.State())
	require.True(t, r.eng.IsSelected(r.handle("A")))

	// The button comes up over an overlay.
	r.ctl.Feed(Frame{Pos: pt(400, 400), Released: []Button{Primary}}, true)
	assert.Equal(t, Idle, r.ctl.State())

	r.ctl.Feed(Frame{Pos: pt(350, 350)}, false)
	assert.Equal(t, Idle, r.ctl.State())
	_, band := r.ctl.Band()
	assert.False(t, band)
	assert.True(t, r.eng.IsSelected(r.handle("A")), "hovering must not reselect")
	assert.False(t, r.eng.IsSelected(r.handle("B")))
}

func TestBlockedReleaseStopsPanning(t *testing.T) {
	r := newRig(t, "A")

	r.ctl.Feed(Frame{Pos: pt(0, 0), Pressed: []Button{Secondary}}, false)
	r.ctl.Feed(Frame{Pos: pt(10, 0)}, false)
	require.Equal(t, Panning, r.ctl.State())
	require.Equal(t, 1, r.pans())

	m, ok := r.ctl.Feed(Frame{Pos: pt(10, 0), Released: []Button{Secondary}}, true)
	assert.False(t, ok)
	assert.Nil(t, m)
	assert.Equal(t, Idle, r.ctl.State())
	assert.Equal(t, render.CursorArrow, r.view.Cursor)

	r.ctl.Feed(Frame{Pos: pt(30, 0)}, false)
	r.ctl.Feed(Frame{Pos: pt(60, 0)}, false)
	assert.Equal(t, 1, r.pans(), "no button is held")
	assert.Equal(t, Idle, r.ctl.State())
}

func TestFeedOpensMenuOnRightClick(t *testing.T) {
	r := newRig(t, "A")

	r.ctl.Feed(Frame{Pos: pt(20, 20), Pressed: []Button{Secondary}}, false)
	m, ok := r.ctl.Feed(Frame{Pos: pt(20, 20), Released: []Button{Secondary}}, false)
	require.True(t, ok)
	assert.Equal(t, []Action{ShowAll, HideAll, Clear}, m.Actions)

	// A right press the overlay took does not open a menu on release.
	r.ctl.Feed(Frame{Pos: pt(20, 20), Pressed: []Button{Secondary}}, true)
	_, ok = r.ctl.Feed(Frame{Pos: pt(20, 20), Released: []Button{Secondary}}, false)
	assert.False(t, ok)
}

func TestBlockedFrameDropsPressesWheelAndKeys(t *testing.T) {
	r := newRig(t, "A")

	r.ctl.Feed(Frame{Pos: pt(40, 40), Pressed: []Button{Primary, Tertiary}, Wheel: 1, Keys: []Key{FitKey}}, true)
	assert.Equal(t, Idle, r.ctl.State())
	assert.Empty(t, r.view.Calls)

	r.ctl.Feed(Frame{Pos: pt(40, 40), Wheel: 1, Keys: []Key{FitKey}}, false)
	assert.Equal(t, []string{"redraw", "zoom 40 40 1.1", "fit"}, r.view.Calls)
}
