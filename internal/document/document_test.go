package document

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycad/internal/geom/geomtest"
	"mycad/internal/logger"
	"mycad/internal/render"
	"mycad/internal/render/rendertest"
)

func newBound(t *testing.T) (*Document, *rendertest.Engine) {
	t.Helper()
	eng := rendertest.New()
	d := New(logger.New(""))
	d.Bind(eng)
	return d, eng
}

func recordEvents(d *Document) *[]string {
	var got []string
	d.Subscribe(func(ev Event) {
		if ev.Kind == DocumentChanged {
			got = append(got, ev.Kind.String())
			return
		}
		got = append(got, ev.Kind.String()+" "+ev.Name)
	})
	return &got
}

func assertAligned(t *testing.T, d *Document, eng *rendertest.Engine) {
	t.Helper()
	require.Equal(t, len(d.shapes), len(d.displays))
	require.Equal(t, len(d.shapes), len(d.names))
	for i := 0; i < d.Len(); i++ {
		obj, ok := eng.Object(d.Display(i))
		require.True(t, ok, "entry %d has no display", i)
		require.Equal(t, d.Shape(i), obj.Shape, "entry %d display shows another shape", i)
	}
}

func TestIndexAlignmentUnderRandomEdits(t *testing.T) {
	d, eng := newBound(t)
	rng := rand.New(rand.NewSource(7))
	for step := 0; step < 400; step++ {
		switch op := rng.Intn(4); {
		case op < 2 || d.IsEmpty():
			d.AddShape(geomtest.Token(fmt.Sprintf("s%d", step)), "")
		case op == 2:
			d.RemoveAt(rng.Intn(d.Len()+2) - 1)
		default:
			d.RemoveNamed(d.Name(rng.Intn(d.Len())))
		}
		assertAligned(t, d, eng)
	}
}

func TestGeneratedNamesAreNeverReused(t *testing.T) {
	d, _ := newBound(t)
	for i := 0; i < 3; i++ {
		d.AddShape(geomtest.Token("s"), "")
	}
	require.True(t, d.RemoveNamed("Shape_2"))
	d.AddShape(geomtest.Token("s"), "")
	d.AddShape(geomtest.Token("s"), "B1")
	d.AddShape(geomtest.Token("s"), "")
	assert.Equal(t, []string{"Shape_1", "Shape_3", "Shape_4", "B1", "Shape_5"}, d.Names())

	d.Clear()
	d.AddShape(geomtest.Token("s"), "")
	assert.Equal(t, []string{"Shape_1"}, d.Names())
}

func TestAddNilShapeIsNoop(t *testing.T) {
	d, _ := newBound(t)
	events := recordEvents(d)
	idx, ok := d.AddShape(nil, "x")
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
	assert.Zero(t, d.Len())
	assert.Empty(t, *events)
}

func TestEventOrdering(t *testing.T) {
	d, _ := newBound(t)
	events := recordEvents(d)

	d.AddShape(geomtest.Token("a"), "A")
	d.RemoveAt(0)
	d.RemoveAt(5)
	assert.Equal(t, []string{
		"shapeAdded A", "documentChanged",
		"shapeRemoved A", "documentChanged",
	}, *events)

	*events = nil
	d.Batch(func() {
		d.AddShape(geomtest.Token("b"), "B")
		d.AddShape(geomtest.Token("c"), "C")
		d.RemoveNamed("B")
	})
	assert.Equal(t, []string{"shapeAdded B", "shapeAdded C", "shapeRemoved B", "documentChanged"}, *events)

	*events = nil
	d.Batch(func() {})
	assert.Empty(t, *events, "an empty batch is silent")
}

func TestRemoveRetiresDisplayBeforeNotifying(t *testing.T) {
	d, eng := newBound(t)
	d.AddShape(geomtest.Token("a"), "A")
	h := d.Display(0)
	d.Subscribe(func(ev Event) {
		if ev.Kind == ShapeRemoved {
			assert.Contains(t, eng.Unregistered, h)
			assert.Zero(t, d.Len())
			assert.Equal(t, h, ev.Display)
		}
	})
	d.RemoveAt(0)
	_, ok := eng.Object(h)
	assert.False(t, ok)
}

func TestRegistrationFaultKeepsEntry(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *rendertest.Engine)
	}{
		{"error", func(e *rendertest.Engine) { e.RegisterErr = errors.New("no context") }},
		{"panic", func(e *rendertest.Engine) { e.RegisterPanic = "driver lost" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, eng := newBound(t)
			tt.setup(eng)
			idx, ok := d.AddShape(geomtest.Token("a"), "A")
			require.True(t, ok)
			assert.Equal(t, 0, idx)
			assert.Equal(t, render.NoHandle, d.Display(0))
			assert.Equal(t, geomtest.Token("a"), d.Shape(0))
			assert.Contains(t, d.log.Last(), "render engine failure")
		})
	}
}

func TestBindDisplaysPendingEntries(t *testing.T) {
	d := New(logger.New(""))
	d.AddShape(geomtest.Token("a"), "")
	assert.Equal(t, render.NoHandle, d.Display(0))

	eng := rendertest.New()
	d.Bind(eng)
	assert.NotEqual(t, render.NoHandle, d.Display(0))
	assertAligned(t, d, eng)
}

func TestLookupsReturnSentinels(t *testing.T) {
	d, _ := newBound(t)
	d.AddShape(geomtest.Token("a"), "A")
	d.AddShape(geomtest.Token("b"), "A")

	assert.Nil(t, d.Shape(9))
	assert.Equal(t, render.NoHandle, d.Display(-1))
	assert.Equal(t, "", d.Name(2))
	assert.Nil(t, d.ShapeNamed("missing"))
	assert.Equal(t, render.NoHandle, d.DisplayNamed("missing"))
	assert.Equal(t, geomtest.Token("a"), d.ShapeNamed("A"), "first match wins")

	i, ok := d.FindIndex(d.Display(1))
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = d.FindIndex(render.NoHandle)
	assert.False(t, ok)
}

func TestClearRetiresEveryDisplay(t *testing.T) {
	d, eng := newBound(t)
	d.AddShape(geomtest.Token("a"), "")
	d.AddShape(geomtest.Token("b"), "")
	events := recordEvents(d)

	d.Clear()
	assert.True(t, d.IsEmpty())
	assert.Empty(t, eng.Handles())
	assert.Equal(t, []string{"documentChanged"}, *events)
}
