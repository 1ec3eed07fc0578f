package pick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycad/internal/camera"
	"mycad/internal/csg"
	"mycad/internal/geom"
	"mycad/internal/render"
)

func box(t *testing.T, k *csg.Kernel, d float32) *csg.Solid {
	t.Helper()
	s, ok := k.MakePrimitive(geom.Box, geom.PrimitiveParams{DX: d, DY: d, DZ: d}).(*csg.Solid)
	require.True(t, ok)
	return s
}

func TestRayHitFindsFirstSurface(t *testing.T) {
	s := box(t, csg.New(), 10)
	down := geom.V(0, 0, -1)

	d, ok := RayHit(s, geom.V(5, 5, 50), down)
	require.True(t, ok)
	assert.InDelta(t, 40, d, 0.05)

	_, ok = RayHit(s, geom.V(50, 50, 50), down)
	assert.False(t, ok)
	_, ok = RayHit(s, geom.V(5, 5, 50), geom.V(0, 0, 1))
	assert.False(t, ok, "the box is behind the ray")
}

func TestRayHitSeesThroughCuts(t *testing.T) {
	k := csg.New()
	outer := box(t, k, 10)
	pin := k.MakePrimitive(geom.Box, geom.PrimitiveParams{DX: 2, DY: 2, DZ: 20})
	pin = k.Transform(geom.Translate, pin, geom.TransformParams{Offset: geom.V(4, 4, -5)})
	cut, ok := k.Boolean(geom.Cut, outer, pin).(*csg.Solid)
	require.True(t, ok)

	_, ok = RayHit(cut, geom.V(5, 5, 50), geom.V(0, 0, -1))
	assert.False(t, ok, "the ray passes down the hole")
	d, ok := RayHit(cut, geom.V(2, 2, 50), geom.V(0, 0, -1))
	require.True(t, ok)
	assert.InDelta(t, 40, d, 0.1)
}

func TestCandidatesPerKind(t *testing.T) {
	k := csg.New()
	s := box(t, k, 10)
	tests := []struct {
		kind geom.TopoKind
		want int
	}{
		{geom.TopoVertex, 8},
		{geom.TopoEdge, 12},
		{geom.TopoWire, 6},
		{geom.TopoFace, 6},
		{geom.TopoShell, 1},
		{geom.TopoSolid, 1},
		{geom.TopoCompound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			cands := Candidates(s, tt.kind)
			assert.Len(t, cands, tt.want)
			for i, c := range cands {
				assert.Equal(t, render.SubShape{Kind: tt.kind, Index: i}, c.Sub)
			}
		})
	}

	u, ok := k.Boolean(geom.Union, s, box(t, k, 3)).(*csg.Solid)
	require.True(t, ok)
	assert.Len(t, Candidates(u, geom.TopoCompound), 1)
	assert.Len(t, Candidates(u, geom.TopoSolid), 2)
}

func TestNearestWithinTolerance(t *testing.T) {
	cam := camera.New(800, 600)
	cam.Fit(geom.Box3{Max: geom.V(10, 10, 10)})
	s := box(t, csg.New(), 10)
	verts := Candidates(s, geom.TopoVertex)

	x, y, ok := cam.Project(verts[7].Points[0])
	require.True(t, ok)
	hit, d, ok := Nearest(cam, verts, int(x)+3, int(y))
	require.True(t, ok)
	assert.Equal(t, 7, hit.Sub.Index)
	assert.LessOrEqual(t, d, float32(Tolerance))

	_, _, ok = Nearest(cam, verts, int(x)+40, int(y)+40)
	assert.False(t, ok)
}

func TestDistanceToEdgeUsesSegments(t *testing.T) {
	cam := camera.New(800, 600)
	cam.SetPreset(camera.Top)
	edge := Candidate{Points: []geom.Vec3{geom.V(-20, 0, 0), geom.V(20, 0, 0)}}
	// The edge runs through the view center; its endpoints are far from it.
	assert.InDelta(t, 0, Distance(cam, edge, 400, 300), 0.01)
	assert.InDelta(t, 5, Distance(cam, edge, 400, 305), 0.01)
}

func TestInsideNeedsEveryPoint(t *testing.T) {
	cam := camera.New(800, 600)
	b := geom.Box3{Max: geom.V(10, 10, 10)}
	cam.Fit(b)
	all := render.Rect{X1: 800, Y1: 600}
	assert.True(t, Inside(cam, all, Corners(b)...))
	assert.False(t, Inside(cam, render.Rect{X0: 390, Y0: 290, X1: 410, Y1: 310}, Corners(b)...))
	assert.False(t, Inside(cam, all))
	assert.Len(t, Corners(b), 8)
}

func fitted(t *testing.T, b geom.Box3) *camera.Orbit {
	t.Helper()
	cam := camera.New(800, 600)
	cam.Fit(b)
	return cam
}

func TestPickSquareSelectsObjectUnderCenter(t *testing.T) {
	s := box(t, csg.New(), 10)
	cam := fitted(t, csg.Bounds(s))
	targets := []Target{{Handle: 1, Solid: s, Modes: []render.Mode{render.ModeWhole}}}

	cx, cy, ok := cam.Project(geom.V(5, 5, 5))
	require.True(t, ok)
	x, y := int(cx), int(cy)
	square := render.Rect{X0: x - 2, Y0: y - 2, X1: x + 2, Y1: y + 2}

	require.False(t, Inside(cam, square, Corners(csg.Bounds(s))...), "the box is far larger than the square")
	assert.Equal(t, []render.Owner{{Handle: 1}}, InRect(cam, targets, square))
	assert.Empty(t, InRect(cam, targets, render.Rect{X0: 2, Y0: 2, X1: 6, Y1: 6}))

	// Past the point size, containment applies again.
	assert.Empty(t, InRect(cam, targets, render.Rect{X0: x - 20, Y0: y - 20, X1: x + 20, Y1: y + 20}))
	assert.Equal(t, []render.Owner{{Handle: 1}}, InRect(cam, targets, render.Rect{X1: 800, Y1: 600}))
}

func TestHitPrefersNearestAndSubShapes(t *testing.T) {
	k := csg.New()
	near := box(t, k, 10)
	far, ok := k.Transform(geom.Translate, box(t, k, 10), geom.TransformParams{Offset: geom.V(0, 0, -20)}).(*csg.Solid)
	require.True(t, ok)
	cam := camera.New(800, 600)
	cam.SetPreset(camera.Top)
	cam.Fit(geom.Box3{Min: geom.V(0, 0, -20), Max: geom.V(10, 10, 10)})

	cx, cy, ok := cam.Project(geom.V(5, 5, 10))
	require.True(t, ok)
	whole := []render.Mode{render.ModeWhole}
	targets := []Target{{Handle: 2, Solid: far, Modes: whole}, {Handle: 1, Solid: near, Modes: whole}}
	assert.Equal(t, render.Owner{Handle: 1}, Hit(cam, targets, int(cx), int(cy)))
	assert.True(t, Hit(cam, targets, 2, 2).IsZero())

	vx, vy, ok := cam.Project(geom.V(10, 10, 10))
	require.True(t, ok)
	targets[1].Modes = []render.Mode{render.ModeWhole, render.ModeFor(geom.TopoVertex)}
	got := Hit(cam, targets, int(vx), int(vy))
	assert.Equal(t, render.Handle(1), got.Handle)
	assert.Equal(t, geom.TopoVertex, got.Sub.Kind)
}
