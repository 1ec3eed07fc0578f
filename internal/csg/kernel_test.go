package csg

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycad/internal/geom"
)

func box(k *Kernel, dx, dy, dz float32) *Solid {
	return k.MakePrimitive(geom.Box, geom.PrimitiveParams{DX: dx, DY: dy, DZ: dz}).(*Solid)
}

func assertVec(t *testing.T, want, got geom.Vec3, delta float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, "x")
	assert.InDelta(t, want.Y, got.Y, delta, "y")
	assert.InDelta(t, want.Z, got.Z, delta, "z")
}

func TestMakePrimitiveRejectsDegenerateParams(t *testing.T) {
	k := New()
	tests := []struct {
		name string
		kind geom.PrimitiveKind
		p    geom.PrimitiveParams
		ok   bool
	}{
		{"box", geom.Box, geom.PrimitiveParams{DX: 10, DY: 10, DZ: 10}, true},
		{"flat box", geom.Box, geom.PrimitiveParams{DX: 10, DY: 0, DZ: 10}, false},
		{"cylinder", geom.Cylinder, geom.PrimitiveParams{Radius: 5, Height: 10}, true},
		{"cylinder without height", geom.Cylinder, geom.PrimitiveParams{Radius: 5}, false},
		{"sphere", geom.Sphere, geom.PrimitiveParams{Radius: 5}, true},
		{"cone", geom.Cone, geom.PrimitiveParams{Radius: 5, Radius2: 2, Height: 10}, true},
		{"pointed cone", geom.Cone, geom.PrimitiveParams{Radius: 5, Height: 10}, true},
		{"cone without radii", geom.Cone, geom.PrimitiveParams{Height: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := k.MakePrimitive(tt.kind, tt.p)
			if tt.ok {
				assert.NotNil(t, s)
			} else {
				assert.Nil(t, s)
			}
		})
	}
}

func TestBooleanEmptyResultsAreNil(t *testing.T) {
	k := New()
	a := box(k, 1, 1, 1)
	far := k.Transform(geom.Translate, box(k, 1, 1, 1), geom.TransformParams{Offset: geom.V(5, 0, 0)})
	require.NotNil(t, far)

	assert.Nil(t, k.Boolean(geom.Intersect, a, far), "disjoint intersection")
	assert.NotNil(t, k.Boolean(geom.Union, a, far))

	inner := box(k, 1, 1, 1)
	outer := k.Transform(geom.Translate, box(k, 3, 3, 3), geom.TransformParams{Offset: geom.V(-1, -1, -1)})
	assert.Nil(t, k.Boolean(geom.Cut, inner, outer), "cut that removes everything")
	assert.Nil(t, k.Boolean(geom.Union, nil, outer))
}

func TestTransformDoesNotAliasSource(t *testing.T) {
	k := New()
	a := box(k, 2, 2, 2)
	moved := k.Transform(geom.Translate, a, geom.TransformParams{Offset: geom.V(10, 0, 0)}).(*Solid)

	assert.Equal(t, Identity(), a.Placement)
	assertVec(t, geom.V(10, 0, 0), moved.Placement.Origin(), 1e-5)

	u := k.Boolean(geom.Union, a, moved).(*Solid)
	mirrored := k.Transform(geom.Mirror, u, geom.TransformParams{Axis: geom.V(1, 0, 0)}).(*Solid)
	assert.Equal(t, Identity(), u.Children[0].Placement)
	b := Bounds(mirrored)
	assertVec(t, geom.V(-12, 0, 0), b.Min, 1e-4)
	assertVec(t, geom.V(0, 2, 2), b.Max, 1e-4)
}

func TestRotationQuarterTurn(t *testing.T) {
	m := Rotation(geom.Vec3{}, geom.V(0, 0, 1), math32.Pi/2)
	assertVec(t, geom.V(0, 1, 0), m.Apply(geom.V(1, 0, 0)), 1e-5)
	assertVec(t, geom.V(1, 0, 0), m.Inverse().Apply(geom.V(0, 1, 0)), 1e-5)

	about := Rotation(geom.V(1, 1, 0), geom.V(0, 0, 1), math32.Pi)
	assertVec(t, geom.V(2, 2, 0), about.Apply(geom.Vec3{}), 1e-5)
}

func TestArrays(t *testing.T) {
	k := New()
	src := box(k, 1, 1, 1)

	lin := k.Array(geom.Linear, src, geom.ArrayParams{Count: 3, Direction: geom.V(1, 0, 0), Spacing: 4})
	require.Len(t, lin, 3)
	for i, s := range lin {
		assertVec(t, geom.V(float32(i)*4, 0, 0), s.(*Solid).Placement.Origin(), 1e-5)
	}

	circ := k.Array(geom.Circular, src, geom.ArrayParams{Count: 4, Axis: geom.V(0, 0, 1), Angle: 360})
	require.Len(t, circ, 4)
	b := Bounds(circ[2].(*Solid))
	assertVec(t, geom.V(-1, -1, 0), b.Min, 1e-4)

	assert.Empty(t, k.Array(geom.Linear, src, geom.ArrayParams{Count: 0}))
}

func TestPropertiesOfLeafAndCompound(t *testing.T) {
	k := New()
	props, ok := k.Properties(box(k, 10, 10, 10))
	require.True(t, ok)
	assert.Equal(t, "Solid", props.Type)
	assert.InDelta(t, 1000, props.Volume, 1e-3)
	assertVec(t, geom.V(5, 5, 5), props.Centroid, 1e-5)
	assert.Equal(t, 8, props.Counts[geom.TopoVertex])
	assert.Equal(t, 12, props.Counts[geom.TopoEdge])
	assert.Equal(t, 6, props.Counts[geom.TopoFace])

	a := box(k, 2, 2, 2)
	b := k.Transform(geom.Translate, box(k, 2, 2, 2), geom.TransformParams{Offset: geom.V(1, 0, 0)})
	u := k.Boolean(geom.Intersect, a, b)
	require.NotNil(t, u)
	props, ok = k.Properties(u)
	require.True(t, ok)
	assert.Equal(t, "Compound", props.Type)
	assert.InDelta(t, 4, props.Volume, 0.5)
	assertVec(t, geom.V(1.5, 1, 1), props.Centroid, 0.1)
	assert.Equal(t, 1, props.Counts[geom.TopoCompound])

	_, ok = k.Properties(nil)
	assert.False(t, ok)
}

func TestCodecRoundTripsTree(t *testing.T) {
	k := New()
	cyl := k.MakePrimitive(geom.Cylinder, geom.PrimitiveParams{Radius: 5, Height: 10})
	rot := k.Transform(geom.Rotate, box(k, 10, 10, 10), geom.TransformParams{Axis: geom.V(0, 0, 1), Angle: 30})
	tree := k.Boolean(geom.Union, rot, cyl)

	blob, err := Codec{}.Encode(tree)
	require.NoError(t, err)
	assert.Contains(t, blob, "cylinder")

	back, err := Codec{}.Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, tree, back)

	_, err = Codec{}.Decode("kind: union\nchildren: []\n")
	assert.Error(t, err)
}
