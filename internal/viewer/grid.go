package viewer

import rl "github.com/gen2brain/raylib-go/raylib"

const (
	gridMajorEvery = 5
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220
)

// Grid is the working plane z=0: Size cells on each side of the origin, Spacing units apart.
type Grid struct {
	Visible bool
	Size    int
	Spacing float32
}

// Draw draws minor and major lines on the XY plane and the three axes through the origin.
// Must be called between BeginMode3D and EndMode3D.
func (g Grid) Draw() {
	if g.Size <= 0 || g.Spacing <= 0 {
		return
	}
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)
	extent := float32(g.Size) * g.Spacing

	var start, end rl.Vector3
	for i := -g.Size; i <= g.Size; i++ {
		c := minor
		if i%gridMajorEvery == 0 {
			c = major
		}
		at := float32(i) * g.Spacing
		start.X, start.Y, start.Z = at, -extent, 0
		end.X, end.Y, end.Z = at, extent, 0
		rl.DrawLine3D(start, end, c)
		start.X, start.Y = -extent, at
		end.X, end.Y = extent, at
		rl.DrawLine3D(start, end, c)
	}

	rl.DrawLine3D(rl.NewVector3(-extent, 0, 0), rl.NewVector3(extent, 0, 0), rl.Fade(axisRed, axisLineAlpha/255.0))
	rl.DrawLine3D(rl.NewVector3(0, -extent, 0), rl.NewVector3(0, extent, 0), rl.Fade(axisGreen, axisLineAlpha/255.0))
	rl.DrawLine3D(rl.NewVector3(0, 0, 0), rl.NewVector3(0, 0, extent/2), rl.Fade(axisBlue, axisLineAlpha/255.0))
}
