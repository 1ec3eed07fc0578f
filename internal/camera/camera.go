// Package camera is the viewer's orbit camera in plain float math. Model space is Z-up.
// The camera projects with the same conventions raylib uses for a perspective Camera3D built
// from Eye, Target, Up and Fovy, so picks computed here line up with what is drawn.
package camera

import (
	"fmt"
	"image"
	"strings"

	"github.com/chewxy/math32"

	"mycad/internal/geom"
)

const (
	deg = math32.Pi / 180

	// DefaultFovy is the vertical field of view in degrees.
	DefaultFovy = 45
	// DefaultDistance is the eye-to-target distance of a fresh camera and of fitting an empty scene.
	DefaultDistance = 100
	// FitMargin scales the fitted distance so the scene does not touch the window border.
	FitMargin = 1.15
	minDistance = 1e-3
	maxPitch    = math32.Pi / 2
)

// Preset is a standard view direction.
type Preset int

const (
	Iso Preset = iota
	Top
	Bottom
	Front
	Back
	Left
	Right
)

var presetNames = [...]string{"iso", "top", "bottom", "front", "back", "left", "right"}

func (p Preset) String() string {
	if p < 0 || int(p) >= len(presetNames) {
		return fmt.Sprintf("Preset(%d)", int(p))
	}
	return presetNames[p]
}

// ParsePreset maps a case-insensitive preset name to its value.
func ParsePreset(s string) (Preset, error) {
	for i, n := range presetNames {
		if strings.EqualFold(s, n) {
			return Preset(i), nil
		}
	}
	return Iso, fmt.Errorf("unknown view %q (want one of %s)", s, strings.Join(presetNames[:], ", "))
}

// angles returns yaw and pitch in radians. Yaw is measured about +Z from +X toward the eye.
func (p Preset) angles() (yaw, pitch float32) {
	switch p {
	case Top:
		return -90 * deg, 90 * deg
	case Bottom:
		return -90 * deg, -90 * deg
	case Front:
		return -90 * deg, 0
	case Back:
		return 90 * deg, 0
	case Left:
		return 180 * deg, 0
	case Right:
		return 0, 0
	}
	// Eye on the (+X, -Y, +Z) diagonal.
	return -45 * deg, math32.Atan(1 / math32.Sqrt2)
}

// Orbit looks at Target from Distance along the direction given by Yaw and Pitch.
// Width and Height are the viewport size in pixels.
type Orbit struct {
	Target   geom.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
	Fovy     float32
	Width    int
	Height   int

	rotFrom          image.Point
	rotYaw, rotPitch float32
	rotSens          float32
}

// New returns an isometric camera on the origin for a w x h viewport.
func New(w, h int) *Orbit {
	o := &Orbit{Distance: DefaultDistance, Fovy: DefaultFovy, Width: w, Height: h}
	o.SetPreset(Iso)
	return o
}

// Resize records a new viewport size.
func (o *Orbit) Resize(w, h int) { o.Width, o.Height = w, h }

// SetPreset turns the camera to p, keeping target and distance.
func (o *Orbit) SetPreset(p Preset) { o.Yaw, o.Pitch = p.angles() }

// dir is the unit vector from target to eye.
func (o *Orbit) dir() geom.Vec3 {
	sy, cy := math32.Sincos(o.Yaw)
	sp, cp := math32.Sincos(o.Pitch)
	return geom.V(cp*cy, cp*sy, sp)
}

// Eye returns the camera position.
func (o *Orbit) Eye() geom.Vec3 { return o.Target.Add(o.dir().Scale(o.Distance)) }

// Up returns the camera's up vector. It is the pitch derivative of dir, so it stays
// well defined when looking straight down or up.
func (o *Orbit) Up() geom.Vec3 {
	sy, cy := math32.Sincos(o.Yaw)
	sp, cp := math32.Sincos(o.Pitch)
	return geom.V(-sp*cy, -sp*sy, cp)
}

// Basis returns the forward, right and up unit vectors of the view.
func (o *Orbit) Basis() (fwd, right, up geom.Vec3) {
	fwd = o.dir().Scale(-1)
	up = o.Up()
	right = fwd.Cross(up).Normalize()
	return fwd, right, up
}

func (o *Orbit) halfTan() float32 { return math32.Tan(o.Fovy * deg / 2) }

// pixel returns the world size of one pixel on the target plane.
func (o *Orbit) pixel() float32 {
	if o.Height <= 0 {
		return 0
	}
	return 2 * o.Distance * o.halfTan() / float32(o.Height)
}

// Pan slides the target so the scene follows the pointer. dy grows upward.
func (o *Orbit) Pan(dx, dy int) {
	_, right, up := o.Basis()
	px := o.pixel()
	o.Target = o.Target.Sub(right.Scale(float32(dx) * px)).Sub(up.Scale(float32(dy) * px))
}

// StartRotation anchors a rotation gesture at (x, y). sensitivity is degrees per pixel.
func (o *Orbit) StartRotation(x, y int, sensitivity float32) {
	o.rotFrom = image.Pt(x, y)
	o.rotYaw, o.rotPitch = o.Yaw, o.Pitch
	o.rotSens = sensitivity
}

// Rotation turns the camera by the pointer offset from the gesture anchor.
func (o *Orbit) Rotation(x, y int) {
	o.Yaw = o.rotYaw - float32(x-o.rotFrom.X)*o.rotSens*deg
	o.Pitch = o.rotPitch + float32(y-o.rotFrom.Y)*o.rotSens*deg
	o.Pitch = math32.Max(-maxPitch, math32.Min(maxPitch, o.Pitch))
}

// ZoomAt scales the view by factor about the pixel (x, y). factor > 1 zooms in.
func (o *Orbit) ZoomAt(x, y int, factor float32) {
	if factor <= 0 {
		return
	}
	_, right, up := o.Basis()
	px := o.pixel()
	cx := float32(x) - float32(o.Width)/2
	cy := float32(y) - float32(o.Height)/2
	anchor := o.Target.Add(right.Scale(cx * px)).Sub(up.Scale(cy * px))
	o.Target = anchor.Add(o.Target.Sub(anchor).Scale(1 / factor))
	o.Distance = math32.Max(minDistance, o.Distance/factor)
}

// Fit centers b and backs off until its bounding sphere fills the view. An empty box resets
// the target to the origin at DefaultDistance.
func (o *Orbit) Fit(b geom.Box3) {
	if b.IsEmpty() {
		o.Target = geom.Vec3{}
		o.Distance = DefaultDistance
		return
	}
	o.Target = b.Center()
	r := math32.Max(b.Size().Len()/2, 1)
	half := o.Fovy * deg / 2
	if o.Width > 0 && o.Height > 0 && o.Width < o.Height {
		half = math32.Atan(o.halfTan() * float32(o.Width) / float32(o.Height))
	}
	o.Distance = r / math32.Sin(half) * FitMargin
}

// Project maps a world point to window pixels. ok is false for points behind the eye.
func (o *Orbit) Project(p geom.Vec3) (x, y float32, ok bool) {
	fwd, right, up := o.Basis()
	v := p.Sub(o.Eye())
	z := v.Dot(fwd)
	if z <= minDistance || o.Height <= 0 {
		return 0, 0, false
	}
	f := float32(o.Height) / 2 / o.halfTan()
	x = float32(o.Width)/2 + v.Dot(right)/z*f
	y = float32(o.Height)/2 - v.Dot(up)/z*f
	return x, y, true
}

// Ray returns the eye and the unit direction through pixel (x, y).
func (o *Orbit) Ray(x, y int) (origin, dir geom.Vec3) {
	fwd, right, up := o.Basis()
	h := float32(o.Height) / 2
	if h <= 0 {
		return o.Eye(), fwd
	}
	t := o.halfTan()
	sx := (float32(x) - float32(o.Width)/2) / h * t
	sy := (float32(y) - float32(o.Height)/2) / h * t
	return o.Eye(), fwd.Add(right.Scale(sx)).Sub(up.Scale(sy)).Normalize()
}

// Unproject maps pixel (x, y) to a point on the z=0 working plane. When the ray misses the
// plane the point is taken on the plane through the target facing the eye instead.
func (o *Orbit) Unproject(x, y int) (geom.Vec3, bool) {
	if o.Width <= 0 || o.Height <= 0 {
		return geom.Vec3{}, false
	}
	eye, d := o.Ray(x, y)
	if math32.Abs(d.Z) > 1e-6 {
		if t := -eye.Z / d.Z; t > 0 {
			return eye.Add(d.Scale(t)), true
		}
	}
	fwd, _, _ := o.Basis()
	t := o.Target.Sub(eye).Dot(fwd) / d.Dot(fwd)
	return eye.Add(d.Scale(t)), true
}
