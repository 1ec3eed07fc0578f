package viewer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"mycad/internal/geom"
)

// Unit meshes are generated once per kind and scaled to each leaf's dimensions at draw time.
const (
	sphereRings    = 24
	sphereSlices   = 32
	cylinderSlices = 32
	coneSides      = 32
)

// cached holds the unit mesh for a primitive kind and the material it is drawn with.
type cached struct {
	mesh rl.Mesh
	mtl  rl.Material
}

// Meshes maps primitive kinds to lit unit meshes. Meshes are created on first use
// so that GPU resources are allocated after the window/OpenGL context exists.
type Meshes struct {
	cache    map[geom.PrimitiveKind]cached
	shader   rl.Shader
	loaded   bool
	viewPos  [3]float32 // camera position, set each frame for lighting
	lightDir [3]float32 // direction to light (normalized), set each frame
}

// NewMeshes returns an empty cache. Nothing touches the GPU until the first Draw.
func NewMeshes() *Meshes {
	return &Meshes{
		cache:    make(map[geom.PrimitiveKind]cached),
		lightDir: [3]float32{0.4, -0.6, 0.7}, // from above, front-right in Z-up model space
	}
}

// SetView sets camera position and direction-to-light for this frame. Call once per frame
// before drawing so lit meshes get correct shading.
func (m *Meshes) SetView(viewPos, lightDir [3]float32) {
	m.viewPos = viewPos
	m.lightDir = lightDir
}

func (m *Meshes) ensureShader() {
	if m.loaded {
		return
	}
	m.loaded = true
	m.shader = rl.LoadShaderFromMemory(litVS, litFS)
}

// ensure creates the unit mesh for kind if not yet cached. Cones have no cached mesh:
// their two radii vary per leaf and are drawn immediately.
func (m *Meshes) ensure(kind geom.PrimitiveKind) (cached, bool) {
	if c, ok := m.cache[kind]; ok {
		return c, true
	}
	var mesh rl.Mesh
	switch kind {
	case geom.Box:
		mesh = rl.GenMeshCube(1, 1, 1)
	case geom.Sphere:
		mesh = rl.GenMeshSphere(1, sphereRings, sphereSlices)
	case geom.Cylinder:
		mesh = rl.GenMeshCylinder(1, 1, cylinderSlices)
	default:
		return cached{}, false
	}
	m.ensureShader()
	mtl := rl.LoadMaterialDefault()
	if rl.IsShaderValid(m.shader) {
		mtl.Shader = m.shader
	}
	c := cached{mesh: mesh, mtl: mtl}
	m.cache[kind] = c
	return c, true
}

// Local returns the transform from the unit mesh of kind to the leaf's own Z-up frame:
// boxes span [0, d] on each axis, cylinders stand on the XY plane along +Z, spheres are centered.
func Local(kind geom.PrimitiveKind, p geom.PrimitiveParams) rl.Matrix {
	switch kind {
	case geom.Box:
		return rl.MatrixMultiply(rl.MatrixScale(p.DX, p.DY, p.DZ), rl.MatrixTranslate(p.DX/2, p.DY/2, p.DZ/2))
	case geom.Sphere:
		return rl.MatrixScale(p.Radius, p.Radius, p.Radius)
	case geom.Cylinder:
		// raylib cylinders grow along +Y; a quarter turn about X stands them on +Z.
		return rl.MatrixMultiply(rl.MatrixScale(p.Radius, p.Height, p.Radius), rl.MatrixRotateX(rl.Pi/2))
	}
	return rl.MatrixIdentity()
}

// Draw draws one primitive leaf. placement maps the leaf frame to world space; col carries
// transparency in its alpha. Must be called between BeginMode3D and EndMode3D.
func (m *Meshes) Draw(kind geom.PrimitiveKind, p geom.PrimitiveParams, placement rl.Matrix, col color.RGBA) {
	if kind == geom.Cone {
		base := rl.Vector3Transform(rl.NewVector3(0, 0, 0), placement)
		top := rl.Vector3Transform(rl.NewVector3(0, 0, p.Height), placement)
		rl.DrawCylinderEx(base, top, p.Radius, p.Radius2, coneSides, col)
		return
	}
	c, ok := m.ensure(kind)
	if !ok {
		return
	}
	if albedo := c.mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = col
	}
	m.setLitShaderUniforms(c.mtl.Shader)
	rl.DrawMesh(c.mesh, c.mtl, rl.MatrixMultiply(Local(kind, p), placement))
}

// DrawWires outlines a primitive leaf, used for the highlight and selection overlays.
func (m *Meshes) DrawWires(kind geom.PrimitiveKind, p geom.PrimitiveParams, placement rl.Matrix, col color.RGBA) {
	at := func(x, y, z float32) rl.Vector3 { return rl.Vector3Transform(rl.NewVector3(x, y, z), placement) }
	switch kind {
	case geom.Box:
		var c [8]rl.Vector3
		for i := range c {
			x, y, z := float32(0), float32(0), float32(0)
			if i&1 != 0 {
				x = p.DX
			}
			if i&2 != 0 {
				y = p.DY
			}
			if i&4 != 0 {
				z = p.DZ
			}
			c[i] = at(x, y, z)
		}
		for _, e := range [12][2]int{{0, 1}, {2, 3}, {4, 5}, {6, 7}, {0, 2}, {1, 3}, {4, 6}, {5, 7}, {0, 4}, {1, 5}, {2, 6}, {3, 7}} {
			rl.DrawLine3D(c[e[0]], c[e[1]], col)
		}
	case geom.Sphere:
		rl.DrawSphereWires(at(0, 0, 0), p.Radius, 8, 12, col)
	case geom.Cylinder:
		rl.DrawCylinderWiresEx(at(0, 0, 0), at(0, 0, p.Height), p.Radius, p.Radius, 16, col)
	case geom.Cone:
		rl.DrawCylinderWiresEx(at(0, 0, 0), at(0, 0, p.Height), p.Radius, p.Radius2, 16, col)
	}
}

// Unload frees every cached mesh and material. Call before the window closes.
func (m *Meshes) Unload() {
	for k, c := range m.cache {
		rl.UnloadMesh(&c.mesh)
		delete(m.cache, k)
	}
	if m.loaded && rl.IsShaderValid(m.shader) {
		rl.UnloadShader(m.shader)
	}
	m.loaded = false
}

const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
uniform mat4 matNormal;
out vec3 fragPosition;
out vec3 fragNormal;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragNormal = normalize(vec3(matNormal * vec4(vertexNormal, 0.0)));
  gl_Position = matProjection * matView * worldPos;
}
`
	// litFS shades with one directional light, ambient and a Blinn-Phong highlight.
	// Normals are flipped toward the viewer so mirrored placements still shade.
	litFS = `#version 330
in vec3 fragPosition;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec4 ambient;
uniform vec3 lightColor;
uniform float lightIntensity;
uniform float specularPower;
uniform float specularStrength;
out vec4 finalColor;
void main() {
  vec4 tint = colDiffuse;
  vec3 V = normalize(viewPos - fragPosition);
  vec3 N = normalize(fragNormal);
  if (dot(N, V) < 0.0) N = -N;
  vec3 L = normalize(lightDir);
  float NdotL = max(dot(N, L), 0.0);
  vec3 diffuse = tint.rgb * NdotL * lightColor * lightIntensity;
  vec3 amb = ambient.rgb * tint.rgb;
  vec3 H = normalize(L + V);
  float spec = pow(max(dot(N, H), 0.0), specularPower) * specularStrength;
  vec3 specular = lightColor * spec * (NdotL > 0.0 ? 1.0 : 0.0);
  finalColor = vec4(amb + diffuse + specular, tint.a);
}
`
)

// Lighting constants for the lit shader.
var (
	ambientColor = [4]float32{0.32, 0.33, 0.36, 1.0}
	lightColor   = [3]float32{1.0, 0.98, 0.95}
)

const (
	lightIntensity   = float32(0.7)
	specularPower    = float32(32.0)
	specularStrength = float32(0.25)
)

// setLitShaderUniforms sets the per-frame lighting uniforms on shader (cgo-safe: local arrays).
func (m *Meshes) setLitShaderUniforms(shader rl.Shader) {
	if !rl.IsShaderValid(shader) {
		return
	}
	viewPos := [3]float32{m.viewPos[0], m.viewPos[1], m.viewPos[2]}
	lightDir := [3]float32{m.lightDir[0], m.lightDir[1], m.lightDir[2]}
	amb := ambientColor
	lc := lightColor
	if loc := rl.GetShaderLocation(shader, "viewPos"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, viewPos[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightDir"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, lightDir[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "ambient"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, amb[:], rl.ShaderUniformVec4, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightColor"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, lc[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightIntensity"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{lightIntensity}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "specularPower"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{specularPower}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "specularStrength"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{specularStrength}, rl.ShaderUniformFloat)
	}
}
