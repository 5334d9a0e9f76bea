package renderer_test

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/math"
	"github.com/spaghettifunk/umbra/engine/renderer"
	"github.com/spaghettifunk/umbra/engine/renderer/components"
	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
	"github.com/spaghettifunk/umbra/engine/renderer/software"
	"github.com/spaghettifunk/umbra/engine/systems"
)

const tolerance = 1e-4

func testOptions() renderer.Options {
	o := renderer.DefaultOptions()
	o.ShadowResolution = 128
	return o
}

func newCamera(t *testing.T, pos, target math.Point) *components.Camera {
	t.Helper()
	c := components.NewCamera(components.DEFAULT_CAMERA_FOV, 1, components.DEFAULT_CAMERA_NEAR, components.DEFAULT_CAMERA_FAR)
	if err := c.LookAt(pos, target, math.NewVectorUp()); err != nil {
		t.Fatal(err)
	}
	return c
}

func downLight() *metadata.DirectionalLight {
	return metadata.NewDirectionalLight(
		math.NewPoint(0, 100, 0),
		math.NewVector(0, -1, 0),
		math.NewVector(0, 0, -1),
		math.NewVec3(1, 1, 1),
	)
}

func boxScene(t *testing.T) (*metadata.Scene, *metadata.Primitive) {
	t.Helper()
	box, err := systems.MakeBox(math.NewTransformIdentity(), 5, 5, 5)
	if err != nil {
		t.Fatal(err)
	}
	prim := metadata.NewPrimitive("box", box, metadata.NewFlatColorMaterial(math.NewVec4(1, 0, 0, 1), true))
	scene := metadata.NewScene()
	scene.AddPrimitive(prim)
	scene.AddAmbientLight(math.NewVec3(1, 1, 1))
	scene.AddDirectionalLight(downLight())
	return scene, prim
}

func newRenderer(t *testing.T, backend renderer.RendererBackend, loader renderer.TextureLoader) *renderer.Renderer {
	t.Helper()
	r := renderer.New(backend, loader, testOptions())
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestBoxScenario(t *testing.T) {
	backend := software.New(64, 64)
	backend.Record(true)
	r := newRenderer(t, backend, nil)
	scene, prim := boxScene(t)
	camera := newCamera(t, math.NewPointOrigin(), math.NewPoint(0, 0, -1))

	stats, err := r.DrawFrame(scene, camera, backend)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ShadowDraws != 1 || stats.ShadingDraws != 1 || stats.Skipped != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Width != 64 || stats.Height != 64 {
		t.Errorf("surface %dx%d", stats.Width, stats.Height)
	}

	draws := backend.Draws()
	if len(draws) != 2 {
		t.Fatalf("%d draws", len(draws))
	}
	shadow, shading := draws[0], draws[1]
	if shadow.Program != renderer.SHADER_NAME_SHADOW_DEPTH || shadow.Target == "" {
		t.Errorf("first draw = %s into %q", shadow.Program, shadow.Target)
	}
	if shading.Program != renderer.SHADER_NAME_PHONG || shading.Target != "" {
		t.Errorf("second draw = %s into %q", shading.Program, shading.Target)
	}
	if shading.Count != 36 {
		t.Errorf("shading draw count = %d", shading.Count)
	}

	lightMVP, ok := shading.Uniforms[renderer.UniformElement(renderer.UNIFORM_LIGHT_MVPS, 0)].(math.Mat4)
	if !ok {
		t.Fatal("light mvp not passed to the shading pass")
	}
	cameraMVP := camera.ViewProjection().Mul(prim.Shape.Obj2World).M
	if lightMVP.Equals(cameraMVP, tolerance) {
		t.Error("light-space MVP equals the camera MVP")
	}
	want, err := scene.DirectionalLights[0].LightMVP(prim.Shape)
	if err != nil {
		t.Fatal(err)
	}
	if !lightMVP.Equals(want.M, tolerance) {
		t.Errorf("light mvp = %v, want %v", lightMVP, want.M)
	}
	if got := shadow.Uniforms[renderer.UNIFORM_LIGHT_MVP].(math.Mat4); !got.Equals(want.M, tolerance) {
		t.Errorf("shadow pass mvp = %v, want %v", got, want.M)
	}
}

func TestShadingPassTransforms(t *testing.T) {
	backend := software.New(32, 32)
	backend.Record(true)
	r := newRenderer(t, backend, nil)
	scene, prim := boxScene(t)
	scale, err := math.Scale(1, 3, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	prim.Shape.SetTransform(math.Translate(1, 2, -3).Mul(scale))
	camera := newCamera(t, math.NewPoint(0, 0, 10), math.NewPointOrigin())

	if _, err := r.DrawFrame(scene, camera, backend); err != nil {
		t.Fatal(err)
	}
	draws := backend.Draws()
	shading := draws[len(draws)-1]
	if shading.Program != renderer.SHADER_NAME_PHONG {
		t.Fatalf("last draw is %s", shading.Program)
	}
	mat := func(name string) math.Mat4 {
		t.Helper()
		m, ok := shading.Uniforms[name].(math.Mat4)
		if !ok {
			t.Fatalf("%s not bound", name)
		}
		return m
	}

	modelView := camera.ViewTransform.Mul(prim.Shape.Obj2World)
	if got := mat(renderer.UNIFORM_MODEL_VIEW); !got.Equals(modelView.M, tolerance) {
		t.Errorf("model view = %v, want %v", got, modelView.M)
	}
	if got := mat(renderer.UNIFORM_PROJECTION); !got.Equals(camera.ClipTransform.M, tolerance) {
		t.Errorf("projection = %v, want %v", got, camera.ClipTransform.M)
	}
	normal := mat(renderer.UNIFORM_NORMAL_MATRIX)
	if !normal.Equals(math.NormalTransform(modelView).M, tolerance) {
		t.Errorf("normal matrix = %v", normal)
	}

	// A slanted surface stays perpendicular to its normal after the
	// non-uniform scale only through the normal matrix.
	n := normal.MulVec4(math.NewVec4(1, 1, 0, 0))
	tangent := modelView.M.MulVec4(math.NewVec4(1, -1, 0, 0))
	if dot := n.X*tangent.X + n.Y*tangent.Y + n.Z*tangent.Z; !math.FloatEquals(dot, 0, tolerance) {
		t.Errorf("normal . tangent = %v", dot)
	}
	forward := modelView.M.MulVec4(math.NewVec4(1, 1, 0, 0))
	if dot := forward.X*tangent.X + forward.Y*tangent.Y + forward.Z*tangent.Z; math.FloatEquals(dot, 0, tolerance) {
		t.Error("forward matrix keeps the normal perpendicular, scale is not exercising the normal matrix")
	}

	eye, ok := shading.Uniforms[renderer.UNIFORM_EYE].(math.Vec3)
	if !ok {
		t.Fatal("eye not bound")
	}
	want := camera.OrthoTransform.TransformPoint(math.NewPointOrigin()).ToVec3()
	if !vec3Equals(eye, want) {
		t.Errorf("eye = %v, want %v", eye, want)
	}
	if math.FloatEquals(eye.Z, 0, tolerance) {
		t.Errorf("eye = %v, ortho depth offset missing", eye)
	}
}

func TestResourcesAreCreatedOnce(t *testing.T) {
	backend := software.New(32, 32)
	r := newRenderer(t, backend, nil)
	scene, prim := boxScene(t)
	camera := newCamera(t, math.NewPoint(0, 0, 10), math.NewPointOrigin())

	if _, err := r.DrawFrame(scene, camera, backend); err != nil {
		t.Fatal(err)
	}
	light := scene.DirectionalLights[0]
	target, buffers := light.ShadowTarget, prim.Shape.Buffers
	if target == nil || buffers == nil {
		t.Fatal("resources not created by the first frame")
	}
	for i := 0; i < 3; i++ {
		if _, err := r.DrawFrame(scene, camera, backend); err != nil {
			t.Fatal(err)
		}
	}
	if light.ShadowTarget != target {
		t.Error("shadow target recreated")
	}
	if prim.Shape.Buffers != buffers || buffers.Positions.ID == 0 {
		t.Error("geometry buffers recreated")
	}

	r.ReleaseScene(scene)
	if light.ShadowTarget != nil || prim.Shape.Buffers != nil {
		t.Error("ReleaseScene kept resources")
	}
}

// failingBackend refuses to build phong programs.
type failingBackend struct {
	*software.Backend
	attempts int
}

func (b *failingBackend) ShaderCreate(config *metadata.ShaderConfig) (*metadata.Shader, error) {
	if config.Name == renderer.SHADER_NAME_PHONG {
		b.attempts++
		return nil, errors.New("0:12(3): error: syntax error: " + core.ErrShaderCompile.Error())
	}
	return b.Backend.ShaderCreate(config)
}

func TestShaderFailureSkipsPrimitive(t *testing.T) {
	soft := software.New(32, 32)
	backend := &failingBackend{Backend: soft}
	r := newRenderer(t, backend, nil)
	scene, _ := boxScene(t)
	camera := newCamera(t, math.NewPoint(0, 0, 10), math.NewPointOrigin())

	for frame := 0; frame < 2; frame++ {
		stats, err := r.DrawFrame(scene, camera, soft)
		if err != nil {
			t.Fatalf("frame %d: %v", frame, err)
		}
		if stats.ShadingDraws != 0 || stats.Skipped != 1 || stats.ShadowDraws != 1 {
			t.Errorf("frame %d: stats = %+v", frame, stats)
		}
	}
	if backend.attempts != 1 {
		t.Errorf("phong compiled %d times", backend.attempts)
	}
}

func TestEmptyScene(t *testing.T) {
	backend := software.New(16, 16)
	backend.Record(true)
	r := newRenderer(t, backend, nil)
	camera := newCamera(t, math.NewPoint(0, 0, 10), math.NewPointOrigin())

	stats, err := r.DrawFrame(metadata.NewScene(), camera, backend)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ShadowDraws+stats.ShadingDraws+stats.Skipped != 0 || len(backend.Draws()) != 0 {
		t.Errorf("stats = %+v, draws = %d", stats, len(backend.Draws()))
	}

	// Lights without primitives still get their targets; nothing is drawn.
	scene := metadata.NewScene()
	scene.AddDirectionalLight(downLight())
	if stats, err = r.DrawFrame(scene, camera, backend); err != nil {
		t.Fatal(err)
	}
	if stats.ShadowDraws != 0 || scene.DirectionalLights[0].ShadowTarget == nil {
		t.Errorf("stats = %+v", stats)
	}
}

func TestZeroSizedSurfaceDrawsNothing(t *testing.T) {
	backend := software.New(0, 0)
	backend.Record(true)
	r := newRenderer(t, backend, nil)
	scene, _ := boxScene(t)
	stats, err := r.DrawFrame(scene, newCamera(t, math.NewPoint(0, 0, 10), math.NewPointOrigin()), backend)
	if err != nil {
		t.Fatal(err)
	}
	if len(backend.Draws()) != 0 || stats.ShadingDraws != 0 {
		t.Errorf("drew into an empty surface: %+v", stats)
	}
}

func TestIncompleteShadowTargetAbortsFrame(t *testing.T) {
	backend := software.New(16, 16)
	o := testOptions()
	o.ShadowResolution = software.MAX_TARGET_SIZE * 2
	r := renderer.New(backend, nil, o)
	scene, _ := boxScene(t)
	_, err := r.DrawFrame(scene, newCamera(t, math.NewPoint(0, 0, 10), math.NewPointOrigin()), backend)
	if !errors.Is(err, core.ErrRenderTargetIncomplete) {
		t.Errorf("err = %v", err)
	}
}

func TestLightsEnterViewSpace(t *testing.T) {
	backend := software.New(16, 16)
	backend.Record(true)
	r := newRenderer(t, backend, nil)
	scene, _ := boxScene(t)
	scene.AddPointLight(metadata.NewPointLight(math.NewPoint(3, 4, 5), math.NewVec3(1, 1, 1)))
	camera := newCamera(t, math.NewPoint(5, 5, 5), math.NewPointOrigin())

	if _, err := r.DrawFrame(scene, camera, backend); err != nil {
		t.Fatal(err)
	}
	draws := backend.Draws()
	shading := draws[len(draws)-1].Uniforms

	view := camera.ViewTransform
	dir := shading[renderer.UniformElement(renderer.UNIFORM_DIR_DIRECTIONS, 0)].(math.Vec3)
	if want := view.TransformVector(math.NewVector(0, -1, 0)).ToVec3(); !vec3Equals(dir, want) {
		t.Errorf("light direction = %v, want %v", dir, want)
	}
	if translated := view.TransformPoint(math.NewPoint(0, -1, 0)).ToVec3(); vec3Equals(dir, translated) {
		t.Error("light direction picked up the view translation")
	}
	pos := shading[renderer.UniformElement(renderer.UNIFORM_POINT_POSITIONS, 0)].(math.Vec3)
	if want := view.TransformPoint(math.NewPoint(3, 4, 5)).ToVec3(); !vec3Equals(pos, want) {
		t.Errorf("point light = %v, want %v", pos, want)
	}
}

func vec3Equals(a, b math.Vec3) bool {
	return math.FloatEquals(a.X, b.X, tolerance) &&
		math.FloatEquals(a.Y, b.Y, tolerance) &&
		math.FloatEquals(a.Z, b.Z, tolerance)
}

// screenPixel returns the window pixel a world point lands on.
func screenPixel(camera *components.Camera, p math.Point, width, height int) (int, int) {
	ndc := camera.ViewProjection().TransformPoint(p)
	return int((ndc.X + 1) / 2 * float32(width)), int((ndc.Y + 1) / 2 * float32(height))
}

func TestBoxShadowsFloor(t *testing.T) {
	const size = 96
	backend := software.New(size, size)
	o := testOptions()
	o.ShadowResolution = 256
	r := renderer.New(backend, nil, o)

	floorPlacement := math.RotateX(-math.K_HALF_PI)
	floor, err := systems.MakeQuad(floorPlacement, 40, 40)
	if err != nil {
		t.Fatal(err)
	}
	box, err := systems.MakeBox(math.Translate(0, 4, 0), 4, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	white := metadata.NewFlatColorMaterial(math.NewVec4(1, 1, 1, 1), true)
	scene := metadata.NewScene()
	scene.AddPrimitive(metadata.NewPrimitive("floor", floor, white))
	scene.AddPrimitive(metadata.NewPrimitive("box", box, white))
	scene.AddAmbientLight(math.NewVec3(1, 1, 1))
	light := metadata.NewDirectionalLight(math.NewPoint(0, 50, 0), math.NewVector(0, -1, 0), math.NewVector(0, 0, -1), math.NewVec3(1, 1, 1))
	light.ShadowExtent = 20
	light.ShadowFar = -60
	scene.AddDirectionalLight(light)

	camera := newCamera(t, math.NewPoint(0, 6, 8), math.NewPointOrigin())
	stats, err := r.DrawFrame(scene, camera, backend)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ShadingDraws != 2 || stats.ShadowDraws != 2 {
		t.Fatalf("stats = %+v", stats)
	}

	sx, sy := screenPixel(camera, math.NewPoint(0, 0.05, 1.5), size, size)
	lx, ly := screenPixel(camera, math.NewPoint(6, 0.05, 1.5), size, size)
	shadowed, lit := backend.Pixel(sx, sy), backend.Pixel(lx, ly)
	if shadowed.R >= lit.R {
		t.Errorf("floor under the box (%d,%d)=%v is not darker than open floor (%d,%d)=%v", sx, sy, shadowed, lx, ly, lit)
	}
	// Only the ambient term survives in the shadow.
	if want := uint8(0.1*255 + 0.5); shadowed.R != want {
		t.Errorf("shadowed red = %d, want %d", shadowed.R, want)
	}
}

// fakeLoader records requests and delivers on demand.
type fakeLoader struct {
	requests []string
	results  chan *metadata.TextureData
}

func (l *fakeLoader) LoadTexture(name string) {
	l.requests = append(l.requests, name)
}

func (l *fakeLoader) Textures() <-chan *metadata.TextureData {
	return l.results
}

func TestTextureFallbackThenUpload(t *testing.T) {
	backend := software.New(16, 16)
	loader := &fakeLoader{results: make(chan *metadata.TextureData, 1)}
	r := newRenderer(t, backend, loader)

	quad, err := systems.MakeQuad(math.Translate(0, 0, -5), 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	material := metadata.NewTexturedMaterial(metadata.TextureFromFile("checker.png"), math.NewVec4(1, 0, 0, 1))
	scene := metadata.NewScene()
	scene.AddPrimitive(metadata.NewPrimitive("sign", quad, material))
	camera := newCamera(t, math.NewPointOrigin(), math.NewPoint(0, 0, -1))

	if _, err := r.DrawFrame(scene, camera, backend); err != nil {
		t.Fatal(err)
	}
	tex := material.Map
	if len(loader.requests) != 1 || loader.requests[0] != "checker.png" {
		t.Fatalf("requests = %v", loader.requests)
	}
	if tex.Width != 1 || tex.Height != 1 || !tex.Flags.Has(metadata.TextureFlagPlaceholder) {
		t.Errorf("placeholder = %dx%d flags %b", tex.Width, tex.Height, tex.Flags)
	}

	loader.results <- &metadata.TextureData{
		Name: "checker.png", Width: 2, Height: 2,
		Pixels: []uint8{
			0, 0, 255, 255, 0, 0, 255, 255,
			0, 0, 255, 255, 0, 0, 255, 255,
		},
	}
	for i := 0; i < 2; i++ {
		stats, err := r.DrawFrame(scene, camera, backend)
		if err != nil {
			t.Fatal(err)
		}
		if stats.ShadingDraws != 1 {
			t.Errorf("stats = %+v", stats)
		}
	}
	if tex.Width != 2 || tex.Height != 2 || tex.Flags.Has(metadata.TextureFlagPlaceholder) {
		t.Errorf("texture = %dx%d flags %b", tex.Width, tex.Height, tex.Flags)
	}
	if tex.Generation != 1 {
		t.Errorf("generation = %d", tex.Generation)
	}
	if len(loader.requests) != 1 {
		t.Errorf("texture requested %d times", len(loader.requests))
	}

	// A second delivery of the same name is a reload.
	loader.results <- &metadata.TextureData{Name: "checker.png", Width: 1, Height: 1, Pixels: []uint8{255, 255, 255, 255}}
	if _, err := r.DrawFrame(scene, camera, backend); err != nil {
		t.Fatal(err)
	}
	if tex.Width != 1 || tex.Generation != 2 {
		t.Errorf("reloaded texture = %dx%d generation %d", tex.Width, tex.Height, tex.Generation)
	}
}

func TestRenderTargetTextureNeedsTarget(t *testing.T) {
	backend := software.New(16, 16)
	r := newRenderer(t, backend, nil)
	light := downLight()
	quad, err := systems.MakeQuad(math.Translate(0, 0, -5), 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	scene := metadata.NewScene()
	scene.AddPrimitive(metadata.NewPrimitive("debug",
		quad, metadata.NewTexturedMaterial(metadata.TextureFromRenderTarget(light.ShadowTarget), math.NewVec4(1, 1, 1, 1))))
	camera := newCamera(t, math.NewPointOrigin(), math.NewPoint(0, 0, -1))

	stats, err := r.DrawFrame(scene, camera, backend)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Skipped != 1 {
		t.Errorf("missing target not skipped: %+v", stats)
	}

	target, err := r.ShadowTarget(light)
	if err != nil {
		t.Fatal(err)
	}
	scene.Primitives[0].Material = metadata.NewTexturedMaterial(metadata.TextureFromRenderTarget(target), math.NewVec4(1, 1, 1, 1))
	if stats, err = r.DrawFrame(scene, camera, backend); err != nil {
		t.Fatal(err)
	}
	if stats.ShadingDraws != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
