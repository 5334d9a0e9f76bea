package engine_test

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/umbra/engine"
	"github.com/spaghettifunk/umbra/engine/config"
	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/math"
	"github.com/spaghettifunk/umbra/engine/renderer/components"
	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
	"github.com/spaghettifunk/umbra/engine/renderer/software"
	"github.com/spaghettifunk/umbra/engine/systems"
)

const tolerance = 1e-4

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Render.Backend = config.BACKEND_SOFTWARE
	cfg.Shadow.Resolution = 64
	cfg.Shadow.Extent = 20
	cfg.Log.Level = "error"
	return cfg
}

type boxGame struct {
	*engine.Game
	resized [][2]uint32
	updates int
}

func newBoxGame() *boxGame {
	g := &boxGame{Game: &engine.Game{Name: "box"}}
	g.FnInitialize = func(scene *metadata.Scene, camera *components.Camera) error {
		box, err := systems.MakeBox(math.Translate(0, 0, -10), 2, 2, 2)
		if err != nil {
			return err
		}
		scene.AddPrimitive(metadata.NewPrimitive("box", box, metadata.NewFlatColorMaterial(math.NewVec4(1, 1, 1, 1), true)))
		scene.AddAmbientLight(math.NewVec3(0.2, 0.2, 0.2))
		scene.AddDirectionalLight(metadata.NewDirectionalLight(
			math.NewPoint(0, 50, 0), math.NewVector(0, -1, 0), math.NewVector(0, 0, -1), math.NewVec3(1, 1, 1)))
		return nil
	}
	g.FnUpdate = func(float64) error {
		g.updates++
		return nil
	}
	g.FnOnResize = func(w, h uint32) error {
		g.resized = append(g.resized, [2]uint32{w, h})
		return nil
	}
	return g
}

func newEngine(t *testing.T, g *engine.Game, host engine.Host) *engine.Engine {
	t.Helper()
	e, err := engine.New(g, testConfig(), host)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = e.Shutdown() })
	return e
}

func TestNewRejectsIncompleteSetup(t *testing.T) {
	backend := software.New(8, 8)
	if _, err := engine.New(&engine.Game{}, nil, engine.Host{Backend: backend, Surface: backend}); err == nil {
		t.Error("game without initialize accepted")
	}
	if _, err := engine.New(newBoxGame().Game, nil, engine.Host{}); err == nil {
		t.Error("missing backend accepted")
	}
	bad := testConfig()
	bad.Shadow.Resolution = 0
	if _, err := engine.New(newBoxGame().Game, bad, engine.Host{Backend: backend, Surface: backend}); err == nil {
		t.Error("invalid config accepted")
	}
}

func TestStepBeforeInitialize(t *testing.T) {
	backend := software.New(8, 8)
	e, err := engine.New(newBoxGame().Game, testConfig(), engine.Host{Backend: backend, Surface: backend})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Step(0.1); err == nil {
		t.Error("uninitialized engine drew a frame")
	}
}

func TestStepDrawsScene(t *testing.T) {
	backend := software.New(32, 32)
	g := newBoxGame()
	e := newEngine(t, g.Game, engine.Host{Backend: backend, Surface: backend})

	stats, err := e.Step(0.016)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ShadowDraws != 1 || stats.ShadingDraws != 1 || stats.Skipped != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if g.updates != 1 {
		t.Errorf("game updated %d times", g.updates)
	}
	if e.Stage() != engine.EngineStageRunning {
		t.Errorf("stage = %d", e.Stage())
	}
	if e.LastStats() != stats {
		t.Error("last stats not kept")
	}

	light := e.Scene().DirectionalLights[0]
	if light.ShadowExtent != 20 {
		t.Errorf("shadow extent = %v, want the configured 20", light.ShadowExtent)
	}
	// The box sits in front of the camera.
	if p := backend.Pixel(16, 16); p.R == 0 {
		t.Errorf("center pixel = %v, want the lit box", p)
	}
}

func TestInputMovesCamera(t *testing.T) {
	backend := software.New(16, 16)
	input := core.NewInputState()
	e := newEngine(t, newBoxGame().Game, engine.Host{Backend: backend, Surface: backend, Input: input})

	input.ProcessKey(core.KEY_W, true)
	if _, err := e.Step(0.5); err != nil {
		t.Fatal(err)
	}
	// Default move speed is 10 units per second.
	pos := e.Camera().Pose().Position
	if !pos.Compare(math.NewPoint(0, 0, -5), tolerance) {
		t.Errorf("camera at %v, want (0,0,-5)", pos)
	}
	if !input.WasKeyDown(core.KEY_W) {
		t.Error("input snapshot not rolled over")
	}

	input.ProcessKey(core.KEY_W, false)
	if _, err := e.Step(0.5); err != nil {
		t.Fatal(err)
	}
	if got := e.Camera().Pose().Position; !got.Compare(pos, tolerance) {
		t.Errorf("camera moved without input to %v", got)
	}
}

func TestFailedUpdateStillRollsInput(t *testing.T) {
	backend := software.New(16, 16)
	input := core.NewInputState()
	g := newBoxGame()
	g.FnUpdate = func(float64) error {
		return errors.New("boom")
	}
	e := newEngine(t, g.Game, engine.Host{Backend: backend, Surface: backend, Input: input})

	input.ProcessKey(core.KEY_W, true)
	if _, err := e.Step(0.1); err == nil {
		t.Fatal("expected the game update error")
	}
	if !input.WasKeyDown(core.KEY_W) {
		t.Error("input snapshot not rolled over after a failed update")
	}
	if input.IsKeyPressed(core.KEY_W) {
		t.Error("key still reported as freshly pressed")
	}
}

func TestConfigUpdatesApplyNextFrame(t *testing.T) {
	backend := software.New(16, 16)
	updates := make(chan *config.Config, 1)
	e := newEngine(t, newBoxGame().Game, engine.Host{Backend: backend, Surface: backend, ConfigUpdates: updates})

	next := testConfig()
	next.Shadow.Bias = 0.2
	next.Camera.MoveSpeed = 3
	next.Render.ClearColor = [4]float32{0, 1, 0, 1}
	next.Window.Width = 10
	updates <- next
	if _, err := e.Step(0.016); err != nil {
		t.Fatal(err)
	}

	if got := e.Renderer().Options().ShadowBias; got != 0.2 {
		t.Errorf("bias = %v", got)
	}
	if got := e.Renderer().Options().ClearColor; got != math.NewVec4(0, 1, 0, 1) {
		t.Errorf("clear color = %v", got)
	}
	if got := e.Config().Camera.MoveSpeed; got != 3 {
		t.Errorf("move speed = %v", got)
	}
	if got := e.Config().Window.Width; got == 10 {
		t.Error("window size changed at runtime")
	}
	if p := backend.Pixel(0, 0); p.G != 255 {
		t.Errorf("corner = %v, want the new clear color", p)
	}

	invalid := testConfig()
	invalid.Shadow.Bias = -1
	updates <- invalid
	if _, err := e.Step(0.016); err != nil {
		t.Fatal(err)
	}
	if got := e.Renderer().Options().ShadowBias; got != 0.2 {
		t.Errorf("invalid config applied, bias = %v", got)
	}
}

func TestResizeAndMinimize(t *testing.T) {
	backend := software.New(40, 40)
	g := newBoxGame()
	e := newEngine(t, g.Game, engine.Host{Backend: backend, Surface: backend})

	backend.Resize(80, 40)
	if _, err := e.Step(0.016); err != nil {
		t.Fatal(err)
	}
	if got := e.Camera().Aspect; got != 0.5 {
		t.Errorf("aspect = %v, want height over width", got)
	}
	if len(g.resized) != 1 || g.resized[0] != [2]uint32{80, 40} {
		t.Errorf("resize callbacks = %v", g.resized)
	}

	backend.Resize(0, 0)
	stats, err := e.Step(0.016)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ShadowDraws != 0 || stats.ShadingDraws != 0 {
		t.Errorf("minimized frame drew %+v", stats)
	}
	if len(g.resized) != 1 {
		t.Error("minimize reported as a resize")
	}

	backend.Resize(40, 40)
	stats, err = e.Step(0.016)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ShadingDraws != 1 {
		t.Errorf("restored frame drew %+v", stats)
	}
}
