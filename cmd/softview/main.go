/*
Softview renders the testbed scene with the software backend and presents
it through an ebiten window. Controls match the OpenGL viewer.
*/
package main

import (
	"errors"
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spaghettifunk/umbra/engine"
	"github.com/spaghettifunk/umbra/engine/assets"
	"github.com/spaghettifunk/umbra/engine/config"
	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/renderer/software"
	"github.com/spaghettifunk/umbra/testbed"
)

var keys = map[ebiten.Key]core.KeyCode{
	ebiten.KeyW:          core.KEY_W,
	ebiten.KeyA:          core.KEY_A,
	ebiten.KeyS:          core.KEY_S,
	ebiten.KeyD:          core.KEY_D,
	ebiten.KeyE:          core.KEY_E,
	ebiten.KeyQ:          core.KEY_Q,
	ebiten.KeyP:          core.KEY_P,
	ebiten.KeyArrowLeft:  core.KEY_LEFT,
	ebiten.KeyArrowRight: core.KEY_RIGHT,
	ebiten.KeyArrowUp:    core.KEY_UP,
	ebiten.KeyArrowDown:  core.KEY_DOWN,
}

type viewer struct {
	engine  *engine.Engine
	backend *software.Backend
	input   *core.InputState
	scale   int

	frame         *ebiten.Image
	width, height int
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	for key, code := range keys {
		if inpututil.IsKeyJustPressed(key) {
			v.input.ProcessKey(code, true)
		}
		if inpututil.IsKeyJustReleased(key) {
			v.input.ProcessKey(code, false)
		}
	}
	x, y := ebiten.CursorPosition()
	v.input.ProcessMouseMove(float64(x*v.scale), float64(y*v.scale))
	v.input.ProcessButton(core.BUTTON_LEFT, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))

	if v.input.IsKeyPressed(core.KEY_P) {
		pos := v.engine.Camera().Pose().Position
		fps, frameTime := v.engine.Metrics()
		core.LogInfo("Pos:[%.2f, %.2f, %.2f] FPS: %5.1f(%4.1fms)", pos.X, pos.Y, pos.Z, fps, frameTime)
	}

	if w, h := v.backend.Size(); int(w) != v.width || int(h) != v.height {
		v.backend.Resize(uint32(v.width), uint32(v.height))
	}
	_, err := v.engine.Frame()
	return err
}

func (v *viewer) Draw(screen *ebiten.Image) {
	img := v.backend.Image()
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	if v.frame == nil || v.frame.Bounds() != b {
		if v.frame != nil {
			v.frame.Deallocate()
		}
		v.frame = ebiten.NewImage(b.Dx(), b.Dy())
	}
	v.frame.WritePixels(img.Pix)
	screen.DrawImage(v.frame, nil)
}

// Layout renders at a fraction of the window size; ebiten scales it up.
func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.width = max(outsideWidth/v.scale, 1)
	v.height = max(outsideHeight/v.scale, 1)
	return v.width, v.height
}

func main() {
	configPath := flag.String("config", "umbra.toml", "path to the TOML configuration")
	scale := flag.Int("scale", 2, "window pixels per rendered pixel")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		core.LogFatal("%s", err)
	}
	core.SetLogLevel(cfg.LogLevel())
	if *scale < 1 {
		*scale = 1
	}

	am, err := assets.NewAssetManager(cfg.Render.TextureDir)
	if err != nil {
		core.LogFatal("%s", err)
	}
	if err := am.Initialize(); err != nil {
		core.LogFatal("%s", err)
	}
	defer am.Shutdown()
	if _, err := os.Stat(*configPath); err == nil {
		if err := am.WatchConfig(*configPath); err != nil {
			core.LogWarn("config %s is not watched: %s", *configPath, err)
		}
	}

	width, height := int(cfg.Window.Width) / *scale, int(cfg.Window.Height) / *scale
	backend := software.New(uint32(width), uint32(height))
	input := core.NewInputState()
	e, err := engine.New(testbed.NewTestGame().Game, cfg, engine.Host{
		Backend:       backend,
		Surface:       backend,
		Loader:        am,
		Input:         input,
		ConfigUpdates: am.ConfigUpdates(),
	})
	if err != nil {
		core.LogFatal("%s", err)
	}
	if err := e.Initialize(); err != nil {
		core.LogFatal("%s", err)
	}

	v := &viewer{engine: e, backend: backend, input: input, scale: *scale, width: width, height: height}
	ebiten.SetWindowTitle(cfg.Window.Name + " (software)")
	ebiten.SetWindowSize(int(cfg.Window.Width), int(cfg.Window.Height))
	ebiten.SetWindowPosition(int(cfg.Window.X), int(cfg.Window.Y))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	runErr := ebiten.RunGame(v)
	if err := e.Shutdown(); err != nil {
		core.LogError("%s", err)
	}
	if runErr != nil && !errors.Is(runErr, ebiten.Termination) {
		core.LogFatal("%s", runErr)
	}
}
