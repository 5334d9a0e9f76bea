package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/umbra/engine/config"
	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/renderer"
	"github.com/spaghettifunk/umbra/engine/renderer/components"
	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
)

// MOUSE_LOOK_SENSITIVITY is how far a mouse drag turns the camera, in radians per pixel.
const MOUSE_LOOK_SENSITIVITY float32 = 0.004

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

/**
 * @brief What a host provides to the engine. Loader, Input and
 * ConfigUpdates are optional.
 */
type Host struct {
	Backend       renderer.RendererBackend
	Surface       renderer.Surface
	Loader        renderer.TextureLoader
	Input         *core.InputState
	ConfigUpdates <-chan *config.Config
}

/**
 * @brief Ties configuration, input, the camera and the renderer together.
 * The host calls Frame once per tick from the thread that owns the backend.
 */
type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *config.Config
	host         Host

	clock    *core.Clock
	metrics  *core.Metrics
	renderer *renderer.Renderer

	scene  *metadata.Scene
	camera *components.Camera

	width       uint32
	height      uint32
	isSuspended bool
	frameCount  uint64
	lastStats   *renderer.FrameStats
}

func New(g *Game, cfg *config.Config, host Host) (*Engine, error) {
	if g == nil || g.FnInitialize == nil {
		return nil, errors.New("engine needs a game with an initialize function")
	}
	if host.Backend == nil || host.Surface == nil {
		return nil, errors.New("engine needs a backend and a surface")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if host.Input == nil {
		host.Input = core.NewInputState()
	}

	options := renderer.Options{
		ShadowResolution: cfg.Shadow.Resolution,
		ShadowBias:       cfg.Shadow.Bias,
		ClearColor:       cfg.ClearColor(),
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       cfg,
		host:         host,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		renderer:     renderer.New(host.Backend, host.Loader, options),
		scene:        metadata.NewScene(),
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	core.SetLogLevel(e.config.LogLevel())

	if err := e.renderer.Initialize(); err != nil {
		return err
	}

	e.width, e.height = e.host.Surface.Size()
	e.camera = components.NewCamera(e.config.FieldOfView(), aspectOf(e.width, e.height), e.config.Camera.Near, e.config.Camera.Far)

	if err := e.gameInstance.FnInitialize(e.scene, e.camera); err != nil {
		return fmt.Errorf("game %s: %w", e.gameInstance.Name, err)
	}
	for _, l := range e.scene.DirectionalLights {
		l.ShadowExtent = e.config.Shadow.Extent
		l.ShadowNear = e.config.Shadow.Near
		l.ShadowFar = e.config.Shadow.Far
	}
	core.LogInfo("%s: %d primitives, %d directional lights, %d point lights",
		e.gameInstance.Name, len(e.scene.Primitives), len(e.scene.DirectionalLights), len(e.scene.PointLights))

	e.clock.Start()
	e.currentStage = EngineStageInitialized
	return nil
}

// Frame advances the clock and renders one frame.
func (e *Engine) Frame() (*renderer.FrameStats, error) {
	e.clock.Update()
	return e.Step(e.clock.Delta())
}

/**
 * @brief Runs one frame that is deltaTime seconds after the previous one:
 * applies reloaded configuration, moves the camera from the input
 * snapshot, then draws.
 */
func (e *Engine) Step(deltaTime float64) (*renderer.FrameStats, error) {
	if e.currentStage < EngineStageInitialized {
		return nil, errors.New("engine is not initialized")
	}
	e.currentStage = EngineStageRunning
	frameStart := time.Now()

	// Input update/state copying happens after every reader saw this frame.
	defer e.host.Input.Update()

	e.applyConfigUpdates()
	e.checkResize()

	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(deltaTime); err != nil {
			return nil, fmt.Errorf("game update: %w", err)
		}
	}

	camera := e.config.Camera
	intent := components.IntentFromInput(e.host.Input, camera.MoveSpeed, camera.TurnSpeed, float32(deltaTime)).
		Add(components.MouseLook(e.host.Input, MOUSE_LOOK_SENSITIVITY))
	if !intent.IsZero() {
		if err := e.camera.SetPose(components.UpdatePose(e.camera.Pose(), intent)); err != nil {
			core.LogWarn("camera move ignored: %s", err)
		}
	}

	if e.isSuspended {
		return &renderer.FrameStats{}, nil
	}

	stats, err := e.renderer.DrawFrame(e.scene, e.camera, e.host.Surface)
	if err != nil {
		return stats, err
	}
	e.frameCount++
	e.lastStats = stats
	e.metrics.Update(time.Since(frameStart).Seconds())
	if e.frameCount%600 == 0 {
		fps, frameTime := e.metrics.Frame()
		core.LogDebug("FPS: %5.1f (%4.1fms), %d shadow draws, %d shading draws, %d skipped",
			fps, frameTime, stats.ShadowDraws, stats.ShadingDraws, stats.Skipped)
	}
	return stats, nil
}

func (e *Engine) checkResize() {
	width, height := e.host.Surface.Size()
	if width == e.width && height == e.height {
		return
	}
	e.width, e.height = width, height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	e.camera.SetAspect(aspectOf(width, height))
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
}

// applyConfigUpdates takes the newest reloaded configuration, if any.
// Shadow resolution and the window only change on restart.
func (e *Engine) applyConfigUpdates() {
	if e.host.ConfigUpdates == nil {
		return
	}
	select {
	case cfg := <-e.host.ConfigUpdates:
		e.ApplyConfig(cfg)
	default:
	}
}

func (e *Engine) ApplyConfig(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		core.LogWarn("reloaded config ignored: %s", err)
		return
	}
	core.SetLogLevel(cfg.LogLevel())
	e.renderer.SetShadowBias(cfg.Shadow.Bias)
	e.renderer.SetClearColor(cfg.ClearColor())
	if cfg.Shadow.Resolution != e.config.Shadow.Resolution {
		core.LogWarn("shadow resolution change to %d applies after a restart", cfg.Shadow.Resolution)
	}

	next := *e.config
	next.Log = cfg.Log
	next.Camera.MoveSpeed = cfg.Camera.MoveSpeed
	next.Camera.TurnSpeed = cfg.Camera.TurnSpeed
	next.Shadow.Bias = cfg.Shadow.Bias
	next.Render.ClearColor = cfg.Render.ClearColor
	e.config = &next
	core.LogInfo("configuration applied")
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	e.renderer.ReleaseScene(e.scene)
	errs = append(errs, e.renderer.Shutdown())
	e.currentStage = EngineStageUninitialized
	return errors.Join(errs...)
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Scene() *metadata.Scene {
	return e.scene
}

func (e *Engine) Camera() *components.Camera {
	return e.camera
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

func (e *Engine) Config() *config.Config {
	return e.config
}

// Metrics returns the rolling FPS and average frame time in milliseconds.
func (e *Engine) Metrics() (float64, float64) {
	return e.metrics.Frame()
}

// LastStats returns what the most recent rendered frame issued.
func (e *Engine) LastStats() *renderer.FrameStats {
	return e.lastStats
}

// aspectOf is the height-to-width ratio the camera expects.
func aspectOf(width, height uint32) float32 {
	if width == 0 || height == 0 {
		return 1
	}
	return float32(height) / float32(width)
}
