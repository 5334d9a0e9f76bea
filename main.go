/*
OpenGL viewer for the testbed scene. Move with WASD, E/Q for up and down,
turn with the arrow keys. The configuration file is reloaded on change.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/umbra/engine"
	"github.com/spaghettifunk/umbra/engine/assets"
	"github.com/spaghettifunk/umbra/engine/config"
	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/platform"
	"github.com/spaghettifunk/umbra/engine/renderer/opengl"
	"github.com/spaghettifunk/umbra/testbed"
)

func main() {
	configPath := flag.String("config", "umbra.toml", "path to the TOML configuration")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		core.LogFatal("%s", err)
	}
	core.SetLogLevel(cfg.LogLevel())
	if cfg.BackendName() != config.BACKEND_OPENGL {
		core.LogWarn("backend %q is served by cmd/softview, using opengl", cfg.Render.Backend)
	}

	input := core.NewInputState()
	p := platform.New(input)
	if err := p.Startup(cfg.Window.Name, cfg.Window.X, cfg.Window.Y, cfg.Window.Width, cfg.Window.Height); err != nil {
		core.LogFatal("%s", err)
	}
	defer p.Shutdown()

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

	e, err := engine.New(testbed.NewTestGame().Game, cfg, engine.Host{
		Backend:       opengl.New(),
		Surface:       p,
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

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		p.Window.SetShouldClose(true)
	}()

	for p.PumpMessages() {
		if _, err := e.Frame(); err != nil {
			core.LogError("frame failed, shutting down: %s", err)
			break
		}
		p.SwapBuffers()
	}

	if err := e.Shutdown(); err != nil {
		core.LogError("%s", err)
	}
}
