/*
Snapshot renders the testbed scene headless with the software backend and
writes the frame as a PNG. With -font, frame statistics are drawn on top
using an AngelCode bitmap font.
*/
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/spaghettifunk/umbra/engine"
	"github.com/spaghettifunk/umbra/engine/assets"
	"github.com/spaghettifunk/umbra/engine/config"
	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/renderer"
	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
	"github.com/spaghettifunk/umbra/engine/renderer/software"
	"github.com/spaghettifunk/umbra/testbed"
)

type options struct {
	configPath string
	out        string
	shadowOut  string
	fontName   string
	width      uint32
	height     uint32
	wait       time.Duration
}

func main() {
	var o options
	var width, height uint
	flag.StringVar(&o.configPath, "config", "umbra.toml", "path to the TOML configuration")
	flag.StringVar(&o.out, "o", "snapshot.png", "output PNG")
	flag.StringVar(&o.shadowOut, "shadow", "", "also write the first light's shadow map to this PNG")
	flag.StringVar(&o.fontName, "font", "", "AngelCode .fnt font, relative to the texture directory, for the stats overlay")
	flag.UintVar(&width, "width", 640, "image width")
	flag.UintVar(&height, "height", 480, "image height")
	flag.DurationVar(&o.wait, "wait", 2*time.Second, "how long to wait for textures")
	flag.Parse()
	o.width, o.height = uint32(width), uint32(height)

	if err := run(o); err != nil {
		core.LogFatal("%s", err)
	}
}

func run(o options) error {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return err
	}
	core.SetLogLevel(cfg.LogLevel())

	am, err := assets.NewAssetManager(cfg.Render.TextureDir)
	if err != nil {
		return err
	}
	if err := am.Initialize(); err != nil {
		return err
	}
	defer am.Shutdown()

	game := testbed.NewTestGame()
	game.SetSpin(0)
	backend := software.New(o.width, o.height)
	e, err := engine.New(game.Game, cfg, engine.Host{Backend: backend, Surface: backend, Loader: am})
	if err != nil {
		return err
	}
	if err := e.Initialize(); err != nil {
		return err
	}
	defer e.Shutdown()

	stats, err := settle(e, o.wait)
	if err != nil {
		return err
	}

	img := backend.Image()
	if o.fontName != "" {
		if err := overlay(am, img, o.fontName, stats); err != nil {
			core.LogWarn("stats overlay skipped: %s", err)
		}
	}
	if err := writePNG(o.out, img); err != nil {
		return err
	}
	core.LogInfo("wrote %s (%dx%d)", o.out, o.width, o.height)

	if o.shadowOut != "" {
		lights := e.Scene().DirectionalLights
		if len(lights) == 0 || lights[0].ShadowTarget == nil {
			return fmt.Errorf("no shadow map to write")
		}
		shadow, err := backend.TargetImage(lights[0].ShadowTarget)
		if err != nil {
			return err
		}
		if err := writePNG(o.shadowOut, shadow); err != nil {
			return err
		}
		core.LogInfo("wrote %s", o.shadowOut)
	}
	return nil
}

// settle draws frames until every file texture has arrived or wait runs out,
// and returns the stats of the last frame.
func settle(e *engine.Engine, wait time.Duration) (*renderer.FrameStats, error) {
	deadline := time.Now().Add(wait)
	for {
		stats, err := e.Step(0)
		if err != nil {
			return nil, err
		}
		if !loading(e.Scene()) {
			return stats, nil
		}
		if time.Now().After(deadline) {
			core.LogWarn("textures still loading after %s, writing placeholders", wait)
			return stats, nil
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func loading(scene *metadata.Scene) bool {
	for _, p := range scene.Primitives {
		t := p.Material.Map
		if t != nil && t.Source.Kind == metadata.TEXTURE_SOURCE_FILE && t.Flags.Has(metadata.TextureFlagPlaceholder) {
			return true
		}
	}
	return false
}

func overlay(am *assets.AssetManager, img *image.RGBA, fontName string, stats *renderer.FrameStats) error {
	font, err := am.LoadBitmapFont(fontName)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("%dx%d  shadow draws %d  shading draws %d  skipped %d",
		stats.Width, stats.Height, stats.ShadowDraws, stats.ShadingDraws, stats.Skipped)
	font.DrawText(img, image.Pt(8, 24), text)
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
