package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
	"github.com/spaghettifunk/umbra/engine/resources"
)

const waitFor = 5 * time.Second

func writePNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func newManager(t *testing.T, root string) *AssetManager {
	t.Helper()
	am, err := NewAssetManager(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := am.Initialize(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { am.Shutdown() })
	return am
}

func receive(t *testing.T, am *AssetManager) *metadata.TextureData {
	t.Helper()
	select {
	case data := <-am.Textures():
		return data
	case <-time.After(waitFor):
		t.Fatal("no texture delivered")
	}
	return nil
}

func TestIndexesAssetDirectory(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a.png"), 1, 1, color.RGBA{A: 255})
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(root, "sub", "b.png"), 1, 1, color.RGBA{A: 255})
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	am := newManager(t, root)
	if am.Count() != 2 {
		t.Errorf("indexed %d assets, want 2", am.Count())
	}
	info, ok := am.Asset(filepath.Join(root, "sub", "b.png"))
	if !ok || info.Type != resources.ResourceTypeImage {
		t.Errorf("b.png = %+v, %v", info, ok)
	}
}

func TestLoadTextureDeliversAsynchronously(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "wall.png"), 3, 2, color.RGBA{10, 20, 30, 255})
	am := newManager(t, root)

	am.LoadTexture("wall.png")
	data := receive(t, am)
	if data.Name != "wall.png" || data.Width != 3 || data.Height != 2 {
		t.Fatalf("delivered %s %dx%d", data.Name, data.Width, data.Height)
	}
	if len(data.Pixels) != 3*2*4 || data.Pixels[0] != 10 || data.Pixels[3] != 255 {
		t.Errorf("pixels = %v", data.Pixels)
	}
	if info, ok := am.Asset(filepath.Join(root, "wall.png")); !ok || info.LastLoaded.IsZero() {
		t.Errorf("load not recorded: %+v", info)
	}
}

func TestFailedLoadDeliversNothing(t *testing.T) {
	am := newManager(t, t.TempDir())
	am.LoadTexture("missing.png")
	select {
	case data := <-am.Textures():
		t.Errorf("delivered %+v", data)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestChangedTextureIsDeliveredAgain(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "sign.png")
	writePNG(t, path, 1, 1, color.RGBA{255, 0, 0, 255})
	am := newManager(t, root)

	am.LoadTexture("sign.png")
	receive(t, am)

	writePNG(t, path, 2, 2, color.RGBA{0, 255, 0, 255})
	// Editors may write in several steps; wait for the final size.
	deadline := time.After(waitFor)
	for {
		select {
		case data := <-am.Textures():
			if data.Name != "sign.png" {
				t.Fatalf("reload delivered under %s", data.Name)
			}
			if data.Width == 2 {
				return
			}
		case <-deadline:
			t.Fatal("changed texture not reloaded")
		}
	}
}

func TestConfigReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "umbra.toml")
	if err := os.WriteFile(path, []byte("[shadow]\nbias = 0.01\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	am := newManager(t, t.TempDir())
	if err := am.WatchConfig(path); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("[shadow]\nbias = 0.25\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.After(waitFor)
	for {
		select {
		case c := <-am.ConfigUpdates():
			if c.Shadow.Bias == 0.25 {
				return
			}
		case <-deadline:
			t.Fatal("config change not delivered")
		}
	}
}

func TestResolve(t *testing.T) {
	am, err := NewAssetManager("assets/textures")
	if err != nil {
		t.Fatal(err)
	}
	defer am.Shutdown()
	if got := am.Resolve("wood.png"); got != filepath.Join("assets", "textures", "wood.png") {
		t.Errorf("relative = %s", got)
	}
	abs := filepath.Join(t.TempDir(), "x.png")
	if got := am.Resolve(abs); got != abs {
		t.Errorf("absolute = %s", got)
	}
}
