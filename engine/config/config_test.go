package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/umbra/engine/core"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
[window]
name = "demo"
width = 640
height = 480

[log]
level = "debug"

[shadow]
resolution = 512
bias = 0.02

[render]
backend = "software"
clear_color = [0.1, 0.2, 0.3, 1.0]
`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Window.Name != "demo" || c.Window.Width != 640 || c.Window.Height != 480 {
		t.Errorf("window = %+v", c.Window)
	}
	// Keys left out keep their defaults.
	if c.Window.X != 100 || c.Camera.FovDegrees != 90 || c.Shadow.Extent != 100 {
		t.Errorf("defaults lost: %+v %+v %+v", c.Window, c.Camera, c.Shadow)
	}
	if c.Shadow.Resolution != 512 || c.Shadow.Bias != 0.02 {
		t.Errorf("shadow = %+v", c.Shadow)
	}
	if c.BackendName() != BACKEND_SOFTWARE {
		t.Errorf("backend = %s", c.BackendName())
	}
	if c.LogLevel() != core.DebugLevel {
		t.Errorf("log level = %v", c.LogLevel())
	}
	if cc := c.ClearColor(); cc.X != 0.1 || cc.Y != 0.2 || cc.Z != 0.3 || cc.W != 1 {
		t.Errorf("clear color = %v", cc)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"syntax", `[window`},
		{"wrong type", "[window]\nwidth = \"wide\""},
		{"zero width", "[window]\nwidth = 0"},
		{"fov", "[camera]\nfov_degrees = 180"},
		{"positive near", "[camera]\nnear = 1"},
		{"far before near", "[camera]\nnear = -10\nfar = -5"},
		{"shadow resolution", "[shadow]\nresolution = 0"},
		{"negative bias", "[shadow]\nbias = -0.1"},
		{"shadow planes", "[shadow]\nnear = -1\nfar = -1"},
		{"backend", "[render]\nbackend = \"vulkan\""},
		{"clear color", "[render]\nclear_color = [2.0, 0.0, 0.0, 1.0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.toml)); !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "umbra.toml")
	if err := os.WriteFile(path, []byte("[camera]\nmove_speed = 3.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Camera.MoveSpeed != 3.5 {
		t.Errorf("move speed = %v", c.Camera.MoveSpeed)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	c, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if *c != *Default() {
		t.Errorf("missing file gave %+v", c)
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[shadow]\nbias = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrDefault(path); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("invalid file: %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	c := Default()
	c.Shadow.Bias = 0.05
	c.Render.Backend = BACKEND_SOFTWARE
	data, err := c.Encode()
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if *back != *c {
		t.Errorf("round trip changed the config:\n%+v\n%+v", back, c)
	}
}
