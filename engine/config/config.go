package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/math"
)

const (
	BACKEND_OPENGL   = "opengl"
	BACKEND_SOFTWARE = "software"
)

type Window struct {
	Name   string `toml:"name"`
	X      int32  `toml:"x"`
	Y      int32  `toml:"y"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type Log struct {
	Level string `toml:"level"`
}

type Camera struct {
	FovDegrees float32 `toml:"fov_degrees"`
	/** @brief Near and far planes, negative: the camera looks down -z. */
	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`
	/** @brief World units per second. */
	MoveSpeed float32 `toml:"move_speed"`
	/** @brief Radians per second. */
	TurnSpeed float32 `toml:"turn_speed"`
}

type Shadow struct {
	Resolution uint32  `toml:"resolution"`
	Bias       float32 `toml:"bias"`
	Extent     float32 `toml:"extent"`
	Near       float32 `toml:"near"`
	Far        float32 `toml:"far"`
}

type Render struct {
	Backend    string     `toml:"backend"`
	ClearColor [4]float32 `toml:"clear_color"`
	TextureDir string     `toml:"texture_dir"`
}

/**
 * @brief Application configuration, read from a TOML file. Sections that
 * are missing keep their defaults.
 */
type Config struct {
	Window Window `toml:"window"`
	Log    Log    `toml:"log"`
	Camera Camera `toml:"camera"`
	Shadow Shadow `toml:"shadow"`
	Render Render `toml:"render"`
}

func Default() *Config {
	return &Config{
		Window: Window{Name: "Umbra", X: 100, Y: 100, Width: 1280, Height: 720},
		Log:    Log{Level: "info"},
		Camera: Camera{FovDegrees: 90, Near: -1, Far: -1000, MoveSpeed: 10, TurnSpeed: 1.5},
		Shadow: Shadow{Resolution: 2048, Bias: 0.01, Extent: 100, Near: -1, Far: -1000},
		Render: Render{
			Backend:    BACKEND_OPENGL,
			ClearColor: [4]float32{0, 0, 0, 1},
			TextureDir: "assets/textures",
		},
	}
}

// Parse decodes TOML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	c, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		core.LogWarn("config %s not found, using defaults", path)
		return Default(), nil
	}
	return c, err
}

// Encode writes the configuration back as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", core.ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func (c *Config) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return invalid("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180 {
		return invalid("camera fov %v outside (0, 180)", c.Camera.FovDegrees)
	}
	if err := validatePlanes("camera", c.Camera.Near, c.Camera.Far); err != nil {
		return err
	}
	if c.Camera.MoveSpeed < 0 || c.Camera.TurnSpeed < 0 {
		return invalid("negative camera speed")
	}
	if c.Shadow.Resolution == 0 || c.Shadow.Resolution > 16384 {
		return invalid("shadow resolution %d", c.Shadow.Resolution)
	}
	if c.Shadow.Bias < 0 {
		return invalid("negative shadow bias")
	}
	if c.Shadow.Extent <= 0 {
		return invalid("shadow extent %v", c.Shadow.Extent)
	}
	if err := validatePlanes("shadow", c.Shadow.Near, c.Shadow.Far); err != nil {
		return err
	}
	switch strings.ToLower(c.Render.Backend) {
	case BACKEND_OPENGL, BACKEND_SOFTWARE:
	default:
		return invalid("unknown backend %q", c.Render.Backend)
	}
	for _, v := range c.Render.ClearColor {
		if v < 0 || v > 1 {
			return invalid("clear color %v outside [0, 1]", c.Render.ClearColor)
		}
	}
	return nil
}

// Planes sit in front of the viewer: 0 > near > far.
func validatePlanes(section string, near, far float32) error {
	if near >= 0 || far >= near {
		return invalid("%s planes near=%v far=%v, want 0 > near > far", section, near, far)
	}
	return nil
}

func (c *Config) LogLevel() core.LogLevel {
	return core.ParseLogLevel(c.Log.Level)
}

func (c *Config) FieldOfView() float32 {
	return math.DegToRad(c.Camera.FovDegrees)
}

func (c *Config) ClearColor() math.Vec4 {
	cc := c.Render.ClearColor
	return math.NewVec4(cc[0], cc[1], cc[2], cc[3])
}

func (c *Config) BackendName() string {
	return strings.ToLower(c.Render.Backend)
}
