package software

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/umbra/engine/math"
)

// texture stores float RGBA texels. Row 0 is the bottom row, as in window
// and texture coordinates.
type texture struct {
	width, height int
	pixels        []float32
}

func newTexture(width, height int) *texture {
	return &texture{width: width, height: height, pixels: make([]float32, width*height*4)}
}

func (t *texture) at(x, y int) math.Vec4 {
	i := (y*t.width + x) * 4
	p := t.pixels[i : i+4 : i+4]
	return math.NewVec4(p[0], p[1], p[2], p[3])
}

func (t *texture) set(x, y int, c math.Vec4) {
	i := (y*t.width + x) * 4
	p := t.pixels[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = c.X, c.Y, c.Z, c.W
}

// sample is a nearest-texel lookup with coordinates clamped to the edge.
func (t *texture) sample(u, v float32) math.Vec4 {
	x := int(math32.Floor(u * float32(t.width)))
	y := int(math32.Floor(v * float32(t.height)))
	return t.at(math.Clamp(x, 0, t.width-1), math.Clamp(y, 0, t.height-1))
}

// image converts to 8-bit RGBA with the top row first.
func (t *texture) image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			img.SetRGBA(x, t.height-1-y, toRGBA(t.at(x, y)))
		}
	}
	return img
}

func toRGBA(c math.Vec4) color.RGBA {
	conv := func(v float32) uint8 {
		return uint8(math.Clamp(v, 0, 1)*255 + 0.5)
	}
	return color.RGBA{R: conv(c.X), G: conv(c.Y), B: conv(c.Z), A: conv(c.W)}
}

// target is a color texture plus a depth buffer of the same size.
type target struct {
	name          string
	width, height int
	color         *texture
	depth         []float32
}

func newTarget(name string, width, height int) *target {
	return &target{
		name:   name,
		width:  width,
		height: height,
		color:  newTexture(width, height),
		depth:  make([]float32, width*height),
	}
}

func (t *target) clear(c math.Vec4, depth float32) {
	for i := 0; i < len(t.color.pixels); i += 4 {
		p := t.color.pixels[i : i+4 : i+4]
		p[0], p[1], p[2], p[3] = c.X, c.Y, c.Z, c.W
	}
	for i := range t.depth {
		t.depth[i] = depth
	}
}
