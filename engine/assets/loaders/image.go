package loaders

import (
	"fmt"
	"image"
	"io"

	// Decoders register themselves with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
)

// DecodeImage decodes any registered format into RGBA8 texture pixels with
// the bottom row first.
func DecodeImage(r io.Reader) (*metadata.TextureData, string, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, format, fmt.Errorf("%s image is empty", format)
	}
	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	}
	return &metadata.TextureData{
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Pixels: flipRows(rgba),
	}, format, nil
}

// flipRows copies img into a tightly packed buffer, last row first.
func flipRows(img *image.RGBA) []uint8 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	rowBytes := w * 4
	out := make([]uint8, rowBytes*h)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+rowBytes]
		copy(out[(h-1-y)*rowBytes:], src)
	}
	return out
}
