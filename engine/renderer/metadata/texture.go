package metadata

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/umbra/engine/math"
)

/**
 * @brief Where a texture's pixels come from.
 */
type TextureSourceKind uint8

const (
	/** @brief A 1x1 texture of a solid color. */
	TEXTURE_SOURCE_COLOR TextureSourceKind = iota
	/** @brief An image file decoded by the asset manager. */
	TEXTURE_SOURCE_FILE
	/** @brief The color attachment of a render target. */
	TEXTURE_SOURCE_RENDER_TARGET
)

type TextureSource struct {
	Kind TextureSourceKind
	/** @brief Asset name, for file sources. */
	Path string
	/** @brief Solid color for color sources. */
	Color math.Vec4
	/** @brief The target whose color attachment is sampled. */
	Target *RenderTarget
}

func TextureFromColor(color math.Vec4) TextureSource {
	return TextureSource{Kind: TEXTURE_SOURCE_COLOR, Color: color}
}

func TextureFromFile(path string) TextureSource {
	return TextureSource{Kind: TEXTURE_SOURCE_FILE, Path: path}
}

func TextureFromRenderTarget(target *RenderTarget) TextureSource {
	return TextureSource{Kind: TEXTURE_SOURCE_RENDER_TARGET, Target: target}
}

type TextureFlag int

const (
	/** @brief Indicates if the texture can be written (rendered) to. */
	TextureFlagIsWriteable TextureFlag = 0x1
	/** @brief Indicates the texture holds depth values. */
	TextureFlagDepth TextureFlag = 0x2
	/** @brief Indicates the texture still shows its placeholder color. */
	TextureFlagPlaceholder TextureFlag = 0x4
)

/** @brief Holds bit flags for textures. */
type TextureFlagBits uint8

func (b TextureFlagBits) Has(f TextureFlag) bool {
	return b&TextureFlagBits(f) != 0
}

/**
 * @brief Represents a texture.
 */
type Texture struct {
	/** @brief The backend handle. Zero until the backend created the texture. */
	ID uint32
	/** @brief The texture Name. */
	Name string
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	/** @brief Holds various Flags for this texture. */
	Flags TextureFlagBits
	/** @brief Incremented every time the data is reloaded. */
	Generation uint32
	/** @brief Where the pixels come from. */
	Source TextureSource
	/** @brief Set once an asynchronous load has been requested. */
	LoadRequested bool
	/** @brief Backend private data. */
	InternalData interface{}
}

// NewTexture creates a texture with a unique name. Nothing is uploaded
// until the renderer first draws with it.
func NewTexture(source TextureSource) *Texture {
	name := uuid.New().String()
	if source.Kind == TEXTURE_SOURCE_FILE {
		name = source.Path
	}
	return &Texture{
		Name:         name,
		ChannelCount: 4,
		Source:       source,
	}
}

// ColorPixels returns the RGBA8 bytes of a 1x1 texture of color c.
func ColorPixels(c math.Vec4) []uint8 {
	conv := func(v float32) uint8 {
		return uint8(math.Clamp(v, 0, 1)*255 + 0.5)
	}
	return []uint8{conv(c.X), conv(c.Y), conv(c.Z), conv(c.W)}
}

/**
 * @brief Decoded RGBA8 pixels delivered by the asset manager.
 */
type TextureData struct {
	/** @brief The asset name the data was requested with. */
	Name   string
	Width  uint32
	Height uint32
	/** @brief Width*Height*4 bytes, first row at the bottom of the image (v = 0). */
	Pixels []uint8
}
