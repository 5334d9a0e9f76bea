package metadata

import (
	"github.com/spaghettifunk/umbra/engine/math"
)

/**
 * @brief Selects where a material takes its surface color from.
 */
type MaterialKind uint8

const (
	/** @brief Color derived from the surface normal, for debugging. */
	MATERIAL_KIND_NORMAL MaterialKind = iota
	/** @brief Color sampled from the material's texture. */
	MATERIAL_KIND_TEXTURED
	/** @brief A single flat color. */
	MATERIAL_KIND_FLAT_COLOR
)

func (k MaterialKind) String() string {
	switch k {
	case MATERIAL_KIND_NORMAL:
		return "normal"
	case MATERIAL_KIND_TEXTURED:
		return "textured"
	case MATERIAL_KIND_FLAT_COLOR:
		return "flat"
	}
	return "unknown"
}

/**
 * @brief Describes how a surface is shaded. The kind is a closed set
 * consumed by the renderer's shading builder.
 */
type Material struct {
	Kind MaterialKind
	/** @brief Flat color, and the placeholder color of a texture still loading. */
	Color math.Vec4
	/** @brief The texture sampled by textured materials. */
	Map *Texture
	/** @brief Whether lights affect the surface. Unlit surfaces show their raw color. */
	Lit bool
}

func NewNormalMaterial() Material {
	return Material{Kind: MATERIAL_KIND_NORMAL, Color: math.NewVec4(1, 1, 1, 1)}
}

func NewFlatColorMaterial(color math.Vec4, lit bool) Material {
	return Material{Kind: MATERIAL_KIND_FLAT_COLOR, Color: color, Lit: lit}
}

// NewTexturedMaterial samples its color from source. Until a file source is
// loaded the surface shows placeholder.
func NewTexturedMaterial(source TextureSource, placeholder math.Vec4) Material {
	return Material{
		Kind:  MATERIAL_KIND_TEXTURED,
		Color: placeholder,
		Map:   NewTexture(source),
		Lit:   true,
	}
}
