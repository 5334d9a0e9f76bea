package resources

import (
	"path/filepath"
	"strings"
)

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Files the engine does not load. */
	ResourceTypeNone ResourceType = iota
	/** @brief Image resource type, decoded into texture pixels. */
	ResourceTypeImage
	/** @brief TOML application configuration. */
	ResourceTypeConfig
	/** @brief Bitmap font resource type (AngelCode .fnt). */
	ResourceTypeBitmapFont
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeImage:
		return "image"
	case ResourceTypeConfig:
		return "config"
	case ResourceTypeBitmapFont:
		return "bitmap-font"
	}
	return "none"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	Type     ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

// TypeOf classifies a file by its extension.
func TypeOf(path string) ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return ResourceTypeImage
	case ".toml":
		return ResourceTypeConfig
	case ".fnt":
		return ResourceTypeBitmapFont
	default:
		return ResourceTypeNone
	}
}
