package loaders

import (
	"fmt"

	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/umbra/engine/resources"
)

/**
 * @brief Loads AngelCode bitmap fonts (.fnt descriptor plus page images in
 * the same directory).
 */
type BitmapFontLoader struct{}

func (fl *BitmapFontLoader) Load(path string) (*resources.Resource, error) {
	font, err := bmfont.Load(path)
	if err != nil {
		return nil, fmt.Errorf("bitmap font %s: %w", path, err)
	}
	return &resources.Resource{
		Name:     font.Descriptor.Info.Face,
		FullPath: path,
		Type:     resources.ResourceTypeBitmapFont,
		Data:     font,
	}, nil
}
