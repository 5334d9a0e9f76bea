package loaders

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
	"github.com/spaghettifunk/umbra/engine/resources"
)

type TextureLoader struct{}

func (tl *TextureLoader) Load(path string) (*resources.Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, format, err := DecodeImage(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	data.Name = path
	return &resources.Resource{
		Name:     format,
		FullPath: path,
		Type:     resources.ResourceTypeImage,
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

// TextureData returns the decoded pixels held by a resource loaded by
// TextureLoader.
func TextureData(r *resources.Resource) (*metadata.TextureData, bool) {
	data, ok := r.Data.(*metadata.TextureData)
	return data, ok
}
