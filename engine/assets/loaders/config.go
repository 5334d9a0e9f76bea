package loaders

import (
	"github.com/spaghettifunk/umbra/engine/config"
	"github.com/spaghettifunk/umbra/engine/resources"
)

type ConfigLoader struct{}

func (cl *ConfigLoader) Load(path string) (*resources.Resource, error) {
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return &resources.Resource{
		Name:     "config",
		FullPath: path,
		Type:     resources.ResourceTypeConfig,
		Data:     c,
	}, nil
}
