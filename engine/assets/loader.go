package assets

import "github.com/spaghettifunk/umbra/engine/resources"

type Loader interface {
	Load(path string) (*resources.Resource, error)
}
