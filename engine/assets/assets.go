package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/umbra/engine/assets/loaders"
	"github.com/spaghettifunk/umbra/engine/config"
	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
	"github.com/spaghettifunk/umbra/engine/resources"
	"github.com/spaghettifunk/umbra/engine/systems"
)

const (
	textureQueueSize = 16
	decodeWorkers    = 4
)

type AssetInfo struct {
	Path       string
	Type       resources.ResourceType
	LastLoaded time.Time
}

/**
 * @brief Indexes the asset directory, decodes textures in the background
 * and watches files for changes. Changed textures that were requested
 * before are decoded and delivered again; a changed config file is
 * reloaded and delivered on ConfigUpdates.
 */
type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[resources.ResourceType]Loader

	// path -> names the texture was requested under
	requested  map[string]map[string]struct{}
	configPath string

	mutex sync.RWMutex
	jobs  *systems.JobSystem

	textures chan *metadata.TextureData
	configs  chan *config.Config

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager(root string) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	jobs, err := systems.NewJobSystem(decodeWorkers, textureQueueSize)
	if err != nil {
		fsWatch.Close()
		return nil, err
	}

	return &AssetManager{
		root:      filepath.Clean(root),
		assets:    make(map[string]AssetInfo),
		loaders:   make(map[resources.ResourceType]Loader),
		requested: make(map[string]map[string]struct{}),
		fsnotify:  fsWatch,
		jobs:      jobs,
		textures:  make(chan *metadata.TextureData, textureQueueSize),
		configs:   make(chan *config.Config, 1),
		done:      make(chan struct{}),
	}, nil
}

func (am *AssetManager) Initialize() error {
	// Register loaders
	am.registerLoader(resources.ResourceTypeImage, &loaders.TextureLoader{})
	am.registerLoader(resources.ResourceTypeConfig, &loaders.ConfigLoader{})
	am.registerLoader(resources.ResourceTypeBitmapFont, &loaders.BitmapFontLoader{})

	if s, err := os.Stat(am.root); err != nil || !s.IsDir() {
		core.LogWarn("asset directory %s not found, hot reload disabled for it", am.root)
	} else if err := am.addRecursive(am.root); err != nil {
		return err
	}

	go am.start()
	core.LogInfo("asset manager watching %s (%d assets)", am.root, am.Count())
	return nil
}

// Shutdown stops watching and waits for decodes in flight.
func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	if err := am.jobs.Shutdown(); err != nil {
		return err
	}
	return am.fsnotify.Close()
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	return am.watchRecursive(name)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType resources.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

func (am *AssetManager) loader(assetType resources.ResourceType) (Loader, error) {
	loader, ok := am.loaders[assetType]
	if !ok {
		return nil, fmt.Errorf("no loader registered for asset type: %s", assetType)
	}
	return loader, nil
}

// Resolve maps an asset name to a file path. Relative names are looked up
// under the asset directory.
func (am *AssetManager) Resolve(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(am.root, name)
}

// LoadTexture starts decoding the named image and returns immediately. The
// pixels arrive on Textures under the same name; failures are logged and
// never delivered.
func (am *AssetManager) LoadTexture(name string) {
	path := am.Resolve(name)
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return
	}
	if am.requested[path] == nil {
		am.requested[path] = make(map[string]struct{})
	}
	am.requested[path][name] = struct{}{}
	am.mutex.Unlock()

	am.submitDecode(path, []string{name})
}

func (am *AssetManager) submitDecode(path string, names []string) {
	am.jobs.SubmitNonBlocking(systems.Job{
		Name: "decode " + path,
		Run: func() error {
			return am.decodeTexture(path, names)
		},
	})
}

func (am *AssetManager) Textures() <-chan *metadata.TextureData {
	return am.textures
}

func (am *AssetManager) decodeTexture(path string, names []string) error {
	loader, err := am.loader(resources.ResourceTypeImage)
	if err != nil {
		return err
	}
	res, err := loader.Load(path)
	if err != nil {
		return err
	}
	data, ok := loaders.TextureData(res)
	if !ok {
		return fmt.Errorf("loader returned %T", res.Data)
	}
	am.touch(path, resources.ResourceTypeImage)
	core.LogDebug("decoded %s %s (%dx%d)", res.Name, path, data.Width, data.Height)

	for _, name := range names {
		out := *data
		out.Name = name
		select {
		case am.textures <- &out:
		case <-am.done:
			return nil
		}
	}
	return nil
}

// WatchConfig reloads the file at path whenever it changes and delivers
// every valid version on ConfigUpdates.
func (am *AssetManager) WatchConfig(path string) error {
	am.mutex.Lock()
	am.configPath = filepath.Clean(path)
	am.mutex.Unlock()
	// Editors replace files on save, so the directory is watched.
	return am.fsnotify.Add(filepath.Dir(am.configPath))
}

func (am *AssetManager) ConfigUpdates() <-chan *config.Config {
	return am.configs
}

func (am *AssetManager) reloadConfig(path string) {
	loader, err := am.loader(resources.ResourceTypeConfig)
	if err != nil {
		core.LogError("config %s: %s", path, err)
		return
	}
	res, err := loader.Load(path)
	if err != nil {
		core.LogWarn("config %s not reloaded: %s", path, err)
		return
	}
	// Only the newest version is kept.
	select {
	case <-am.configs:
	default:
	}
	am.configs <- res.Data.(*config.Config)
	core.LogInfo("config %s reloaded", path)
}

// LoadBitmapFont loads an AngelCode font synchronously.
func (am *AssetManager) LoadBitmapFont(name string) (*bmfont.BitmapFont, error) {
	loader, err := am.loader(resources.ResourceTypeBitmapFont)
	if err != nil {
		return nil, err
	}
	path := am.Resolve(name)
	res, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	am.touch(path, resources.ResourceTypeBitmapFont)
	return res.Data.(*bmfont.BitmapFont), nil
}

// Asset returns what the index knows about path.
func (am *AssetManager) Asset(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[filepath.Clean(path)]
	return info, ok
}

func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

func (am *AssetManager) start() {
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	path := filepath.Clean(e.Name)
	if s, err := os.Stat(path); err == nil && s.IsDir() {
		if e.Has(fsnotify.Create) {
			if err := am.watchRecursive(path); err != nil {
				core.LogWarn("watch %s: %s", path, err)
			}
		}
		return
	}

	if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
		am.removeAsset(path)
		return
	}
	if !e.Has(fsnotify.Create) && !e.Has(fsnotify.Write) {
		return
	}

	am.mutex.RLock()
	isConfig := path == am.configPath
	am.mutex.RUnlock()
	if isConfig {
		am.reloadConfig(path)
		return
	}

	am.handleFileEvent(path)
	am.mutex.Lock()
	var names []string
	for name := range am.requested[path] {
		names = append(names, name)
	}
	am.mutex.Unlock()
	if len(names) > 0 {
		core.LogDebug("texture %s changed, reloading", path)
		am.submitDecode(path, names)
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files found.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(filepath.Clean(walkPath))
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) {
	assetType := resources.TypeOf(path)
	if assetType == resources.ResourceTypeNone {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if _, ok := am.assets[path]; !ok {
		am.assets[path] = AssetInfo{Path: path, Type: assetType}
	}
}

func (am *AssetManager) touch(path string, assetType resources.ResourceType) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{Path: path, Type: assetType, LastLoaded: time.Now()}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}
