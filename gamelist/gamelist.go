package gamelist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"go.uber.org/zap"
)

type Options struct {
	CacheFile  string
	IconFolder string
	// Categories queried in order, DefaultCategories when empty
	Categories []AppType
	// Run enrichment on a background executor instead of inside Load
	Async bool
	// Encoded icon of the vWii launcher entry, optional
	VWiiIcon []byte
	Progress ProgressUpdater
	Logger   *zap.SugaredLogger
}

type Adapters struct {
	Titles   TitleSource
	Metadata MetadataSource
	Icons    IconSource
	Images   ImagePipeline
	Storage  Storage
}

// The menu's game list: owns the registry, its cache file, the enrichment
// coordinator and the executor it runs on
type GameList struct {
	registry    *Registry
	bus         *Bus
	released    *ReleaseQueue
	coordinator *Coordinator
	executor    *Executor

	titles  TitleSource
	images  ImagePipeline
	storage Storage

	cacheFile  string
	categories []AppType
	vWiiIcon   []byte
	logger     *zap.SugaredLogger

	loadMu sync.Mutex
}

func New(adapters Adapters, opts Options) *GameList {
	l := opts.Logger
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	categories := opts.Categories
	if len(categories) == 0 {
		categories = DefaultCategories
	}

	released := NewReleaseQueue()
	registry := NewRegistry(released)
	bus := NewBus()

	var executor *Executor
	if opts.Async {
		executor = NewExecutor(l)
	}

	g := &GameList{
		registry: registry,
		bus:      bus,
		released: released,
		executor: executor,
		coordinator: NewCoordinator(CoordinatorConfig{
			Registry:   registry,
			Bus:        bus,
			Released:   released,
			Metadata:   adapters.Metadata,
			Icons:      adapters.Icons,
			Images:     adapters.Images,
			Storage:    adapters.Storage,
			IconFolder: opts.IconFolder,
			Executor:   executor,
			Progress:   opts.Progress,
			Logger:     l,
		}),
		titles:     adapters.Titles,
		images:     adapters.Images,
		storage:    adapters.Storage,
		cacheFile:  opts.CacheFile,
		categories: categories,
		vWiiIcon:   opts.VWiiIcon,
		logger:     l,
	}

	if opts.IconFolder != "" {
		if err := g.storage.EnsureDir(opts.IconFolder); err != nil {
			l.Warnf("failed to create icon folder %v - %v", opts.IconFolder, err)
		}
	}
	return g
}

func (g *GameList) Size() int {
	return g.registry.Size()
}

func (g *GameList) Get(index int) (Title, bool) {
	return g.registry.Get(index)
}

func (g *GameList) Lookup(titleId uint64) (Title, bool) {
	return g.registry.Lookup(titleId)
}

func (g *GameList) Titles() []Title {
	return g.registry.Snapshot()
}

func (g *GameList) Subscribe(o Observer) func() {
	return g.bus.Subscribe(o)
}

// Textures waiting for the renderer to release them
func (g *GameList) ReleaseQueue() *ReleaseQueue {
	return g.released
}

func (g *GameList) Coordinator() *Coordinator {
	return g.coordinator
}

// Rebuild the list: enumerate installed titles, name them from the cache
// file, announce them, then enrich and persist. Returns the title count
// once enumeration is done; with Async the enrichment keeps running.
func (g *GameList) Load(ctx context.Context) int {
	g.loadMu.Lock()
	defer g.loadMu.Unlock()

	g.coordinator.Abort()
	g.registry.Clear()
	g.coordinator.Reset()

	g.addVWii()
	if g.readGameList(ctx) > 0 {
		g.LoadFromCache(CacheUpdateExistingOnly)
	} else {
		g.logger.Infof("no installed titles enumerated, loading the game list from %v", g.cacheFile)
		g.LoadFromCache(CacheFull)
	}
	g.registry.SortByName()

	for _, t := range g.registry.Snapshot() {
		g.bus.PublishAdded(t)
	}

	err := g.coordinator.Start(ctx, func() {
		if err := g.Save(); err != nil {
			g.logger.Errorf("failed to save game list - %v", err)
		}
	})
	if err != nil {
		g.logger.Errorf("failed to start title enrichment - %v", err)
	}

	return g.registry.Size()
}

func (g *GameList) addVWii() {
	if len(g.vWiiIcon) == 0 {
		g.registry.Add(VWiiTitleID, AppTypeSystemApps, "vWii", "", nil)
		return
	}
	tex, err := g.images.Decode(g.vWiiIcon)
	if err != nil {
		g.logger.Warnf("failed to decode vWii icon - %v", err)
	}
	if g.registry.Add(VWiiTitleID, AppTypeSystemApps, "vWii", "", tex) != Inserted && tex != nil {
		g.released.Push(tex)
	}
}

// Add the installed titles of every configured category. A failing
// category is skipped, a failing refresh skips them all. Returns the number
// of titles inserted.
func (g *GameList) readGameList(ctx context.Context) int {
	if g.titles == nil {
		return 0
	}
	if refresher, ok := g.titles.(TitleRefresher); ok {
		if err := refresher.Refresh(ctx); err != nil {
			g.logger.Warnf("failed to enumerate installed titles - %v", err)
			return 0
		}
	}
	cnt := 0
	for _, appType := range g.categories {
		infos, err := g.titles.Titles(ctx, appType)
		if err != nil {
			g.logger.Warnf("failed to list titles of type %v - %v", appType, err)
			continue
		}
		for _, info := range infos {
			if g.registry.Add(info.TitleId, info.AppType, "", info.Path, nil) == Inserted {
				cnt++
			}
		}
	}
	g.logger.Infof("enumerated %v installed titles", cnt)
	return cnt
}

// Merge the cache file into the registry. Returns false when there is no
// cache file to read.
func (g *GameList) LoadFromCache(mode CacheMode) bool {
	data, err := g.storage.ReadFile(g.cacheFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			g.logger.Warnf("failed to read game list cache %v - %v", g.cacheFile, err)
		}
		return false
	}

	applied := g.registry.ApplyCache(ParseCache(data), mode)
	g.logger.Debugf("applied %v game list cache entries", applied)
	return true
}

func (g *GameList) SetTitleName(titleId uint64, name string) bool {
	_, found := g.registry.SetName(titleId, name)
	return found
}

func (g *GameList) SortByName() {
	g.registry.SortByName()
}

// Write the cache file when something changed since the last save
func (g *GameList) Save() error {
	titles, dirty := g.registry.takeDirtySnapshot()
	if !dirty {
		return nil
	}
	if err := g.storage.WriteFile(g.cacheFile, EncodeCache(titles)); err != nil {
		g.registry.MarkDirty()
		return fmt.Errorf("write %v: %w", g.cacheFile, err)
	}
	g.logger.Debugf("saved %v titles to %v", len(titles), g.cacheFile)
	return nil
}

// Block until background enrichment is done
func (g *GameList) Wait() {
	g.coordinator.Wait()
}

// Stop background enrichment, returns once no pass is running
func (g *GameList) Abort() {
	g.coordinator.Abort()
}

func (g *GameList) Clear() {
	g.loadMu.Lock()
	defer g.loadMu.Unlock()

	g.coordinator.Abort()
	g.registry.Clear()
}

func (g *GameList) Close() {
	g.Clear()
	if g.executor != nil {
		g.executor.Close()
	}
}
