package gamelist

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giwty/title-menu/imaging"
	"go.uber.org/zap"
)

const abortPollInterval = 5 * time.Millisecond

// Fills names and icons of registry titles from the slow platform services.
// Passes stop cooperatively: the abort flag is checked between titles, and
// Abort blocks until every running pass has returned.
type Coordinator struct {
	registry   *Registry
	bus        *Bus
	released   *ReleaseQueue
	metadata   MetadataSource
	icons      IconSource
	images     ImagePipeline
	storage    Storage
	iconFolder string
	executor   *Executor
	progress   ProgressUpdater
	logger     *zap.SugaredLogger

	stop    atomic.Bool
	running atomic.Int32

	mu      sync.Mutex
	cancels []context.CancelFunc
}

type CoordinatorConfig struct {
	Registry   *Registry
	Bus        *Bus
	Released   *ReleaseQueue
	Metadata   MetadataSource
	Icons      IconSource
	Images     ImagePipeline
	Storage    Storage
	IconFolder string
	// Passes run on the executor when set, inline otherwise
	Executor *Executor
	Progress ProgressUpdater
	Logger   *zap.SugaredLogger
}

func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if cfg.Bus == nil {
		cfg.Bus = NewBus()
	}
	if cfg.Released == nil {
		cfg.Released = cfg.Registry.released
	}
	return &Coordinator{
		registry:   cfg.Registry,
		bus:        cfg.Bus,
		released:   cfg.Released,
		metadata:   cfg.Metadata,
		icons:      cfg.Icons,
		images:     cfg.Images,
		storage:    cfg.Storage,
		iconFolder: cfg.IconFolder,
		executor:   cfg.Executor,
		progress:   cfg.Progress,
		logger:     cfg.Logger,
	}
}

// Path of the cached icon of a title
func (c *Coordinator) IconCachePath(titleId uint64) string {
	return filepath.Join(c.iconFolder, TitleIdString(titleId)+".png")
}

// Number of passes currently running or queued
func (c *Coordinator) Running() int {
	return int(c.running.Load())
}

func (c *Coordinator) Aborted() bool {
	return c.stop.Load()
}

// Request every pass to stop and wait until none is running. After Abort
// returns no pass touches the registry until Reset and a new Start.
func (c *Coordinator) Abort() {
	c.stop.Store(true)

	c.mu.Lock()
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
	c.mu.Unlock()

	c.Wait()
}

// Block until no pass is running, without requesting a stop
func (c *Coordinator) Wait() {
	for c.running.Load() > 0 {
		time.Sleep(abortPollInterval)
	}
}

// Allow passes again after an Abort
func (c *Coordinator) Reset() {
	c.stop.Store(false)
}

// Run the image pass then the name pass, followed by onDone unless the run
// was aborted. Inline without an executor, queued on it otherwise.
func (c *Coordinator) Start(ctx context.Context, onDone func()) error {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancels = append(c.cancels, cancel)
	c.mu.Unlock()

	c.running.Add(1)
	task := func() {
		defer c.running.Add(-1)
		defer cancel()
		c.UpdateImages(ctx)
		c.UpdateNames(ctx)
		// an aborted run leaves persisting to the next Load
		if onDone != nil && !c.stopped(ctx) {
			onDone()
		}
	}

	if c.executor == nil {
		task()
		return nil
	}
	if err := c.executor.Execute(task); err != nil {
		c.running.Add(-1)
		cancel()
		return err
	}
	return nil
}

func (c *Coordinator) stopped(ctx context.Context) bool {
	return c.stop.Load() || ctx.Err() != nil
}

func (c *Coordinator) reportProgress(curr, total int, message string) {
	if c.progress != nil {
		c.progress.UpdateProgress(curr, total, message)
	}
}

// Ask the metadata service for the display name of every title
func (c *Coordinator) UpdateNames(ctx context.Context) {
	c.running.Add(1)
	defer c.running.Add(-1)

	titles := c.registry.Snapshot()
	for i, t := range titles {
		if c.stopped(ctx) {
			c.logger.Debugf("Stop async game names loading")
			return
		}
		c.reportProgress(i+1, len(titles), "names: "+t.Name)

		c.logger.Debugf("Load extra infos of %016X", t.TitleId)
		name, err := c.metadata.DisplayName(ctx, t.TitleId)
		if err != nil {
			c.logger.Debugf("no display name for %v - %v", t.IdString(), err)
			continue
		}
		if name == "" {
			continue
		}

		changed, _ := c.registry.SetName(t.TitleId, name)
		if !changed {
			continue
		}
		c.registry.MarkDirty()
		if updated, ok := c.registry.Lookup(t.TitleId); ok {
			c.bus.PublishUpdated(updated)
		}
	}
}

// Attach an icon to every title lacking one: icon cache first, then the
// title's own icon asset which is also converted into the icon cache
func (c *Coordinator) UpdateImages(ctx context.Context) {
	c.running.Add(1)
	defer c.running.Add(-1)

	titles := c.registry.Snapshot()
	for i, t := range titles {
		if c.stopped(ctx) {
			c.logger.Debugf("Stop async game images loading")
			return
		}
		c.reportProgress(i+1, len(titles), "icons: "+t.Name)

		if t.Image != nil {
			continue
		}
		c.updateImage(ctx, t)
	}
}

func (c *Coordinator) updateImage(ctx context.Context, t Title) {
	cachePath := c.IconCachePath(t.TitleId)
	tex := c.cachedIcon(cachePath)
	saveToCache := false

	if tex == nil {
		if t.GamePath == "" {
			return
		}
		data, err := c.icons.NativeIcon(ctx, t.GamePath)
		if err != nil {
			c.logger.Debugf("no icon for %v - %v", t.IdString(), err)
			return
		}
		tex, err = c.images.Decode(data)
		if err != nil {
			c.logger.Warnf("failed to decode icon of %v - %v", t.IdString(), err)
			return
		}
		saveToCache = true
	}

	if !c.registry.SetImage(t.TitleId, tex) {
		// title went away meanwhile
		c.released.Push(tex)
		return
	}
	c.registry.MarkDirty()
	if updated, ok := c.registry.Lookup(t.TitleId); ok {
		c.bus.PublishUpdated(updated)
	}

	if saveToCache {
		src := c.icons.NativeIconPath(t.GamePath)
		if err := c.images.Reencode(src, cachePath); err != nil {
			c.logger.Warnf("failed to cache icon %v - %v", cachePath, err)
		}
	}
}

// Texture from the icon cache, nil when missing or unreadable so the native
// icon is used and the cache file rewritten
func (c *Coordinator) cachedIcon(cachePath string) *imaging.Texture {
	data, err := c.storage.ReadFile(cachePath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warnf("failed to read cached icon %v - %v", cachePath, err)
		}
		return nil
	}
	tex, err := c.images.Decode(data)
	if err != nil {
		c.logger.Warnf("cached icon %v is unreadable, rebuilding it - %v", cachePath, err)
		return nil
	}
	return tex
}
