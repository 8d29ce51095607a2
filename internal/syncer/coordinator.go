// Package syncer orchestrates loading the authoritative catalog from the
// remote backend: once at startup, and again after mutations that need a
// reconciliation round-trip.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/devnnex/vision-academy/internal/catalog"
)

// State names a coordinator phase. Failures return the coordinator to
// StateIdle so a later attempt can retry.
type State string

const (
	// StateIdle means no load has completed and none is outstanding.
	StateIdle State = "idle"
	// StateLoading means exactly one fetch is outstanding.
	StateLoading State = "loading"
	// StateLoaded means the store holds the authoritative remote set.
	StateLoaded State = "loaded"
)

// Source is the remote side of a load: the catalog gateway, or a stub in
// tests.
type Source interface {
	Configured() bool
	FetchVideos(ctx context.Context) ([]catalog.Video, error)
	FetchCategories(ctx context.Context) ([]string, error)
}

// Renderer is invoked after the store is replaced.
type Renderer interface {
	RenderAll()
}

var errMissingSource = errors.New("syncer: source is required")

// FallbackCategories seeds the registry when no remote backend is
// configured, so the admin form still offers a category selection.
var FallbackCategories = []string{"General", "Tutorial", "Curados", "Induccion"}

// CoordinatorConfig wires the coordinator dependencies.
type CoordinatorConfig struct {
	Source     Source
	Store      *catalog.Store
	Renderer   Renderer
	Thumbnail  func(link string) string
	Clock      func() time.Time
	IDProvider catalog.IDProvider
	Logger     *zap.Logger
}

// Coordinator guards the full-catalog fetch so at most one is outstanding,
// wholesale-replaces the store on success, and leaves local state
// untouched on failure.
type Coordinator struct {
	source     Source
	store      *catalog.Store
	renderer   Renderer
	thumbnail  func(string) string
	clock      func() time.Time
	idProvider catalog.IDProvider
	logger     *zap.Logger

	mu      sync.Mutex
	state   State
	lastErr error
}

// NewCoordinator validates the configuration and constructs the coordinator.
func NewCoordinator(cfg CoordinatorConfig) (*Coordinator, error) {
	if cfg.Source == nil {
		return nil, errMissingSource
	}
	if cfg.Store == nil {
		return nil, errors.New("syncer: store is required")
	}
	thumbnail := cfg.Thumbnail
	if thumbnail == nil {
		thumbnail = func(string) string { return "" }
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	idProvider := cfg.IDProvider
	if idProvider == nil {
		idProvider = catalog.NewUUIDProvider()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		source:     cfg.Source,
		store:      cfg.Store,
		renderer:   cfg.Renderer,
		thumbnail:  thumbnail,
		clock:      clock,
		idProvider: idProvider,
		logger:     logger,
		state:      StateIdle,
	}, nil
}

// State reports the current phase.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError reports the most recent load failure, nil after a success.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// LoadOnce performs the startup load. It is a no-op when a load is
// outstanding or has already succeeded this session.
func (c *Coordinator) LoadOnce(ctx context.Context) error {
	if !c.begin(false) {
		return nil
	}
	return c.load(ctx)
}

// Refresh re-fetches the catalog, e.g. after an edit round-trip. It is a
// no-op only while another load is outstanding.
func (c *Coordinator) Refresh(ctx context.Context) error {
	if !c.begin(true) {
		return nil
	}
	return c.load(ctx)
}

// Resync schedules a Refresh after the given delay, allowing the backend
// to settle a delete-then-recreate sequence first.
func (c *Coordinator) Resync(delay time.Duration) {
	time.AfterFunc(delay, func() {
		if err := c.Refresh(context.Background()); err != nil {
			c.logger.Warn("scheduled resync failed", zap.Error(err))
		}
	})
}

// begin transitions into StateLoading, reporting false when the transition
// is not permitted.
func (c *Coordinator) begin(allowReload bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateLoading:
		return false
	case StateLoaded:
		if !allowReload {
			return false
		}
	}
	c.state = StateLoading
	return true
}

func (c *Coordinator) finish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateIdle
		c.lastErr = err
		return
	}
	c.state = StateLoaded
	c.lastErr = nil
}

func (c *Coordinator) load(ctx context.Context) error {
	if !c.source.Configured() {
		// No remote backend: seed the fallback registry once so category
		// views are not empty, then consider the session loaded. A
		// registry that already holds entries, including locally added
		// categories, stays as it is.
		c.store.SeedCategoryRegistry(FallbackCategories)
		c.finish(nil)
		c.render()
		return nil
	}

	fetched, err := c.source.FetchVideos(ctx)
	if err != nil {
		c.finish(fmt.Errorf("syncer: load videos: %w", err))
		c.logger.Warn("video load failed, will retry on next request", zap.Error(err))
		return c.LastError()
	}

	now := c.clock().UnixMilli()
	videos := make([]catalog.Video, 0, len(fetched))
	for _, video := range fetched {
		if video.Title == "" || video.Link == "" {
			continue
		}
		video = video.Normalize(now)
		if video.ID == "" {
			id, err := c.idProvider.NewID()
			if err != nil {
				c.logger.Warn("skipping remote video without id",
					zap.String("title", video.Title), zap.Error(err))
				continue
			}
			video.ID = id
		}
		if video.Thumb == "" {
			video.Thumb = c.thumbnail(video.Link)
		}
		videos = append(videos, video)
	}
	c.store.ReplaceAllVideos(videos)
	c.finish(nil)

	// Registry fetch is best-effort; the derived list still covers
	// categories implied by the videos themselves.
	if categories, err := c.source.FetchCategories(ctx); err != nil {
		c.logger.Warn("category registry load failed", zap.Error(err))
	} else {
		c.store.SetCategoryRegistry(categories)
	}

	c.render()
	c.logger.Info("catalog loaded from remote backend", zap.Int("videos", len(videos)))
	return nil
}

func (c *Coordinator) render() {
	if c.renderer != nil {
		c.renderer.RenderAll()
	}
}
