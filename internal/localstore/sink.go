package localstore

import (
	"go.uber.org/zap"

	"github.com/devnnex/vision-academy/internal/catalog"
	"github.com/devnnex/vision-academy/internal/render"
)

// Sink is the persistence side of the render fan-out: after every
// mutation it mirrors the catalog collections into the state records.
type Sink struct {
	repo   *Repository
	logger *zap.Logger
}

// NewSink constructs the persistence sink.
func NewSink(repo *Repository, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{repo: repo, logger: logger}
}

// RenderAll persists the snapshot's collections. Failures are logged,
// never surfaced: persistence lag must not break a local mutation.
func (s *Sink) RenderAll(snapshot render.Snapshot) {
	s.save(KeyVideos, snapshot.Videos)
	s.save(KeyFAQs, snapshot.FAQs)
	s.save(KeyImages, snapshot.Images)
}

func (s *Sink) save(key string, value any) {
	if err := s.repo.SaveJSON(key, value); err != nil {
		s.logger.Warn("local state persist failed", zap.String("key", key), zap.Error(err))
	}
}

// Restore loads the persisted collections into the store at startup. A
// missing record leaves that collection empty.
func (s *Sink) Restore(store *catalog.Store) {
	var videos []catalog.Video
	if found, err := s.repo.LoadJSON(KeyVideos, &videos); err != nil {
		s.logger.Warn("video restore failed", zap.Error(err))
	} else if found {
		store.ReplaceAllVideos(videos)
	}

	// Snapshots carry FAQs and images in display order (most recent
	// first); the store wants insertion order back.
	var faqs []catalog.FAQ
	if found, err := s.repo.LoadJSON(KeyFAQs, &faqs); err != nil {
		s.logger.Warn("faq restore failed", zap.Error(err))
	} else if found {
		store.ReplaceAllFAQs(reversed(faqs))
	}

	var images []catalog.Image
	if found, err := s.repo.LoadJSON(KeyImages, &images); err != nil {
		s.logger.Warn("image restore failed", zap.Error(err))
	} else if found {
		store.ReplaceAllImages(reversed(images))
	}
}

func reversed[T any](items []T) []T {
	flipped := make([]T, 0, len(items))
	for index := len(items) - 1; index >= 0; index-- {
		flipped = append(flipped, items[index])
	}
	return flipped
}
