package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	errMissingStore      = errors.New("catalog store is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()
)

const (
	opServiceNew   = "catalog.service.new"
	opSaveVideo    = "catalog.save_video"
	opDeleteVideo  = "catalog.delete_video"
	opAddFAQ       = "catalog.add_faq"
	opUpdateFAQ    = "catalog.update_faq"
	opRemoveFAQ    = "catalog.remove_faq"
	opAddCategory  = "catalog.add_category"
	opUploadImages = "catalog.upload_images"
)

// IDProvider issues unique identifiers for new entities.
type IDProvider interface {
	NewID() (string, error)
}

// Pusher mirrors mutations to the remote backend. Implementations only ever
// report call-level transport failure, never backend-side outcomes.
type Pusher interface {
	Configured() bool
	Push(ctx context.Context, action string, payload map[string]any) error
	PushDeleteVideo(ctx context.Context, id string) error
}

// Renderer is the fan-out invoked after every successful mutation.
type Renderer interface {
	RenderAll()
}

// Resyncer schedules a delayed re-fetch from the remote backend so
// delete-then-recreate edits can settle before reconciling.
type Resyncer interface {
	Resync(delay time.Duration)
}

// DeleteConfirmer asks the (external) interaction layer to confirm a video
// removal before it proceeds.
type DeleteConfirmer interface {
	ConfirmDelete(video Video) bool
}

// ServiceConfig wires the CRUD service dependencies. Store and IDProvider
// are required; everything else degrades to a no-op.
type ServiceConfig struct {
	Store      *Store
	Pusher     Pusher
	Renderer   Renderer
	Resyncer   Resyncer
	Confirmer  DeleteConfirmer
	Thumbnail  func(link string) string
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service exposes the create/update/delete entry points for every entity
// type. Local mutation is synchronous; remote pushes are optimistic and
// never block or fail a local mutation.
type Service struct {
	store       *Store
	pusher      Pusher
	renderer    Renderer
	resyncer    Resyncer
	confirmer   DeleteConfirmer
	thumbnail   func(string) string
	clock       func() time.Time
	idProvider  IDProvider
	logger      *zap.Logger
	resyncDelay time.Duration
}

const defaultResyncDelay = 800 * time.Millisecond

// NewService validates the configuration and constructs the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%s: %w", opServiceNew, errMissingStore)
	}
	if cfg.IDProvider == nil {
		return nil, fmt.Errorf("%s: %w", opServiceNew, errMissingIDProvider)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	thumbnail := cfg.Thumbnail
	if thumbnail == nil {
		thumbnail = func(string) string { return "" }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{
		store:       cfg.Store,
		pusher:      cfg.Pusher,
		renderer:    cfg.Renderer,
		resyncer:    cfg.Resyncer,
		confirmer:   cfg.Confirmer,
		thumbnail:   thumbnail,
		clock:       clock,
		idProvider:  cfg.IDProvider,
		logger:      logger,
		resyncDelay: defaultResyncDelay,
	}, nil
}

// SaveVideo creates a video from the input, or updates the entry named by
// editingID in place when one is supplied. The thumbnail is derived from
// the link before committing. The local mutation is synchronous; the
// remote push runs in the background. Edits propagate remotely as
// delete-then-recreate followed by a delayed resync, because the backend
// has no in-place update primitive.
func (s *Service) SaveVideo(ctx context.Context, input VideoInput, editingID string) (Video, error) {
	if err := input.Validate(); err != nil {
		return Video{}, err
	}

	video := Video{
		Title:    input.Title,
		Link:     input.Link,
		Category: input.Category,
		Thumb:    s.thumbnail(input.Link),
		Created:  s.clock().UnixMilli(),
	}

	editing := editingID != ""
	if editing {
		if _, found := s.store.FindVideo(editingID); !found {
			return Video{}, fmt.Errorf("%w: %s", ErrVideoNotFound, editingID)
		}
		video.ID = editingID
	} else {
		id, err := s.idProvider.NewID()
		if err != nil {
			s.logError(opSaveVideo, "id_generation_failed", err)
			return Video{}, fmt.Errorf("%s: %w", opSaveVideo, err)
		}
		video.ID = id
	}

	s.store.UpsertVideo(video)
	s.render()

	if s.pusher != nil && s.pusher.Configured() {
		pushCtx := context.WithoutCancel(ctx)
		if editing {
			go s.pushEdit(pushCtx, video)
		} else {
			go s.pushCreate(pushCtx, video)
		}
	}

	return video, nil
}

// DeleteVideo removes a video after confirmation. The remote delete is
// fire-and-forget; the local entry goes away regardless of the remote
// outcome. An unknown id is a logged no-op.
func (s *Service) DeleteVideo(ctx context.Context, id string) error {
	video, found := s.store.FindVideo(id)
	if !found {
		s.logger.Warn("delete requested for unknown video",
			zap.String("operation", opDeleteVideo),
			zap.String("video_id", id))
		return nil
	}
	if s.confirmer != nil && !s.confirmer.ConfirmDelete(video) {
		return nil
	}

	if s.pusher != nil && s.pusher.Configured() {
		pushCtx := context.WithoutCancel(ctx)
		go func() {
			if err := s.pusher.PushDeleteVideo(pushCtx, id); err != nil {
				s.logError(opDeleteVideo, "push_failed", err, zap.String("video_id", id))
			}
		}()
	}

	s.store.RemoveVideo(id)
	s.render()
	return nil
}

// AddFAQ creates a FAQ from the question and answer. An empty question is
// treated as a user cancellation and aborts without state change. Creation
// is mirrored remotely best-effort; there is no remote path for FAQ edits
// or deletes.
func (s *Service) AddFAQ(ctx context.Context, question, answer string) (FAQ, error) {
	if question == "" {
		return FAQ{}, ErrMissingQuestion
	}
	id, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opAddFAQ, "id_generation_failed", err)
		return FAQ{}, fmt.Errorf("%s: %w", opAddFAQ, err)
	}
	faq := FAQ{ID: id, Q: question, A: answer}
	s.store.AddFAQ(faq)
	s.render()

	if s.pusher != nil && s.pusher.Configured() {
		pushCtx := context.WithoutCancel(ctx)
		go func() {
			payload := map[string]any{"faq": faq}
			if err := s.pusher.Push(pushCtx, "add_faq", payload); err != nil {
				s.logError(opAddFAQ, "push_failed", err, zap.String("faq_id", faq.ID))
			}
		}()
	}
	return faq, nil
}

// UpdateFAQ edits a FAQ in place, keeping its id and position. Local only.
// An unknown id is a logged no-op.
func (s *Service) UpdateFAQ(id, question, answer string) error {
	if question == "" {
		return ErrMissingQuestion
	}
	if updated := s.store.UpdateFAQ(FAQ{ID: id, Q: question, A: answer}); !updated {
		s.logger.Warn("update requested for unknown faq",
			zap.String("operation", opUpdateFAQ),
			zap.String("faq_id", id))
		return nil
	}
	s.render()
	return nil
}

// RemoveFAQ deletes a FAQ. Local only; an unknown id is a logged no-op.
func (s *Service) RemoveFAQ(id string) error {
	if removed := s.store.RemoveFAQ(id); !removed {
		s.logger.Warn("remove requested for unknown faq",
			zap.String("operation", opRemoveFAQ),
			zap.String("faq_id", id))
		return nil
	}
	s.render()
	return nil
}

// AddCategory registers a category and mirrors the creation remotely.
// Categories have no delete or rename path; they disappear only when no
// video or registry entry references them.
func (s *Service) AddCategory(ctx context.Context, name string) error {
	if name == "" {
		return ErrMissingCategory
	}
	added := s.store.AddCategory(name)
	if added {
		s.render()
	}

	if s.pusher != nil && s.pusher.Configured() {
		pushCtx := context.WithoutCancel(ctx)
		go func() {
			if err := s.pusher.Push(pushCtx, "add_category", map[string]any{"name": name}); err != nil {
				s.logError(opAddCategory, "push_failed", err, zap.String("category", name))
			}
		}()
	}
	return nil
}

func (s *Service) pushCreate(ctx context.Context, video Video) {
	payload := map[string]any{"video": video}
	if err := s.pusher.Push(ctx, "add_video", payload); err != nil {
		s.logError(opSaveVideo, "push_failed", err, zap.String("video_id", video.ID))
	}
}

// pushEdit sequences delete before recreate, then schedules a resync so the
// backend's eventual state wins the next reconciliation.
func (s *Service) pushEdit(ctx context.Context, video Video) {
	if err := s.pusher.PushDeleteVideo(ctx, video.ID); err != nil {
		s.logError(opSaveVideo, "push_delete_failed", err, zap.String("video_id", video.ID))
		return
	}
	payload := map[string]any{"video": video}
	if err := s.pusher.Push(ctx, "add_video", payload); err != nil {
		s.logError(opSaveVideo, "push_recreate_failed", err, zap.String("video_id", video.ID))
		return
	}
	if s.resyncer != nil {
		s.resyncer.Resync(s.resyncDelay)
	}
}

func (s *Service) render() {
	if s.renderer != nil {
		s.renderer.RenderAll()
	}
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("catalog service error", attrs...)
}
