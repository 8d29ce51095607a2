// Package render owns the single fan-out entry point invoked after every
// catalog mutation. The trigger assembles a snapshot of the render-layer
// inputs and hands it to each registered sink; the view renderers
// themselves live outside this module.
package render

import (
	"go.uber.org/zap"

	"github.com/devnnex/vision-academy/internal/catalog"
	"github.com/devnnex/vision-academy/internal/session"
)

// Snapshot carries everything the render layer is permitted to show.
type Snapshot struct {
	Videos            []catalog.Video
	StudentCategories []string
	AdminCategories   []string
	FAQs              []catalog.FAQ
	Images            []catalog.Image
	User              *session.User
}

// Sink consumes a snapshot after a mutation. Sinks must not mutate the
// catalog store.
type Sink interface {
	RenderAll(Snapshot)
}

// UserSource reports the current session user, nil for guests.
type UserSource interface {
	Current() *session.User
}

// Trigger fans a snapshot out to every registered sink.
type Trigger struct {
	store  *catalog.Store
	users  UserSource
	sinks  []Sink
	logger *zap.Logger
}

// NewTrigger constructs a trigger over the given store. The user source
// may be nil when no session layer is attached.
func NewTrigger(store *catalog.Store, users UserSource, logger *zap.Logger) *Trigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trigger{store: store, users: users, logger: logger}
}

// Register appends a sink. Not safe to call concurrently with RenderAll;
// sinks are registered once during startup wiring.
func (t *Trigger) Register(sink Sink) {
	if sink == nil {
		return
	}
	t.sinks = append(t.sinks, sink)
}

// RenderAll snapshots the store and notifies every sink.
func (t *Trigger) RenderAll() {
	if t == nil || t.store == nil {
		return
	}
	snapshot := Snapshot{
		Videos:            t.store.Videos(),
		StudentCategories: t.store.Categories(catalog.AudienceStudent),
		AdminCategories:   t.store.Categories(catalog.AudienceAdmin),
		FAQs:              t.store.FAQs(),
		Images:            t.store.Images(),
	}
	if t.users != nil {
		snapshot.User = t.users.Current()
	}
	for _, sink := range t.sinks {
		sink.RenderAll(snapshot)
	}
	t.logger.Debug("render fan-out complete",
		zap.Int("videos", len(snapshot.Videos)),
		zap.Int("sinks", len(t.sinks)))
}
