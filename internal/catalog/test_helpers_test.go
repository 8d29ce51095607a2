package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type sequenceIDProvider struct {
	mu   sync.Mutex
	next int
}

func (p *sequenceIDProvider) NewID() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	return fmt.Sprintf("id-%d", p.next), nil
}

type recordedPush struct {
	action  string
	payload map[string]any
}

// recordingPusher captures pushes on a channel so tests can observe the
// background push goroutines deterministically.
type recordingPusher struct {
	configured bool
	pushes     chan recordedPush
	failDelete bool
}

func newRecordingPusher() *recordingPusher {
	return &recordingPusher{configured: true, pushes: make(chan recordedPush, 8)}
}

func (p *recordingPusher) Configured() bool {
	return p.configured
}

func (p *recordingPusher) Push(_ context.Context, action string, payload map[string]any) error {
	p.pushes <- recordedPush{action: action, payload: payload}
	return nil
}

func (p *recordingPusher) PushDeleteVideo(_ context.Context, id string) error {
	p.pushes <- recordedPush{action: "delete_video", payload: map[string]any{"id": id}}
	if p.failDelete {
		return fmt.Errorf("transport down")
	}
	return nil
}

func (p *recordingPusher) awaitPush(t *testing.T) recordedPush {
	t.Helper()
	select {
	case push := <-p.pushes:
		return push
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for push")
		return recordedPush{}
	}
}

type countingRenderer struct {
	mu    sync.Mutex
	count int
}

func (r *countingRenderer) RenderAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}

func (r *countingRenderer) renders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

type recordingResyncer struct {
	delays chan time.Duration
}

func newRecordingResyncer() *recordingResyncer {
	return &recordingResyncer{delays: make(chan time.Duration, 2)}
}

func (r *recordingResyncer) Resync(delay time.Duration) {
	r.delays <- delay
}

type approvingConfirmer struct{ approve bool }

func (c approvingConfirmer) ConfirmDelete(Video) bool { return c.approve }

type serviceFixture struct {
	store    *Store
	pusher   *recordingPusher
	renderer *countingRenderer
	resyncer *recordingResyncer
	service  *Service
}

func newServiceFixture(t *testing.T, mutate func(*ServiceConfig)) *serviceFixture {
	t.Helper()
	fixture := &serviceFixture{
		store:    NewStore(),
		pusher:   newRecordingPusher(),
		renderer: &countingRenderer{},
		resyncer: newRecordingResyncer(),
	}
	cfg := ServiceConfig{
		Store:      fixture.store,
		Pusher:     fixture.pusher,
		Renderer:   fixture.renderer,
		Resyncer:   fixture.resyncer,
		Thumbnail:  func(link string) string { return "thumb:" + link },
		Clock:      func() time.Time { return time.UnixMilli(1700000000000) },
		IDProvider: &sequenceIDProvider{},
	}
	if mutate != nil {
		mutate(&cfg)
		if pusher, ok := cfg.Pusher.(*recordingPusher); ok {
			fixture.pusher = pusher
		}
	}
	service, err := NewService(cfg)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	fixture.service = service
	return fixture
}
