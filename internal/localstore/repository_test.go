package localstore

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/devnnex/vision-academy/internal/catalog"
	"github.com/devnnex/vision-academy/internal/render"
	"github.com/devnnex/vision-academy/internal/session"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:localstore_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&StateRecord{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	repo, err := NewRepository(RepositoryConfig{
		Database: db,
		Clock:    func() time.Time { return time.Unix(1700000000, 0) },
	})
	if err != nil {
		t.Fatalf("failed to build repository: %v", err)
	}
	return repo
}

func TestSaveJSONOverwritesExistingRecord(t *testing.T) {
	repo := newTestRepository(t)

	if err := repo.SaveJSON("demo", []string{"first"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.SaveJSON("demo", []string{"second"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var values []string
	found, err := repo.LoadJSON("demo", &values)
	if err != nil || !found {
		t.Fatalf("expected record, got found=%v err=%v", found, err)
	}
	if len(values) != 1 || values[0] != "second" {
		t.Fatalf("expected last write to win, got %v", values)
	}
}

func TestLoadJSONReportsMissingRecord(t *testing.T) {
	repo := newTestRepository(t)
	var dest []string
	found, err := repo.LoadJSON("absent", &dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatalf("expected missing record to report not found")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	if err := repo.SaveJSON("demo", "value"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Delete("demo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Delete("demo"); err != nil {
		t.Fatalf("expected second delete to succeed, got %v", err)
	}
	var dest string
	if found, _ := repo.LoadJSON("demo", &dest); found {
		t.Fatalf("expected record gone")
	}
}

func TestSessionKeeperRoundTrip(t *testing.T) {
	repo := newTestRepository(t)

	if user, err := repo.LoadUser(); err != nil || user != nil {
		t.Fatalf("expected no persisted user initially, got %+v err=%v", user, err)
	}

	admin := session.User{Role: session.RoleAdmin, Name: "edgar2026"}
	if err := repo.SaveUser(&admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := repo.LoadUser()
	if err != nil || loaded == nil || *loaded != admin {
		t.Fatalf("expected persisted user back, got %+v err=%v", loaded, err)
	}

	if err := repo.SaveUser(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user, err := repo.LoadUser(); err != nil || user != nil {
		t.Fatalf("expected cleared user, got %+v err=%v", user, err)
	}
}

func TestOnboardingFlagPersists(t *testing.T) {
	repo := newTestRepository(t)
	if done, err := repo.OnboardingDone(); err != nil || done {
		t.Fatalf("expected onboarding pending, got done=%v err=%v", done, err)
	}
	if err := repo.MarkOnboardingDone(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done, err := repo.OnboardingDone(); err != nil || !done {
		t.Fatalf("expected onboarding done, got done=%v err=%v", done, err)
	}
}

func TestSinkRoundTripPreservesDisplayOrder(t *testing.T) {
	repo := newTestRepository(t)
	sink := NewSink(repo, nil)

	source := catalog.NewStore()
	source.UpsertVideo(catalog.Video{ID: "v1", Title: "Intro", Link: "l", Category: "General"})
	source.AddFAQ(catalog.FAQ{ID: "f1", Q: "First?", A: "A1"})
	source.AddFAQ(catalog.FAQ{ID: "f2", Q: "Second?", A: "A2"})
	source.AppendImages([]catalog.Image{{ID: "i1", Name: "a"}, {ID: "i2", Name: "b"}})

	sink.RenderAll(render.Snapshot{
		Videos: source.Videos(),
		FAQs:   source.FAQs(),
		Images: source.Images(),
	})

	restored := catalog.NewStore()
	sink.Restore(restored)

	videos := restored.Videos()
	if len(videos) != 1 || videos[0].ID != "v1" {
		t.Fatalf("expected videos restored, got %+v", videos)
	}

	faqs := restored.FAQs()
	if len(faqs) != 2 || faqs[0].ID != "f2" || faqs[1].ID != "f1" {
		t.Fatalf("expected most recent faq first after restore, got %+v", faqs)
	}

	images := restored.Images()
	if len(images) != 2 || images[0].ID != "i2" {
		t.Fatalf("expected most recent image first after restore, got %+v", images)
	}
}

func TestRestoreWithEmptyDatabaseLeavesStoreEmpty(t *testing.T) {
	repo := newTestRepository(t)
	sink := NewSink(repo, nil)
	store := catalog.NewStore()
	sink.Restore(store)
	if len(store.Videos()) != 0 || len(store.FAQs()) != 0 || len(store.Images()) != 0 {
		t.Fatalf("expected empty store without persisted records")
	}
}
