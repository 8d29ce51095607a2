package catalog

import (
	"reflect"
	"testing"
)

func TestUpsertVideoAppendsThenReplacesInPlace(t *testing.T) {
	store := NewStore()
	first := Video{ID: "v1", Title: "Intro", Link: "https://youtu.be/abc123", Category: "General"}
	second := Video{ID: "v2", Title: "Next", Link: "https://youtu.be/def456", Category: "Tutorial"}
	store.UpsertVideo(first)
	store.UpsertVideo(second)

	edited := first
	edited.Title = "Intro (edited)"
	store.UpsertVideo(edited)

	videos := store.Videos()
	if len(videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(videos))
	}
	if videos[0].ID != "v1" || videos[0].Title != "Intro (edited)" {
		t.Fatalf("expected edit to replace v1 in place, got %+v", videos[0])
	}
	if videos[1].ID != "v2" {
		t.Fatalf("expected v2 to keep its position, got %+v", videos[1])
	}

	found, ok := store.FindVideo("v1")
	if !ok {
		t.Fatalf("expected v1 to be present")
	}
	if !reflect.DeepEqual(found, edited) {
		t.Fatalf("lookup returned %+v, want %+v", found, edited)
	}
}

func TestRemoveVideoUnknownIDIsNoOp(t *testing.T) {
	store := NewStore()
	store.UpsertVideo(Video{ID: "v1", Title: "Intro", Link: "https://example.com/a"})

	if removed := store.RemoveVideo("missing"); removed {
		t.Fatalf("expected removal of unknown id to report false")
	}
	if videos := store.Videos(); len(videos) != 1 || videos[0].ID != "v1" {
		t.Fatalf("expected video sequence unchanged, got %+v", videos)
	}
}

func TestReplaceAllVideosIsIdempotentForDerivedCategories(t *testing.T) {
	store := NewStore()
	payload := []Video{
		{ID: "v1", Title: "A", Link: "l", Category: "Tutorial"},
		{ID: "v2", Title: "B", Link: "l", Category: "General"},
		{ID: "v3", Title: "C", Link: "l", Category: "Tutorial"},
	}

	store.ReplaceAllVideos(payload)
	first := store.Categories(AudienceStudent)
	store.ReplaceAllVideos(payload)
	second := store.Categories(AudienceStudent)

	expected := []string{"General", "Tutorial"}
	if !reflect.DeepEqual(first, expected) {
		t.Fatalf("first derivation = %v, want %v", first, expected)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("derivation not idempotent: %v then %v", first, second)
	}
}

func TestDeriveCategoriesMergesRegistryAndSortsAscending(t *testing.T) {
	videos := []Video{
		{ID: "v1", Title: "A", Link: "l", Category: "Tutorial"},
		{ID: "v2", Title: "B", Link: "l", Category: "tutorial"},
	}
	registry := []string{"Induccion", "Tutorial", "Curados"}

	derived := DeriveCategories(videos, registry, AudienceStudent)
	expected := []string{"Curados", "Induccion", "Tutorial", "tutorial"}
	if !reflect.DeepEqual(derived, expected) {
		t.Fatalf("derived = %v, want %v", derived, expected)
	}
}

func TestCategoriesExcludeSentinelForStudentsOnly(t *testing.T) {
	store := NewStore()
	store.ReplaceAllVideos([]Video{
		{ID: "v1", Title: "Welcome", Link: "l", Category: SentinelCategory},
		{ID: "v2", Title: "Basics", Link: "l", Category: "General"},
	})

	student := store.Categories(AudienceStudent)
	if !reflect.DeepEqual(student, []string{"General"}) {
		t.Fatalf("student categories = %v, want [General]", student)
	}

	admin := store.Categories(AudienceAdmin)
	if !reflect.DeepEqual(admin, []string{SentinelCategory, "General"}) {
		t.Fatalf("admin categories = %v, want sentinel first then General", admin)
	}

	// The sentinel video itself stays in the full list for everyone.
	if videos := store.Videos(); len(videos) != 2 {
		t.Fatalf("expected sentinel video to remain in full list, got %+v", videos)
	}
}

func TestFAQsDisplayMostRecentFirstAndUpdateInPlace(t *testing.T) {
	store := NewStore()
	store.AddFAQ(FAQ{ID: "f1", Q: "How?", A: "Like this."})
	store.AddFAQ(FAQ{ID: "f2", Q: "Why?", A: "Because."})

	faqs := store.FAQs()
	if len(faqs) != 2 || faqs[0].ID != "f2" || faqs[1].ID != "f1" {
		t.Fatalf("expected reverse-insertion order, got %+v", faqs)
	}

	if updated := store.UpdateFAQ(FAQ{ID: "f1", Q: "How?", A: "Differently."}); !updated {
		t.Fatalf("expected update of existing faq to succeed")
	}
	faqs = store.FAQs()
	if faqs[1].ID != "f1" || faqs[1].A != "Differently." {
		t.Fatalf("expected f1 edited in place keeping position, got %+v", faqs)
	}

	if updated := store.UpdateFAQ(FAQ{ID: "missing", Q: "?", A: ""}); updated {
		t.Fatalf("expected update of unknown faq to report false")
	}
}

func TestImagesDisplayMostRecentFirst(t *testing.T) {
	store := NewStore()
	store.AppendImages([]Image{{ID: "i1", Name: "a.png"}, {ID: "i2", Name: "b.png"}})

	images := store.Images()
	if len(images) != 2 || images[0].ID != "i2" {
		t.Fatalf("expected most recent image first, got %+v", images)
	}
}

func TestAddCategoryDeduplicatesRegistry(t *testing.T) {
	store := NewStore()
	if added := store.AddCategory("Curados"); !added {
		t.Fatalf("expected first insert to report true")
	}
	if added := store.AddCategory("Curados"); added {
		t.Fatalf("expected duplicate insert to report false")
	}
	if categories := store.Categories(AudienceStudent); len(categories) != 1 {
		t.Fatalf("expected a single category, got %v", categories)
	}
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	video := Video{ID: " v1 ", Title: " Intro ", Link: " l "}
	normalized := video.Normalize(42)
	if normalized.Category != DefaultCategory {
		t.Fatalf("expected default category, got %q", normalized.Category)
	}
	if normalized.Created != 42 {
		t.Fatalf("expected fallback created, got %d", normalized.Created)
	}
	if normalized.ID != "v1" || normalized.Title != "Intro" || normalized.Link != "l" {
		t.Fatalf("expected trimmed fields, got %+v", normalized)
	}
}

func TestSeedCategoryRegistryOnlyAppliesWhenEmpty(t *testing.T) {
	store := NewStore()
	if !store.SeedCategoryRegistry([]string{"General", "Tutorial"}) {
		t.Fatalf("expected empty registry to be seeded")
	}
	if store.SeedCategoryRegistry([]string{"Otra"}) {
		t.Fatalf("expected second seed attempt to report false")
	}
	if categories := store.Categories(AudienceStudent); len(categories) != 2 {
		t.Fatalf("expected the first seed to stand, got %v", categories)
	}

	populated := NewStore()
	populated.AddCategory("MiCategoria")
	if populated.SeedCategoryRegistry([]string{"General"}) {
		t.Fatalf("expected populated registry to refuse the seed")
	}
	if categories := populated.Categories(AudienceStudent); len(categories) != 1 || categories[0] != "MiCategoria" {
		t.Fatalf("expected the added category untouched, got %v", categories)
	}
}
