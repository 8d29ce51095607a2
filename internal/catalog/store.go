package catalog

import (
	"sort"
	"sync"
)

// Store is the single in-memory source of truth for the catalog. All
// mutation primitives are synchronous and touch nothing beyond the store
// itself; persistence and rendering are the caller's responsibility.
type Store struct {
	mu       sync.RWMutex
	videos   []Video
	faqs     []FAQ
	images   []Image
	registry []string
}

// NewStore constructs an empty catalog store.
func NewStore() *Store {
	return &Store{}
}

// Videos returns the video sequence in insertion order.
func (s *Store) Videos() []Video {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneVideos(s.videos)
}

// FindVideo looks a video up by id.
func (s *Store) FindVideo(id string) (Video, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, video := range s.videos {
		if video.ID == id {
			return video, true
		}
	}
	return Video{}, false
}

// UpsertVideo replaces the entry matching the video's id in place, keeping
// its position; when the id is unknown the video is appended.
func (s *Store) UpsertVideo(video Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for index, existing := range s.videos {
		if existing.ID == video.ID {
			s.videos[index] = video
			return
		}
	}
	s.videos = append(s.videos, video)
}

// RemoveVideo deletes the entry with the given id and reports whether an
// entry was present. An unknown id leaves the sequence unchanged.
func (s *Store) RemoveVideo(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for index, existing := range s.videos {
		if existing.ID == id {
			s.videos = append(s.videos[:index], s.videos[index+1:]...)
			return true
		}
	}
	return false
}

// ReplaceAllVideos swaps the entire video collection, as happens after a
// remote fetch.
func (s *Store) ReplaceAllVideos(videos []Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos = cloneVideos(videos)
}

// AppendVideos adds videos at the end of the sequence, preserving their
// relative order. Used by CSV import.
func (s *Store) AppendVideos(videos []Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos = append(s.videos, videos...)
}

// FAQs returns the FAQ sequence in display order, most recent first.
func (s *Store) FAQs() []FAQ {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reversed := make([]FAQ, 0, len(s.faqs))
	for index := len(s.faqs) - 1; index >= 0; index-- {
		reversed = append(reversed, s.faqs[index])
	}
	return reversed
}

// AddFAQ appends a FAQ to the collection.
func (s *Store) AddFAQ(faq FAQ) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faqs = append(s.faqs, faq)
}

// UpdateFAQ replaces the FAQ with the same id in place, preserving its
// position in the insertion order.
func (s *Store) UpdateFAQ(faq FAQ) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for index, existing := range s.faqs {
		if existing.ID == faq.ID {
			s.faqs[index] = faq
			return true
		}
	}
	return false
}

// RemoveFAQ deletes the FAQ with the given id, reporting whether it existed.
func (s *Store) RemoveFAQ(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for index, existing := range s.faqs {
		if existing.ID == id {
			s.faqs = append(s.faqs[:index], s.faqs[index+1:]...)
			return true
		}
	}
	return false
}

// ReplaceAllFAQs swaps the FAQ collection, as happens when restoring a
// persisted snapshot.
func (s *Store) ReplaceAllFAQs(faqs []FAQ) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faqs = append([]FAQ(nil), faqs...)
}

// Images returns the uploaded images, most recent first.
func (s *Store) Images() []Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reversed := make([]Image, 0, len(s.images))
	for index := len(s.images) - 1; index >= 0; index-- {
		reversed = append(reversed, s.images[index])
	}
	return reversed
}

// AppendImages adds a completed upload batch to the collection.
func (s *Store) AppendImages(images []Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, images...)
}

// ReplaceAllImages swaps the image collection, as happens when restoring a
// persisted snapshot.
func (s *Store) ReplaceAllImages(images []Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append([]Image(nil), images...)
}

// SetCategoryRegistry installs the externally supplied category registry
// fetched from the remote backend.
func (s *Store) SetCategoryRegistry(categories []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = append([]string(nil), categories...)
}

// SeedCategoryRegistry installs the categories only when the registry is
// still empty, reporting whether it did. An existing registry, including
// locally added categories, is left untouched.
func (s *Store) SeedCategoryRegistry(categories []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.registry) > 0 {
		return false
	}
	s.registry = append([]string(nil), categories...)
	return true
}

// AddCategory inserts a single category into the registry if absent and
// reports whether it was added.
func (s *Store) AddCategory(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.registry {
		if existing == name {
			return false
		}
	}
	s.registry = append(s.registry, name)
	return true
}

// Categories derives the merged category list for the given audience.
func (s *Store) Categories(audience Audience) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return DeriveCategories(s.videos, s.registry, audience)
}

// DeriveCategories is the pure derivation behind Store.Categories: the
// union of registry categories and categories implied by videos,
// deduplicated case-sensitively and sorted ascending. The student view
// excludes the onboarding sentinel.
func DeriveCategories(videos []Video, registry []string, audience Audience) []string {
	seen := make(map[string]struct{}, len(registry)+len(videos))
	merged := make([]string, 0, len(registry)+len(videos))
	appendCategory := func(name string) {
		if name == "" {
			return
		}
		if audience != AudienceAdmin && name == SentinelCategory {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		merged = append(merged, name)
	}
	for _, name := range registry {
		appendCategory(name)
	}
	for _, video := range videos {
		appendCategory(video.Category)
	}
	sort.Strings(merged)
	return merged
}

func cloneVideos(videos []Video) []Video {
	if len(videos) == 0 {
		return nil
	}
	duplicate := make([]Video, len(videos))
	copy(duplicate, videos)
	return duplicate
}
