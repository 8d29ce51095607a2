package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// SentinelCategory marks onboarding content. Videos in this category are
// served to every audience, but the category itself is hidden from the
// student-facing category list.
const SentinelCategory = "Bienvenido a Innova"

// DefaultCategory is applied whenever a video arrives without one.
const DefaultCategory = "General"

var (
	// ErrMissingTitle indicates a video payload without a title.
	ErrMissingTitle = errors.New("catalog: video title is required")
	// ErrMissingLink indicates a video payload without a link.
	ErrMissingLink = errors.New("catalog: video link is required")
	// ErrMissingCategory indicates a video payload without a category selection.
	ErrMissingCategory = errors.New("catalog: video category is required")
	// ErrMissingQuestion indicates a FAQ payload without a question.
	ErrMissingQuestion = errors.New("catalog: faq question is required")
	// ErrVideoNotFound indicates a lookup or mutation referenced an unknown video id.
	ErrVideoNotFound = errors.New("catalog: video not found")
	// ErrFAQNotFound indicates a mutation referenced an unknown faq id.
	ErrFAQNotFound = errors.New("catalog: faq not found")
)

// Video is a catalog entry pointing at an external player link. Created is
// epoch milliseconds. The JSON shape mirrors the remote backend contract.
type Video struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Category string `json:"category"`
	Thumb    string `json:"thumb"`
	Created  int64  `json:"created"`
}

// FAQ is a locally managed question/answer pair.
type FAQ struct {
	ID string `json:"id"`
	Q  string `json:"q"`
	A  string `json:"a"`
}

// Image is an uploaded picture held as a self-contained data URI.
type Image struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Data string `json:"data"`
}

// VideoInput carries the admin-supplied fields for creating or editing a video.
type VideoInput struct {
	Title    string
	Link     string
	Category string
}

// Validate enforces the required fields for a save operation.
func (in VideoInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrMissingTitle
	}
	if strings.TrimSpace(in.Link) == "" {
		return ErrMissingLink
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrMissingCategory
	}
	return nil
}

// Audience selects which derived category view is produced.
type Audience string

const (
	// AudienceStudent hides the onboarding sentinel category.
	AudienceStudent Audience = "student"
	// AudienceAdmin sees every category, sentinel included.
	AudienceAdmin Audience = "admin"
)

// Normalize trims a video's fields and applies ingest defaults. The caller
// supplies the fallback creation timestamp in epoch milliseconds.
func (v Video) Normalize(fallbackCreated int64) Video {
	v.ID = strings.TrimSpace(v.ID)
	v.Title = strings.TrimSpace(v.Title)
	v.Link = strings.TrimSpace(v.Link)
	v.Category = strings.TrimSpace(v.Category)
	if v.Category == "" {
		v.Category = DefaultCategory
	}
	if v.Created == 0 {
		v.Created = fallbackCreated
	}
	return v
}

func (v Video) String() string {
	return fmt.Sprintf("%s (%s)", v.Title, v.ID)
}
