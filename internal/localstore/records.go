// Package localstore persists session-local state the way the browser
// original kept localStorage: one JSON blob per collection under a fixed
// key, plus the session-user record and the onboarding flag.
package localstore

// Fixed record keys. The v2 suffix matches the current payload layout;
// legacy v1 keys are renamed by a database migration.
const (
	KeyVideos     = "vision_videos_v2"
	KeyFAQs       = "vision_faqs_v2"
	KeyImages     = "vision_images_v2"
	KeyUser       = "vision_user_v1"
	KeyOnboarding = "vision_onboarding_v1"
)

// StateRecord is one persisted key/payload pair.
type StateRecord struct {
	Key              string `gorm:"column:key;primaryKey;size:190;not null"`
	PayloadJSON      string `gorm:"column:payload_json;type:text;not null"`
	UpdatedAtSeconds int64  `gorm:"column:updated_at_s;not null"`
}

// TableName provides the explicit table binding for GORM.
func (StateRecord) TableName() string {
	return "state_records"
}
