package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/devnnex/vision-academy/internal/session"
)

// RepositoryConfig describes the dependencies for local state persistence.
type RepositoryConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
}

// Repository reads and writes the fixed-key state records. It also serves
// as the session keeper.
type Repository struct {
	db    *gorm.DB
	clock func() time.Time
}

// NewRepository constructs the repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("localstore: database connection required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Repository{db: cfg.Database, clock: clock}, nil
}

// SaveJSON writes the value as the payload under the given key.
func (r *Repository) SaveJSON(key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("localstore: encode %s: %w", key, err)
	}
	record := StateRecord{
		Key:              key,
		PayloadJSON:      string(payload),
		UpdatedAtSeconds: r.clock().UTC().Unix(),
	}
	if err := r.db.Save(&record).Error; err != nil {
		return fmt.Errorf("localstore: save %s: %w", key, err)
	}
	return nil
}

// LoadJSON decodes the payload under the key into dest, reporting whether
// a record was present.
func (r *Repository) LoadJSON(key string, dest any) (bool, error) {
	var record StateRecord
	err := r.db.Where("key = ?", key).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("localstore: load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(record.PayloadJSON), dest); err != nil {
		return false, fmt.Errorf("localstore: decode %s: %w", key, err)
	}
	return true, nil
}

// Delete removes the record under the key. Missing records are fine.
func (r *Repository) Delete(key string) error {
	if err := r.db.Where("key = ?", key).Delete(&StateRecord{}).Error; err != nil {
		return fmt.Errorf("localstore: delete %s: %w", key, err)
	}
	return nil
}

// SaveUser persists the session-user record; nil clears it.
func (r *Repository) SaveUser(user *session.User) error {
	if user == nil {
		return r.Delete(KeyUser)
	}
	return r.SaveJSON(KeyUser, user)
}

// LoadUser returns the persisted session user, nil when absent.
func (r *Repository) LoadUser() (*session.User, error) {
	var user session.User
	found, err := r.LoadJSON(KeyUser, &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// MarkOnboardingDone sets the one-time onboarding-completion flag.
func (r *Repository) MarkOnboardingDone() error {
	return r.SaveJSON(KeyOnboarding, true)
}

// OnboardingDone reports the onboarding-completion flag.
func (r *Repository) OnboardingDone() (bool, error) {
	var done bool
	found, err := r.LoadJSON(KeyOnboarding, &done)
	if err != nil || !found {
		return false, err
	}
	return done, nil
}
