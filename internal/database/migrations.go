package database

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/devnnex/vision-academy/internal/localstore"
)

const migrationUpgradeLegacyStateKeys = "2026-07-20_upgrade_legacy_state_keys"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationUpgradeLegacyStateKeys, apply: upgradeLegacyStateKeys},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}

	return nil
}

// upgradeLegacyStateKeys renames v1 collection records to the current v2
// keys. When both generations exist, the v2 record wins and the legacy
// one is dropped.
func upgradeLegacyStateKeys(db *gorm.DB) error {
	renames := map[string]string{
		"vision_videos_v1": localstore.KeyVideos,
		"vision_faqs_v1":   localstore.KeyFAQs,
		"vision_images_v1": localstore.KeyImages,
	}
	for legacy, current := range renames {
		drop := db.Exec(
			"DELETE FROM state_records WHERE key = ? AND EXISTS (SELECT 1 FROM state_records WHERE key = ?)",
			legacy, current)
		if drop.Error != nil {
			return drop.Error
		}
		rename := db.Exec("UPDATE state_records SET key = ? WHERE key = ?", current, legacy)
		if rename.Error != nil {
			return rename.Error
		}
	}
	return nil
}
