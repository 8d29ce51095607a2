package database

import (
	"path/filepath"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/devnnex/vision-academy/internal/localstore"
)

func openMigrationTestDatabase(testContext *testing.T) *gorm.DB {
	testContext.Helper()
	tempDir := testContext.TempDir()
	databasePath := filepath.Join(tempDir, "migration.db")

	database, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(&localstore.StateRecord{}, &migrationRecord{}); err != nil {
		testContext.Fatalf("failed to migrate schema: %v", err)
	}
	return database
}

func TestApplyMigrationsUpgradesLegacyStateKeys(testContext *testing.T) {
	database := openMigrationTestDatabase(testContext)

	legacy := localstore.StateRecord{Key: "vision_videos_v1", PayloadJSON: `[{"id":"v1"}]`, UpdatedAtSeconds: 100}
	if err := database.Create(&legacy).Error; err != nil {
		testContext.Fatalf("failed to insert legacy record: %v", err)
	}

	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to apply migrations: %v", err)
	}

	var renamed localstore.StateRecord
	if err := database.Where("key = ?", localstore.KeyVideos).Take(&renamed).Error; err != nil {
		testContext.Fatalf("expected legacy record renamed: %v", err)
	}
	if renamed.PayloadJSON != legacy.PayloadJSON {
		testContext.Fatalf("expected payload preserved, got %q", renamed.PayloadJSON)
	}

	var legacyCount int64
	if err := database.Model(&localstore.StateRecord{}).Where("key = ?", "vision_videos_v1").Count(&legacyCount).Error; err != nil {
		testContext.Fatalf("failed to count legacy records: %v", err)
	}
	if legacyCount != 0 {
		testContext.Fatalf("expected legacy record gone, found %d", legacyCount)
	}

	var record migrationRecord
	if err := database.Where("name = ?", migrationUpgradeLegacyStateKeys).Take(&record).Error; err != nil {
		testContext.Fatalf("expected migration record to be created: %v", err)
	}
	if record.AppliedAtSeconds == 0 {
		testContext.Fatalf("expected migration timestamp to be set")
	}
}

func TestApplyMigrationsPrefersCurrentRecordOverLegacy(testContext *testing.T) {
	database := openMigrationTestDatabase(testContext)

	records := []localstore.StateRecord{
		{Key: "vision_faqs_v1", PayloadJSON: `[{"id":"old"}]`, UpdatedAtSeconds: 100},
		{Key: localstore.KeyFAQs, PayloadJSON: `[{"id":"new"}]`, UpdatedAtSeconds: 200},
	}
	for _, record := range records {
		if err := database.Create(&record).Error; err != nil {
			testContext.Fatalf("failed to insert record: %v", err)
		}
	}

	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to apply migrations: %v", err)
	}

	var survivor localstore.StateRecord
	if err := database.Where("key = ?", localstore.KeyFAQs).Take(&survivor).Error; err != nil {
		testContext.Fatalf("expected current record to survive: %v", err)
	}
	if survivor.PayloadJSON != `[{"id":"new"}]` {
		testContext.Fatalf("expected current payload to win, got %q", survivor.PayloadJSON)
	}
}

func TestApplyMigrationsIsIdempotent(testContext *testing.T) {
	database := openMigrationTestDatabase(testContext)

	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("first apply failed: %v", err)
	}
	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("second apply failed: %v", err)
	}

	var count int64
	if err := database.Model(&migrationRecord{}).Count(&count).Error; err != nil {
		testContext.Fatalf("failed to count migration records: %v", err)
	}
	if count != 1 {
		testContext.Fatalf("expected a single migration record, got %d", count)
	}
}
