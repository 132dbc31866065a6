package storage

import (
	"fmt"

	"autoposter-api/internal/user"

	"gorm.io/gorm"
)

// Models lists every table the store owns, in creation order
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&Post{},
		&BotSettings{},
		&Analytics{},
		&ActivityLog{},
	}
}

// RunMigrations performs auto-migration for all tables and creates secondary indexes
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createIndexes creates the indexes the list and dashboard queries rely on
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_tweets_user_created ON tweets(user_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_tweets_user_status_scheduled ON tweets(user_id, status, scheduled_for)",
		"CREATE INDEX IF NOT EXISTS idx_tweets_user_status_posted ON tweets(user_id, status, posted_at)",
		"CREATE INDEX IF NOT EXISTS idx_bot_settings_active ON bot_settings(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_activity_log_user_created ON activity_log(user_id, created_at)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// ValidateMigrations checks that all required tables and key indexes exist
func ValidateMigrations(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, model := range Models() {
		if !migrator.HasTable(model) {
			return fmt.Errorf("required table for %T does not exist", model)
		}
	}

	requiredIndexes := map[interface{}]string{
		&BotSettings{}: "idx_bot_settings_user_id",
		&Analytics{}:   "idx_analytics_user_date",
		&Post{}:        "idx_tweets_user_status_scheduled",
	}
	for model, index := range requiredIndexes {
		if !migrator.HasIndex(model, index) {
			return fmt.Errorf("required index %s does not exist", index)
		}
	}

	return nil
}
