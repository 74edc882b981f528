package database

import (
	"fmt"
	"log/slog"

	"github.com/mahora/task-tracker/internal/models"
	"gorm.io/gorm"
)

// AddIndexes creates the lookup indexes used by name resolution, login and
// the list join. Existing indexes are skipped.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   interface{}
		table   string
		name    string
		columns string
	}{
		// Directory resolution by display name
		{&models.User{}, "users", "idx_users_name", "name"},
		// Login by email
		{&models.User{}, "users", "idx_users_email", "email"},

		// List joins
		{&models.Task{}, "tasks", "idx_tasks_assignee_id", "assignee_id"},
		{&models.Task{}, "tasks", "idx_tasks_creator_id", "creator_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			slog.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
