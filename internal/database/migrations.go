package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes. Postgres only; the
// pg_indexes existence check has no mysql equivalent here.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Membership lookups during resolution and switch validation
		{"memberships", "idx_memberships_user_id", "user_id"},
		{"memberships", "idx_memberships_institution_id", "institution_id"},
		{"memberships", "idx_memberships_status", "status"},
		{"memberships", "idx_memberships_created_at", "created_at"},

		// Preference repair writes look users up by id; slug is the
		// human-facing institution handle
		{"users", "idx_users_preferred_institution_id", "preferred_institution_id"},
		{"institutions", "idx_institutions_is_active", "is_active"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		fmt.Printf("Created index %s on %s(%s)\n", idx.name, idx.table, idx.columns)
	}

	return nil
}
