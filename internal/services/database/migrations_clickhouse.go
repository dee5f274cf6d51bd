package database

import (
	"fmt"

	"gorm.io/gorm"
)

// RunClickHouseMigrations creates tables directly; gorm's AutoMigrate does not
// handle ClickHouse table engines
func RunClickHouseMigrations(db *gorm.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS stream_records (
			id UInt64,
			session_id String,
			seq Int64,
			payload String,
			received_at DateTime64(3)
		) ENGINE = MergeTree()
		ORDER BY (session_id, seq)`,
	}

	for _, query := range queries {
		if err := db.Exec(query).Error; err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}
