// Package gorm provides GORM-based database operations for focusforge.
package gorm

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// runMigrations runs all database migrations using gormigrate.
func runMigrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// Migration 001: Sessions and their raw event log
		{
			ID: "001_sessions_events",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&Session{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&Event{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("events", "sessions")
			},
		},

		// Migration 002: Analyzer payloads
		{
			ID: "002_analyses",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&Analysis{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("analyses")
			},
		},

		// Migration 003: Per-session event timeline lookups
		{
			ID: "003_events_session_ts",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_events_session_ts ON events(session_id, ts)").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_events_session_ts").Error
			},
		},
	})

	return m.Migrate()
}
