package store

import (
	"fmt"
	"log"
	"time"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Calibration tables and runs",
		SQL: `
CREATE TABLE IF NOT EXISTS calibration_tables (
    version TEXT NOT NULL,
    meter TEXT NOT NULL,
    stat TEXT NOT NULL,
    points TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(version, meter, stat)
);

CREATE TABLE IF NOT EXISTS calibration_runs (
    version TEXT PRIMARY KEY,
    samples INTEGER NOT NULL,
    meters INTEGER NOT NULL,
    started_at DATETIME NOT NULL,
    finished_at DATETIME NOT NULL
);
`,
	},
	{
		Version:     2,
		Description: "Registry version on calibration runs",
		SQL: `
ALTER TABLE calibration_runs ADD COLUMN registry_version TEXT NOT NULL DEFAULT 'v2';
`,
	},
}

// Migrate applies pending migrations in order.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    description TEXT,
    applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var applied int
		err := s.db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, m.Version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if applied > 0 {
			continue
		}
		start := time.Now()
		if _, err := s.db.Exec(m.SQL); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := s.db.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`, m.Version, m.Description); err != nil {
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		log.Printf("applied migration %d: %s (%s)", m.Version, m.Description, time.Since(start))
	}
	return nil
}
