// Package store persists versioned calibration artifacts in sqlite. The
// engine loads one calibration set at startup; the store is otherwise only
// touched by the offline calibrate command.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/astrometer/internal/calibration"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Run records one calibration generation run.
type Run struct {
	Version         string
	RegistryVersion string
	Samples         int
	Meters          int
	StartedAt       time.Time
	FinishedAt      time.Time
}

// SaveCalibration writes a generated table set and its run metadata in one
// transaction, replacing any previous tables under the same version.
func (s *Store) SaveCalibration(tables []calibration.Table, stats calibration.RunStats, registryVersion string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM calibration_tables WHERE version = ?`, stats.Version); err != nil {
		return fmt.Errorf("clear version %s: %w", stats.Version, err)
	}

	for _, t := range tables {
		points, err := json.Marshal(t.Points)
		if err != nil {
			return fmt.Errorf("marshal points: %w", err)
		}
		if _, err := tx.Exec(`
			INSERT INTO calibration_tables (version, meter, stat, points)
			VALUES (?, ?, ?, ?)
		`, t.Version, t.Meter, string(t.Stat), string(points)); err != nil {
			return fmt.Errorf("insert table %s/%s: %w", t.Meter, t.Stat, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO calibration_runs (version, samples, meters, started_at, finished_at, registry_version)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(version) DO UPDATE SET
			samples = excluded.samples,
			meters = excluded.meters,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			registry_version = excluded.registry_version
	`, stats.Version, stats.Samples, stats.Meters, stats.StartedAt, stats.FinishedAt, registryVersion); err != nil {
		return fmt.Errorf("record run %s: %w", stats.Version, err)
	}

	return tx.Commit()
}

// LoadCalibration reads every table for a version. A version with no tables
// returns an empty slice, not an error: absent calibration is a valid state
// the normalizer falls back from.
func (s *Store) LoadCalibration(version string) ([]calibration.Table, error) {
	rows, err := s.db.Query(`
		SELECT meter, stat, points FROM calibration_tables WHERE version = ? ORDER BY meter, stat
	`, version)
	if err != nil {
		return nil, fmt.Errorf("load calibration %s: %w", version, err)
	}
	defer rows.Close()

	var tables []calibration.Table
	for rows.Next() {
		var t calibration.Table
		var stat, points string
		if err := rows.Scan(&t.Meter, &stat, &points); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		t.Version = version
		t.Stat = calibration.Statistic(stat)
		if err := json.Unmarshal([]byte(points), &t.Points); err != nil {
			return nil, fmt.Errorf("unmarshal points for %s/%s: %w", t.Meter, t.Stat, err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// LatestVersion returns the most recently finished calibration version, or
// "" when no run has completed.
func (s *Store) LatestVersion() (string, error) {
	var version string
	err := s.db.QueryRow(`
		SELECT version FROM calibration_runs ORDER BY finished_at DESC LIMIT 1
	`).Scan(&version)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest version: %w", err)
	}
	return version, nil
}

// GetRun returns run metadata for a version, or nil when absent.
func (s *Store) GetRun(version string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT version, registry_version, samples, meters, started_at, finished_at
		FROM calibration_runs WHERE version = ?
	`, version)
	var r Run
	err := row.Scan(&r.Version, &r.RegistryVersion, &r.Samples, &r.Meters, &r.StartedAt, &r.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", version, err)
	}
	return &r, nil
}

// ListRuns returns all calibration runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT version, registry_version, samples, meters, started_at, finished_at
		FROM calibration_runs ORDER BY finished_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.Version, &r.RegistryVersion, &r.Samples, &r.Meters, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
