package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// AlertState is the persisted set of listing URLs already notified.
// SQLite keeps it durable across daily runs; the external scheduler
// guarantees only one process touches it at a time.
type AlertState struct {
	db *sql.DB
}

// OpenAlertState opens (or creates) the state database and runs the
// migration.
func OpenAlertState(path string) (*AlertState, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &AlertState{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *AlertState) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS notified (
		url         TEXT PRIMARY KEY,
		notified_at INTEGER NOT NULL
	)`)
	return err
}

// Contains reports whether url has already been alerted.
func (s *AlertState) Contains(url string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM notified WHERE url = ?`, url).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query notified: %w", err)
	}
	return true, nil
}

// MarkNotified records url as alerted. Idempotent: re-marking an existing
// URL is a no-op.
func (s *AlertState) MarkNotified(url string) error {
	_, err := s.db.Exec(
		`INSERT INTO notified (url, notified_at) VALUES (?, ?)
		 ON CONFLICT(url) DO NOTHING`,
		url, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

// Count returns how many URLs the state holds.
func (s *AlertState) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM notified`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count notified: %w", err)
	}
	return n, nil
}

func (s *AlertState) Close() error {
	return s.db.Close()
}
