package shared

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// NewDatabase opens a connection to a SQLite database at the specified path.
// The path can be ":memory:" for an in-memory database.
func NewDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// OpenStore opens the world record store described by cfg and applies its pool limits.
func OpenStore(cfg DatabaseConfig) (*sql.DB, error) {
	db, err := NewDatabase(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open world store %s: %w", cfg.Path, err)
	}
	ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
	return db, nil
}

// NewScratchDatabase opens a single-connection database for a short-lived file such as a
// temporary clipboard store. Journaling and fsync are off because the file is deleted on close.
func NewScratchDatabase(path string) (*sql.DB, error) {
	db, err := NewDatabase(path)
	if err != nil {
		return nil, err
	}
	ConfigureDatabase(db, 1, 1)

	for _, pragma := range []string{"PRAGMA journal_mode = OFF", "PRAGMA synchronous = OFF"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure scratch database: %w", err)
		}
	}
	return db, nil
}

// ConfigureDatabase sets connection pool settings for the database. Non-positive limits keep
// the database/sql defaults.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
}
