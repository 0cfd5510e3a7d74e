package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/worldbuilder/internal/shared"
)

// WorldRepository stores named worlds and their storage format version.
type WorldRepository struct {
	db *sql.DB
}

// NewWorldRepository creates a new WorldRepository with the given database connection
func NewWorldRepository(db *sql.DB) *WorldRepository {
	return &WorldRepository{db: db}
}

// Create registers a world under name with the given format version.
func (r *WorldRepository) Create(ctx context.Context, name string, formatVersion byte) error {
	if name == "" {
		return fmt.Errorf("%w: empty world name", shared.ErrInvalidArgument)
	}
	if _, err := r.db.ExecContext(ctx, "INSERT INTO worlds (name, format_version) VALUES (?, ?)", name, int(formatVersion)); err != nil {
		return fmt.Errorf("failed to insert world: %w", err)
	}
	return nil
}

// FormatVersion returns the format version tag of the named world.
func (r *WorldRepository) FormatVersion(ctx context.Context, name string) (byte, error) {
	var version int
	err := r.db.QueryRowContext(ctx, "SELECT format_version FROM worlds WHERE name = ?", name).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: world %s", shared.ErrRecordNotFound, name)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to scan world: %w", err)
	}
	return byte(version), nil
}

// SetFormatVersion updates the format version tag of the named world.
func (r *WorldRepository) SetFormatVersion(ctx context.Context, name string, formatVersion byte) error {
	result, err := r.db.ExecContext(ctx, "UPDATE worlds SET format_version = ? WHERE name = ?", int(formatVersion), name)
	if err != nil {
		return fmt.Errorf("failed to update world: %w", err)
	}
	return requireAffected(result, shared.ErrRecordNotFound, "world "+name)
}
