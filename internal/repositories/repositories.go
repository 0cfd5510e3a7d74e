// package repositories provides persistence layer implementations for the world store.
package repositories

import (
	"database/sql"
	"fmt"
)

// requireAffected returns an error wrapping notFound when result changed no rows.
func requireAffected(result sql.Result, notFound error, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", notFound, what)
	}
	return nil
}
