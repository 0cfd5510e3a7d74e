package clipboard

import (
	"fmt"

	"github.com/desertthunder/worldbuilder/internal/models"
)

// Clipboard stores captured block states keyed by coordinates relative to the capture origin.
type Clipboard interface {
	// Copy stores s at (x, y, z), replacing any previous entry.
	Copy(x, y, z int, s models.BlockState) error
	// Get returns the entry at (x, y, z) and whether one was copied.
	Get(x, y, z int) (models.BlockState, bool, error)
	// All returns a fresh cursor over every captured entry. Order is unspecified.
	All() (Cursor, error)
	// AsSelection returns a selection anchored at origin spanning the captured bounds.
	AsSelection(origin models.BlockPos) *models.Selection
	// Volume returns the number of distinct captured coordinates.
	Volume() (int, error)
	// Origin returns the world position coordinates are relative to.
	Origin() models.BlockPos
	Close() error
}

// Cursor iterates captured entries in the style of [database/sql.Rows].
type Cursor interface {
	Next() bool
	Pos() models.BlockPos
	Block() models.BlockState
	Err() error
	Close() error
}

// bounds tracks the running minimum and maximum of copied coordinates.
type bounds struct {
	min, max models.BlockPos
	set      bool
}

func (b *bounds) include(p models.BlockPos) {
	if !b.set {
		b.min, b.max, b.set = p, p, true
		return
	}
	b.min = models.BlockPos{X: min(b.min.X, p.X), Y: min(b.min.Y, p.Y), Z: min(b.min.Z, p.Z)}
	b.max = models.BlockPos{X: max(b.max.X, p.X), Y: max(b.max.Y, p.Y), Z: max(b.max.Z, p.Z)}
}

func (b *bounds) asSelection(origin models.BlockPos) *models.Selection {
	return models.NewSelection(origin, origin.Add(b.max.Sub(b.min)))
}

// With builds a clipboard, passes it to fn and closes it however fn returns.
func With(build func() (Clipboard, error), fn func(Clipboard) error) (err error) {
	cb, err := build()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cb.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close clipboard: %w", cerr)
		}
	}()
	return fn(cb)
}
