package clipboard

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/shared"
)

const bufferedSchema = `
	CREATE TABLE entries (
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		z INTEGER NOT NULL,
		id INTEGER NOT NULL,
		meta INTEGER NOT NULL,
		PRIMARY KEY (x, y, z)
	)
`

// Buffered spills entries to a temporary SQLite file owned by the clipboard.
type Buffered struct {
	origin models.BlockPos
	path   string
	db     *sql.DB
	bounds bounds
	logger *log.Logger
}

var _ Clipboard = (*Buffered)(nil)

// NewBuffered creates the backing file in dir (the OS temp dir when empty).
//
// On failure nothing is left allocated and the error wraps [shared.ErrResourceAcquisition].
func NewBuffered(origin models.BlockPos, dir string, logger *log.Logger) (*Buffered, error) {
	if logger == nil {
		logger = log.Default()
	}

	f, err := os.CreateTemp(dir, "clipboard-*.db")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create temporary clipboard file: %v", shared.ErrResourceAcquisition, err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("%w: %v", shared.ErrResourceAcquisition, err)
	}

	db, err := shared.NewScratchDatabase(path)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("%w: %v", shared.ErrResourceAcquisition, err)
	}

	if _, err := db.Exec(bufferedSchema); err != nil {
		db.Close()
		os.Remove(path)
		return nil, fmt.Errorf("%w: failed to create clipboard schema: %v", shared.ErrResourceAcquisition, err)
	}

	logger.Debug("created temporary resource file for clipboard", "path", path)
	return &Buffered{origin: origin, path: path, db: db, logger: logger}, nil
}

// Path returns the backing file path.
func (c *Buffered) Path() string { return c.path }

func (c *Buffered) Copy(x, y, z int, s models.BlockState) error {
	if c.db == nil {
		return shared.ErrClipboardClosed
	}
	query := `
		INSERT INTO entries (x, y, z, id, meta) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(x, y, z) DO UPDATE SET id = excluded.id, meta = excluded.meta
	`
	if _, err := c.db.Exec(query, x, y, z, s.ID, s.Meta); err != nil {
		return fmt.Errorf("failed to copy entry: %w", err)
	}
	c.bounds.include(models.BlockPos{X: x, Y: y, Z: z})
	return nil
}

func (c *Buffered) Get(x, y, z int) (models.BlockState, bool, error) {
	if c.db == nil {
		return models.Air, false, shared.ErrClipboardClosed
	}
	var s models.BlockState
	err := c.db.QueryRow("SELECT id, meta FROM entries WHERE x = ? AND y = ? AND z = ?", x, y, z).Scan(&s.ID, &s.Meta)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Air, false, nil
	}
	if err != nil {
		return models.Air, false, fmt.Errorf("failed to scan entry: %w", err)
	}
	return s, true, nil
}

// All iterates in storage order. Entries are read in batches so no connection is held between
// calls to Next; other clipboard calls and further cursors may run while it is open.
func (c *Buffered) All() (Cursor, error) {
	if c.db == nil {
		return nil, shared.ErrClipboardClosed
	}
	return &batchCursor{c: c, size: cursorBatchSize}, nil
}

func (c *Buffered) AsSelection(origin models.BlockPos) *models.Selection {
	return c.bounds.asSelection(origin)
}

func (c *Buffered) Volume() (int, error) {
	if c.db == nil {
		return 0, shared.ErrClipboardClosed
	}
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

func (c *Buffered) Origin() models.BlockPos { return c.origin }

// Close releases the database and removes the backing file. It is safe to call more than once.
func (c *Buffered) Close() error {
	if c.db == nil {
		return nil
	}
	dbErr := c.db.Close()
	c.db = nil

	rmErr := os.Remove(c.path)
	if errors.Is(rmErr, os.ErrNotExist) {
		rmErr = nil
	}
	c.logger.Debug("removed temporary resource file for clipboard", "path", c.path)
	return errors.Join(dbErr, rmErr)
}

const cursorBatchSize = 512

type bufferedEntry struct {
	rowid int64
	pos   models.BlockPos
	block models.BlockState
}

// batchCursor pages through entries by rowid.
type batchCursor struct {
	c      *Buffered
	size   int
	batch  []bufferedEntry
	i      int
	after  int64
	done   bool
	closed bool
	err    error
}

func (b *batchCursor) Next() bool {
	if b.closed || b.err != nil {
		return false
	}
	if b.i+1 < len(b.batch) {
		b.i++
		return true
	}
	if b.done {
		return false
	}
	if err := b.fetch(); err != nil {
		b.err = err
		return false
	}
	b.i = 0
	return len(b.batch) > 0
}

func (b *batchCursor) fetch() error {
	if b.c.db == nil {
		return shared.ErrClipboardClosed
	}
	rows, err := b.c.db.Query(
		"SELECT rowid, x, y, z, id, meta FROM entries WHERE rowid > ? ORDER BY rowid ASC LIMIT ?",
		b.after, b.size,
	)
	if err != nil {
		return fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	b.batch = b.batch[:0]
	for rows.Next() {
		var e bufferedEntry
		if err := rows.Scan(&e.rowid, &e.pos.X, &e.pos.Y, &e.pos.Z, &e.block.ID, &e.block.Meta); err != nil {
			return fmt.Errorf("failed to scan entry: %w", err)
		}
		b.batch = append(b.batch, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read entries: %w", err)
	}

	if len(b.batch) < b.size {
		b.done = true
	}
	if len(b.batch) > 0 {
		b.after = b.batch[len(b.batch)-1].rowid
	}
	return nil
}

func (b *batchCursor) Pos() models.BlockPos { return b.batch[b.i].pos }

func (b *batchCursor) Block() models.BlockState { return b.batch[b.i].block }

func (b *batchCursor) Err() error { return b.err }

func (b *batchCursor) Close() error {
	b.closed = true
	b.batch = nil
	return nil
}
