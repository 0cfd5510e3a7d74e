package clipboard

import (
	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/shared"
)

// InMemory holds entries in a map. It is unbounded in size.
type InMemory struct {
	origin  models.BlockPos
	entries map[models.BlockPos]models.BlockState
	order   []models.BlockPos
	bounds  bounds
	closed  bool
}

var _ Clipboard = (*InMemory)(nil)

func NewInMemory(origin models.BlockPos) *InMemory {
	return &InMemory{origin: origin, entries: make(map[models.BlockPos]models.BlockState)}
}

func (c *InMemory) Copy(x, y, z int, s models.BlockState) error {
	if c.closed {
		return shared.ErrClipboardClosed
	}
	p := models.BlockPos{X: x, Y: y, Z: z}
	if _, ok := c.entries[p]; !ok {
		c.order = append(c.order, p)
	}
	c.entries[p] = s
	c.bounds.include(p)
	return nil
}

func (c *InMemory) Get(x, y, z int) (models.BlockState, bool, error) {
	if c.closed {
		return models.Air, false, shared.ErrClipboardClosed
	}
	s, ok := c.entries[models.BlockPos{X: x, Y: y, Z: z}]
	return s, ok, nil
}

// All iterates in first-insertion order.
func (c *InMemory) All() (Cursor, error) {
	if c.closed {
		return nil, shared.ErrClipboardClosed
	}
	return &memoryCursor{c: c, i: -1}, nil
}

func (c *InMemory) AsSelection(origin models.BlockPos) *models.Selection {
	return c.bounds.asSelection(origin)
}

func (c *InMemory) Volume() (int, error) {
	if c.closed {
		return 0, shared.ErrClipboardClosed
	}
	return len(c.entries), nil
}

func (c *InMemory) Origin() models.BlockPos { return c.origin }

func (c *InMemory) Close() error {
	c.closed = true
	c.entries = nil
	c.order = nil
	return nil
}

type memoryCursor struct {
	c *InMemory
	i int
}

func (m *memoryCursor) Next() bool {
	m.i++
	return m.i < len(m.c.order)
}

func (m *memoryCursor) Pos() models.BlockPos { return m.c.order[m.i] }

func (m *memoryCursor) Block() models.BlockState { return m.c.entries[m.c.order[m.i]] }

func (m *memoryCursor) Err() error { return nil }

func (m *memoryCursor) Close() error { return nil }
