package tasks

import (
	"context"

	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/world"
)

const chunkSize = 1 << models.ChunkShift

// ChunkCursor walks the chunk columns covered by a selection's horizontal footprint, x-major.
//
// When generateNew is false, columns the world has never generated are skipped.
type ChunkCursor struct {
	world       *world.World
	generateNew bool
	min, max    models.ChunkPos
	cur         models.ChunkPos
	started     bool
}

// NewChunkCursor returns a cursor over the chunk columns of the box spanned by lo and hi.
func NewChunkCursor(w *world.World, lo, hi models.BlockPos, generateNew bool) *ChunkCursor {
	return &ChunkCursor{world: w, generateNew: generateNew, min: lo.Chunk(), max: hi.Chunk()}
}

// Next advances to the next column and returns it. ok is false once every column was visited.
func (c *ChunkCursor) Next(ctx context.Context) (pos models.ChunkPos, ok bool, err error) {
	for {
		if !c.advance() {
			return models.ChunkPos{}, false, nil
		}
		if c.generateNew {
			return c.cur, true, nil
		}
		generated, err := c.world.IsChunkGenerated(ctx, c.cur.X, c.cur.Z)
		if err != nil {
			return models.ChunkPos{}, false, err
		}
		if generated {
			return c.cur, true, nil
		}
	}
}

func (c *ChunkCursor) advance() bool {
	if !c.started {
		c.started = true
		c.cur = c.min
		return c.min.X <= c.max.X && c.min.Z <= c.max.Z
	}
	c.cur.Z++
	if c.cur.Z > c.max.Z {
		c.cur.Z = c.min.Z
		c.cur.X++
	}
	return c.cur.X <= c.max.X
}

// blockCursor walks every block of a selection one chunk column at a time, calling leave after the
// last block of each column.
type blockCursor struct {
	chunks   *ChunkCursor
	lo, hi   models.BlockPos
	chunk    models.ChunkPos
	from, to models.BlockPos
	pos      models.BlockPos
	inChunk  bool
	leave    func(models.ChunkPos)
}

func newBlockCursor(w *world.World, sel *models.Selection, generateNew bool, leave func(models.ChunkPos)) *blockCursor {
	lo, hi := sel.Bounds()
	return &blockCursor{chunks: NewChunkCursor(w, lo, hi, generateNew), lo: lo, hi: hi, leave: leave}
}

func (b *blockCursor) next(ctx context.Context) (models.BlockPos, bool, error) {
	if b.inChunk && b.step() {
		return b.pos, true, nil
	}
	if b.inChunk {
		b.inChunk = false
		if b.leave != nil {
			b.leave(b.chunk)
		}
	}

	cp, ok, err := b.chunks.Next(ctx)
	if err != nil || !ok {
		return models.BlockPos{}, false, err
	}
	b.enter(cp)
	return b.pos, true, nil
}

// enter clamps the selection to the column at cp.
func (b *blockCursor) enter(cp models.ChunkPos) {
	x0, z0 := cp.X<<models.ChunkShift, cp.Z<<models.ChunkShift
	b.chunk = cp
	b.from = models.BlockPos{X: max(b.lo.X, x0), Y: b.lo.Y, Z: max(b.lo.Z, z0)}
	b.to = models.BlockPos{X: min(b.hi.X, x0+chunkSize-1), Y: b.hi.Y, Z: min(b.hi.Z, z0+chunkSize-1)}
	b.pos = b.from
	b.inChunk = true
}

// step moves to the next block in the current column, y fastest.
func (b *blockCursor) step() bool {
	b.pos.Y++
	if b.pos.Y <= b.to.Y {
		return true
	}
	b.pos.Y = b.from.Y
	b.pos.Z++
	if b.pos.Z <= b.to.Z {
		return true
	}
	b.pos.Z = b.from.Z
	b.pos.X++
	return b.pos.X <= b.to.X
}
