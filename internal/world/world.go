package world

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/worldbuilder/internal/models"
)

// ChunkListener observes changes to a chunk column.
type ChunkListener interface {
	OnChunkChanged(c *Chunk)
}

// World is a set of loaded chunks over a [Provider].
//
// It is not safe for concurrent use; all access happens on the host loop.
type World struct {
	name      string
	provider  Provider
	logger    *log.Logger
	loaded    map[models.ChunkPos]*Chunk
	cache     map[models.BlockPos]models.BlockState
	listeners map[models.ChunkPos][]ChunkListener
}

// New creates a world named name persisted through provider.
func New(name string, provider Provider, logger *log.Logger) *World {
	if logger == nil {
		logger = log.Default()
	}
	return &World{
		name:      name,
		provider:  provider,
		logger:    logger.With("world", name),
		loaded:    make(map[models.ChunkPos]*Chunk),
		cache:     make(map[models.BlockPos]models.BlockState),
		listeners: make(map[models.ChunkPos][]ChunkListener),
	}
}

func (w *World) Name() string { return w.name }

func (w *World) Provider() Provider { return w.provider }

// Chunk returns the loaded chunk at (x, z) without loading it.
func (w *World) Chunk(x, z int) (*Chunk, bool) {
	c, ok := w.loaded[models.ChunkPos{X: x, Z: z}]
	return c, ok
}

// LoadChunk returns the chunk at (x, z), reading it from the provider or creating an empty one.
func (w *World) LoadChunk(ctx context.Context, x, z int) (*Chunk, error) {
	pos := models.ChunkPos{X: x, Z: z}
	if c, ok := w.loaded[pos]; ok {
		return c, nil
	}

	c, ok, err := w.provider.LoadChunk(ctx, pos)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunk %d,%d: %w", x, z, err)
	}
	if !ok {
		c = NewChunk(pos)
	}
	w.loaded[pos] = c
	return c, nil
}

// IsChunkGenerated reports whether the chunk at (x, z) is loaded or persisted.
func (w *World) IsChunkGenerated(ctx context.Context, x, z int) (bool, error) {
	pos := models.ChunkPos{X: x, Z: z}
	if _, ok := w.loaded[pos]; ok {
		return true, nil
	}
	return w.provider.HasChunk(ctx, pos)
}

// Block returns the block at p through the read cache.
func (w *World) Block(ctx context.Context, p models.BlockPos) (models.BlockState, error) {
	if s, ok := w.cache[p]; ok {
		return s, nil
	}
	cp := p.Chunk()
	c, err := w.LoadChunk(ctx, cp.X, cp.Z)
	if err != nil {
		return models.Air, err
	}
	s := c.Block(p)
	w.cache[p] = s
	return s, nil
}

// SetBlock writes s at p. The caller is responsible for notifying chunk changes.
func (w *World) SetBlock(ctx context.Context, p models.BlockPos, s models.BlockState) error {
	cp := p.Chunk()
	c, err := w.LoadChunk(ctx, cp.X, cp.Z)
	if err != nil {
		return err
	}
	c.SetBlock(p, s)
	delete(w.cache, p)
	return nil
}

// ClearCache drops all cached block reads.
func (w *World) ClearCache() {
	clear(w.cache)
}

// UnloadChunk drops the chunk at (x, z), saving it first when save is set.
// It reports whether the chunk was loaded.
func (w *World) UnloadChunk(ctx context.Context, x, z int, save bool) (bool, error) {
	pos := models.ChunkPos{X: x, Z: z}
	c, ok := w.loaded[pos]
	if !ok {
		return false, nil
	}
	if save {
		if err := w.provider.SaveChunk(ctx, c); err != nil {
			return true, fmt.Errorf("failed to save chunk %d,%d: %w", x, z, err)
		}
	}
	delete(w.loaded, pos)
	w.ClearCache()
	return true, nil
}

// SaveChunks persists every loaded chunk with a dirty flag set.
func (w *World) SaveChunks(ctx context.Context) error {
	saved := 0
	for _, c := range w.loaded {
		if c.dirty == 0 {
			continue
		}
		if err := w.provider.SaveChunk(ctx, c); err != nil {
			return fmt.Errorf("failed to save chunk %d,%d: %w", c.Pos.X, c.Pos.Z, err)
		}
		c.ClearDirty()
		saved++
	}
	w.logger.Debug("saved chunks", "count", saved)
	return nil
}

// RegisterChunkListener subscribes l to changes of the chunk at (x, z).
func (w *World) RegisterChunkListener(x, z int, l ChunkListener) {
	pos := models.ChunkPos{X: x, Z: z}
	w.listeners[pos] = append(w.listeners[pos], l)
}

// ChunkListeners returns the listeners registered for the chunk at (x, z).
func (w *World) ChunkListeners(x, z int) []ChunkListener {
	return w.listeners[models.ChunkPos{X: x, Z: z}]
}

// LoadedChunks returns the number of loaded chunks.
func (w *World) LoadedChunks() int { return len(w.loaded) }
