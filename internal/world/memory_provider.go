package world

import (
	"context"

	"github.com/desertthunder/worldbuilder/internal/models"
)

// MemoryProvider keeps saved chunks in a map. It does not support keyed deletion.
type MemoryProvider struct {
	chunks map[models.ChunkPos]*Chunk
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{chunks: make(map[models.ChunkPos]*Chunk)}
}

func (p *MemoryProvider) Name() string { return "memory" }

func (p *MemoryProvider) LoadChunk(_ context.Context, pos models.ChunkPos) (*Chunk, bool, error) {
	saved, ok := p.chunks[pos]
	if !ok {
		return nil, false, nil
	}
	c := NewChunk(pos)
	for bp, s := range saved.blocks {
		c.blocks[bp] = s
	}
	return c, true, nil
}

func (p *MemoryProvider) SaveChunk(_ context.Context, c *Chunk) error {
	saved := NewChunk(c.Pos)
	for bp, s := range c.blocks {
		saved.blocks[bp] = s
	}
	p.chunks[c.Pos] = saved
	return nil
}

func (p *MemoryProvider) HasChunk(_ context.Context, pos models.ChunkPos) (bool, error) {
	_, ok := p.chunks[pos]
	return ok, nil
}
