package world

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/worldbuilder/internal/models"
)

// DirtyFlag marks which parts of a chunk changed since it was last saved.
type DirtyFlag uint8

const (
	DirtyTerrain DirtyFlag = 1 << iota
	DirtyBiomes
	DirtyEntities
)

// Chunk is a loaded 16x16 block column.
type Chunk struct {
	Pos    models.ChunkPos
	blocks map[models.BlockPos]models.BlockState
	dirty  DirtyFlag
}

// NewChunk returns an empty chunk at pos.
func NewChunk(pos models.ChunkPos) *Chunk {
	return &Chunk{Pos: pos, blocks: make(map[models.BlockPos]models.BlockState)}
}

// Block returns the state at p, or air if p was never written.
func (c *Chunk) Block(p models.BlockPos) models.BlockState {
	return c.blocks[p]
}

// SetBlock writes s at p. Writing air clears the position.
func (c *Chunk) SetBlock(p models.BlockPos, s models.BlockState) {
	if s == models.Air {
		delete(c.blocks, p)
		return
	}
	c.blocks[p] = s
}

// Len returns the number of non-air blocks.
func (c *Chunk) Len() int { return len(c.blocks) }

func (c *Chunk) SetDirtyFlag(f DirtyFlag, v bool) {
	if v {
		c.dirty |= f
	} else {
		c.dirty &^= f
	}
}

func (c *Chunk) IsDirty(f DirtyFlag) bool { return c.dirty&f != 0 }

func (c *Chunk) ClearDirty() { c.dirty = 0 }

type chunkEntry struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Z    int    `json:"z"`
	ID   uint32 `json:"id"`
	Meta uint8  `json:"meta,omitempty"`
}

type chunkData struct {
	X      int          `json:"x"`
	Z      int          `json:"z"`
	Blocks []chunkEntry `json:"blocks"`
}

// MarshalJSON encodes the chunk's blocks for persistence.
func (c *Chunk) MarshalJSON() ([]byte, error) {
	data := chunkData{X: c.Pos.X, Z: c.Pos.Z, Blocks: make([]chunkEntry, 0, len(c.blocks))}
	for p, s := range c.blocks {
		data.Blocks = append(data.Blocks, chunkEntry{X: p.X, Y: p.Y, Z: p.Z, ID: s.ID, Meta: s.Meta})
	}
	return json.Marshal(data)
}

// UnmarshalJSON decodes a chunk previously encoded with MarshalJSON.
func (c *Chunk) UnmarshalJSON(b []byte) error {
	var data chunkData
	if err := json.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("failed to decode chunk: %w", err)
	}
	c.Pos = models.ChunkPos{X: data.X, Z: data.Z}
	c.blocks = make(map[models.BlockPos]models.BlockState, len(data.Blocks))
	for _, e := range data.Blocks {
		c.blocks[models.BlockPos{X: e.X, Y: e.Y, Z: e.Z}] = models.BlockState{ID: e.ID, Meta: e.Meta}
	}
	return nil
}
