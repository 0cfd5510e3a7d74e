package world

import (
	"context"
	"encoding/binary"

	"github.com/desertthunder/worldbuilder/internal/models"
)

// Provider persists chunks for a [World].
type Provider interface {
	Name() string
	// LoadChunk returns the persisted chunk at pos, or false if none exists.
	LoadChunk(ctx context.Context, pos models.ChunkPos) (*Chunk, bool, error)
	SaveChunk(ctx context.Context, c *Chunk) error
	HasChunk(ctx context.Context, pos models.ChunkPos) (bool, error)
}

// KeyedRecordStore is a Provider whose persisted records can be deleted by key.
type KeyedRecordStore interface {
	Provider
	// TagVersion returns the storage format tag appended to chunk keys.
	TagVersion() byte
	DeleteRecord(ctx context.Context, key []byte) error
}

// ChunkIndex returns the record key prefix of the chunk at (x, z): little-endian int32 x then z.
func ChunkIndex(x, z int) []byte {
	key := make([]byte, 8)
	binary.LittleEndian.PutUint32(key[0:4], uint32(int32(x)))
	binary.LittleEndian.PutUint32(key[4:8], uint32(int32(z)))
	return key
}

// ChunkKey returns the full record key of the chunk at (x, z) tagged with version.
func ChunkKey(x, z int, version byte) []byte {
	return append(ChunkIndex(x, z), version)
}
