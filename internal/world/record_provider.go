package world

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/shared"
)

// DefaultTagVersion is the format tag written for newly created worlds.
const DefaultTagVersion byte = ','

// ChunkRecords is the keyed record store behind a [RecordProvider].
//
// Implemented by [repositories.ChunkRecordRepository].
type ChunkRecords interface {
	Put(ctx context.Context, rec models.ChunkRecord) error
	Get(ctx context.Context, key []byte) (*models.ChunkRecord, error)
	Has(ctx context.Context, key []byte) (bool, error)
	Delete(ctx context.Context, key []byte) error
}

// FormatVersions resolves the storage format tag of a named world.
//
// Implemented by [repositories.WorldRepository].
type FormatVersions interface {
	FormatVersion(ctx context.Context, name string) (byte, error)
}

// RecordProvider persists chunks as keyed records and supports keyed deletion.
type RecordProvider struct {
	records ChunkRecords
	version byte
}

var _ KeyedRecordStore = (*RecordProvider)(nil)

// OpenRecordProvider resolves the world's format tag once and returns a provider bound to it.
func OpenRecordProvider(ctx context.Context, records ChunkRecords, versions FormatVersions, world string) (*RecordProvider, error) {
	version, err := versions.FormatVersion(ctx, world)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve format version of %s: %w", world, err)
	}
	return &RecordProvider{records: records, version: version}, nil
}

// NewRecordProvider returns a provider using a known format tag.
func NewRecordProvider(records ChunkRecords, version byte) *RecordProvider {
	return &RecordProvider{records: records, version: version}
}

func (p *RecordProvider) Name() string { return "records" }

func (p *RecordProvider) TagVersion() byte { return p.version }

func (p *RecordProvider) key(pos models.ChunkPos) []byte {
	return ChunkKey(pos.X, pos.Z, p.version)
}

func (p *RecordProvider) LoadChunk(ctx context.Context, pos models.ChunkPos) (*Chunk, bool, error) {
	rec, err := p.records.Get(ctx, p.key(pos))
	if errors.Is(err, shared.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	c := NewChunk(pos)
	if err := json.Unmarshal(rec.Value, c); err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (p *RecordProvider) SaveChunk(ctx context.Context, c *Chunk) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode chunk: %w", err)
	}
	return p.records.Put(ctx, models.ChunkRecord{Key: p.key(c.Pos), Value: data})
}

func (p *RecordProvider) HasChunk(ctx context.Context, pos models.ChunkPos) (bool, error) {
	return p.records.Has(ctx, p.key(pos))
}

func (p *RecordProvider) DeleteRecord(ctx context.Context, key []byte) error {
	return p.records.Delete(ctx, key)
}
