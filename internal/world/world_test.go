package world

import (
	"bytes"
	"context"
	"testing"

	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/repositories"
	"github.com/desertthunder/worldbuilder/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingListener struct {
	changed []models.ChunkPos
}

func (l *countingListener) OnChunkChanged(c *Chunk) {
	l.changed = append(l.changed, c.Pos)
}

func setupRecordProvider(t *testing.T) (*RecordProvider, *repositories.ChunkRecordRepository) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	require.NoError(t, err)
	shared.ConfigureDatabase(db, 1, 1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, shared.RunMigrations(db))

	ctx := context.Background()
	worlds := repositories.NewWorldRepository(db)
	require.NoError(t, worlds.Create(ctx, "overworld", DefaultTagVersion))

	records := repositories.NewChunkRecordRepository(db)
	p, err := OpenRecordProvider(ctx, records, worlds, "overworld")
	require.NoError(t, err)
	return p, records
}

func TestChunkIndex(t *testing.T) {
	assert.Equal(t, []byte{1, 0, 0, 0, 0xff, 0xff, 0xff, 0xff}, ChunkIndex(1, -1))
	assert.Equal(t, append(ChunkIndex(3, 4), ','), ChunkKey(3, 4, ','))
}

func TestChunkDirtyFlags(t *testing.T) {
	c := NewChunk(models.ChunkPos{})
	c.SetDirtyFlag(DirtyTerrain, true)
	c.SetDirtyFlag(DirtyBiomes, true)
	c.SetDirtyFlag(DirtyBiomes, false)

	assert.True(t, c.IsDirty(DirtyTerrain))
	assert.False(t, c.IsDirty(DirtyBiomes))

	c.ClearDirty()
	assert.False(t, c.IsDirty(DirtyTerrain))
}

func TestWorld(t *testing.T) {
	ctx := context.Background()
	stone := models.BlockState{ID: 1}

	t.Run("SetBlock And Block", func(t *testing.T) {
		w := New("test", NewMemoryProvider(), nil)
		p := models.BlockPos{X: 17, Y: 64, Z: -3}

		require.NoError(t, w.SetBlock(ctx, p, stone))
		got, err := w.Block(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, stone, got)

		c, ok := w.Chunk(1, -1)
		require.True(t, ok)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("Cache Is Read Through", func(t *testing.T) {
		w := New("test", NewMemoryProvider(), nil)
		p := models.BlockPos{X: 1}

		got, err := w.Block(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, models.Air, got)

		require.NoError(t, w.SetBlock(ctx, p, stone))
		got, _ = w.Block(ctx, p)
		assert.Equal(t, models.Air, got, "stale cache entry expected before ClearCache")

		w.ClearCache()
		got, _ = w.Block(ctx, p)
		assert.Equal(t, stone, got)
	})

	t.Run("SaveChunks Persists Dirty Chunks", func(t *testing.T) {
		provider := NewMemoryProvider()
		w := New("test", provider, nil)
		require.NoError(t, w.SetBlock(ctx, models.BlockPos{X: 0}, stone))
		require.NoError(t, w.SetBlock(ctx, models.BlockPos{X: 16}, stone))

		c, _ := w.Chunk(0, 0)
		c.SetDirtyFlag(DirtyTerrain, true)
		require.NoError(t, w.SaveChunks(ctx))

		has, _ := provider.HasChunk(ctx, models.ChunkPos{X: 0})
		assert.True(t, has)
		has, _ = provider.HasChunk(ctx, models.ChunkPos{X: 1})
		assert.False(t, has, "clean chunks are not saved")
		assert.False(t, c.IsDirty(DirtyTerrain))
	})

	t.Run("UnloadChunk", func(t *testing.T) {
		provider := NewMemoryProvider()
		w := New("test", provider, nil)
		require.NoError(t, w.SetBlock(ctx, models.BlockPos{}, stone))

		unloaded, err := w.UnloadChunk(ctx, 0, 0, false)
		require.NoError(t, err)
		assert.True(t, unloaded)
		assert.Equal(t, 0, w.LoadedChunks())

		generated, err := w.IsChunkGenerated(ctx, 0, 0)
		require.NoError(t, err)
		assert.False(t, generated, "unload without save must not persist")

		unloaded, err = w.UnloadChunk(ctx, 0, 0, true)
		require.NoError(t, err)
		assert.False(t, unloaded)
	})

	t.Run("ChunkListeners", func(t *testing.T) {
		w := New("test", NewMemoryProvider(), nil)
		l := &countingListener{}
		w.RegisterChunkListener(2, 3, l)

		assert.Len(t, w.ChunkListeners(2, 3), 1)
		assert.Empty(t, w.ChunkListeners(3, 2))
	})
}

func TestRecordProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("Round Trip", func(t *testing.T) {
		p, _ := setupRecordProvider(t)
		assert.Equal(t, DefaultTagVersion, p.TagVersion())

		w := New("overworld", p, nil)
		pos := models.BlockPos{X: 5, Y: 70, Z: 5}
		require.NoError(t, w.SetBlock(ctx, pos, models.BlockState{ID: 7, Meta: 2}))
		_, err := w.UnloadChunk(ctx, 0, 0, true)
		require.NoError(t, err)

		got, err := w.Block(ctx, pos)
		require.NoError(t, err)
		assert.Equal(t, models.BlockState{ID: 7, Meta: 2}, got)
	})

	t.Run("DeleteRecord", func(t *testing.T) {
		p, records := setupRecordProvider(t)
		c := NewChunk(models.ChunkPos{X: 1, Z: 2})
		c.SetBlock(models.BlockPos{X: 16, Z: 32}, models.BlockState{ID: 1})
		require.NoError(t, p.SaveChunk(ctx, c))

		key := ChunkKey(1, 2, p.TagVersion())
		has, err := records.Has(ctx, key)
		require.NoError(t, err)
		require.True(t, has)

		require.NoError(t, p.DeleteRecord(ctx, key))
		_, ok, err := p.LoadChunk(ctx, c.Pos)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Unknown World", func(t *testing.T) {
		_, records := setupRecordProvider(t)
		db, err := shared.NewDatabase(":memory:")
		require.NoError(t, err)
		defer db.Close()
		shared.ConfigureDatabase(db, 1, 1)
		require.NoError(t, shared.RunMigrations(db))

		_, err = OpenRecordProvider(ctx, records, repositories.NewWorldRepository(db), "missing")
		assert.ErrorIs(t, err, shared.ErrRecordNotFound)
	})

	t.Run("Chunk Encoding", func(t *testing.T) {
		c := NewChunk(models.ChunkPos{X: -1, Z: 4})
		c.SetBlock(models.BlockPos{X: -5, Y: 1, Z: 70}, models.BlockState{ID: 3, Meta: 1})

		data, err := c.MarshalJSON()
		require.NoError(t, err)
		assert.True(t, bytes.Contains(data, []byte(`"id":3`)))

		var decoded Chunk
		require.NoError(t, decoded.UnmarshalJSON(data))
		assert.Equal(t, c.Pos, decoded.Pos)
		assert.Equal(t, models.BlockState{ID: 3, Meta: 1}, decoded.Block(models.BlockPos{X: -5, Y: 1, Z: 70}))
	})
}
