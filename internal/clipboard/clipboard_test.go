package clipboard

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	name  string
	build func(t *testing.T, origin models.BlockPos) Clipboard
}

func backends() []backend {
	return []backend{
		{name: "InMemory", build: func(t *testing.T, origin models.BlockPos) Clipboard {
			return NewInMemory(origin)
		}},
		{name: "Buffered", build: func(t *testing.T, origin models.BlockPos) Clipboard {
			cb, err := NewBuffered(origin, t.TempDir(), nil)
			require.NoError(t, err)
			return cb
		}},
	}
}

type copyOp struct {
	x, y, z int
	s       models.BlockState
}

var sequence = []copyOp{
	{0, 0, 0, models.BlockState{ID: 1}},
	{3, -2, 5, models.BlockState{ID: 2, Meta: 4}},
	{0, 0, 0, models.BlockState{ID: 9, Meta: 1}},
	{-1, 7, 2, models.BlockState{ID: 3}},
}

func TestClipboard(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			t.Run("Get Returns Most Recent Copy", func(t *testing.T) {
				cb := b.build(t, models.BlockPos{})
				defer cb.Close()

				for _, op := range sequence {
					require.NoError(t, cb.Copy(op.x, op.y, op.z, op.s))
				}

				got, ok, err := cb.Get(0, 0, 0)
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, models.BlockState{ID: 9, Meta: 1}, got)

				got, ok, err = cb.Get(3, -2, 5)
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, models.BlockState{ID: 2, Meta: 4}, got)
			})

			t.Run("Get Uncopied", func(t *testing.T) {
				cb := b.build(t, models.BlockPos{})
				defer cb.Close()

				require.NoError(t, cb.Copy(1, 1, 1, models.BlockState{ID: 1}))
				_, ok, err := cb.Get(2, 2, 2)
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("Volume Counts Distinct Coordinates", func(t *testing.T) {
				cb := b.build(t, models.BlockPos{})
				defer cb.Close()

				for _, op := range sequence {
					require.NoError(t, cb.Copy(op.x, op.y, op.z, op.s))
				}

				n, err := cb.Volume()
				require.NoError(t, err)
				assert.Equal(t, 3, n)
			})

			t.Run("AsSelection", func(t *testing.T) {
				cb := b.build(t, models.BlockPos{})
				defer cb.Close()

				for _, op := range sequence {
					require.NoError(t, cb.Copy(op.x, op.y, op.z, op.s))
				}

				origin := models.BlockPos{X: 100, Y: 64, Z: -100}
				sel := cb.AsSelection(origin)
				p0, _ := sel.Point(0)
				p1, _ := sel.Point(1)

				assert.Equal(t, origin, p0)
				assert.Equal(t, models.BlockPos{X: 4, Y: 9, Z: 5}, p1.Sub(p0))
			})

			t.Run("All", func(t *testing.T) {
				cb := b.build(t, models.BlockPos{})
				defer cb.Close()

				for _, op := range sequence {
					require.NoError(t, cb.Copy(op.x, op.y, op.z, op.s))
				}

				seen := map[models.BlockPos]models.BlockState{}
				cur, err := cb.All()
				require.NoError(t, err)
				for cur.Next() {
					seen[cur.Pos()] = cur.Block()
				}
				require.NoError(t, cur.Err())
				require.NoError(t, cur.Close())

				assert.Len(t, seen, 3)
				assert.Equal(t, models.BlockState{ID: 3}, seen[models.BlockPos{X: -1, Y: 7, Z: 2}])

				again, err := cb.All()
				require.NoError(t, err)
				defer again.Close()
				assert.True(t, again.Next(), "a fresh cursor restarts iteration")
			})

			t.Run("Closed", func(t *testing.T) {
				cb := b.build(t, models.BlockPos{})
				require.NoError(t, cb.Close())

				assert.ErrorIs(t, cb.Copy(0, 0, 0, models.BlockState{ID: 1}), shared.ErrClipboardClosed)
				_, _, err := cb.Get(0, 0, 0)
				assert.ErrorIs(t, err, shared.ErrClipboardClosed)
				_, err = cb.Volume()
				assert.ErrorIs(t, err, shared.ErrClipboardClosed)
				_, err = cb.All()
				assert.ErrorIs(t, err, shared.ErrClipboardClosed)
			})

			t.Run("Open Cursor Does Not Block Other Calls", func(t *testing.T) {
				cb := b.build(t, models.BlockPos{})
				defer cb.Close()
				for _, op := range sequence {
					require.NoError(t, cb.Copy(op.x, op.y, op.z, op.s))
				}

				first, err := cb.All()
				require.NoError(t, err)
				defer first.Close()
				require.True(t, first.Next())

				volume, err := cb.Volume()
				require.NoError(t, err)
				assert.Equal(t, 3, volume)

				_, ok, err := cb.Get(3, -2, 5)
				require.NoError(t, err)
				assert.True(t, ok)

				second, err := cb.All()
				require.NoError(t, err)
				defer second.Close()
				seen := 0
				for second.Next() {
					seen++
				}
				require.NoError(t, second.Err())
				assert.Equal(t, 3, seen)

				rest := 1
				for first.Next() {
					rest++
				}
				require.NoError(t, first.Err())
				assert.Equal(t, 3, rest)
			})
		})
	}
}

func TestBuffered(t *testing.T) {
	t.Run("Cursor Pages Across Batches", func(t *testing.T) {
		cb, err := NewBuffered(models.BlockPos{}, t.TempDir(), nil)
		require.NoError(t, err)
		defer cb.Close()
		for x := range 5 {
			require.NoError(t, cb.Copy(x, 0, 0, models.BlockState{ID: uint32(x + 1)}))
		}

		cur := &batchCursor{c: cb, size: 2}
		var xs []int
		for cur.Next() {
			xs = append(xs, cur.Pos().X)
			assert.Equal(t, uint32(cur.Pos().X+1), cur.Block().ID)
		}
		require.NoError(t, cur.Err())
		assert.Equal(t, []int{0, 1, 2, 3, 4}, xs)
		assert.False(t, cur.Next())
	})

	t.Run("Cursor Fails After Clipboard Close", func(t *testing.T) {
		cb, err := NewBuffered(models.BlockPos{}, t.TempDir(), nil)
		require.NoError(t, err)
		for x := range 3 {
			require.NoError(t, cb.Copy(x, 0, 0, models.BlockState{ID: 1}))
		}

		cur := &batchCursor{c: cb, size: 2}
		require.True(t, cur.Next())
		require.True(t, cur.Next())
		require.NoError(t, cb.Close())

		assert.False(t, cur.Next())
		assert.ErrorIs(t, cur.Err(), shared.ErrClipboardClosed)
	})

	t.Run("Acquisition Failure", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "missing")

		cb, err := NewBuffered(models.BlockPos{}, dir, nil)
		assert.Nil(t, cb)
		assert.ErrorIs(t, err, shared.ErrResourceAcquisition)

		_, statErr := os.Stat(dir)
		assert.True(t, errors.Is(statErr, os.ErrNotExist), "no backing resource may be left behind")
	})

	t.Run("Close Removes Backing File", func(t *testing.T) {
		dir := t.TempDir()
		cb, err := NewBuffered(models.BlockPos{}, dir, nil)
		require.NoError(t, err)

		_, err = os.Stat(cb.Path())
		require.NoError(t, err)

		require.NoError(t, cb.Close())
		require.NoError(t, cb.Close())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestWith(t *testing.T) {
	t.Run("Closes On Error", func(t *testing.T) {
		dir := t.TempDir()
		boom := errors.New("boom")

		err := With(func() (Clipboard, error) {
			return NewBuffered(models.BlockPos{}, dir, nil)
		}, func(cb Clipboard) error {
			if err := cb.Copy(0, 0, 0, models.BlockState{ID: 1}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Build Failure", func(t *testing.T) {
		called := false
		err := With(func() (Clipboard, error) {
			return nil, shared.ErrResourceAcquisition
		}, func(cb Clipboard) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, shared.ErrResourceAcquisition)
		assert.False(t, called)
	})
}
