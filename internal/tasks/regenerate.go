package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/shared"
	"github.com/desertthunder/worldbuilder/internal/world"
)

const chunkArea = chunkSize * chunkSize

// RegenerateChunksTask deletes the persisted record of every chunk column under a selection so the
// columns are generated again on next load.
type RegenerateChunksTask struct {
	*Task
	store       world.KeyedRecordStore
	version     byte
	generateNew bool
}

// NewRegenerateChunksTask resolves the keyed record store and its tag version once.
// Providers without keyed deletion are accepted here and fail on the first step.
func NewRegenerateChunksTask(w *world.World, sel *models.Selection, generateNew bool) *RegenerateChunksTask {
	t := &RegenerateChunksTask{
		Task:        NewTask(KindRegenerateChunks.String(), w, sel, RegenerateEstimate(sel)),
		generateNew: generateNew,
	}
	if store, ok := w.Provider().(world.KeyedRecordStore); ok {
		t.store = store
		t.version = store.TagVersion()
	}
	return t
}

// RegenerateEstimate is the selection's horizontal footprint in chunk areas, rounded up.
func RegenerateEstimate(sel *models.Selection) int {
	a, _ := sel.Point(0)
	b, _ := sel.Point(1)
	a.Y, b.Y = 0, 0
	return (models.CalculateVolume(a, b) + chunkArea - 1) / chunkArea
}

func (t *RegenerateChunksTask) Run() Steps {
	lo, hi := t.Selection().Bounds()
	cur := NewChunkCursor(t.World(), lo, hi, t.generateNew)
	return StepFunc(func(ctx context.Context) (int, bool, error) {
		cp, ok, err := cur.Next(ctx)
		if err != nil || !ok {
			return 0, false, err
		}
		if t.store == nil {
			return 0, false, fmt.Errorf("%w: %s cannot delete chunk %d,%d",
				shared.ErrUnsupportedBackend, t.World().Provider().Name(), cp.X, cp.Z)
		}
		if _, err := t.World().UnloadChunk(ctx, cp.X, cp.Z, false); err != nil {
			return 0, false, err
		}
		if err := t.store.DeleteRecord(ctx, world.ChunkKey(cp.X, cp.Z, t.version)); err != nil {
			return 0, false, fmt.Errorf("failed to delete chunk %d,%d: %w", cp.X, cp.Z, err)
		}
		return 1, true, nil
	})
}

// OnCompletion saves the chunk cache so regenerated columns are not restored from stale data.
func (t *RegenerateChunksTask) OnCompletion(ctx context.Context) error {
	err := t.World().SaveChunks(ctx)
	if nerr := t.Task.OnCompletion(ctx); err == nil {
		err = nerr
	}
	return err
}
