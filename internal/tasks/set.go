package tasks

import (
	"context"

	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/world"
)

// SetTask fills a selection with one block state.
type SetTask struct {
	*Task
	block       models.BlockState
	generateNew bool
}

func NewSetTask(w *world.World, sel *models.Selection, block models.BlockState, generateNew bool) *SetTask {
	return &SetTask{
		Task:        NewTask(KindSet.String(), w, sel, sel.Volume()),
		block:       block,
		generateNew: generateNew,
	}
}

func (t *SetTask) Run() Steps {
	cur := newBlockCursor(t.World(), t.Selection(), t.generateNew, func(cp models.ChunkPos) {
		t.OnChunkChanged(cp.X, cp.Z)
	})
	return StepFunc(func(ctx context.Context) (int, bool, error) {
		p, ok, err := cur.next(ctx)
		if err != nil || !ok {
			return 0, false, err
		}
		if err := t.World().SetBlock(ctx, p, t.block); err != nil {
			return 0, false, err
		}
		return 1, true, nil
	})
}
