package tasks

import (
	"context"

	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/world"
)

// ReplaceTask swaps every occurrence of one block state for another inside a selection.
//
// Every visited block counts as one operation, matched or not.
type ReplaceTask struct {
	*Task
	match, block models.BlockState
	generateNew  bool
	replaced     int
}

func NewReplaceTask(w *world.World, sel *models.Selection, match, block models.BlockState, generateNew bool) *ReplaceTask {
	return &ReplaceTask{
		Task:        NewTask(KindReplace.String(), w, sel, sel.Volume()),
		match:       match,
		block:       block,
		generateNew: generateNew,
	}
}

// Replaced returns the number of blocks written so far.
func (t *ReplaceTask) Replaced() int { return t.replaced }

func (t *ReplaceTask) Run() Steps {
	changed := false
	cur := newBlockCursor(t.World(), t.Selection(), t.generateNew, func(cp models.ChunkPos) {
		if changed {
			t.OnChunkChanged(cp.X, cp.Z)
		}
		changed = false
	})
	return StepFunc(func(ctx context.Context) (int, bool, error) {
		p, ok, err := cur.next(ctx)
		if err != nil || !ok {
			return 0, false, err
		}
		current, err := t.World().Block(ctx, p)
		if err != nil {
			return 0, false, err
		}
		if current != t.match {
			return 1, true, nil
		}
		if err := t.World().SetBlock(ctx, p, t.block); err != nil {
			return 0, false, err
		}
		changed = true
		t.replaced++
		return 1, true, nil
	})
}
