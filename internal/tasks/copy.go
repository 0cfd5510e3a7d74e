package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/worldbuilder/internal/clipboard"
	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/world"
)

// CopyTask captures a selection into a clipboard, relative to the selection's minimum corner.
type CopyTask struct {
	*Task
	clipboard   clipboard.Clipboard
	generateNew bool
}

func NewCopyTask(w *world.World, sel *models.Selection, cb clipboard.Clipboard, generateNew bool) *CopyTask {
	return &CopyTask{
		Task:        NewTask(KindCopy.String(), w, sel, sel.Volume()),
		clipboard:   cb,
		generateNew: generateNew,
	}
}

func (t *CopyTask) Clipboard() clipboard.Clipboard { return t.clipboard }

func (t *CopyTask) Run() Steps {
	lo, _ := t.Selection().Bounds()
	cur := newBlockCursor(t.World(), t.Selection(), t.generateNew, nil)
	return StepFunc(func(ctx context.Context) (int, bool, error) {
		p, ok, err := cur.next(ctx)
		if err != nil || !ok {
			return 0, false, err
		}
		s, err := t.World().Block(ctx, p)
		if err != nil {
			return 0, false, err
		}
		rel := p.Sub(lo)
		if err := t.clipboard.Copy(rel.X, rel.Y, rel.Z, s); err != nil {
			return 0, false, fmt.Errorf("failed to copy %s: %w", p, err)
		}
		return 1, true, nil
	})
}
