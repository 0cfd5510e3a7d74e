package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/worldbuilder/internal/clipboard"
	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/world"
)

// PasteTask writes every clipboard entry at origin plus its relative coordinate.
type PasteTask struct {
	*Task
	clipboard   clipboard.Clipboard
	origin      models.BlockPos
	generateNew bool
	cursor      clipboard.Cursor
}

// NewPasteTask sizes the task from the clipboard volume. The selection is the pasted region.
func NewPasteTask(w *world.World, cb clipboard.Clipboard, origin models.BlockPos, generateNew bool) (*PasteTask, error) {
	volume, err := cb.Volume()
	if err != nil {
		return nil, fmt.Errorf("failed to size clipboard: %w", err)
	}
	return &PasteTask{
		Task:        NewTask(KindPaste.String(), w, cb.AsSelection(origin), volume),
		clipboard:   cb,
		origin:      origin,
		generateNew: generateNew,
	}, nil
}

func (t *PasteTask) Run() Steps {
	var (
		last    models.ChunkPos
		touched bool
		skipped = make(map[models.ChunkPos]bool)
	)
	flush := func() {
		if touched {
			t.OnChunkChanged(last.X, last.Z)
			touched = false
		}
	}

	return StepFunc(func(ctx context.Context) (int, bool, error) {
		if t.cursor == nil {
			cur, err := t.clipboard.All()
			if err != nil {
				return 0, false, err
			}
			t.cursor = cur
		}
		if !t.cursor.Next() {
			flush()
			return 0, false, t.closeCursor()
		}

		p := t.origin.Add(t.cursor.Pos())
		cp := p.Chunk()
		if touched && cp != last {
			flush()
		}

		if !t.generateNew {
			skip, seen := skipped[cp]
			if !seen {
				generated, err := t.World().IsChunkGenerated(ctx, cp.X, cp.Z)
				if err != nil {
					return 0, false, err
				}
				skip = !generated
				skipped[cp] = skip
			}
			if skip {
				return 1, true, nil
			}
		}

		if err := t.World().SetBlock(ctx, p, t.cursor.Block()); err != nil {
			return 0, false, err
		}
		last, touched = cp, true
		return 1, true, nil
	})
}

// OnCompletion releases the clipboard cursor, then notifies listeners.
func (t *PasteTask) OnCompletion(ctx context.Context) error {
	err := t.closeCursor()
	return errors.Join(err, t.Task.OnCompletion(ctx))
}

func (t *PasteTask) closeCursor() error {
	if t.cursor == nil {
		return nil
	}
	cur := t.cursor
	t.cursor = nil
	if err := cur.Close(); err != nil {
		return err
	}
	return cur.Err()
}
