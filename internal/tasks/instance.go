package tasks

import (
	"context"

	"github.com/desertthunder/worldbuilder/internal/shared"
)

// Instance is one live run of an edit. Instances are compared by pointer, so equal descriptors
// may run side by side.
type Instance struct {
	ID         string
	Descriptor Descriptor
	task       EditorTask
	steps      Steps
}

// NewInstance starts t's step sequence. Nothing executes until the sequence is polled.
func NewInstance(desc Descriptor, t EditorTask) *Instance {
	return &Instance{ID: shared.GenerateID(), Descriptor: desc, task: t, steps: t.Run()}
}

func (i *Instance) Task() EditorTask { return i.task }
func (i *Instance) Name() string     { return i.task.Name() }

// RegisterListener attaches l to the instance's task.
func (i *Instance) RegisterListener(l Listener) ListenerHandle {
	return i.task.Base().RegisterListener(l)
}

// Next advances the step sequence once.
func (i *Instance) Next(ctx context.Context) (int, bool, error) {
	return i.steps.Next(ctx)
}

func (i *Instance) OnCompleteOperations(delta int) {
	i.task.Base().OnCompleteOperations(delta)
}

func (i *Instance) OnFailure(err error) {
	i.task.Base().OnFailure(err)
}

func (i *Instance) OnCompletion(ctx context.Context) error {
	return i.task.OnCompletion(ctx)
}
