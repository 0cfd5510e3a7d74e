package tasks

import (
	"context"

	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/world"
)

// EditorTask is a concrete edit. Implementations embed *[Task] and supply Run.
//
// Implementations that override OnCompletion must call the embedded Task's OnCompletion.
type EditorTask interface {
	Name() string
	Run() Steps
	Base() *Task
	OnCompletion(ctx context.Context) error
}

type registration struct {
	id       int
	listener Listener
}

// Task is the execution state shared by every edit: selection, progress counters and observers.
//
// Task is mutated only by the scheduler and by the edit itself, both on the host loop.
type Task struct {
	name      string
	world     *world.World
	selection *models.Selection
	estimated int
	completed int
	listeners []registration
	nextID    int
	done      bool
}

// NewTask returns the base state of an edit named name.
func NewTask(name string, w *world.World, sel *models.Selection, estimated int) *Task {
	return &Task{name: name, world: w, selection: sel, estimated: estimated}
}

func (t *Task) Name() string                 { return t.name }
func (t *Task) Base() *Task                  { return t }
func (t *Task) World() *world.World          { return t.world }
func (t *Task) Selection() *models.Selection { return t.selection }

// EstimatedOperations is a best-effort total; Completed may exceed it.
func (t *Task) EstimatedOperations() int { return t.estimated }
func (t *Task) CompletedOperations() int { return t.completed }
func (t *Task) Done() bool               { return t.done }

// RegisterListener calls l.OnRegister and returns a handle that removes l.
func (t *Task) RegisterListener(l Listener) ListenerHandle {
	t.nextID++
	id := t.nextID
	t.listeners = append(t.listeners, registration{id: id, listener: l})
	l.OnRegister(t)

	return ListenerHandle{unregister: func() {
		if t.done {
			return
		}
		for i, r := range t.listeners {
			if r.id == id {
				t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
				return
			}
		}
	}}
}

// OnChunkChanged invalidates cached reads, marks the chunk at (x, z) dirty and notifies its listeners.
//
// flags defaults to [world.DirtyTerrain].
func (t *Task) OnChunkChanged(x, z int, flags ...world.DirtyFlag) {
	t.world.ClearCache()

	chunk, ok := t.world.Chunk(x, z)
	if !ok {
		return
	}
	if len(flags) == 0 {
		flags = []world.DirtyFlag{world.DirtyTerrain}
	}
	for _, f := range flags {
		chunk.SetDirtyFlag(f, true)
	}
	for _, l := range t.world.ChunkListeners(x, z) {
		l.OnChunkChanged(chunk)
	}
}

// OnCompleteOperations adds delta to the completed count and reports the new fraction.
func (t *Task) OnCompleteOperations(delta int) {
	t.completed += delta
	for _, r := range t.snapshot() {
		r.listener.OnCompleteFraction(t, t.completed, t.estimated)
	}
}

// OnFailure reports err to listeners implementing [FailureListener].
func (t *Task) OnFailure(err error) {
	for _, r := range t.snapshot() {
		if fl, ok := r.listener.(FailureListener); ok {
			fl.OnFailure(t, err)
		}
	}
}

// OnCompletion notifies every listener that the task finished.
func (t *Task) OnCompletion(_ context.Context) error {
	for _, r := range t.snapshot() {
		r.listener.OnCompletion(t)
	}
	t.done = true
	t.listeners = nil
	return nil
}

// snapshot lets listeners unregister themselves while being notified.
func (t *Task) snapshot() []registration {
	return append([]registration(nil), t.listeners...)
}
