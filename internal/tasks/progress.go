package tasks

import "fmt"

// ProgressUpdate represents a progress event of a running edit.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Event kind
	ID      string // Instance ID, set by listeners bound to an instance
	Task    string // Task name
	Step    int    // Completed operations
	Total   int    // Estimated operations
	Message string // Human-readable message for display
	Err     error  // Set for [Failed]
}

// Phase of a task's lifecycle.
type Phase int

const (
	Started Phase = iota
	Progress
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case Started:
		return "started"
	case Progress:
		return "progress"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Percent returns Step/Total clamped to [0, 1].
func (u ProgressUpdate) Percent() float64 {
	if u.Total <= 0 {
		if u.Phase == Completed {
			return 1
		}
		return 0
	}
	return min(1, max(0, float64(u.Step)/float64(u.Total)))
}

func startedUpdate(t *Task) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Started,
		Task:    t.Name(),
		Step:    t.CompletedOperations(),
		Total:   t.EstimatedOperations(),
		Message: fmt.Sprintf("Running %s (%d operations)...", t.Name(), t.EstimatedOperations()),
	}
}

func fractionUpdate(t *Task, completed, estimated int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Progress,
		Task:    t.Name(),
		Step:    completed,
		Total:   estimated,
		Message: fmt.Sprintf("[%d/%d] %s", completed, estimated, t.Name()),
	}
}

func completedUpdate(t *Task) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Completed,
		Task:    t.Name(),
		Step:    t.CompletedOperations(),
		Total:   t.EstimatedOperations(),
		Message: fmt.Sprintf("✓ %s (%d operations)", t.Name(), t.CompletedOperations()),
	}
}

func failedUpdate(t *Task, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Failed,
		Task:    t.Name(),
		Step:    t.CompletedOperations(),
		Total:   t.EstimatedOperations(),
		Message: fmt.Sprintf("✗ %s: %v", t.Name(), err),
		Err:     err,
	}
}

// UpdateListener converts task events to [ProgressUpdate] values and hands them to send.
type UpdateListener struct {
	send func(ProgressUpdate)
}

func NewUpdateListener(send func(ProgressUpdate)) *UpdateListener {
	return &UpdateListener{send: send}
}

func (l *UpdateListener) OnRegister(t *Task) { l.send(startedUpdate(t)) }

func (l *UpdateListener) OnCompleteFraction(t *Task, completed, estimated int) {
	l.send(fractionUpdate(t, completed, estimated))
}

func (l *UpdateListener) OnCompletion(t *Task)         { l.send(completedUpdate(t)) }
func (l *UpdateListener) OnFailure(t *Task, err error) { l.send(failedUpdate(t, err)) }
