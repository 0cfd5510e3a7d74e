package tasks

// Listener observes the progress of a [Task]. Callbacks run inline with the scheduler and must not block.
type Listener interface {
	OnRegister(t *Task)
	OnCompleteFraction(t *Task, completed, estimated int)
	OnCompletion(t *Task)
}

// FailureListener is implemented by listeners that want task-scoped failures.
//
// OnFailure is delivered before OnCompletion.
type FailureListener interface {
	OnFailure(t *Task, err error)
}

// ListenerHandle removes a registered listener.
type ListenerHandle struct {
	unregister func()
}

// Unregister removes the listener. It is a no-op once the task has completed or when called twice.
func (h ListenerHandle) Unregister() {
	if h.unregister != nil {
		h.unregister()
	}
}

// ListenerFuncs adapts plain functions to [Listener] and [FailureListener]. Nil fields are skipped.
type ListenerFuncs struct {
	Register func(t *Task)
	Fraction func(t *Task, completed, estimated int)
	Complete func(t *Task)
	Fail     func(t *Task, err error)
}

func (f ListenerFuncs) OnRegister(t *Task) {
	if f.Register != nil {
		f.Register(t)
	}
}

func (f ListenerFuncs) OnCompleteFraction(t *Task, completed, estimated int) {
	if f.Fraction != nil {
		f.Fraction(t, completed, estimated)
	}
}

func (f ListenerFuncs) OnCompletion(t *Task) {
	if f.Complete != nil {
		f.Complete(t)
	}
}

func (f ListenerFuncs) OnFailure(t *Task, err error) {
	if f.Fail != nil {
		f.Fail(t, err)
	}
}
