package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/desertthunder/worldbuilder/internal/tasks"
)

var (
	_ tasks.Listener        = (*PopupListener)(nil)
	_ tasks.FailureListener = (*PopupListener)(nil)
	_ tasks.Listener        = (*ChannelListener)(nil)
	_ tasks.FailureListener = (*ChannelListener)(nil)
)

// PopupListener writes a progress bar line to w whenever a task's whole-percent progress changes.
type PopupListener struct {
	w    io.Writer
	bar  progress.Model
	last map[*tasks.Task]int
	err  error
}

func NewPopupListener(w io.Writer) *PopupListener {
	return &PopupListener{
		w:    w,
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		last: make(map[*tasks.Task]int),
	}
}

// Err returns the first write error.
func (p *PopupListener) Err() error { return p.err }

func (p *PopupListener) OnRegister(t *tasks.Task) {
	p.last[t] = -1
	p.printf("%s %d operations\n", styles.name.Render(t.Name()), t.EstimatedOperations())
}

func (p *PopupListener) OnCompleteFraction(t *tasks.Task, completed, estimated int) {
	pct := percent(completed, estimated)
	whole := int(pct * 100)
	if estimated > 0 {
		whole = min(100, completed*100/estimated)
	}
	if whole == p.last[t] {
		return
	}
	p.last[t] = whole
	p.printf("%s %s\n", styles.name.Render(t.Name()), p.bar.ViewAs(pct))
}

func (p *PopupListener) OnCompletion(t *tasks.Task) {
	delete(p.last, t)
	p.printf("%s\n", styles.ok.Render(fmt.Sprintf("✓ %s (%d operations)", t.Name(), t.CompletedOperations())))
}

func (p *PopupListener) OnFailure(t *tasks.Task, err error) {
	p.printf("%s\n", styles.err.Render(fmt.Sprintf("✗ %s: %v", t.Name(), err)))
}

func (p *PopupListener) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(p.w, format, args...); err != nil && p.err == nil {
		p.err = err
	}
}

func percent(completed, estimated int) float64 {
	if estimated <= 0 {
		return 1
	}
	return min(1, max(0, float64(completed)/float64(estimated)))
}

// ChannelListener forwards [tasks.ProgressUpdate] values for one instance to a channel without blocking.
type ChannelListener struct {
	*tasks.UpdateListener
	Dropped int
}

// NewChannelListener tags every update with id.
func NewChannelListener(ch chan<- tasks.ProgressUpdate, id string) *ChannelListener {
	l := &ChannelListener{}
	l.UpdateListener = tasks.NewUpdateListener(func(u tasks.ProgressUpdate) {
		u.ID = id
		if !sendProgress(ch, u) {
			l.Dropped++
		}
	})
	return l
}

func sendProgress(ch chan<- tasks.ProgressUpdate, update tasks.ProgressUpdate) bool {
	if ch == nil {
		return false
	}
	select {
	case ch <- update:
		return true
	default:
		return false
	}
}
