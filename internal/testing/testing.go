// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/worldbuilder/internal/tasks"
	"github.com/desertthunder/worldbuilder/internal/world"
)

// RecordingListener records every callback it receives, in order.
type RecordingListener struct {
	Registered  int
	Fractions   []int
	Estimates   []int
	Completions int
	Failures    []error
	Events      []string
}

func (r *RecordingListener) OnRegister(t *tasks.Task) {
	r.Registered++
	r.Events = append(r.Events, "register")
}

func (r *RecordingListener) OnCompleteFraction(t *tasks.Task, completed, estimated int) {
	r.Fractions = append(r.Fractions, completed)
	r.Estimates = append(r.Estimates, estimated)
	r.Events = append(r.Events, fmt.Sprintf("fraction:%d", completed))
}

func (r *RecordingListener) OnCompletion(t *tasks.Task) {
	r.Completions++
	r.Events = append(r.Events, "complete")
}

func (r *RecordingListener) OnFailure(t *tasks.Task, err error) {
	r.Failures = append(r.Failures, err)
	r.Events = append(r.Events, "failure")
}

// ScriptedTask is an edit of a fixed number of one-operation steps.
//
// When FailAt is positive the step with that 1-based index returns Err instead of progress.
type ScriptedTask struct {
	*tasks.Task
	Steps  int
	FailAt int
	Err    error
	Calls  int
}

func NewScriptedTask(name string, steps int) *ScriptedTask {
	return &ScriptedTask{Task: tasks.NewTask(name, nil, nil, steps), Steps: steps}
}

func (s *ScriptedTask) Run() tasks.Steps {
	return tasks.StepFunc(func(context.Context) (int, bool, error) {
		if s.Calls >= s.Steps {
			return 0, false, nil
		}
		s.Calls++
		if s.FailAt > 0 && s.Calls == s.FailAt {
			err := s.Err
			if err == nil {
				err = errors.New("scripted failure")
			}
			return 0, false, err
		}
		return 1, true, nil
	})
}

// CountingStore is a [world.KeyedRecordStore] over a [world.MemoryProvider] that records deletes.
type CountingStore struct {
	*world.MemoryProvider
	Version byte
	Deleted [][]byte
}

func NewCountingStore(version byte) *CountingStore {
	return &CountingStore{MemoryProvider: world.NewMemoryProvider(), Version: version}
}

func (c *CountingStore) TagVersion() byte { return c.Version }

func (c *CountingStore) DeleteRecord(_ context.Context, key []byte) error {
	c.Deleted = append(c.Deleted, append([]byte(nil), key...))
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("File still exists: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
