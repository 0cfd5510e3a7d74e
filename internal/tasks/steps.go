package tasks

import "context"

// Steps is a lazy, finite sequence of mutation units.
type Steps interface {
	// Next performs one unit of work and returns the operations it completed.
	// ok is false once the sequence is exhausted; a non-nil error also ends it.
	Next(ctx context.Context) (ops int, ok bool, err error)
}

// StepFunc adapts a function to [Steps].
type StepFunc func(ctx context.Context) (int, bool, error)

func (f StepFunc) Next(ctx context.Context) (int, bool, error) { return f(ctx) }
