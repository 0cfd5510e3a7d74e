// Package tasks defines resumable, progress-reporting edits over a selection.
//
// # Step Sequences
//
// Every edit exposes its work as [Steps], a poll-style state machine. Each call to
// [Steps.Next] performs one unit of mutation and reports how many operations it completed
// and whether more remain. A step boundary is the only point at which the scheduler may
// switch to another edit, so the unit size bounds how long one edit can hold the host loop.
//
// # Observers
//
// [Task] carries the progress counters and the observer registry shared by every edit.
// [Listener] implementations receive OnRegister, OnCompleteFraction and OnCompletion
// synchronously, in registration order. Listeners that also implement [FailureListener]
// are told about task-scoped failures before completion.
//
// # Dispatch
//
// A [Descriptor] names the requested edit by [Kind]. A [Registry] maps each kind to a
// [Factory]; [NewDefaultRegistry] wires the built-in edits:
//   - [KindSet] : fill the selection with one block
//   - [KindReplace] : swap one block state for another
//   - [KindCopy] : capture the selection into a clipboard
//   - [KindPaste] : write a clipboard at an origin
//   - [KindRegenerateChunks] : delete persisted chunks so they are generated again
//
// An [Instance] binds a built edit to its running step sequence and is the unit the
// scheduler drives.
package tasks
