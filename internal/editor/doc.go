// Package editor schedules edit tasks cooperatively over a fixed-rate host loop.
//
// # Drive Loop
//
// [Manager] owns the active set of [tasks.Instance] values. [Manager.Push] adds an instance and,
// when the manager is idle, starts draining: it repeatedly picks a random active instance and
// polls its step sequence until the instance finishes or its turn allowance runs out. Once a
// window's budget is spent the drive loop parks a wake callback and returns. The host calls
// [Manager.Tick] exactly once per iteration; each tick drains the callbacks parked before it.
//
// # Budget
//
// The window budget is recomputed after every suspension:
//
//	max(1024, max-ops-per-iteration / max(1, active))
//
// # Failures
//
// A step error removes only the failing instance. Failure listeners hear about it before the
// normal completion callback. Panics inside a step are not recovered.
package editor
