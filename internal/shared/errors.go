package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Scheduler errors
	ErrDuplicateScheduler = fmt.Errorf("tried to run a duplicate scheduler")
	ErrUnknownTaskKind    = fmt.Errorf("no handler registered for task kind")

	// Storage errors
	ErrResourceAcquisition = fmt.Errorf("failed to acquire backing resource")
	ErrUnsupportedBackend  = fmt.Errorf("unsupported storage backend")
	ErrClipboardClosed     = fmt.Errorf("clipboard is closed")
	ErrRecordNotFound      = fmt.Errorf("record not found")

	// Input validation errors
	ErrIncompleteSelection = fmt.Errorf("selection is incomplete")
	ErrMissingArgument     = fmt.Errorf("missing required argument")
	ErrInvalidArgument     = fmt.Errorf("invalid argument")
)
