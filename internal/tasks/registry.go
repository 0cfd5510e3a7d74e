package tasks

import (
	"fmt"

	"github.com/desertthunder/worldbuilder/internal/shared"
)

// Factory builds the edit a descriptor requests.
type Factory func(desc Descriptor) (EditorTask, error)

// Registry is the dispatch table from [Kind] to [Factory].
type Registry struct {
	factories map[Kind]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]Factory)}
}

// Register binds f to k, replacing any previous factory.
func (r *Registry) Register(k Kind, f Factory) {
	r.factories[k] = f
}

// Build validates desc and constructs its edit.
func (r *Registry) Build(desc Descriptor) (EditorTask, error) {
	f, ok := r.factories[desc.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownTaskKind, desc.Kind)
	}
	if err := desc.validate(); err != nil {
		return nil, err
	}
	return f(desc)
}

// Options configures the built-in edits.
type Options struct {
	GenerateNewChunks bool
}

// NewDefaultRegistry returns a registry with every built-in kind.
func NewDefaultRegistry(opts Options) *Registry {
	r := NewRegistry()
	r.Register(KindSet, func(d Descriptor) (EditorTask, error) {
		return NewSetTask(d.World, d.Selection, d.Block, opts.GenerateNewChunks), nil
	})
	r.Register(KindReplace, func(d Descriptor) (EditorTask, error) {
		return NewReplaceTask(d.World, d.Selection, d.Match, d.Block, opts.GenerateNewChunks), nil
	})
	r.Register(KindCopy, func(d Descriptor) (EditorTask, error) {
		return NewCopyTask(d.World, d.Selection, d.Clipboard, opts.GenerateNewChunks), nil
	})
	r.Register(KindPaste, func(d Descriptor) (EditorTask, error) {
		return NewPasteTask(d.World, d.Clipboard, d.Origin, opts.GenerateNewChunks)
	})
	r.Register(KindRegenerateChunks, func(d Descriptor) (EditorTask, error) {
		return NewRegenerateChunksTask(d.World, d.Selection, opts.GenerateNewChunks), nil
	})
	return r
}

func (d Descriptor) validate() error {
	if d.World == nil {
		return fmt.Errorf("%w: world", shared.ErrMissingArgument)
	}
	switch d.Kind {
	case KindCopy, KindPaste:
		if d.Clipboard == nil {
			return fmt.Errorf("%w: clipboard", shared.ErrMissingArgument)
		}
	}
	if d.Kind == KindPaste {
		return nil
	}
	if d.Selection == nil || !d.Selection.IsComplete() {
		return shared.ErrIncompleteSelection
	}
	return nil
}
