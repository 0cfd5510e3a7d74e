package tasks

import (
	"github.com/desertthunder/worldbuilder/internal/clipboard"
	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/world"
)

// Kind enumerates the edits a [Descriptor] can request.
type Kind int

const (
	KindSet Kind = iota
	KindReplace
	KindCopy
	KindPaste
	KindRegenerateChunks
)

func (k Kind) String() string {
	switch k {
	case KindSet:
		return "set"
	case KindReplace:
		return "replace"
	case KindCopy:
		return "copy"
	case KindPaste:
		return "paste"
	case KindRegenerateChunks:
		return "regenerate_chunks"
	default:
		return "unknown"
	}
}

// Descriptor is an immutable request for an edit. Fields not used by Kind are ignored.
type Descriptor struct {
	Kind      Kind
	World     *world.World
	Selection *models.Selection
	Block     models.BlockState   // set: fill block; replace: replacement
	Match     models.BlockState   // replace: block to swap out
	Clipboard clipboard.Clipboard // copy: destination; paste: source
	Origin    models.BlockPos     // paste: target position
}

// SetDescriptor requests filling sel with block.
func SetDescriptor(w *world.World, sel *models.Selection, block models.BlockState) Descriptor {
	return Descriptor{Kind: KindSet, World: w, Selection: sel, Block: block}
}

// ReplaceDescriptor requests replacing match with block inside sel.
func ReplaceDescriptor(w *world.World, sel *models.Selection, match, block models.BlockState) Descriptor {
	return Descriptor{Kind: KindReplace, World: w, Selection: sel, Match: match, Block: block}
}

// CopyDescriptor requests capturing sel into cb.
func CopyDescriptor(w *world.World, sel *models.Selection, cb clipboard.Clipboard) Descriptor {
	return Descriptor{Kind: KindCopy, World: w, Selection: sel, Clipboard: cb}
}

// PasteDescriptor requests writing cb at origin.
func PasteDescriptor(w *world.World, cb clipboard.Clipboard, origin models.BlockPos) Descriptor {
	return Descriptor{Kind: KindPaste, World: w, Clipboard: cb, Origin: origin}
}

// RegenerateChunksDescriptor requests regeneration of every chunk covered by sel.
func RegenerateChunksDescriptor(w *world.World, sel *models.Selection) Descriptor {
	return Descriptor{Kind: KindRegenerateChunks, World: w, Selection: sel}
}
