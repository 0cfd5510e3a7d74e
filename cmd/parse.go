package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/shared"
)

// parseBlockPos parses "x,y,z".
func parseBlockPos(s string) (models.BlockPos, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return models.BlockPos{}, fmt.Errorf("%w: position %q must be x,y,z", shared.ErrInvalidArgument, s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return models.BlockPos{}, fmt.Errorf("%w: position %q: %v", shared.ErrInvalidArgument, s, err)
		}
		v[i] = n
	}
	return models.BlockPos{X: v[0], Y: v[1], Z: v[2]}, nil
}

// parseSelection parses "x,y,z:x,y,z".
func parseSelection(s string) (*models.Selection, error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("%w: selection %q must be x,y,z:x,y,z", shared.ErrInvalidArgument, s)
	}
	p0, err := parseBlockPos(a)
	if err != nil {
		return nil, err
	}
	p1, err := parseBlockPos(b)
	if err != nil {
		return nil, err
	}
	return models.NewSelection(p0, p1), nil
}

// parseBlockState parses "id" or "id:meta".
func parseBlockState(s string) (models.BlockState, error) {
	idPart, metaPart, hasMeta := strings.Cut(strings.TrimSpace(s), ":")
	id, err := strconv.ParseUint(idPart, 10, 32)
	if err != nil {
		return models.BlockState{}, fmt.Errorf("%w: block %q: %v", shared.ErrInvalidArgument, s, err)
	}
	state := models.BlockState{ID: uint32(id)}
	if hasMeta {
		meta, err := strconv.ParseUint(metaPart, 10, 8)
		if err != nil {
			return models.BlockState{}, fmt.Errorf("%w: block %q: %v", shared.ErrInvalidArgument, s, err)
		}
		state.Meta = uint8(meta)
	}
	return state, nil
}

// parseSet parses "selection=block".
func parseSet(s string) (*models.Selection, models.BlockState, error) {
	selPart, blockPart, ok := strings.Cut(s, "=")
	if !ok {
		return nil, models.BlockState{}, fmt.Errorf("%w: %q must be selection=block", shared.ErrInvalidArgument, s)
	}
	sel, err := parseSelection(selPart)
	if err != nil {
		return nil, models.BlockState{}, err
	}
	block, err := parseBlockState(blockPart)
	return sel, block, err
}

// parseReplace parses "selection=match>block".
func parseReplace(s string) (*models.Selection, models.BlockState, models.BlockState, error) {
	selPart, swap, ok := strings.Cut(s, "=")
	if !ok {
		return nil, models.Air, models.Air, fmt.Errorf("%w: %q must be selection=match>block", shared.ErrInvalidArgument, s)
	}
	from, to, ok := strings.Cut(swap, ">")
	if !ok {
		return nil, models.Air, models.Air, fmt.Errorf("%w: %q must be selection=match>block", shared.ErrInvalidArgument, s)
	}
	sel, err := parseSelection(selPart)
	if err != nil {
		return nil, models.Air, models.Air, err
	}
	match, err := parseBlockState(from)
	if err != nil {
		return nil, models.Air, models.Air, err
	}
	block, err := parseBlockState(to)
	return sel, match, block, err
}

// parseCopyPaste parses "selection@origin".
func parseCopyPaste(s string) (*models.Selection, models.BlockPos, error) {
	selPart, originPart, ok := strings.Cut(s, "@")
	if !ok {
		return nil, models.BlockPos{}, fmt.Errorf("%w: %q must be selection@origin", shared.ErrInvalidArgument, s)
	}
	sel, err := parseSelection(selPart)
	if err != nil {
		return nil, models.BlockPos{}, err
	}
	origin, err := parseBlockPos(originPart)
	return sel, origin, err
}
