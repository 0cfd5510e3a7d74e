// package models defines the data model for world edits
package models

import "fmt"

// ChunkShift converts block coordinates to chunk coordinates.
const ChunkShift = 4

// BlockPos is an integer block coordinate.
type BlockPos struct {
	X, Y, Z int
}

func (p BlockPos) Add(o BlockPos) BlockPos { return BlockPos{p.X + o.X, p.Y + o.Y, p.Z + o.Z} }
func (p BlockPos) Sub(o BlockPos) BlockPos { return BlockPos{p.X - o.X, p.Y - o.Y, p.Z - o.Z} }

// Chunk returns the chunk column containing p.
func (p BlockPos) Chunk() ChunkPos {
	return ChunkPos{X: p.X >> ChunkShift, Z: p.Z >> ChunkShift}
}

func (p BlockPos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// BlockState is the immutable captured state of a single block.
type BlockState struct {
	ID   uint32 // block type identifier
	Meta uint8  // auxiliary data
}

// Air is the zero block state.
var Air = BlockState{}

func (s BlockState) String() string {
	return fmt.Sprintf("%d:%d", s.ID, s.Meta)
}

// ChunkPos is a horizontal chunk coordinate.
type ChunkPos struct {
	X, Z int
}

// ChunkRecord is one persisted record of a world's keyed chunk store.
type ChunkRecord struct {
	Key   []byte
	Value []byte
}

// Selection is a region bounded by two corner points. Either point may be unset.
type Selection struct {
	points [2]*BlockPos
}

// NewSelection returns a complete selection spanning a and b.
func NewSelection(a, b BlockPos) *Selection {
	s := &Selection{}
	s.SetPoint(0, a)
	s.SetPoint(1, b)
	return s
}

// SetPoint sets corner i (0 or 1).
func (s *Selection) SetPoint(i int, p BlockPos) {
	s.points[i] = &p
}

// Point returns corner i and whether it has been set.
func (s *Selection) Point(i int) (BlockPos, bool) {
	if s.points[i] == nil {
		return BlockPos{}, false
	}
	return *s.points[i], true
}

// IsComplete reports whether both corners are set.
func (s *Selection) IsComplete() bool {
	return s.points[0] != nil && s.points[1] != nil
}

// Bounds returns the inclusive minimum and maximum corners. It panics on an incomplete selection.
func (s *Selection) Bounds() (min, max BlockPos) {
	if !s.IsComplete() {
		panic("models: bounds of incomplete selection")
	}
	a, b := *s.points[0], *s.points[1]
	return BlockPos{minInt(a.X, b.X), minInt(a.Y, b.Y), minInt(a.Z, b.Z)},
		BlockPos{maxInt(a.X, b.X), maxInt(a.Y, b.Y), maxInt(a.Z, b.Z)}
}

// Volume returns the number of blocks covered by the selection, or zero if incomplete.
func (s *Selection) Volume() int {
	if !s.IsComplete() {
		return 0
	}
	return CalculateVolume(*s.points[0], *s.points[1])
}

// Size returns the extent between the two corners (max - min) on each axis.
func (s *Selection) Size() BlockPos {
	lo, hi := s.Bounds()
	return hi.Sub(lo)
}

// CalculateVolume returns the inclusive block count of the box spanned by a and b.
func CalculateVolume(a, b BlockPos) int {
	return (absInt(a.X-b.X) + 1) * (absInt(a.Y-b.Y) + 1) * (absInt(a.Z-b.Z) + 1)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
