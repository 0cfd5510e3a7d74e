// Package models defines the value types shared by the editor, the clipboard and the world boundary.
//
//   - [BlockPos] : integer block coordinate
//   - [BlockState] : captured block type identifier plus auxiliary data
//   - [ChunkPos] : horizontal chunk coordinate (16x16 block columns)
//   - [Selection] : two-corner region, possibly partially set
//   - [ChunkRecord] : persisted key/value record of a world's chunk store
//
// All types have value semantics. A [Selection] is owned by the caller and passed by pointer into tasks.
package models
