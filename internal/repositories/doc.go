// Package repositories implements SQLite persistence for a world's chunk store.
//
// Key Implementations:
//   - [ChunkRecordRepository] : keyed chunk records supporting explicit deletion
//   - [WorldRepository] : named worlds and the storage format version their records are tagged with
//
// Deletes are hard deletes: a regenerated chunk must not be reloaded from a stale record.
package repositories
