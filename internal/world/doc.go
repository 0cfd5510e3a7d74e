// Package world is the storage boundary the editor mutates.
//
// A [World] holds loaded [Chunk] columns, a read-through block cache and per-chunk [ChunkListener]
// registrations. Persistence is delegated to a [Provider]. Providers that can delete persisted
// records by key implement [KeyedRecordStore]; regeneration of chunks requires one.
//
// Two providers ship with the package:
//   - [RecordProvider] : SQLite-backed keyed records, tagged with the world's format version
//   - [MemoryProvider] : flat in-memory store without keyed deletion
package world
