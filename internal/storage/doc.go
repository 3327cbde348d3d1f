// Package storage persists the list of already-posted item identifiers.
//
// Drivers:
//   - "file": a single JSON document {"ids": [...]} replaced atomically
//     (write <path>.tmp, then rename)
//   - "sqlite": a SQLite database file with one row per id, ordered by
//     insertion sequence
//
// Stores only move whole snapshots: Load returns the ids oldest first and
// Save replaces everything with the given slice. Bounding and membership live
// in package dedup.
package storage
