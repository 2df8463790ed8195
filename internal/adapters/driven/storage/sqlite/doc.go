// Package sqlite provides a SQLite-backed document store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. It is the store behind the alternate-path probe when no
// PostgreSQL server is reachable.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Search
//
// Embeddings are stored as little-endian float32 blobs and searched by
// brute-force cosine similarity, optionally narrowed by subject.
//
// # Data Location
//
// By default, the database is stored at ~/.educhat/data/records.db
//
// # Thread Safety
//
// All operations are thread-safe. Writes run in a transaction and the
// database is opened in WAL mode.
package sqlite
