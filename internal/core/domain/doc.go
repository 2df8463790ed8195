// Package domain defines the core business entities for educhat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Text extracted from one input file
//   - Chunk: A word-window segment of a document with provenance metadata
//   - IndexedRecord: A chunk owned by a document store
//   - PipelineTier: The capability level the retrieval pipeline runs at
//   - QueryResult: The tier-independent answer shape
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
