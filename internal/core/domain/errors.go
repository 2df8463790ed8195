package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file extension with no extractor.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrExtraction indicates a file could not be turned into text.
	// Extractors log it and produce zero documents; it is surfaced only
	// when a caller needs a "failed to process" signal.
	ErrExtraction = errors.New("failed to process document")

	// ErrInvalidConfig indicates a configuration that cannot be constructed,
	// such as a chunk overlap not smaller than the chunk length.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrQueryFailed indicates a store, retriever or generator fault during a query.
	// It is distinct from a successful query with no results.
	ErrQueryFailed = errors.New("query failed")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreUnavailable indicates the document store could not be opened.
	ErrStoreUnavailable = errors.New("document store unavailable")

	// ErrDimensionMismatch indicates a vector whose size differs from the store's.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
