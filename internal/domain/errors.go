package domain

import (
	"errors"
	"fmt"
)

// Pipeline errors. Adapters wrap infrastructure failures with one of these so
// callers can classify them with errors.Is.
var (
	// ErrConfiguration indicates invalid settings detected before any I/O.
	ErrConfiguration = errors.New("configuration error")

	// ErrDimensionMismatch indicates the embedding model and the vector store
	// disagree on vector length.
	ErrDimensionMismatch = fmt.Errorf("%w: dimension mismatch", ErrConfiguration)

	// ErrLoad indicates a loader failed to read a file it claimed to support.
	ErrLoad = errors.New("load error")

	// ErrUnsupportedFile indicates no loader accepts a file.
	ErrUnsupportedFile = errors.New("unsupported file")

	// ErrPersistence indicates a metadata or chunk-file write failed.
	ErrPersistence = errors.New("persistence error")

	// ErrEmbedding indicates the embedding backend failed or returned malformed output.
	ErrEmbedding = errors.New("embedding backend error")

	// ErrVectorStore indicates a vector store read or write failed.
	ErrVectorStore = errors.New("vector store error")

	// ErrGeneration indicates the generation backend failed or returned nothing.
	ErrGeneration = errors.New("generation backend error")

	// ErrMissingEmbedding indicates a chunk reached the vector store without a vector.
	ErrMissingEmbedding = errors.New("chunk has no embedding")

	// ErrInvalidChunkID indicates a negative chunk ordinal.
	ErrInvalidChunkID = errors.New("chunk_id must be non-negative")

	// ErrInvalidInput indicates malformed arguments to an operation.
	ErrInvalidInput = errors.New("invalid input")
)
