package domain

import (
	"fmt"
	"strconv"
)

// Metadata keys attached to a Document during ingestion.
const (
	MetaSource             = "source"
	MetaIngestionTimestamp = "ingestion_timestamp"
)

// Document is a loaded file. Content is normalized in place by the cleaner
// and the document is discarded after chunking.
type Document struct {
	Filename string
	Content  string
	Metadata *Metadata
}

// NewDocument creates a document with empty metadata.
func NewDocument(filename, content string) Document {
	return Document{
		Filename: filename,
		Content:  content,
		Metadata: NewMetadata(),
	}
}

// AddMetadata sets a metadata value, allocating the mapping if needed.
func (d *Document) AddMetadata(key string, value any) {
	if d.Metadata == nil {
		d.Metadata = NewMetadata()
	}
	d.Metadata.Set(key, value)
}

// GetMetadata returns a metadata value or nil.
func (d *Document) GetMetadata(key string) any {
	if d.Metadata == nil {
		return nil
	}
	v, _ := d.Metadata.Get(key)
	return v
}

// Chunk is a window of a document's cleaned text. ChunkID is the window
// ordinal within one document, so (Filename, ChunkID) is the only identity.
type Chunk struct {
	Filename  string
	ChunkID   int
	Content   string
	Embedding []float32
}

// NewChunk validates the ordinal and returns an unembedded chunk.
func NewChunk(filename string, chunkID int, content string) (Chunk, error) {
	if chunkID < 0 {
		return Chunk{}, fmt.Errorf("%w: got %d for %s", ErrInvalidChunkID, chunkID, filename)
	}
	return Chunk{
		Filename: filename,
		ChunkID:  chunkID,
		Content:  content,
	}, nil
}

// Key returns the composite identity of the chunk.
func (c Chunk) Key() string {
	return c.Filename + "#" + strconv.Itoa(c.ChunkID)
}

// HasEmbedding reports whether a vector is attached.
func (c Chunk) HasEmbedding() bool {
	return c.Embedding != nil
}

// WithEmbedding returns a copy of the chunk carrying its own copy of v.
func (c Chunk) WithEmbedding(v []float32) Chunk {
	out := c
	if v == nil {
		out.Embedding = nil
		return out
	}
	out.Embedding = make([]float32, len(v))
	copy(out.Embedding, v)
	return out
}

// MetadataRecord is the provenance row written once per ingested file.
type MetadataRecord struct {
	ID                 int64  `json:"id"`
	Filename           string `json:"filename"`
	Source             string `json:"source"`
	IngestionTimestamp string `json:"ingestion_timestamp"`
}

// VectorRecord is the durable projection of an embedded chunk. ID is assigned
// by the store; Distance is filled by queries using the backend metric.
type VectorRecord struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	ChunkID   int       `json:"chunk_id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`
	Distance  float64   `json:"distance"`
}

// Chunk maps the record back into a domain chunk.
func (r VectorRecord) Chunk() Chunk {
	c := Chunk{
		Filename: r.Filename,
		ChunkID:  r.ChunkID,
		Content:  r.Content,
	}
	return c.WithEmbedding(r.Embedding)
}

// Query is a retrieval request. MetadataFilters is carried but not applied.
type Query struct {
	Text            string
	MetadataFilters *Metadata
}

// NewQuery creates a query with no filters.
func NewQuery(text string) Query {
	return Query{Text: text, MetadataFilters: NewMetadata()}
}
