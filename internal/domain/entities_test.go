package domain

import (
	"errors"
	"testing"
)

func TestNewChunkRejectsNegativeID(t *testing.T) {
	_, err := NewChunk("a.txt", -1, "x")
	if !errors.Is(err, ErrInvalidChunkID) {
		t.Fatalf("expected ErrInvalidChunkID, got %v", err)
	}

	c, err := NewChunk("a.txt", 0, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.HasEmbedding() {
		t.Error("new chunk should not carry an embedding")
	}
	if c.Key() != "a.txt#0" {
		t.Errorf("expected key a.txt#0, got %s", c.Key())
	}
}

func TestWithEmbeddingDoesNotAlias(t *testing.T) {
	c, _ := NewChunk("a.txt", 1, "x")
	v := []float32{1, 2, 3}

	embedded := c.WithEmbedding(v)
	v[0] = 99

	if c.HasEmbedding() {
		t.Error("receiver must not be modified")
	}
	if embedded.Embedding[0] != 1 {
		t.Errorf("embedding aliases caller slice: got %v", embedded.Embedding)
	}
}

func TestVectorRecordChunk(t *testing.T) {
	r := VectorRecord{ID: "7", Filename: "b.md", ChunkID: 2, Content: "hello", Embedding: []float32{0.5}}
	c := r.Chunk()
	if c.Filename != "b.md" || c.ChunkID != 2 || c.Content != "hello" {
		t.Errorf("unexpected chunk %+v", c)
	}
	if len(c.Embedding) != 1 || c.Embedding[0] != 0.5 {
		t.Errorf("embedding not carried: %v", c.Embedding)
	}

	r.Embedding = nil
	if r.Chunk().HasEmbedding() {
		t.Error("nil embedding should stay nil")
	}
}

func TestMetadataOrder(t *testing.T) {
	m := NewMetadata()
	m.Set("source", "TXT")
	m.Set("ingestion_timestamp", "2024-01-01T00:00:00Z")
	m.Set("source", "MD")

	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "source" || keys[1] != "ingestion_timestamp" {
		t.Errorf("unexpected key order %v", keys)
	}
	if m.GetString("source") != "MD" {
		t.Errorf("expected MD, got %s", m.GetString("source"))
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("missing key reported present")
	}
}

func TestZeroMetadataSet(t *testing.T) {
	var m Metadata
	m.Set("source", "PDF")
	if m.GetString("source") != "PDF" || m.Len() != 1 {
		t.Errorf("zero value not usable: %v", m.Keys())
	}

	n := new(Metadata)
	n.Set("a", 1)
	if _, ok := n.Get("a"); !ok {
		t.Error("value missing after Set on new(Metadata)")
	}
}

func TestDocumentMetadata(t *testing.T) {
	var d Document
	d.AddMetadata(MetaSource, "TXT")
	if d.GetMetadata(MetaSource) != "TXT" {
		t.Errorf("expected TXT, got %v", d.GetMetadata(MetaSource))
	}
	if d.GetMetadata("nope") != nil {
		t.Error("expected nil for missing key")
	}
}

func TestDimensionMismatchIsConfiguration(t *testing.T) {
	if !errors.Is(ErrDimensionMismatch, ErrConfiguration) {
		t.Error("dimension mismatch must classify as a configuration error")
	}
}
