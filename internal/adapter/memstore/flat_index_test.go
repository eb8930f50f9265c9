package memstore

import (
	"testing"

	"ragpipe/internal/port"
	"ragpipe/internal/port/porttest"
)

func TestFlatIndexConformance(t *testing.T) {
	porttest.RunVectorStore(t, func(t *testing.T, dim int) port.VectorStore {
		return NewFlatIndex(dim)
	})
}

func TestEuclidean(t *testing.T) {
	if d := Euclidean([]float32{0, 0}, []float32{3, 4}); d != 5 {
		t.Errorf("expected 5, got %f", d)
	}
	if d := Euclidean([]float32{1, 2, 3}, []float32{1, 2, 3}); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}
