package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.FilesTotal.WithLabelValues(OutcomeProcessed).Add(2)
	m.FilesTotal.WithLabelValues(OutcomeSkipped).Inc()
	m.ChunksTotal.Add(7)
	m.VectorsInserted.Add(7)
	m.RetrievalsTotal.WithLabelValues("ok").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues(OutcomeProcessed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues(OutcomeSkipped)))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.ChunksTotal))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.VectorsInserted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RetrievalsTotal.WithLabelValues("ok")))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ChunksTotal.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ChunksTotal))
}

func TestObserveStage(t *testing.T) {
	m := New()
	m.ObserveStage("ingestion", "embedding", time.Now().Add(-time.Second))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration, "rag_stage_duration_seconds"))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ChunksTotal.Add(3)

	path := filepath.Join(t.TempDir(), "rag.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rag_chunks_total 3")
}
