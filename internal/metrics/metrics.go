// Package metrics provides Prometheus metrics for pipeline runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// File outcomes recorded by FilesTotal.
const (
	OutcomeProcessed = "processed"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Metrics holds the pipeline collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	FilesTotal      *prometheus.CounterVec
	ChunksTotal     prometheus.Counter
	VectorsInserted prometheus.Counter
	RetrievalsTotal *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FilesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_files_total",
				Help: "Files seen during ingestion by outcome",
			},
			[]string{"outcome"},
		),
		ChunksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rag_chunks_total",
				Help: "Chunks produced by ingestion",
			},
		),
		VectorsInserted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rag_vectors_inserted_total",
				Help: "Vector records written to the vector store",
			},
		),
		RetrievalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_retrievals_total",
				Help: "Retrieval runs by outcome",
			},
			[]string{"outcome"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rag_stage_duration_seconds",
				Help:    "Duration of workflow stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"workflow", "stage"},
		),
	}
}

// Registry exposes the private registry, for tests and exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStage records how long a stage took since start.
func (m *Metrics) ObserveStage(workflow, stage string, start time.Time) {
	m.StageDuration.WithLabelValues(workflow, stage).Observe(time.Since(start).Seconds())
}

// WriteTextfile dumps the registry in the Prometheus text format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
