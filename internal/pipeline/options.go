package pipeline

import (
	"time"

	"github.com/rs/zerolog"

	"ragpipe/internal/adapter/loader"
	"ragpipe/internal/metrics"
	"ragpipe/internal/port"
	"ragpipe/internal/usecase"
)

// Option replaces a component New would otherwise build from configuration.
// Injected stores and repositories are not closed by Close.
type Option func(*options)

type options struct {
	embedder  port.Embedder
	store     port.VectorStore
	generator port.Generator
	metadata  port.MetadataRepository
	loaders   *loader.Registry
	log       *zerolog.Logger
	now       func() time.Time
	metrics   *metrics.Metrics
	reset     bool
	onFile    func(name string, outcome usecase.FileOutcome)
	onBatch   func(done, total int)
}

func WithEmbedder(e port.Embedder) Option {
	return func(o *options) { o.embedder = e }
}

func WithVectorStore(s port.VectorStore) Option {
	return func(o *options) { o.store = s }
}

func WithGenerator(g port.Generator) Option {
	return func(o *options) { o.generator = g }
}

func WithMetadataRepository(r port.MetadataRepository) Option {
	return func(o *options) { o.metadata = r }
}

// WithLoaders replaces the default loader registry.
func WithLoaders(r *loader.Registry) Option {
	return func(o *options) { o.loaders = r }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = &l }
}

// WithClock sets the time source for ingestion timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithReset clears a bolt store whose embedding space no longer matches
// instead of failing.
func WithReset(reset bool) Option {
	return func(o *options) { o.reset = reset }
}

// WithFileHook is called once per directory entry during ingestion.
func WithFileHook(fn func(name string, outcome usecase.FileOutcome)) Option {
	return func(o *options) { o.onFile = fn }
}

// WithBatchHook is called after each embedding batch.
func WithBatchHook(fn func(done, total int)) Option {
	return func(o *options) { o.onBatch = fn }
}
