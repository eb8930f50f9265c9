// Package pipeline wires the ingestion and retrieval workflows from
// configuration.
package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"ragpipe/config"
	"ragpipe/internal/adapter/cache"
	"ragpipe/internal/adapter/chunker"
	"ragpipe/internal/adapter/cleaner"
	"ragpipe/internal/adapter/fs"
	"ragpipe/internal/adapter/loader"
	"ragpipe/internal/adapter/memstore"
	"ragpipe/internal/adapter/postgres"
	"ragpipe/internal/adapter/saver"
	"ragpipe/internal/adapter/sqlite"
	"ragpipe/internal/adapter/store"
	"ragpipe/internal/domain"
	"ragpipe/internal/logger"
	"ragpipe/internal/metrics"
	"ragpipe/internal/port"
	"ragpipe/internal/usecase"
)

// Pipeline holds every component of one configured instance. It is built
// once by New and not modified afterwards; independent instances do not
// share state.
type Pipeline struct {
	cfg     config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics

	data       *usecase.DataService
	embeddings *usecase.EmbeddingService
	retrieval  *usecase.RetrievalService
	answers    *usecase.QueryService
	store      port.VectorStore
	metadata   port.MetadataRepository
	generator  port.Generator

	closers []io.Closer
}

// New validates cfg, builds all components, opens the configured backends
// and checks that the embedding model and the vector store agree on
// dimension. Configuration errors are reported before any file or
// connection is opened.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (p *Pipeline, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p = &Pipeline{cfg: *cfg, log: logger.Nop(), metrics: o.metrics}
	if o.log != nil {
		p.log = logger.Component(*o.log, "pipeline")
	}
	if p.metrics == nil {
		p.metrics = metrics.New()
	}

	windows, err := chunker.NewWindowChunker(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	if err != nil {
		return nil, err
	}
	lister := fs.NewLister(cfg.Data.Includes, cfg.Data.Excludes)
	if err := lister.Validate(); err != nil {
		return nil, err
	}

	embedder := o.embedder
	if embedder == nil {
		if embedder, err = newEmbedder(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Embedding.CacheSize > 0 {
		embedder = cache.NewCachedEmbedder(embedder, cache.NewEmbeddingCache(cfg.Embedding.CacheSize, 0))
	}

	p.generator = o.generator
	if p.generator == nil {
		onBreaker := func(from, to string) {
			p.log.Warn().Str("from", from).Str("to", to).Msg("generator circuit breaker changed state")
		}
		if p.generator, err = newGenerator(ctx, cfg, onBreaker); err != nil {
			return nil, err
		}
		if c, ok := p.generator.(io.Closer); ok {
			p.closers = append(p.closers, c)
		}
	}

	defer func() {
		if err != nil {
			p.Close()
			p = nil
		}
	}()

	if err := p.openBackends(ctx, embedder, &o); err != nil {
		return p, err
	}

	p.embeddings = usecase.NewEmbeddingService(embedder, cfg.Embedding.BatchSize)
	if err := p.embeddings.CheckDimension(p.store.Dimension()); err != nil {
		return p, err
	}
	p.embeddings.OnBatch = o.onBatch

	loaders := o.loaders
	if loaders == nil {
		loaders = loader.Default()
	}
	p.data = usecase.NewDataService(
		lister,
		loaders,
		cleaner.NewSimpleCleaner(),
		windows,
		p.metadata,
		saver.NewFileSaver(cfg.Data.ProcessedDirectory),
		o.now,
		logger.Component(p.log, "data"),
	)
	p.data.OnFile = o.onFile
	p.retrieval = usecase.NewRetrievalService(p.embeddings, p.store)
	p.answers = usecase.NewQueryService(p.generator)

	p.log.Debug().
		Str("vector_store", cfg.VectorStore.Backend).
		Str("metadata", cfg.Metadata.Backend).
		Str("embedder", embedder.ModelName()).
		Str("generator", p.generator.ModelName()).
		Int("dimension", p.store.Dimension()).
		Msg("pipeline ready")
	return p, nil
}

// openBackends opens the bolt file and the database connection when the
// configuration needs them and builds the store and repository.
func (p *Pipeline) openBackends(ctx context.Context, embedder port.Embedder, o *options) error {
	cfg := &p.cfg
	p.store, p.metadata = o.store, o.metadata

	needBolt := (p.store == nil && cfg.VectorStore.Backend == "bolt") ||
		(p.metadata == nil && cfg.Metadata.Backend == "bolt")
	needPostgres := (p.store == nil && cfg.VectorStore.Backend == "postgres") ||
		(p.metadata == nil && cfg.Metadata.Backend == "postgres")

	var (
		bolt *store.BoltStore
		db   *sql.DB
		err  error
	)
	if needBolt {
		if bolt, err = store.NewBoltStore(cfg.VectorStore.Path); err != nil {
			return err
		}
		p.closers = append(p.closers, bolt)

		space := store.EmbeddingSpace{
			Dimension: cfg.VectorStore.VectorDim,
			Provider:  cfg.Embedding.Provider,
			Model:     embedder.ModelName(),
		}
		if err := bolt.CheckEmbeddingSpace(space); err != nil {
			if !o.reset || !errors.Is(err, domain.ErrConfiguration) {
				return err
			}
			p.log.Warn().Err(err).Str("path", bolt.Path()).Msg("resetting bolt store")
			if err := bolt.Reset(space); err != nil {
				return err
			}
		}
	}
	if needPostgres {
		if db, err = postgres.Open(ctx, cfg.DatabaseURL()); err != nil {
			return err
		}
		p.closers = append(p.closers, db)
		if err := postgres.EnsureSchema(ctx, db, cfg.VectorStore.VectorDim); err != nil {
			return err
		}
	}

	if p.store == nil {
		switch cfg.VectorStore.Backend {
		case "memory":
			p.store = memstore.NewFlatIndex(cfg.VectorStore.VectorDim)
		case "bolt":
			if p.store, err = store.NewBoltVectorStore(bolt, cfg.VectorStore.VectorDim); err != nil {
				return err
			}
		case "postgres":
			p.store = postgres.NewVectorStore(db, cfg.VectorStore.VectorDim)
		}
	}

	if p.metadata == nil {
		switch cfg.Metadata.Backend {
		case "bolt":
			p.metadata = store.NewBoltMetadataRepository(bolt)
		case "sqlite":
			repo, err := sqlite.Open(cfg.Metadata.Path)
			if err != nil {
				return err
			}
			p.closers = append(p.closers, repo)
			p.metadata = repo
		case "postgres":
			p.metadata = postgres.NewMetadataRepository(db)
		}
	}
	return nil
}

// Config returns a copy of the configuration the pipeline was built from.
func (p *Pipeline) Config() config.Config {
	return p.cfg
}

func (p *Pipeline) Metrics() *metrics.Metrics {
	return p.metrics
}

// Metadata lists the provenance records written so far.
func (p *Pipeline) Metadata(ctx context.Context) ([]domain.MetadataRecord, error) {
	return p.metadata.FetchMetadata(ctx)
}

// Count returns the number of stored vectors.
func (p *Pipeline) Count(ctx context.Context) (int, error) {
	return p.store.Count(ctx)
}

// Retrieve returns the records nearest to query without generating an answer.
func (p *Pipeline) Retrieve(ctx context.Context, query string, topK int) ([]domain.VectorRecord, error) {
	start := time.Now()
	records, err := p.retrieval.Search(ctx, query, topK)
	p.metrics.ObserveStage("retrieval", "search", start)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Close releases what New opened, newest first.
func (p *Pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("close pipeline: %w", errors.Join(errs...))
	}
	return nil
}
