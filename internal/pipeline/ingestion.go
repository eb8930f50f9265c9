package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ragpipe/internal/metrics"
)

// IngestionReport summarizes one ingestion run.
type IngestionReport struct {
	RunID           string
	State           State
	FilesProcessed  int
	FilesSkipped    int
	FilesFailed     int
	Chunks          int
	VectorsInserted int
	Warnings        []string
	Duration        time.Duration
}

// run tracks the state of one workflow execution.
type run struct {
	id       string
	workflow string
	state    State
	log      zerolog.Logger
	metrics  *metrics.Metrics
	stage    time.Time
}

func (p *Pipeline) newRun(workflow string) *run {
	id := uuid.NewString()
	return &run{
		id:       id,
		workflow: workflow,
		state:    StateIdle,
		log:      p.log.With().Str("workflow", workflow).Str("run_id", id).Logger(),
		metrics:  p.metrics,
		stage:    time.Now(),
	}
}

// enter records the time spent in the current state and moves to next.
func (r *run) enter(next State) {
	if r.state != StateIdle {
		r.metrics.ObserveStage(r.workflow, r.state.String(), r.stage)
	}
	r.log.Debug().Str("from", r.state.String()).Str("to", next.String()).Msg("state change")
	r.state = next
	r.stage = time.Now()
}

func (r *run) fail(err error) error {
	r.log.Error().Err(err).Str("state", r.state.String()).Msg("run failed")
	r.enter(StateFailed)
	return err
}

// RunIngestion loads, cleans, chunks, embeds and stores every supported file
// of the raw directory. A run that fails in embedding or insertion stores
// nothing; files already processed keep their metadata and chunk files.
func (p *Pipeline) RunIngestion(ctx context.Context) (*IngestionReport, error) {
	start := time.Now()
	r := p.newRun("ingestion")
	report := &IngestionReport{RunID: r.id}
	defer func() {
		report.State = r.state
		report.Duration = time.Since(start)
	}()

	r.enter(StateDiscovering)
	r.log.Info().Str("directory", p.cfg.Data.RawDirectory).Msg("ingestion started")

	r.enter(StateProcessing)
	result, err := p.data.ProcessFiles(ctx, p.cfg.Data.RawDirectory)
	if err != nil {
		return report, r.fail(err)
	}
	report.FilesProcessed = result.FilesProcessed
	report.FilesSkipped = result.FilesSkipped
	report.FilesFailed = result.FilesFailed
	report.Chunks = len(result.Chunks)
	report.Warnings = result.Warnings

	p.metrics.FilesTotal.WithLabelValues(metrics.OutcomeProcessed).Add(float64(result.FilesProcessed))
	p.metrics.FilesTotal.WithLabelValues(metrics.OutcomeSkipped).Add(float64(result.FilesSkipped))
	p.metrics.FilesTotal.WithLabelValues(metrics.OutcomeFailed).Add(float64(result.FilesFailed))
	p.metrics.ChunksTotal.Add(float64(len(result.Chunks)))

	r.enter(StateEmbedding)
	embedded, err := p.embeddings.EmbedChunks(ctx, result.Chunks)
	if err != nil {
		return report, r.fail(err)
	}

	r.enter(StateInsertingVectors)
	if err := p.store.Insert(ctx, embedded); err != nil {
		return report, r.fail(err)
	}
	report.VectorsInserted = len(embedded)
	p.metrics.VectorsInserted.Add(float64(len(embedded)))

	r.enter(StateDone)
	r.log.Info().
		Int("files_processed", report.FilesProcessed).
		Int("files_skipped", report.FilesSkipped).
		Int("files_failed", report.FilesFailed).
		Int("chunks", report.Chunks).
		Dur("duration", time.Since(start)).
		Msg("ingestion finished")
	return report, nil
}
