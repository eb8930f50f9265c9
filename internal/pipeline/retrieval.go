package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ragpipe/internal/domain"
	"ragpipe/internal/usecase"
)

// RetrievalResult is the outcome of one retrieval run.
type RetrievalResult struct {
	RunID    string                `json:"run_id"`
	Query    string                `json:"query"`
	TopK     int                   `json:"top_k"`
	Records  []domain.VectorRecord `json:"records"`
	Context  string                `json:"context"`
	Answer   string                `json:"answer"`
	State    State                 `json:"-"`
	Duration time.Duration         `json:"duration_ns"`
}

// Chunks returns the retrieved chunks, nearest first.
func (r *RetrievalResult) Chunks() []domain.Chunk {
	out := make([]domain.Chunk, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.Chunk()
	}
	return out
}

// RunRetrieval embeds query, fetches the topK nearest chunks and asks the
// generator for an answer. An empty query falls back to query.text and a
// non-positive topK to query.top_k.
func (p *Pipeline) RunRetrieval(ctx context.Context, query string, topK int) (*RetrievalResult, error) {
	start := time.Now()
	r := p.newRun("retrieval")
	if strings.TrimSpace(query) == "" {
		query = p.cfg.Query.Text
	}
	if topK <= 0 {
		topK = p.cfg.Query.TopK
	}
	result := &RetrievalResult{RunID: r.id, Query: query, TopK: topK}
	defer func() {
		result.State = r.state
		result.Duration = time.Since(start)
		outcome := "ok"
		if r.state == StateFailed {
			outcome = "failed"
		}
		p.metrics.RetrievalsTotal.WithLabelValues(outcome).Inc()
	}()

	if strings.TrimSpace(query) == "" {
		return result, r.fail(fmt.Errorf("%w: query is empty", domain.ErrInvalidInput))
	}

	r.enter(StateEmbedQuery)
	vector, err := p.retrieval.EmbedQuery(ctx, query)
	if err != nil {
		return result, r.fail(err)
	}

	r.enter(StateSearchVectors)
	records, err := p.retrieval.Nearest(ctx, vector, topK)
	if err != nil {
		return result, r.fail(err)
	}
	result.Records = records
	if len(records) == 0 {
		r.log.Warn().Msg("vector store returned no chunks")
	}

	r.enter(StateAssembleContext)
	chunks := result.Chunks()
	result.Context = usecase.BuildContext(chunks)

	r.enter(StateGenerate)
	answer, err := p.answers.Answer(ctx, query, chunks)
	if err != nil {
		return result, r.fail(err)
	}
	result.Answer = answer

	r.enter(StateDone)
	r.log.Info().
		Int("chunks", len(records)).
		Dur("duration", time.Since(start)).
		Msg("retrieval finished")
	return result, nil
}
