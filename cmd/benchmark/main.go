package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"ragpipe/config"
	"ragpipe/internal/domain"
	"ragpipe/internal/pipeline"
)

func main() {
	dir := flag.String("dir", ".", "Project directory holding rag.yaml")
	query := flag.String("q", "", "Query to test")
	topK := flag.Int("k", 10, "Number of results")
	runs := flag.Int("n", 20, "Timed repetitions of the query")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run ./cmd/benchmark -dir ./project -q \"query\"")
		fmt.Println("\nReports:")
		fmt.Println("  1. Store contents (model, dimension, vector count)")
		fmt.Println("  2. Nearest chunks with their distances")
		fmt.Println("  3. Retrieval latency over repeated queries")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	p, err := pipeline.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening pipeline: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()

	count, err := p.Count(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error counting vectors: %v\n", err)
		os.Exit(1)
	}
	if count == 0 {
		fmt.Fprintln(os.Stderr, "No vectors stored - run 'rag ingest' first")
		os.Exit(1)
	}

	fmt.Println("RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Vectors stored: %d (%s)\n", count, cfg.VectorStore.Backend)
	fmt.Printf("Model: %s (%s)\n", cfg.Embedding.Model, cfg.Embedding.Provider)
	fmt.Printf("Dimension: %d\n", cfg.VectorStore.VectorDim)
	fmt.Println()

	fmt.Printf("Query: \"%s\"\n", *query)
	fmt.Println(strings.Repeat("-", 70))

	results, err := p.Retrieve(ctx, *query, *topK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Top %d matches:\n\n", len(results))
	for i, r := range results {
		fmt.Printf("%d. [%s %.3f] %s#%d\n", i+1, rating(r.Distance), r.Distance, r.Filename, r.ChunkID)
		fmt.Printf("   %s\n\n", preview(r))
	}

	latencies := make([]time.Duration, 0, *runs)
	for i := 0; i < *runs; i++ {
		start := time.Now()
		if _, err := p.Retrieve(ctx, *query, *topK); err != nil {
			fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
			os.Exit(1)
		}
		latencies = append(latencies, time.Since(start))
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS:\n")
	fmt.Printf("  Top-1 distance:   %.3f\n", results[0].Distance)
	fmt.Printf("  Mean distance:    %.3f\n", meanDistance(results))
	if len(latencies) > 0 {
		fmt.Printf("LATENCY (%d runs, embedding included):\n", len(latencies))
		fmt.Printf("  p50: %s\n", latencies[len(latencies)/2])
		fmt.Printf("  p95: %s\n", latencies[len(latencies)*95/100])
		fmt.Printf("  max: %s\n", latencies[len(latencies)-1])
	}
}

// rating buckets Euclidean distance between unit-length vectors, which
// lies in [0, 2].
func rating(d float64) string {
	switch {
	case d < 0.6:
		return "HIGH"
	case d < 0.9:
		return "GOOD"
	case d < 1.2:
		return "OK"
	default:
		return "LOW"
	}
}

func meanDistance(results []domain.VectorRecord) float64 {
	if len(results) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range results {
		total += r.Distance
	}
	return total / float64(len(results))
}

func preview(r domain.VectorRecord) string {
	text := []rune(r.Content)
	if len(text) > 150 {
		text = append(text[:150], []rune("...")...)
	}
	return strings.ReplaceAll(string(text), "\n", " ")
}
