package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ragpipe/internal/pipeline"
	"ragpipe/internal/usecase"
)

var (
	retrieveQuery      string
	retrieveTopK       int
	retrieveJSON       bool
	retrieveNoGenerate bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Answer a question from the vector store",
	Long: `Embed the question, fetch the nearest chunks and ask the generation
backend for an answer. Without -q the configured query.text is used.

Examples:
  rag retrieve -q "how are chunks stored?"
  rag retrieve -q "chunk overlap" -k 10 --no-generate --json`,
	Args: cobra.NoArgs,
	RunE: runRetrieve,
}

func init() {
	rootCmd.AddCommand(retrieveCmd)
	addQueryFlags(retrieveCmd)
}

// addQueryFlags registers the flags shared by retrieve and run.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&retrieveQuery, "query", "q", "", "question (default from query.text)")
	cmd.Flags().IntVarP(&retrieveTopK, "top-k", "k", 0, "number of chunks (default from query.top_k)")
	cmd.Flags().BoolVar(&retrieveJSON, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&retrieveNoGenerate, "no-generate", false, "only list the nearest chunks")
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	p, err := openPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := retrieve(cmd, p)
	if err != nil {
		return err
	}
	return printRetrieval(cmd.OutOrStdout(), result, retrieveJSON)
}

func retrieve(cmd *cobra.Command, p *pipeline.Pipeline) (*pipeline.RetrievalResult, error) {
	topK := cfg.Query.TopK
	if retrieveTopK > 0 {
		topK = retrieveTopK
	}

	if !retrieveNoGenerate {
		result, err := p.RunRetrieval(cmd.Context(), retrieveQuery, topK)
		if err != nil {
			return nil, fmt.Errorf("retrieval failed: %w", err)
		}
		return result, nil
	}

	query := retrieveQuery
	if strings.TrimSpace(query) == "" {
		query = cfg.Query.Text
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("no query: pass -q or set query.text")
	}
	records, err := p.Retrieve(cmd.Context(), query, topK)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	result := &pipeline.RetrievalResult{Query: query, TopK: topK, Records: records}
	result.Context = usecase.BuildContext(result.Chunks())
	return result, nil
}

func printRetrieval(out io.Writer, result *pipeline.RetrievalResult, asJSON bool) error {
	if asJSON {
		for i := range result.Records {
			result.Records[i].Embedding = nil
		}
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	if len(result.Records) == 0 {
		fmt.Fprintln(out, "No chunks found. Run 'rag ingest' first.")
	} else {
		fmt.Fprintf(out, "Found %d chunks for: %s\n\n", len(result.Records), result.Query)
	}
	for i, r := range result.Records {
		fmt.Fprintf(out, "--- [%d] %s#%d (distance: %.4f) ---\n", i+1, r.Filename, r.ChunkID, r.Distance)
		text := r.Content
		if len([]rune(text)) > 500 {
			text = string([]rune(text)[:500]) + "..."
		}
		fmt.Fprintln(out, text)
		fmt.Fprintln(out)
	}

	if result.Answer != "" {
		fmt.Fprintf(out, "Answer:\n%s\n", result.Answer)
	}
	return nil
}
