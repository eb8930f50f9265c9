package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ragpipe/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ingest the raw directory, then answer a question",
	Long: `Run ingestion and retrieval with one pipeline instance. This is the only
way to query the memory backend, which is empty in a new process.

Examples:
  rag run -q "what does the report conclude?"`,
	Args: cobra.NoArgs,
	RunE: runAll,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addQueryFlags(runCmd)
	runCmd.Flags().BoolVar(&ingestReset, "reset", false, "clear a bolt store built for a different embedding model")
}

func runAll(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	p, err := openPipeline(cmd, pipeline.WithReset(ingestReset))
	if err != nil {
		return err
	}
	defer p.Close()

	report, err := ingest(cmd, p)
	if err != nil {
		return err
	}
	if !retrieveJSON {
		printIngestionReport(out, report)
		fmt.Fprintln(out)
	}

	result, err := retrieve(cmd, p)
	if err != nil {
		return err
	}
	return printRetrieval(out, result, retrieveJSON)
}
