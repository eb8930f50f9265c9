package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ragpipe/internal/pipeline"
)

var (
	ingestReset bool
	ingestQuiet bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest the raw directory into the vector store",
	Long: `Load every supported file of data.raw_directory, clean and chunk it,
write the chunk files to data.processed_directory, embed the chunks and
append them to the configured vector store.

Examples:
  rag ingest
  rag ingest --reset        # rebuild a bolt store made with another model`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestReset, "reset", false, "clear a bolt store built for a different embedding model")
	ingestCmd.Flags().BoolVar(&ingestQuiet, "quiet", false, "hide the progress bar")
}

func runIngest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	progress := newEmbedProgress(cmd.ErrOrStderr(), ingestQuiet)
	p, err := openPipeline(cmd,
		pipeline.WithReset(ingestReset),
		pipeline.WithBatchHook(progress.update),
	)
	if err != nil {
		return err
	}
	defer p.Close()

	fmt.Fprintf(out, "Ingesting %s...\n", cfg.Data.RawDirectory)
	report, err := ingest(cmd, p)
	if err != nil {
		return err
	}
	printIngestionReport(out, report)
	return nil
}

func ingest(cmd *cobra.Command, p *pipeline.Pipeline) (*pipeline.IngestionReport, error) {
	report, err := p.RunIngestion(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("ingestion failed: %w", err)
	}
	return report, nil
}

func printIngestionReport(out io.Writer, report *pipeline.IngestionReport) {
	fmt.Fprintf(out, "\nIngestion complete:\n")
	fmt.Fprintf(out, "  Files processed: %d\n", report.FilesProcessed)
	fmt.Fprintf(out, "  Files skipped:   %d (no loader)\n", report.FilesSkipped)
	fmt.Fprintf(out, "  Files failed:    %d\n", report.FilesFailed)
	fmt.Fprintf(out, "  Chunks created:  %d\n", report.Chunks)
	fmt.Fprintf(out, "  Vectors stored:  %d\n", report.VectorsInserted)
	fmt.Fprintf(out, "  Duration:        %s\n", formatDuration(report.Duration))

	if len(report.Warnings) > 0 {
		fmt.Fprintf(out, "\nWarnings:\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}
}

// embedProgress draws a bar over embedding batches. The bar is created on the
// first batch, once the total is known.
type embedProgress struct {
	w       io.Writer
	quiet   bool
	bar     *progressbar.ProgressBar
	started time.Time
}

func newEmbedProgress(w io.Writer, quiet bool) *embedProgress {
	return &embedProgress{w: w, quiet: quiet}
}

func (p *embedProgress) update(done, total int) {
	if p.quiet {
		return
	}
	if p.bar == nil {
		p.started = time.Now()
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowBytes(false),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(p.w)
			}),
		)
	}

	p.bar.Set(done)

	if done > 0 && done < total {
		rate := float64(done) / time.Since(p.started).Seconds()
		if rate > 0 {
			eta := time.Duration(float64(total-done)/rate) * time.Second
			p.bar.Describe(fmt.Sprintf("[cyan]Embedding[reset] ETA: %s", formatDuration(eta)))
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
