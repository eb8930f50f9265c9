package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var metadataJSON bool

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "List the provenance record of every ingested file",
	Args:  cobra.NoArgs,
	RunE:  runMetadata,
}

func init() {
	rootCmd.AddCommand(metadataCmd)
	metadataCmd.Flags().BoolVar(&metadataJSON, "json", false, "output as JSON")
}

func runMetadata(cmd *cobra.Command, args []string) error {
	p, err := openPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	records, err := p.Metadata(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch metadata: %w", err)
	}

	out := cmd.OutOrStdout()
	if metadataJSON {
		output, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No files ingested yet.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tSOURCE\tINGESTED")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Filename, r.Source, r.IngestionTimestamp)
	}
	return w.Flush()
}
