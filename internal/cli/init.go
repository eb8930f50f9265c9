package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ragpipe/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default rag.yaml",
	Long: `Write the default configuration to rag.yaml in the root directory and
create the raw data directory.

Examples:
  rag init
  rag init -d /path/to/project --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing rag.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := filepath.Join(GetRootDir(), "rag.yaml")
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	raw := filepath.Join(GetRootDir(), config.DefaultConfig().Data.RawDirectory)
	if err := os.MkdirAll(raw, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", raw, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s\n", path)
	fmt.Fprintf(out, "Put documents in %s and run 'rag ingest'.\n", raw)
	return nil
}
