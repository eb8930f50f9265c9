package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ragpipe/config"
	"ragpipe/internal/logger"
	"ragpipe/internal/metrics"
	"ragpipe/internal/pipeline"
)

var (
	cfgFile  string
	rootDir  string
	logLevel string

	cfg    *config.Config
	appLog zerolog.Logger
	reg    *metrics.Metrics
)

var rootCmd = &cobra.Command{
	Use:   "rag",
	Short: "Ingest documents into a vector index and answer questions from it",
	Long: `rag loads the files of a raw directory, cleans and splits them into
overlapping windows, embeds every window and appends it to a vector store.
Questions are embedded the same way; the nearest windows become the context
handed to a generation backend.

Example usage:
  rag init                          # Write a default rag.yaml
  rag ingest                        # Index data/raw
  rag retrieve -q "what is bolt?"   # Answer from the index
  rag run -q "what is bolt?"        # Ingest, then answer`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if err := godotenv.Load(filepath.Join(rootDir, ".env")); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
			if err == nil {
				cfg.ResolvePaths(rootDir)
			}
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		appLog = logger.New(logger.Config{
			Level:  cfg.Logging.Level,
			Pretty: cfg.Logging.Pretty,
			Output: cmd.ErrOrStderr(),
		})
		reg = metrics.New()
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil || cfg.Metrics.Textfile == "" {
			return nil
		}
		if err := config.EnsureDir(cfg.Metrics.Textfile); err != nil {
			return err
		}
		return reg.WriteTextfile(cfg.Metrics.Textfile)
	},
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./rag.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

// openPipeline builds a pipeline from the loaded configuration, sharing the
// command's logger and metrics.
func openPipeline(cmd *cobra.Command, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	opts = append([]pipeline.Option{
		pipeline.WithLogger(appLog),
		pipeline.WithMetrics(reg),
	}, opts...)

	p, err := pipeline.New(cmd.Context(), cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	return p, nil
}
