// Package cmd provides the CLI commands for irengine.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/events"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/logger"
)

const publishTimeout = 10 * time.Second

// globals holds state shared by every subcommand once the root pre-run has
// loaded the configuration.
type globals struct {
	configPath string
	cfg        *config.Config
}

// NewRootCmd creates the root command for the irengine CLI.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   "irengine",
		Short: "Index a document corpus, rank queries and evaluate rankings",
		Long: `irengine builds a term-frequency index of an HTML corpus, answers
weighted keyword queries ranked by tf-idf inner product, and scores
batch rankings against relevance judgments.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
			g.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Path to YAML config file")

	cmd.AddCommand(newIndexCmd(g))
	cmd.AddCommand(newEraseCmd(g))
	cmd.AddCommand(newQueryCmd(g))
	cmd.AddCommand(newSearchCmd(g))
	cmd.AddCommand(newEvaluateCmd(g))

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// publishRun announces a finished index or erase run when Kafka is enabled.
// Publishing failures are logged and never fail the run.
func publishRun(ctx context.Context, cfg *config.Config, ev events.IndexComplete) {
	if !cfg.Kafka.Enabled {
		return
	}
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
	defer producer.Close()

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := events.NewPublisher(producer).PublishIndexComplete(ctx, ev); err != nil {
		slog.Warn("failed to publish run event", "run", ev.Kind, "error", err)
	}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
