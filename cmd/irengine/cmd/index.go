package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/app"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/events"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/indexer/parser"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/indexer/tokenizer"
)

func newIndexCmd(g *globals) *cobra.Command {
	var (
		corpusDir string
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index every document of the corpus directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := g.cfg
			if corpusDir == "" {
				corpusDir = cfg.Indexer.CorpusDir
			}
			if workers <= 0 {
				workers = cfg.Indexer.Workers
			}
			ctx := cmd.Context()

			lock, err := indexer.AcquireRunLock(cfg.Indexer.LockDir)
			if err != nil {
				return err
			}
			defer lock.Release()

			sources, err := indexer.ListCorpus(corpusDir)
			if err != nil {
				slog.Error("cannot list corpus", "dir", corpusDir, "error", err)
				return err
			}

			st, err := app.OpenStore(ctx, cfg.Store, cfg.Postgres)
			if err != nil {
				return err
			}
			defer st.Close()

			stop := tokenizer.LoadStopWords(cfg.Indexer.StopWordsFile)
			engine := indexer.NewEngine(st, parser.HTML{}, stop, workers)
			stats, err := engine.Run(ctx, sources)
			if err != nil {
				return err
			}

			publishRun(ctx, cfg, events.IndexComplete{
				Kind:       events.RunIndex,
				Documents:  stats.Documents,
				Indexed:    stats.Indexed,
				Failed:     stats.Failed,
				Postings:   stats.Postings,
				DurationMS: stats.Duration.Milliseconds(),
			})

			printf(cmd, "indexed %d/%d documents (%d failed, %d unparsable), %d postings in %s\n",
				stats.Indexed, stats.Documents, stats.Failed, stats.ParseFailures, stats.Postings, stats.Duration)
			return nil
		},
	}

	cmd.Flags().StringVar(&corpusDir, "corpus", "", "Corpus directory (default from config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of indexing workers (default from config)")

	return cmd
}
