package cmd

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/app"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/events"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/indexer"
)

func newEraseCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "erase",
		Short: "Delete every document, term and posting from the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := g.cfg
			ctx := cmd.Context()
			start := time.Now()

			lock, err := indexer.AcquireRunLock(cfg.Indexer.LockDir)
			if err != nil {
				return err
			}
			defer lock.Release()

			st, err := app.OpenStore(ctx, cfg.Store, cfg.Postgres)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.EraseAll(ctx); err != nil {
				return err
			}
			slog.Info("index erased", "driver", cfg.Store.Driver)

			publishRun(ctx, cfg, events.IndexComplete{
				Kind:       events.RunErase,
				DurationMS: time.Since(start).Milliseconds(),
			})
			printf(cmd, "index erased\n")
			return nil
		},
	}
}
