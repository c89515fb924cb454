package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/app"
)

func newSearchCmd(g *globals) *cobra.Command {
	var (
		queryFile  string
		resultsDir string
		expand     bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run every query of a file and write one result file per query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := g.cfg
			ctx := cmd.Context()
			if queryFile == "" {
				queryFile = cfg.Search.QueryFile
			}
			if resultsDir == "" {
				resultsDir = cfg.Search.ResultsDir
			}
			if cmd.Flags().Changed("expand") {
				cfg.Search.Expand = expand
			}

			st, err := app.OpenStore(ctx, cfg.Store, cfg.Postgres)
			if err != nil {
				return err
			}
			defer st.Close()

			exec, _ := app.NewExecutor(cfg, st, nil)
			stats, err := exec.RunBatch(ctx, queryFile, resultsDir)
			if err != nil {
				return err
			}
			printf(cmd, "ran %d queries (%d failed), results in %s\n", stats.Queries, stats.Failed, resultsDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&queryFile, "queries", "q", "", "File with one query per line (default from config)")
	cmd.Flags().StringVarP(&resultsDir, "out", "o", "", "Directory for result files (default from config)")
	cmd.Flags().BoolVar(&expand, "expand", false, "Expand queries with synonyms")

	return cmd
}
