package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/app"
)

func newQueryCmd(g *globals) *cobra.Command {
	var (
		limit  int
		expand bool
	)

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run one query and print the ranked documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.cfg
			ctx := cmd.Context()
			if cmd.Flags().Changed("expand") {
				cfg.Search.Expand = expand
			}
			if limit <= 0 {
				limit = cfg.Search.DefaultLimit
			}

			st, err := app.OpenStore(ctx, cfg.Store, cfg.Postgres)
			if err != nil {
				return err
			}
			defer st.Close()

			exec, _ := app.NewExecutor(cfg, st, nil)
			result, err := exec.Search(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			printf(cmd, "%d documents match\n", result.TotalHits)
			for i, doc := range result.Results {
				if i == limit {
					break
				}
				printf(cmd, "%3d. %-20s %.4f\n", i+1, doc.DocumentName, doc.Relevance)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of documents to print (default from config)")
	cmd.Flags().BoolVar(&expand, "expand", false, "Expand the query with synonyms")

	return cmd
}
