package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/evaluation"
)

func newEvaluateCmd(g *globals) *cobra.Command {
	var (
		qrelsDir   string
		resultsDir string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score result files against relevance judgments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := g.cfg
			if qrelsDir == "" {
				qrelsDir = cfg.Evaluation.QrelsDir
			}
			if resultsDir == "" {
				resultsDir = cfg.Evaluation.ResultsDir
			}

			report, err := evaluation.New(qrelsDir, resultsDir).Evaluate(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					*evaluation.Report
					Average evaluation.Evaluation `json:"average"`
				}{report, report.Average()})
			}
			printf(cmd, "%s", report)
			return nil
		},
	}

	cmd.Flags().StringVar(&qrelsDir, "qrels", "", "Directory of relevance judgments (default from config)")
	cmd.Flags().StringVar(&resultsDir, "results", "", "Directory of result files (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}
