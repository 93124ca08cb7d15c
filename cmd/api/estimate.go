package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"shipquote/internal/quote"
	"shipquote/internal/rate"
)

func newEstimateCmd() *cobra.Command {
	var weight, origin, destination string
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Print the provisional local estimate",
		Long: `Print the provisional estimate computed locally from weight and regions.

Missing or malformed inputs are not errors; they fall back to the base cost.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			est := rate.EstimateLocal(quote.ParseLocalInputs(weight, origin, destination))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Cost        float64          `json:"cost"`
				DisplayCost string           `json:"display_cost"`
				Confidence  quote.Confidence `json:"confidence"`
			}{est.Cost, quote.FormatINR(est.Cost), est.Confidence})
		},
	}
	cmd.Flags().StringVar(&weight, "weight-kg", "", "package weight in kilograms")
	cmd.Flags().StringVar(&origin, "origin-region", "", "origin region code")
	cmd.Flags().StringVar(&destination, "destination-region", "", "destination region code")
	return cmd
}
