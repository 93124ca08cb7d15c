package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"shipquote/internal/quote"
)

func newQuoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote <shipment.yaml>",
		Short: "Request an authoritative quote for a shipment file",
		Long: `Read a shipment description (YAML or JSON) and submit it to the pricing service.

The exit status is non-zero when the request is invalid, denied or the
service cannot be reached.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(args[0])
			if err != nil {
				return err
			}
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			defer rt.log.Sync()

			client, err := rt.pricingClient(func(rid string, p quote.Phase) {
				rt.log.Debug("quote phase", zap.String("request_id", rid), zap.Stringer("phase", p))
			})
			if err != nil {
				return err
			}
			res, err := client.RequestQuote(cmd.Context(), req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				PredictedCost float64          `json:"predicted_cost"`
				DisplayCost   string           `json:"display_cost"`
				Confidence    quote.Confidence `json:"confidence"`
			}{res.PredictedCost, quote.FormatINR(res.PredictedCost), res.Confidence})
		},
	}
}

// readRequest decodes a shipment file. JSON is accepted as YAML.
func readRequest(path string) (quote.Request, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return quote.Request{}, fmt.Errorf("read shipment file: %w", err)
	}
	var req quote.Request
	if err := yaml.Unmarshal(b, &req); err != nil {
		return quote.Request{}, fmt.Errorf("parse shipment file %s: %w", path, err)
	}
	return req, nil
}
