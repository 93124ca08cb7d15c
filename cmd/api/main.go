package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shipquote/internal/config"
	"shipquote/internal/intake"
	"shipquote/internal/logging"
	"shipquote/internal/pricing"
	"shipquote/internal/quote"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shipquote",
		Short: "Shipping cost estimates and quotes",
		Long: `shipquote prices shipments.

Available subcommands:
  serve    - Run the HTTP API
  estimate - Print the provisional local estimate
  quote    - Request an authoritative quote for a shipment file`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newEstimateCmd(), newQuoteCmd())
	return root
}

// runtime carries what every subcommand needs after startup.
type runtime struct {
	cfg config.Config
	log *zap.Logger
}

func loadRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(logging.Options{Service: "shipquote", Env: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &runtime{cfg: cfg, log: log}, nil
}

func (rt *runtime) pricingClient(onPhase func(string, quote.Phase)) (*pricing.Client, error) {
	return pricing.New(pricing.Config{
		Endpoint: rt.cfg.PricingURL,
		Timeout:  rt.cfg.PricingTimeout,
		Enums:    rt.cfg.Enums,
		Logger:   rt.log.Named("pricing"),
		OnPhase:  onPhase,
	})
}

func (rt *runtime) intakeClient() *intake.Client {
	return intake.NewClient(intake.Config{
		ShipmentsURL: rt.cfg.ShipmentsURL,
		FeedbackURL:  rt.cfg.FeedbackURL,
		Timeout:      rt.cfg.IntakeTimeout,
		Logger:       rt.log.Named("intake"),
	})
}
