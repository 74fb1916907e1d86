package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/enviroscope/enviroscope/internal/sources"
	"github.com/enviroscope/enviroscope/pkg/config"
	"github.com/enviroscope/enviroscope/pkg/scoring"
	"github.com/enviroscope/enviroscope/pkg/surface"
)

func newScoreCmd() *cobra.Command {
	var (
		country     string
		outputFmt   string
		trendSource string
	)

	cmd := &cobra.Command{
		Use:   "score <company>",
		Short: "Compute the composite environmental verification score",
		Long: `Aggregates certifications, enforcement history, renewable energy share,
pollution trend, and policy context into a bounded 0-100 score with
per-signal provenance. Unreachable sources degrade to neutral.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScoreCmd(cmd, args[0], country, outputFmt, trendSource)
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "ISO 3166-1 alpha-2 country code")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	cmd.Flags().StringVar(&trendSource, "trend-source", "", "Pollution trend source: auto, eea or edgar")

	return cmd
}

func runScoreCmd(cmd *cobra.Command, company, country, outputFmt, trendSource string) error {
	cfg := loadConfig()
	if trendSource != "" {
		cfg.Sources.PollutionTrend = trendSource
	}

	signals, err := buildSignals(cfg)
	if err != nil {
		return err
	}
	engine := scoring.NewEngine(scoring.Defaults(), signals...)

	result, err := engine.Score(cmd.Context(), scoring.Request{Company: company, Country: country})
	if err != nil {
		return err
	}

	renderer := rendererFor(outputFmt)
	return renderer.RenderScore(os.Stdout, result)
}

// buildSignals wires the live source clients into the five scoring signals.
func buildSignals(cfg *config.Config) ([]scoring.Signal, error) {
	weights := scoring.Defaults()
	timeout := time.Duration(cfg.Sources.TimeoutSeconds) * time.Second

	iso, err := sources.NewISORegistry()
	if err != nil {
		return nil, fmt.Errorf("loading certification registry: %w", err)
	}
	policy, err := sources.NewPolicyTable()
	if err != nil {
		return nil, fmt.Errorf("loading policy table: %w", err)
	}
	renewables, err := sources.NewRenewablesClient(cfg.Sources.RenewablesBaseURL, timeout, nil)
	if err != nil {
		return nil, fmt.Errorf("loading renewable targets: %w", err)
	}

	epa := sources.NewEPAClient(cfg.Sources.EPABaseURL, timeout, nil)
	eea := sources.NewEEAClient(cfg.Sources.EEABaseURL, timeout, nil)
	edgar := sources.NewEDGARClient(cfg.Sources.EDGARBaseURL, timeout, nil)

	return []scoring.Signal{
		&scoring.CertificationsSignal{Source: iso, Weights: weights},
		&scoring.EnforcementSignal{Source: epa, Weights: weights},
		&scoring.RenewablesSignal{Source: renewables, Weights: weights},
		&scoring.PollutionSignal{EEA: eea, EDGAR: edgar, Mode: cfg.Sources.PollutionTrend, Weights: weights},
		&scoring.PolicySignal{Source: policy, Weights: weights},
	}, nil
}

func rendererFor(outputFmt string) surface.Renderer {
	if outputFmt == "json" {
		return &surface.JSONRenderer{}
	}
	return &surface.TerminalRenderer{}
}
