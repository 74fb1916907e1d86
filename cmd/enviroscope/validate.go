package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/enviroscope/enviroscope/internal/sources"
	"github.com/enviroscope/enviroscope/pkg/config"
	"github.com/enviroscope/enviroscope/pkg/validation"
)

func newValidateCmd() *cobra.Command {
	var (
		payloadFile  string
		outputFmt    string
		facilityID   string
		facilityName string
		state        string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Cross-validate a disclosure against regulator data",
		Long: `Normalizes a self-reported disclosure and compares it against regulator
facility figures. Without --facility-id only the qualitative name search
runs; the hosted service resolves mappings from its database instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateCmd(cmd.Context(), validateOpts{
				payloadFile:  payloadFile,
				outputFmt:    outputFmt,
				facilityID:   facilityID,
				facilityName: facilityName,
				state:        state,
			})
		},
	}

	cmd.Flags().StringVarP(&payloadFile, "file", "f", "", "Path to disclosure payload JSON (required)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	cmd.Flags().StringVar(&facilityID, "facility-id", "", "Regulator facility ID to compare against")
	cmd.Flags().StringVar(&facilityName, "facility-name", "", "Facility name for the report")
	cmd.Flags().StringVar(&state, "state", "", "Facility state code")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

type validateOpts struct {
	payloadFile  string
	outputFmt    string
	facilityID   string
	facilityName string
	state        string
}

func runValidateCmd(ctx context.Context, opts validateOpts) error {
	data, err := readPayload(opts.payloadFile)
	if err != nil {
		return err
	}

	var req validation.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parsing payload: %w", err)
	}

	cfg := loadConfig()
	engine := buildValidationEngine(cfg, opts)

	report, err := engine.CrossValidate(ctx, req)
	if err != nil {
		return err
	}

	renderer := rendererFor(opts.outputFmt)
	return renderer.RenderReport(os.Stdout, report)
}

func buildValidationEngine(cfg *config.Config, opts validateOpts) *validation.Engine {
	timeout := time.Duration(cfg.Sources.TimeoutSeconds) * time.Second

	engine := &validation.Engine{
		Primary: sources.NewCAMPDClient(cfg.Sources.CAMPDBaseURL, cfg.Sources.CAMPDAPIKey, timeout, nil),
		Search:  sources.NewEPAClient(cfg.Sources.EPABaseURL, timeout, nil),
	}
	if cfg.Sources.EIAFallback {
		engine.Fallback = sources.NewEIAClient(cfg.Sources.EIABaseURL, cfg.Sources.EIAAPIKey, timeout, nil)
	}
	if opts.facilityID != "" {
		engine.Mappings = &staticMapping{
			mapping: validation.Mapping{
				FacilityID:   opts.facilityID,
				FacilityName: opts.facilityName,
				State:        opts.state,
			},
		}
	}
	return engine
}

// staticMapping serves one flag-supplied mapping for any company, so the CLI
// can run a quantitative comparison without the service database.
type staticMapping struct {
	mapping validation.Mapping
}

func (s *staticMapping) GetMapping(_ context.Context, company string) (*validation.Mapping, error) {
	m := s.mapping
	m.Company = company
	return &m, nil
}
