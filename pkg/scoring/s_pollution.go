package scoring

import (
	"context"
	"fmt"
	"math"
)

// Trend is a fitted pollution trend for a country: the slope of recent
// emission levels and whether they are increasing.
type Trend struct {
	Slope    float64
	Increase bool
	Source   string
}

// PollutionTrendSource provides a country-level pollution trend.
type PollutionTrendSource interface {
	PollutionTrend(ctx context.Context, country string) (Trend, error)
}

// Pollution trend source selection modes.
const (
	TrendModeAuto  = "auto" // EEA first, EDGAR as fallback
	TrendModeEEA   = "eea"
	TrendModeEDGAR = "edgar"
)

// PollutionSignal penalizes a worsening national pollution trend. Which
// upstream dataset answered is reported as pollution_trend_source so score
// consumers can tell EEA-backed results from EDGAR fallbacks.
type PollutionSignal struct {
	EEA     PollutionTrendSource
	EDGAR   PollutionTrendSource
	Mode    string // TrendModeAuto, TrendModeEEA or TrendModeEDGAR
	Weights Weights
}

func (s *PollutionSignal) Key() string  { return KeyPollution }
func (s *PollutionSignal) Name() string { return "Pollution trend" }

func (s *PollutionSignal) Evaluate(ctx context.Context, req Request) SignalResult {
	result := SignalResult{
		Key:  s.Key(),
		Name: s.Name(),
		Sources: map[string]any{
			"pollution_source":       sourceUnavailable,
			"edgar_source":           sourceUnavailable,
			"pollution_trend_source": sourceUnavailable,
		},
	}

	trend, used, ok := s.fetch(ctx, req.Country, result.Sources)
	if !ok {
		result.Detail = "pollution trend unavailable"
		return result
	}

	result.Sources["pollution_trend_source"] = used
	if trend.Increase {
		result.Contribution = math.Max(s.Weights.PollutionFloor, -(math.Abs(trend.Slope) * s.Weights.PollutionSlopeWeight))
		result.Detail = fmt.Sprintf("worsening trend, slope %.3f", trend.Slope)
	} else {
		result.Detail = fmt.Sprintf("stable or improving trend, slope %.3f", trend.Slope)
	}
	return result
}

// fetch resolves the configured source chain. It records per-dataset
// provenance for every dataset it consulted and returns which one answered.
func (s *PollutionSignal) fetch(ctx context.Context, country string, sources map[string]any) (Trend, string, bool) {
	mode := s.Mode
	if mode == "" {
		mode = TrendModeAuto
	}

	if mode == TrendModeAuto || mode == TrendModeEEA {
		if s.EEA != nil {
			if trend, err := s.EEA.PollutionTrend(ctx, country); err == nil {
				sources["pollution_source"] = trend.Source
				return trend, TrendModeEEA, true
			}
		}
		if mode == TrendModeEEA {
			return Trend{}, "", false
		}
	}

	if mode == TrendModeAuto || mode == TrendModeEDGAR {
		if s.EDGAR != nil {
			if trend, err := s.EDGAR.PollutionTrend(ctx, country); err == nil {
				sources["edgar_source"] = trend.Source
				return trend, TrendModeEDGAR, true
			}
		}
	}

	return Trend{}, "", false
}
