package scoring

import (
	"context"
	"fmt"
	"math"
)

// EnforcementSource provides the number of regulator enforcement records
// matching a company name.
type EnforcementSource interface {
	EnforcementMatches(ctx context.Context, company string) (matches int, source string, err error)
}

// EnforcementSignal penalizes companies with EPA enforcement history.
type EnforcementSignal struct {
	Source  EnforcementSource
	Weights Weights
}

func (s *EnforcementSignal) Key() string  { return KeyEnforcement }
func (s *EnforcementSignal) Name() string { return "Regulator enforcement history" }

func (s *EnforcementSignal) Evaluate(ctx context.Context, req Request) SignalResult {
	result := SignalResult{
		Key:     s.Key(),
		Name:    s.Name(),
		Sources: map[string]any{},
	}

	matches, source, err := s.Source.EnforcementMatches(ctx, req.Company)
	if err != nil {
		result.Sources["epa_matches"] = 0
		result.Sources["epa_source"] = sourceUnavailable
		result.Detail = "enforcement registry unavailable"
		return result
	}

	result.Contribution = math.Max(s.Weights.EnforcementFloor, -(float64(matches) * s.Weights.EnforcementPerMatch))
	result.Sources["epa_matches"] = matches
	result.Sources["epa_source"] = source
	result.Detail = fmt.Sprintf("%d enforcement matches", matches)
	return result
}
