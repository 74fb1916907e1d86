package scoring

import (
	"context"
	"fmt"
	"strings"
)

// PolicySource provides the national climate policy strength rating for a
// country.
type PolicySource interface {
	PolicyStrength(ctx context.Context, country string) (strength, source string, err error)
}

// Policy strength ratings.
const (
	PolicyStrong   = "strong"
	PolicyModerate = "moderate"
	PolicyWeak     = "weak"
)

// PolicySignal grants a small bonus for operating under strong national
// climate policy. Intentionally the smallest component: policy context
// should nudge a score, not drive it.
type PolicySignal struct {
	Source  PolicySource
	Weights Weights
}

func (s *PolicySignal) Key() string  { return KeyPolicy }
func (s *PolicySignal) Name() string { return "National climate policy" }

func (s *PolicySignal) Evaluate(ctx context.Context, req Request) SignalResult {
	result := SignalResult{
		Key:     s.Key(),
		Name:    s.Name(),
		Sources: map[string]any{},
	}

	strength, source, err := s.Source.PolicyStrength(ctx, req.Country)
	if err != nil {
		result.Sources["policy_source"] = sourceUnavailable
		result.Detail = "policy data unavailable"
		return result
	}

	result.Sources["policy_source"] = source
	switch strings.ToLower(strength) {
	case PolicyStrong:
		result.Contribution = s.Weights.PolicyStrong
	case PolicyModerate:
		result.Contribution = s.Weights.PolicyModerate
	default:
		result.Contribution = s.Weights.PolicyWeak
	}
	result.Detail = fmt.Sprintf("policy strength %s", strength)
	return result
}
