package scoring

import (
	"context"
	"fmt"
	"math"
)

// RenewablesSource provides the latest renewable energy share for a country
// alongside that country's declared target, both in percentage points.
type RenewablesSource interface {
	RenewableShare(ctx context.Context, country string) (share, target float64, source string, err error)
}

// RenewablesSignal rewards operating in a grid that outperforms its
// renewable energy target. The bonus is strictly positive only when the
// latest share exceeds the target; meeting the target exactly earns nothing.
type RenewablesSignal struct {
	Source  RenewablesSource
	Weights Weights
}

func (s *RenewablesSignal) Key() string  { return KeyRenewables }
func (s *RenewablesSignal) Name() string { return "Renewable energy share" }

func (s *RenewablesSignal) Evaluate(ctx context.Context, req Request) SignalResult {
	result := SignalResult{
		Key:     s.Key(),
		Name:    s.Name(),
		Sources: map[string]any{},
	}

	share, target, source, err := s.Source.RenewableShare(ctx, req.Country)
	if err != nil {
		result.Sources["renewables_source"] = sourceUnavailable
		result.Detail = "renewables data unavailable"
		return result
	}

	result.Sources["renewables_source"] = source
	if share > target {
		result.Contribution = math.Min(s.Weights.RenewablesCap, (share-target)*s.Weights.RenewablesPerPoint)
	}
	result.Detail = fmt.Sprintf("share %.1f%% vs target %.1f%%", share, target)
	return result
}
