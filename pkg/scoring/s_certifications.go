package scoring

import (
	"context"
	"fmt"
	"math"
)

// CertificationSource provides the count of active environmental management
// certifications (ISO 14001 and equivalents) held by a company.
type CertificationSource interface {
	CertificationCount(ctx context.Context, company, country string) (count int, source string, err error)
}

// CertificationsSignal rewards verified environmental management
// certifications.
type CertificationsSignal struct {
	Source  CertificationSource
	Weights Weights
}

func (s *CertificationsSignal) Key() string  { return KeyCertifications }
func (s *CertificationsSignal) Name() string { return "Environmental certifications" }

func (s *CertificationsSignal) Evaluate(ctx context.Context, req Request) SignalResult {
	result := SignalResult{
		Key:     s.Key(),
		Name:    s.Name(),
		Sources: map[string]any{},
	}

	count, source, err := s.Source.CertificationCount(ctx, req.Company, req.Country)
	if err != nil {
		result.Sources["iso_count"] = 0
		result.Sources["iso_source"] = sourceUnavailable
		result.Detail = "certification registry unavailable"
		return result
	}

	result.Contribution = math.Min(s.Weights.CertCap, float64(count)*s.Weights.CertPerItem)
	result.Sources["iso_count"] = count
	result.Sources["iso_source"] = source
	result.Detail = fmt.Sprintf("%d active certifications", count)
	return result
}
