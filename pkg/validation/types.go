// Package validation cross-checks self-reported emissions against regulator
// datasets and produces deviation reports with severity-ranked flags.
package validation

import (
	"github.com/enviroscope/enviroscope/pkg/units"
)

// Request is a self-reported emissions disclosure to validate.
type Request struct {
	Company string      `json:"company"`
	Scope1  *ScopeInput `json:"scope1,omitempty"`
	Scope2  *ScopeInput `json:"scope2,omitempty"`
}

// ScopeInput is the activity list for one scope.
type ScopeInput struct {
	Activities []units.Activity `json:"activities"`
}

// Totals is the normalized self-reported footprint.
type Totals struct {
	Scope1Kg    float64 `json:"scope1_kg"`
	Scope2Kg    float64 `json:"scope2_kg"`
	TotalKg     float64 `json:"total_kg"`
	TotalTonnes float64 `json:"total_tonnes"`
}

// EPASearch summarizes the qualitative regulator name search.
type EPASearch struct {
	Query        string `json:"query"`
	MatchesCount int    `json:"matches_count"`
	Source       string `json:"source"`
}

// MappingView is the company-to-facility mapping used for the quantitative
// comparison, echoed into the report for auditability.
type MappingView struct {
	Company      string `json:"company"`
	FacilityID   string `json:"facility_id"`
	FacilityName string `json:"facility_name,omitempty"`
	State        string `json:"state,omitempty"`
}

// Comparison is a per-pollutant deviation measurement.
type Comparison struct {
	Pollutant     string  `json:"pollutant"`
	SelfTons      float64 `json:"self_tons"`
	ReferenceTons float64 `json:"reference_tons"`
	DeviationPct  float64 `json:"deviation_pct"`
	Severity      string  `json:"severity"`
}

// Deviation is the quantitative comparison block. It is present only when a
// facility mapping exists and the regulator figures were retrievable.
type Deviation struct {
	ReferenceSource string       `json:"reference_source"`
	Comparisons     []Comparison `json:"deviations"`
	NonComparable   []string     `json:"non_comparable,omitempty"` // pollutants with a zero reference
	WorstSeverity   string       `json:"worst_severity"`
}

// Flag is a single validation finding.
type Flag struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Flag types.
const (
	FlagQuantitativeDeviation = "quantitative_deviation"
	FlagNoEPAMatch            = "no_epa_match"
	FlagLowMatchDensity       = "low_match_density"
)

// Severity levels, weakest to strongest.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Report is the full cross-validation output for one request.
type Report struct {
	Company               string       `json:"company"`
	SelfReported          Totals       `json:"self_reported"`
	EPA                   *EPASearch   `json:"epa,omitempty"`
	Mapping               *MappingView `json:"mapping,omitempty"`
	QuantitativeDeviation *Deviation   `json:"quantitative_deviation,omitempty"`
	Flags                 []Flag       `json:"flags"`
}

// WorstSeverity returns the strongest severity among the report's flags, or
// "" when there are no flags.
func (r *Report) WorstSeverity() string {
	worst := ""
	for _, f := range r.Flags {
		if severityRank(f.Severity) > severityRank(worst) {
			worst = f.Severity
		}
	}
	return worst
}

func severityRank(s string) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// SeverityForDeviation maps a deviation percentage to a severity level.
// Thresholds are pinned validation policy.
func SeverityForDeviation(pct float64) string {
	switch {
	case pct >= 40:
		return SeverityCritical
	case pct >= 20:
		return SeverityHigh
	case pct >= 10:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
