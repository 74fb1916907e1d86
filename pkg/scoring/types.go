// Package scoring implements the composite environmental verification score
// (CEVS). It aggregates independent public signals into an explainable,
// bounded 0-100 score with per-signal provenance.
package scoring

import "context"

// Request identifies the company to score.
type Request struct {
	Company string `json:"company"`
	Country string `json:"country,omitempty"` // ISO 3166-1 alpha-2, used by country-level signals
}

// Result is the complete output of scoring a company.
// Immutable once computed.
type Result struct {
	Company    string         `json:"company"`
	Country    string         `json:"country,omitempty"`
	Score      float64        `json:"score"`
	Components Components     `json:"components"`
	Sources    map[string]any `json:"sources"`
	Breakdown  []SignalResult `json:"breakdown"`
}

// Components is the per-signal contribution breakdown. Each field stays
// within its documented bounds; their sum plus Base, clamped to [0, 100],
// equals Score.
type Components struct {
	Base             float64 `json:"base"`
	ISOBonus         float64 `json:"iso_bonus"`         // [0, 30]
	EPAPenalty       float64 `json:"epa_penalty"`       // [-30, 0]
	RenewablesBonus  float64 `json:"renewables_bonus"`  // [0, 20]
	PollutionPenalty float64 `json:"pollution_penalty"` // [-15, 0]
	PolicyBonus      float64 `json:"policy_bonus"`      // [0, 3]
}

// Sum returns the total of all components including the base.
func (c Components) Sum() float64 {
	return c.Base + c.ISOBonus + c.EPAPenalty + c.RenewablesBonus + c.PollutionPenalty + c.PolicyBonus
}

// Signal is the interface every scoring signal implements. A signal fetches
// one public data dimension and converts it into a bounded contribution.
type Signal interface {
	// Key returns the machine-readable signal identifier.
	Key() string
	// Name returns the human-readable signal name.
	Name() string
	// Evaluate computes the signal's contribution. Fetch failures degrade to
	// a neutral contribution with "unavailable" provenance, never an error.
	Evaluate(ctx context.Context, req Request) SignalResult
}

// SignalResult is the output of a single signal.
type SignalResult struct {
	Key          string         `json:"key"`
	Name         string         `json:"name"`
	Contribution float64        `json:"contribution"`
	Sources      map[string]any `json:"sources,omitempty"` // provenance entries merged into Result.Sources
	Detail       string         `json:"detail,omitempty"`
}

// Signal keys, also used to route contributions into Components fields.
const (
	KeyCertifications = "certifications"
	KeyEnforcement    = "enforcement"
	KeyRenewables     = "renewables"
	KeyPollution      = "pollution_trend"
	KeyPolicy         = "policy"
)

// sourceUnavailable is the provenance value recorded when a signal's
// upstream fetch failed and the signal degraded to neutral.
const sourceUnavailable = "unavailable"
