package scoring

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Engine runs all configured signals for a company and produces a Result.
type Engine struct {
	weights Weights
	signals []Signal
}

// NewEngine creates a scoring engine with the given weights and signals.
func NewEngine(weights Weights, signals ...Signal) *Engine {
	return &Engine{weights: weights, signals: signals}
}

// Score evaluates all signals concurrently and produces a complete Result.
// Signals are independent and read-only; their results are assembled in
// registration order so output is deterministic.
func (e *Engine) Score(ctx context.Context, req Request) (*Result, error) {
	req.Company = strings.TrimSpace(req.Company)
	if req.Company == "" {
		return nil, fmt.Errorf("company is required")
	}

	results := make([]SignalResult, len(e.signals))
	var wg sync.WaitGroup
	for i, s := range e.signals {
		wg.Add(1)
		go func(i int, s Signal) {
			defer wg.Done()
			results[i] = s.Evaluate(ctx, req)
		}(i, s)
	}
	wg.Wait()

	result := &Result{
		Company: req.Company,
		Country: req.Country,
		Sources: make(map[string]any),
		Components: Components{
			Base: e.weights.Base,
		},
	}

	for _, sr := range results {
		result.Breakdown = append(result.Breakdown, sr)
		for k, v := range sr.Sources {
			result.Sources[k] = v
		}
		switch sr.Key {
		case KeyCertifications:
			result.Components.ISOBonus = sr.Contribution
		case KeyEnforcement:
			result.Components.EPAPenalty = sr.Contribution
		case KeyRenewables:
			result.Components.RenewablesBonus = sr.Contribution
		case KeyPollution:
			result.Components.PollutionPenalty = sr.Contribution
		case KeyPolicy:
			result.Components.PolicyBonus = sr.Contribution
		}
	}

	result.Score = clamp(result.Components.Sum(), 0, 100)
	return result, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
