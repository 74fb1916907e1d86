package validation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/enviroscope/enviroscope/pkg/emissions"
	"github.com/enviroscope/enviroscope/pkg/units"
)

// ErrMappingNotFound is returned by a MappingStore when a company has no
// facility mapping. It is not a validation failure: the engine degrades to
// the qualitative path.
var ErrMappingNotFound = errors.New("mapping not found")

// Mapping links a company to its regulator facility identifier.
type Mapping struct {
	Company      string
	FacilityID   string
	FacilityName string
	State        string
}

// MappingStore resolves company names to facility mappings.
type MappingStore interface {
	GetMapping(ctx context.Context, company string) (*Mapping, error)
}

// FacilitySource retrieves regulator-measured figures for a facility.
type FacilitySource interface {
	FacilityFigures(ctx context.Context, facilityID string) (*emissions.FacilityFigures, error)
}

// FacilitySearcher performs a qualitative regulator name search.
type FacilitySearcher interface {
	SearchFacilities(ctx context.Context, company string) (matches int, source string, err error)
}

// Engine cross-validates self-reported emissions against regulator data.
// Primary is consulted first for facility figures; Fallback (if non-nil)
// only when the primary fails.
type Engine struct {
	Mappings MappingStore
	Primary  FacilitySource
	Fallback FacilitySource
	Search   FacilitySearcher
}

// lowMatchThreshold is the match count below which a successful name search
// still earns a low_match_density flag.
const lowMatchThreshold = 3

// CrossValidate runs the full validation pipeline. Only malformed input is
// an error; every upstream failure degrades to a smaller report.
func (e *Engine) CrossValidate(ctx context.Context, req Request) (*Report, error) {
	company := strings.TrimSpace(req.Company)
	if company == "" {
		return nil, &units.InputError{Msg: "company is required"}
	}
	if req.Scope1 == nil && req.Scope2 == nil {
		return nil, &units.InputError{Msg: "at least one of scope1 or scope2 is required"}
	}

	report := &Report{Company: company}

	totals, err := e.normalize(req)
	if err != nil {
		return nil, err
	}
	report.SelfReported = totals

	// Qualitative regulator presence check. Failure here just means no EPA
	// block in the report.
	var searched bool
	if e.Search != nil {
		if matches, source, err := e.Search.SearchFacilities(ctx, company); err == nil {
			report.EPA = &EPASearch{Query: company, MatchesCount: matches, Source: source}
			searched = true
		}
	}

	mapping := e.lookupMapping(ctx, company)
	if mapping == nil {
		// Qualitative path only: flag weak regulator presence, never fail.
		if searched {
			switch {
			case report.EPA.MatchesCount == 0:
				report.Flags = append(report.Flags, Flag{
					Type:     FlagNoEPAMatch,
					Severity: SeverityMedium,
					Message:  fmt.Sprintf("no EPA facility records match %q", company),
				})
			case report.EPA.MatchesCount < lowMatchThreshold:
				report.Flags = append(report.Flags, Flag{
					Type:     FlagLowMatchDensity,
					Severity: SeverityLow,
					Message:  fmt.Sprintf("only %d EPA facility records match %q", report.EPA.MatchesCount, company),
				})
			}
		}
		return report, nil
	}

	report.Mapping = &MappingView{
		Company:      mapping.Company,
		FacilityID:   mapping.FacilityID,
		FacilityName: mapping.FacilityName,
		State:        mapping.State,
	}

	figures := e.facilityFigures(ctx, mapping.FacilityID)
	if figures == nil {
		// Regulator sources down: mapping stays in the report, the
		// quantitative block is omitted.
		return report, nil
	}

	deviation, flag := compare(totals, figures)
	report.QuantitativeDeviation = deviation
	if flag != nil {
		report.Flags = append(report.Flags, *flag)
	}
	return report, nil
}

func (e *Engine) normalize(req Request) (Totals, error) {
	var totals Totals
	if req.Scope1 != nil {
		res, err := units.Normalize(units.Input{Scope: "scope1", Activities: req.Scope1.Activities})
		if err != nil {
			return Totals{}, err
		}
		totals.Scope1Kg = res.TotalKg
	}
	if req.Scope2 != nil {
		res, err := units.Normalize(units.Input{Scope: "scope2", Activities: req.Scope2.Activities})
		if err != nil {
			return Totals{}, err
		}
		totals.Scope2Kg = res.TotalKg
	}
	totals.TotalKg = totals.Scope1Kg + totals.Scope2Kg
	totals.TotalTonnes = totals.TotalKg / 1000.0
	return totals, nil
}

func (e *Engine) lookupMapping(ctx context.Context, company string) *Mapping {
	if e.Mappings == nil {
		return nil
	}
	mapping, err := e.Mappings.GetMapping(ctx, company)
	if err != nil {
		return nil
	}
	return mapping
}

func (e *Engine) facilityFigures(ctx context.Context, facilityID string) *emissions.FacilityFigures {
	if e.Primary != nil {
		if figures, err := e.Primary.FacilityFigures(ctx, facilityID); err == nil {
			return figures
		}
	}
	if e.Fallback != nil {
		if figures, err := e.Fallback.FacilityFigures(ctx, facilityID); err == nil {
			return figures
		}
	}
	return nil
}

// compare measures per-pollutant deviation between self-reported tonnes and
// the regulator reference, and produces at most one flag: the
// worst-severity pollutant.
func compare(totals Totals, figures *emissions.FacilityFigures) (*Deviation, *Flag) {
	self := map[string]float64{"CO2": totals.TotalTonnes}
	ref := figures.ByPollutant()

	deviation := &Deviation{ReferenceSource: figures.Source}

	var pollutants []string
	for p := range self {
		pollutants = append(pollutants, p)
	}
	sort.Strings(pollutants)

	for _, p := range pollutants {
		refTons, ok := ref[p]
		if !ok {
			continue
		}
		if refTons == 0 {
			// A zero reference cannot anchor a percentage; record it and
			// move on rather than dividing.
			deviation.NonComparable = append(deviation.NonComparable, p)
			continue
		}
		selfTons := self[p]
		pct := abs(selfTons-refTons) / refTons * 100.0
		deviation.Comparisons = append(deviation.Comparisons, Comparison{
			Pollutant:     p,
			SelfTons:      selfTons,
			ReferenceTons: refTons,
			DeviationPct:  pct,
			Severity:      SeverityForDeviation(pct),
		})
	}

	var worst *Comparison
	for i := range deviation.Comparisons {
		c := &deviation.Comparisons[i]
		if worst == nil || severityRank(c.Severity) > severityRank(worst.Severity) {
			worst = c
		}
	}
	if worst == nil {
		return deviation, nil
	}

	deviation.WorstSeverity = worst.Severity
	flag := &Flag{
		Type:     FlagQuantitativeDeviation,
		Severity: worst.Severity,
		Message: fmt.Sprintf("%s: %.1f%% deviation from %s reference (%.1f vs %.1f tons)",
			worst.Pollutant, worst.DeviationPct, figures.Source, worst.SelfTons, worst.ReferenceTons),
	}
	return deviation, flag
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
