// Package units normalizes self-reported emission activity data into
// kg CO2e using pinned emission factor tables. Normalization is pure
// computation: deterministic, no I/O, no hidden unit inference.
package units

import (
	"fmt"
	"strings"
)

// Activity is a single self-reported activity line.
type Activity struct {
	Type   string  `json:"type"` // "fuel_combustion" or "electricity"
	Fuel   string  `json:"fuel,omitempty"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Region string  `json:"region,omitempty"` // grid region for electricity
}

// Input is a scoped set of activities to normalize.
type Input struct {
	Scope      string     `json:"scope"` // "scope1" or "scope2"
	Activities []Activity `json:"activities"`
}

// Line is the normalized result for one activity.
type Line struct {
	Activity Activity `json:"activity"`
	Factor   float64  `json:"factor"`
	CO2eKg   float64  `json:"co2e_kg"`
}

// Result is the normalized total for one Input.
type Result struct {
	Scope   string  `json:"scope"`
	TotalKg float64 `json:"total_co2e_kg"`
	Lines   []Line  `json:"lines"`
}

// Tonnes returns the total in metric tonnes.
func (r Result) Tonnes() float64 { return r.TotalKg / 1000.0 }

// UnsupportedUnitError reports an activity whose (fuel, unit) or unit has no
// pinned factor. It surfaces to API callers as a client error.
type UnsupportedUnitError struct {
	Type string
	Fuel string
	Unit string
}

func (e *UnsupportedUnitError) Error() string {
	if e.Fuel != "" {
		return fmt.Sprintf("unsupported unit %q for fuel %q", e.Unit, e.Fuel)
	}
	return fmt.Sprintf("unsupported unit %q for activity type %q", e.Unit, e.Type)
}

// InputError reports malformed caller input other than an unsupported unit.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

// Normalize converts all activities in the input to kg CO2e and sums them.
// It fails on the first unsupported or malformed activity; a partial total
// is never returned.
func Normalize(in Input) (*Result, error) {
	scope := strings.ToLower(strings.TrimSpace(in.Scope))
	if scope != "scope1" && scope != "scope2" {
		return nil, &InputError{Msg: fmt.Sprintf("unknown scope %q", in.Scope)}
	}

	result := &Result{Scope: scope}
	for i, a := range in.Activities {
		if a.Amount < 0 {
			return nil, &InputError{Msg: fmt.Sprintf("activity %d: negative amount %v", i, a.Amount)}
		}
		line, err := normalizeActivity(scope, a)
		if err != nil {
			return nil, err
		}
		result.Lines = append(result.Lines, line)
		result.TotalKg += line.CO2eKg
	}
	return result, nil
}

func normalizeActivity(scope string, a Activity) (Line, error) {
	typ := strings.ToLower(strings.TrimSpace(a.Type))
	unit := strings.ToLower(strings.TrimSpace(a.Unit))

	switch typ {
	case "fuel_combustion":
		fuel := strings.ToLower(strings.TrimSpace(a.Fuel))
		if fuel == "" {
			return Line{}, &InputError{Msg: "fuel_combustion activity missing fuel"}
		}
		factor, ok := fuelFactors[fuelUnit{Fuel: fuel, Unit: unit}]
		if !ok {
			return Line{}, &UnsupportedUnitError{Type: typ, Fuel: fuel, Unit: unit}
		}
		return Line{Activity: a, Factor: factor, CO2eKg: a.Amount * factor}, nil

	case "electricity":
		if scope != "scope2" {
			return Line{}, &InputError{Msg: "electricity activities belong in scope2"}
		}
		kwh, err := toKWh(a.Amount, unit)
		if err != nil {
			return Line{}, err
		}
		factor := gridFactor(a.Region)
		return Line{Activity: a, Factor: factor, CO2eKg: kwh * factor}, nil

	default:
		return Line{}, &InputError{Msg: fmt.Sprintf("unknown activity type %q", a.Type)}
	}
}

// toKWh converts an electricity amount to kWh. 1 MWh is exactly 1000 kWh.
func toKWh(amount float64, unit string) (float64, error) {
	switch unit {
	case "kwh":
		return amount, nil
	case "mwh":
		return amount * 1000.0, nil
	default:
		return 0, &UnsupportedUnitError{Type: "electricity", Unit: unit}
	}
}

// gridFactor resolves the per-kWh factor for a grid region. Unknown regions
// fall back to the default grid factor; this mirrors published grid-average
// practice and is deliberately looser than fuel unit lookup.
func gridFactor(region string) float64 {
	if f, ok := gridFactors[strings.ToUpper(strings.TrimSpace(region))]; ok {
		return f
	}
	return defaultGridFactor
}
