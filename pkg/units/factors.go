package units

// FactorsVersion identifies the pinned factor tables below. Bump it whenever
// a factor value changes so stored calculation results stay attributable.
const FactorsVersion = "0.1"

type fuelUnit struct {
	Fuel string
	Unit string
}

// fuelFactors maps (fuel, unit) to kg CO2e per unit of activity for scope 1
// fuel combustion. Lookup is exact-match only: a unit we have no factor for
// is an error, never a guess.
var fuelFactors = map[fuelUnit]float64{
	{"diesel", "liter"}:       2.68,
	{"diesel", "gallon"}:      10.21,
	{"gasoline", "gallon"}:    8.887,
	{"gasoline", "liter"}:     2.348,
	{"natural_gas", "mmbtu"}:  53.06,
	{"natural_gas", "m3"}:     1.9,
	{"natural_gas", "therm"}:  5.3,
	{"coal", "kg"}:            2.42,
	{"lpg", "liter"}:          1.51,
}

// gridFactors maps grid region codes to kg CO2e per kWh for scope 2
// electricity. Unknown regions fall back to defaultGridFactor; unknown
// electricity units do not get the same leniency.
var gridFactors = map[string]float64{
	"RFC":  0.45,
	"WECC": 0.35,
	"SERC": 0.50,
}

const defaultGridFactor = 0.40

// FuelFactors returns a copy of the scope 1 factor table keyed by
// "fuel/unit", for the factor listing endpoint.
func FuelFactors() map[string]float64 {
	out := make(map[string]float64, len(fuelFactors))
	for k, v := range fuelFactors {
		out[k.Fuel+"/"+k.Unit] = v
	}
	return out
}

// GridFactors returns a copy of the scope 2 per-kWh grid factor table,
// including the default under the "default" key.
func GridFactors() map[string]float64 {
	out := make(map[string]float64, len(gridFactors)+1)
	for k, v := range gridFactors {
		out[k] = v
	}
	out["default"] = defaultGridFactor
	return out
}
