// Package emissions defines the shared vocabulary types for regulator
// emission records and facility-level figures.
package emissions

// Record is a single facility emission record as reported by a regulator
// dataset (EPA Envirofacts and compatible sources).
type Record struct {
	FacilityID   string  `json:"facility_id,omitempty"`
	FacilityName string  `json:"facility_name"`
	State        string  `json:"state,omitempty"`
	Year         int     `json:"year,omitempty"`
	Pollutant    string  `json:"pollutant,omitempty"`
	Amount       float64 `json:"amount,omitempty"`
	Unit         string  `json:"unit,omitempty"`
}

// FacilityFigures holds the regulator-measured annual mass figures for a
// single facility, in short tons as published by CAMPD/EIA.
type FacilityFigures struct {
	FacilityID  string  `json:"facility_id"`
	Year        int     `json:"year,omitempty"`
	CO2MassTons float64 `json:"co2_mass_tons"`
	SO2MassTons float64 `json:"so2_mass_tons,omitempty"`
	NOxMassTons float64 `json:"nox_mass_tons,omitempty"`
	Source      string  `json:"source"`
}

// ByPollutant returns the figures keyed by pollutant name. Only pollutants
// the source actually reported (non-zero CO2 is always included; SO2/NOx
// only when present) appear in the map.
func (f *FacilityFigures) ByPollutant() map[string]float64 {
	m := map[string]float64{"CO2": f.CO2MassTons}
	if f.SO2MassTons != 0 {
		m["SO2"] = f.SO2MassTons
	}
	if f.NOxMassTons != 0 {
		m["NOx"] = f.NOxMassTons
	}
	return m
}

// Stats is an aggregate view over a set of emission records.
type Stats struct {
	TotalRecords int            `json:"total_records"`
	ByState      map[string]int `json:"by_state"`
	ByPollutant  map[string]int `json:"by_pollutant"`
	ByYear       map[int]int    `json:"by_year"`
}

// Aggregate computes record counts grouped by state, pollutant and year.
func Aggregate(records []Record) Stats {
	st := Stats{
		TotalRecords: len(records),
		ByState:      make(map[string]int),
		ByPollutant:  make(map[string]int),
		ByYear:       make(map[int]int),
	}
	for _, r := range records {
		if r.State != "" {
			st.ByState[r.State]++
		}
		if r.Pollutant != "" {
			st.ByPollutant[r.Pollutant]++
		}
		if r.Year != 0 {
			st.ByYear[r.Year]++
		}
	}
	return st
}
