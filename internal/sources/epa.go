package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/enviroscope/enviroscope/pkg/emissions"
)

const epaSourceName = "epa-envirofacts"

// EPAClient queries the EPA Envirofacts REST API for facility records and
// qualitative name matches.
type EPAClient struct {
	BaseURL string
	HTTP    *http.Client
	Metrics recorder
}

// NewEPAClient creates an EPA Envirofacts client.
func NewEPAClient(baseURL string, timeout time.Duration, m recorder) *EPAClient {
	return &EPAClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    defaultHTTPClient(timeout),
		Metrics: m,
	}
}

type epaFacilityRow struct {
	RegistryID   string `json:"registry_id"`
	FacilityName string `json:"primary_name"`
	State        string `json:"state_code"`
}

// SearchFacilities counts facility records whose name contains the company
// name. Used for the qualitative validation path and the enforcement signal.
func (c *EPAClient) SearchFacilities(ctx context.Context, company string) (int, string, error) {
	record(c.Metrics, epaSourceName)

	query := url.PathEscape(strings.ToUpper(strings.TrimSpace(company)))
	u := fmt.Sprintf("%s/frs.frs_facility_site/primary_name/CONTAINING/%s/rows/0:99/JSON", c.BaseURL, query)

	var rows []epaFacilityRow
	if err := getJSON(ctx, c.HTTP, u, nil, &rows); err != nil {
		recordFailure(c.Metrics, epaSourceName)
		return 0, "", err
	}
	return len(rows), epaSourceName, nil
}

// EnforcementMatches adapts the facility search for the scoring engine's
// enforcement signal: records flagged with compliance actions.
func (c *EPAClient) EnforcementMatches(ctx context.Context, company string) (int, string, error) {
	record(c.Metrics, epaSourceName)

	query := url.PathEscape(strings.ToUpper(strings.TrimSpace(company)))
	u := fmt.Sprintf("%s/tri.tri_facility/facility_name/CONTAINING/%s/rows/0:99/JSON", c.BaseURL, query)

	var rows []epaFacilityRow
	if err := getJSON(ctx, c.HTTP, u, nil, &rows); err != nil {
		recordFailure(c.Metrics, epaSourceName)
		return 0, "", err
	}
	return len(rows), epaSourceName, nil
}

// RecordFilter narrows an emission record listing.
type RecordFilter struct {
	State     string
	Year      int
	Pollutant string
	Limit     int
	Offset    int
}

type epaEmissionRow struct {
	FacilityID   string  `json:"facility_id"`
	FacilityName string  `json:"facility_name"`
	State        string  `json:"state_code"`
	Year         int     `json:"reporting_year"`
	Pollutant    string  `json:"pollutant_name"`
	Amount       float64 `json:"annual_emission"`
	Unit         string  `json:"unit_of_measure"`
}

// Records lists facility emission records matching the filter. Filtering by
// state and year happens upstream; pollutant filtering is applied locally
// because Envirofacts cannot combine all three predicates in one path.
func (c *EPAClient) Records(ctx context.Context, f RecordFilter) ([]emissions.Record, error) {
	record(c.Metrics, epaSourceName)

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	path := c.BaseURL + "/tri.tri_release_qty"
	if f.State != "" {
		path += "/state_code/" + url.PathEscape(strings.ToUpper(f.State))
	}
	if f.Year != 0 {
		path += fmt.Sprintf("/reporting_year/%d", f.Year)
	}
	path += fmt.Sprintf("/rows/%d:%d/JSON", f.Offset, f.Offset+limit-1)

	var rows []epaEmissionRow
	if err := getJSON(ctx, c.HTTP, path, nil, &rows); err != nil {
		recordFailure(c.Metrics, epaSourceName)
		return nil, err
	}

	var out []emissions.Record
	for _, r := range rows {
		if f.Pollutant != "" && !strings.EqualFold(r.Pollutant, f.Pollutant) {
			continue
		}
		out = append(out, emissions.Record{
			FacilityID:   r.FacilityID,
			FacilityName: r.FacilityName,
			State:        r.State,
			Year:         r.Year,
			Pollutant:    r.Pollutant,
			Amount:       r.Amount,
			Unit:         r.Unit,
		})
	}
	return out, nil
}
