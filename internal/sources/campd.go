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

const campdSourceName = "campd"

// CAMPDClient queries the EPA Clean Air Markets Program Data API for
// facility-level measured emissions. This is the primary quantitative
// reference for cross-validation.
type CAMPDClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Metrics recorder
}

// NewCAMPDClient creates a CAMPD client. The API key is required by the
// hosted API; requests without one fail upstream, which the validation
// engine treats as source unavailability.
func NewCAMPDClient(baseURL, apiKey string, timeout time.Duration, m recorder) *CAMPDClient {
	return &CAMPDClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    defaultHTTPClient(timeout),
		Metrics: m,
	}
}

type campdAnnualRow struct {
	FacilityID int     `json:"facilityId"`
	Year       int     `json:"year"`
	CO2Mass    float64 `json:"co2Mass"`
	SO2Mass    float64 `json:"so2Mass"`
	NOxMass    float64 `json:"noxMass"`
}

// FacilityFigures returns the most recent annual apportioned emissions for a
// facility, with unit-level rows summed per year.
func (c *CAMPDClient) FacilityFigures(ctx context.Context, facilityID string) (*emissions.FacilityFigures, error) {
	record(c.Metrics, campdSourceName)

	u := fmt.Sprintf("%s/emissions-mgmt/emissions/apportioned/annual?facilityId=%s",
		c.BaseURL, url.QueryEscape(facilityID))

	header := http.Header{}
	if c.APIKey != "" {
		header.Set("x-api-key", c.APIKey)
	}

	var rows []campdAnnualRow
	if err := getJSON(ctx, c.HTTP, u, header, &rows); err != nil {
		recordFailure(c.Metrics, campdSourceName)
		return nil, err
	}
	if len(rows) == 0 {
		recordFailure(c.Metrics, campdSourceName)
		return nil, fmt.Errorf("campd: no annual emissions for facility %s", facilityID)
	}

	latest := 0
	for _, r := range rows {
		if r.Year > latest {
			latest = r.Year
		}
	}

	figures := &emissions.FacilityFigures{
		FacilityID: facilityID,
		Year:       latest,
		Source:     campdSourceName,
	}
	for _, r := range rows {
		if r.Year != latest {
			continue
		}
		figures.CO2MassTons += r.CO2Mass
		figures.SO2MassTons += r.SO2Mass
		figures.NOxMassTons += r.NOxMass
	}
	return figures, nil
}
