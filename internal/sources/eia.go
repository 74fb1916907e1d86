package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/enviroscope/enviroscope/pkg/emissions"
)

const eiaSourceName = "eia"

// EIAClient queries the EIA open data API for plant-level CO2 emissions.
// It serves only as the configured fallback behind CAMPD; it reports CO2
// alone, so fallback-backed deviations cover fewer pollutants.
type EIAClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Metrics recorder
}

// NewEIAClient creates an EIA client.
func NewEIAClient(baseURL, apiKey string, timeout time.Duration, m recorder) *EIAClient {
	return &EIAClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    defaultHTTPClient(timeout),
		Metrics: m,
	}
}

type eiaResponse struct {
	Response struct {
		Data []struct {
			Period  string  `json:"period"`
			PlantID string  `json:"plantCode"`
			CO2Tons float64 `json:"co2-tons"`
		} `json:"data"`
	} `json:"response"`
}

// FacilityFigures returns the latest annual plant CO2 mass.
func (c *EIAClient) FacilityFigures(ctx context.Context, facilityID string) (*emissions.FacilityFigures, error) {
	record(c.Metrics, eiaSourceName)

	u := fmt.Sprintf("%s/co2-emissions/facility-fuel/data/?frequency=annual&facets[plantCode][]=%s&sort[0][column]=period&sort[0][direction]=desc&length=24",
		c.BaseURL, url.QueryEscape(facilityID))
	if c.APIKey != "" {
		u += "&api_key=" + url.QueryEscape(c.APIKey)
	}

	var resp eiaResponse
	if err := getJSON(ctx, c.HTTP, u, nil, &resp); err != nil {
		recordFailure(c.Metrics, eiaSourceName)
		return nil, err
	}
	if len(resp.Response.Data) == 0 {
		recordFailure(c.Metrics, eiaSourceName)
		return nil, fmt.Errorf("eia: no emissions data for plant %s", facilityID)
	}

	latest := resp.Response.Data[0].Period
	figures := &emissions.FacilityFigures{
		FacilityID: facilityID,
		Source:     eiaSourceName,
	}
	if year, err := strconv.Atoi(latest); err == nil {
		figures.Year = year
	}
	for _, d := range resp.Response.Data {
		if d.Period != latest {
			continue
		}
		figures.CO2MassTons += d.CO2Tons
	}
	return figures, nil
}
