package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/enviroscope/enviroscope/pkg/scoring"
)

const edgarSourceName = "edgar-v8"

// EDGARClient queries the JRC EDGAR global emissions database. It covers
// countries the EEA does not, so it backs the pollution signal when the
// chain is set to auto or edgar.
type EDGARClient struct {
	BaseURL string
	HTTP    *http.Client
	Metrics recorder
}

// NewEDGARClient creates an EDGAR client.
func NewEDGARClient(baseURL string, timeout time.Duration, m recorder) *EDGARClient {
	return &EDGARClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    defaultHTTPClient(timeout),
		Metrics: m,
	}
}

type edgarSeries struct {
	Country string             `json:"country"`
	Series  map[string]float64 `json:"series"` // year -> Mt CO2
}

// PollutionTrend fits a linear trend over the EDGAR national CO2 series.
func (c *EDGARClient) PollutionTrend(ctx context.Context, country string) (scoring.Trend, error) {
	record(c.Metrics, edgarSourceName)

	u := fmt.Sprintf("%s/co2/country/%s?last=10", c.BaseURL, url.PathEscape(strings.ToUpper(country)))

	var series edgarSeries
	if err := getJSON(ctx, c.HTTP, u, nil, &series); err != nil {
		recordFailure(c.Metrics, edgarSourceName)
		return scoring.Trend{}, err
	}
	if len(series.Series) < 2 {
		recordFailure(c.Metrics, edgarSourceName)
		return scoring.Trend{}, fmt.Errorf("edgar: insufficient data points for %s", country)
	}

	var years, values []float64
	for y, v := range series.Series {
		var year float64
		if _, err := fmt.Sscanf(y, "%f", &year); err != nil {
			continue
		}
		years = append(years, year)
		values = append(values, v)
	}
	if len(years) < 2 {
		recordFailure(c.Metrics, edgarSourceName)
		return scoring.Trend{}, fmt.Errorf("edgar: unparseable series for %s", country)
	}

	slope := fitSlope(years, values)
	return scoring.Trend{Slope: slope, Increase: slope > 0, Source: edgarSourceName}, nil
}
