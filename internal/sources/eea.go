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

const eeaSourceName = "eea-api"

// EEAClient queries the European Environment Agency datahub for national
// air pollutant time series, the preferred pollution trend source.
type EEAClient struct {
	BaseURL string
	HTTP    *http.Client
	Metrics recorder
}

// NewEEAClient creates an EEA client.
func NewEEAClient(baseURL string, timeout time.Duration, m recorder) *EEAClient {
	return &EEAClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    defaultHTTPClient(timeout),
		Metrics: m,
	}
}

type eeaPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// PollutionTrend fits a linear trend over the country's recent national
// emission levels.
func (c *EEAClient) PollutionTrend(ctx context.Context, country string) (scoring.Trend, error) {
	record(c.Metrics, eeaSourceName)

	u := fmt.Sprintf("%s/air-emissions/national/%s/annual?years=10", c.BaseURL, url.PathEscape(strings.ToUpper(country)))

	var points []eeaPoint
	if err := getJSON(ctx, c.HTTP, u, nil, &points); err != nil {
		recordFailure(c.Metrics, eeaSourceName)
		return scoring.Trend{}, err
	}
	if len(points) < 2 {
		recordFailure(c.Metrics, eeaSourceName)
		return scoring.Trend{}, fmt.Errorf("eea: insufficient data points for %s", country)
	}

	years := make([]float64, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		years[i] = float64(p.Year)
		values[i] = p.Value
	}

	slope := fitSlope(years, values)
	return scoring.Trend{Slope: slope, Increase: slope > 0, Source: eeaSourceName}, nil
}
