package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const renewablesSourceName = "worldbank"

// RenewablesClient resolves a country's latest renewable energy share from
// the World Bank indicator API and its declared target from the embedded
// reference table.
type RenewablesClient struct {
	BaseURL string
	HTTP    *http.Client
	Targets map[string]float64 // country -> target share, loaded from refdata
	Metrics recorder
}

// NewRenewablesClient creates a renewables client with embedded targets.
func NewRenewablesClient(baseURL string, timeout time.Duration, m recorder) (*RenewablesClient, error) {
	targets, err := loadRenewableTargets()
	if err != nil {
		return nil, err
	}
	return &RenewablesClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    defaultHTTPClient(timeout),
		Targets: targets,
		Metrics: m,
	}, nil
}

// defaultRenewableTarget applies when a country has no declared target in
// the reference table.
const defaultRenewableTarget = 32.0

// RenewableShare returns (share, target, source). The share comes from the
// World Bank renewable energy consumption indicator; missing values within
// the returned window are skipped until the most recent filled year.
func (c *RenewablesClient) RenewableShare(ctx context.Context, country string) (float64, float64, string, error) {
	record(c.Metrics, renewablesSourceName)

	cc := strings.ToUpper(strings.TrimSpace(country))
	if cc == "" {
		return 0, 0, "", fmt.Errorf("renewables: country is required")
	}

	u := fmt.Sprintf("%s/country/%s/indicator/EG.FEC.RNEW.ZS?format=json&per_page=10",
		c.BaseURL, url.PathEscape(cc))

	// World Bank responses are a two-element array: [metadata, rows].
	var raw []json.RawMessage
	if err := getJSON(ctx, c.HTTP, u, nil, &raw); err != nil {
		recordFailure(c.Metrics, renewablesSourceName)
		return 0, 0, "", err
	}
	if len(raw) < 2 {
		recordFailure(c.Metrics, renewablesSourceName)
		return 0, 0, "", fmt.Errorf("renewables: malformed response for %s", cc)
	}

	var rows []struct {
		Date  string   `json:"date"`
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(raw[1], &rows); err != nil {
		recordFailure(c.Metrics, renewablesSourceName)
		return 0, 0, "", fmt.Errorf("renewables: decode rows: %w", err)
	}

	for _, row := range rows {
		if row.Value != nil {
			target, ok := c.Targets[cc]
			if !ok {
				target = defaultRenewableTarget
			}
			return *row.Value, target, renewablesSourceName, nil
		}
	}

	recordFailure(c.Metrics, renewablesSourceName)
	return 0, 0, "", fmt.Errorf("renewables: no filled values for %s", cc)
}
