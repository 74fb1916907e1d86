// Package sources implements the external data-source clients feeding the
// scoring and validation engines: EPA Envirofacts, CAMPD, EIA, EEA, EDGAR,
// plus curated reference datasets embedded at build time.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// recorder is the slice of the metrics collector the clients need.
type recorder interface {
	RecordSourceRequest(source string)
	RecordSourceFailure(source string)
}

// defaultHTTPClient returns the shared client configuration for upstream
// calls. Timeouts live here; the engines never retry.
func defaultHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// getJSON performs a GET and decodes the JSON response into out.
func getJSON(ctx context.Context, client *http.Client, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("fetch %s: status %d: %s", url, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func record(m recorder, source string) {
	if m != nil {
		m.RecordSourceRequest(source)
	}
}

func recordFailure(m recorder, source string) {
	if m != nil {
		m.RecordSourceFailure(source)
	}
}
