package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/enviroscope/enviroscope/internal/mapping"
	"github.com/enviroscope/enviroscope/internal/sources"
	"github.com/enviroscope/enviroscope/pkg/emissions"
	"github.com/enviroscope/enviroscope/pkg/scoring"
	"github.com/enviroscope/enviroscope/pkg/units"
	"github.com/enviroscope/enviroscope/pkg/validation"
)

type fakeScorer struct {
	result *scoring.Result
	err    error
}

func (f *fakeScorer) Score(_ context.Context, req scoring.Request) (*scoring.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	r := *f.result
	r.Company = req.Company
	return &r, nil
}

type fakeValidator struct {
	report *validation.Report
	err    error
}

func (f *fakeValidator) CrossValidate(_ context.Context, _ validation.Request) (*validation.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakeRecords struct {
	records []emissions.Record
	err     error
	calls   int
}

func (f *fakeRecords) Records(_ context.Context, _ sources.RecordFilter) ([]emissions.Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeFacility struct {
	figures *emissions.FacilityFigures
	err     error
}

func (f *fakeFacility) FacilityFigures(_ context.Context, facilityID string) (*emissions.FacilityFigures, error) {
	if f.err != nil {
		return nil, f.err
	}
	fig := *f.figures
	fig.FacilityID = facilityID
	return &fig, nil
}

type fakeMappings struct {
	rows []mapping.Mapping
}

func (f *fakeMappings) Upsert(_ context.Context, m mapping.Mapping) (*mapping.Mapping, error) {
	if strings.TrimSpace(m.Company) == "" {
		return nil, fmt.Errorf("company is required")
	}
	f.rows = append(f.rows, m)
	return &m, nil
}

func (f *fakeMappings) List(_ context.Context, _, _ int) ([]mapping.Mapping, error) {
	return f.rows, nil
}

func (f *fakeMappings) Delete(_ context.Context, company string) error {
	kept := f.rows[:0]
	for _, m := range f.rows {
		if !strings.EqualFold(m.Company, company) {
			kept = append(kept, m)
		}
	}
	f.rows = kept
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *fakeRecords) {
	t.Helper()
	records := &fakeRecords{records: []emissions.Record{
		{FacilityName: "PLANT A", State: "GA", Year: 2023, Pollutant: "CO2"},
		{FacilityName: "PLANT B", State: "TX", Year: 2023, Pollutant: "SO2"},
	}}
	h := NewHandler(
		&fakeScorer{result: &scoring.Result{Score: 61, Components: scoring.Components{Base: 50}}},
		&fakeValidator{report: &validation.Report{Company: "Acme Power"}},
		records,
		&fakeFacility{figures: &emissions.FacilityFigures{CO2MassTons: 1000, Source: "campd"}},
		&fakeMappings{},
		nil, nil, nil, nil,
	)
	return h, records
}

func serve(t *testing.T, h *Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandleCalculate(t *testing.T) {
	h, _ := newTestHandler(t)
	body := `{"scope":"scope1","activities":[{"type":"fuel_combustion","fuel":"diesel","amount":200,"unit":"liter"}]}`
	w := serve(t, h, "POST", "/api/v1/emissions/calculate", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp struct {
		TotalKg float64 `json:"total_co2e_kg"`
		Version string  `json:"factors_version"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalKg != 536 {
		t.Errorf("total_co2e_kg = %v, want 536", resp.TotalKg)
	}
	if resp.Version != units.FactorsVersion {
		t.Errorf("factors_version = %q, want %q", resp.Version, units.FactorsVersion)
	}
}

func TestHandleCalculateUnsupportedUnit(t *testing.T) {
	h, _ := newTestHandler(t)
	body := `{"scope":"scope1","activities":[{"type":"fuel_combustion","fuel":"diesel","amount":200,"unit":"barrel"}]}`
	w := serve(t, h, "POST", "/api/v1/emissions/calculate", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "barrel") {
		t.Errorf("error body %q should name the unsupported unit", w.Body.String())
	}
}

func TestHandleCalculateMalformedBody(t *testing.T) {
	h, _ := newTestHandler(t)
	w := serve(t, h, "POST", "/api/v1/emissions/calculate", `{"scope":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleGetScore(t *testing.T) {
	h, _ := newTestHandler(t)
	w := serve(t, h, "GET", "/api/v1/scores/Acme%20Power?country=US", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var result scoring.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Company != "Acme Power" {
		t.Errorf("company = %q, want %q", result.Company, "Acme Power")
	}
	if result.Score != 61 {
		t.Errorf("score = %v, want 61", result.Score)
	}
}

func TestHandleValidate(t *testing.T) {
	h, _ := newTestHandler(t)
	body := `{"company":"Acme Power","scope1":{"scope":"scope1","activities":[]}}`
	w := serve(t, h, "POST", "/api/v1/validate", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var report validation.Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.Company != "Acme Power" {
		t.Errorf("company = %q, want %q", report.Company, "Acme Power")
	}
}

func TestHandleValidateMalformedInput(t *testing.T) {
	h, _ := newTestHandler(t)
	h.validator = &fakeValidator{err: &units.InputError{Msg: "scope must be scope1 or scope2"}}
	w := serve(t, h, "POST", "/api/v1/validate", `{"company":"Acme"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestHandleListEmissionsCaching(t *testing.T) {
	h, records := newTestHandler(t)

	w := serve(t, h, "GET", "/api/v1/emissions?state=GA&year=2023", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	w = serve(t, h, "GET", "/api/v1/emissions?state=GA&year=2023", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if records.calls != 1 {
		t.Errorf("upstream calls = %d, want 1 (second request cached)", records.calls)
	}

	// Different filter misses the cache.
	serve(t, h, "GET", "/api/v1/emissions?state=TX", "")
	if records.calls != 2 {
		t.Errorf("upstream calls = %d, want 2", records.calls)
	}
}

func TestHandleListEmissionsBadYear(t *testing.T) {
	h, _ := newTestHandler(t)
	w := serve(t, h, "GET", "/api/v1/emissions?year=twenty", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleListEmissionsUpstreamDown(t *testing.T) {
	h, _ := newTestHandler(t)
	h.records = &fakeRecords{err: fmt.Errorf("envirofacts: status 503")}
	w := serve(t, h, "GET", "/api/v1/emissions", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}

func TestHandleEmissionsStats(t *testing.T) {
	h, _ := newTestHandler(t)
	w := serve(t, h, "GET", "/api/v1/emissions/stats", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var stats emissions.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.TotalRecords != 2 {
		t.Errorf("total_records = %d, want 2", stats.TotalRecords)
	}
	if stats.ByState["GA"] != 1 || stats.ByState["TX"] != 1 {
		t.Errorf("by_state = %v, want GA:1 TX:1", stats.ByState)
	}
}

func TestHandleFactors(t *testing.T) {
	h, _ := newTestHandler(t)
	w := serve(t, h, "GET", "/api/v1/emissions/factors", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Version     string             `json:"version"`
		FuelFactors map[string]float64 `json:"fuel_factors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Version != units.FactorsVersion {
		t.Errorf("version = %q, want %q", resp.Version, units.FactorsVersion)
	}
	if resp.FuelFactors["diesel/liter"] != 2.68 {
		t.Errorf("diesel/liter factor = %v, want 2.68", resp.FuelFactors["diesel/liter"])
	}
}

func TestHandleFacilityEmissions(t *testing.T) {
	h, _ := newTestHandler(t)
	w := serve(t, h, "GET", "/api/v1/facilities/3470/emissions", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var figures emissions.FacilityFigures
	if err := json.Unmarshal(w.Body.Bytes(), &figures); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if figures.FacilityID != "3470" {
		t.Errorf("facility_id = %q, want %q", figures.FacilityID, "3470")
	}
	if figures.CO2MassTons != 1000 {
		t.Errorf("co2_mass_tons = %v, want 1000", figures.CO2MassTons)
	}
}

func TestHandlePutMapping(t *testing.T) {
	h, _ := newTestHandler(t)
	body := `{"company":"Acme Power","facility_id":"3470","state":"GA"}`
	w := serve(t, h, "PUT", "/api/v1/mappings", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	w = serve(t, h, "GET", "/api/v1/mappings", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}
	var resp struct {
		Mappings []mapping.Mapping `json:"mappings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Mappings) != 1 || resp.Mappings[0].FacilityID != "3470" {
		t.Errorf("mappings = %+v, want one row with facility 3470", resp.Mappings)
	}
}

func TestHandleDeleteMapping(t *testing.T) {
	h, _ := newTestHandler(t)
	serve(t, h, "PUT", "/api/v1/mappings", `{"company":"Acme Power","facility_id":"3470"}`)

	w := serve(t, h, "DELETE", "/api/v1/mappings/Acme%20Power", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	w = serve(t, h, "GET", "/api/v1/mappings", "")
	var resp struct {
		Mappings []mapping.Mapping `json:"mappings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Mappings) != 0 {
		t.Errorf("mappings = %+v, want empty after delete", resp.Mappings)
	}
}

func TestHandlePutMappingMissingCompany(t *testing.T) {
	h, _ := newTestHandler(t)
	w := serve(t, h, "PUT", "/api/v1/mappings", `{"facility_id":"3470"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHistoryWithoutSink(t *testing.T) {
	h, _ := newTestHandler(t)
	for _, target := range []string{
		"/api/v1/scores/Acme/history",
		"/api/v1/reports/Acme",
	} {
		w := serve(t, h, "GET", target, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", target, w.Code)
		}
	}
}

func TestAPIKeyAuth(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("empty key passes through", func(t *testing.T) {
		h := APIKeyAuth("")(inner)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		h := APIKeyAuth("secret")(inner)
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-API-Key", "wrong")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("correct key accepted", func(t *testing.T) {
		h := APIKeyAuth("secret")(inner)
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-API-Key", "secret")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight should not reach the inner handler")
	}))
	req := httptest.NewRequest("OPTIONS", "/api/v1/scores/acme", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestPayloadCacheEviction(t *testing.T) {
	c := NewPayloadCache(2)
	c.Put("a", []emissions.Record{{FacilityName: "A"}})
	c.Put("b", []emissions.Record{{FacilityName: "B"}})

	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}
	c.Put("c", []emissions.Record{{FacilityName: "C"}})

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be cached")
	}
}

func TestNewHandlerNilCacheBuildsFromEnv(t *testing.T) {
	t.Setenv("PAYLOAD_CACHE_SIZE", "2")

	h := NewHandler(nil, nil, nil, nil, nil, nil, nil, nil, nil)
	if h.cache == nil {
		t.Fatal("nil cache should be replaced")
	}
	if h.cache.maxSize != 2 {
		t.Errorf("maxSize = %d, want 2 from PAYLOAD_CACHE_SIZE", h.cache.maxSize)
	}
}

func TestNewPayloadCacheFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("PAYLOAD_CACHE_SIZE", "lots")

	c := NewPayloadCacheFromEnv()
	if c.maxSize != 20 {
		t.Errorf("maxSize = %d, want default 20", c.maxSize)
	}
}
