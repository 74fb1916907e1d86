package surface_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/enviroscope/enviroscope/pkg/scoring"
	"github.com/enviroscope/enviroscope/pkg/surface"
	"github.com/enviroscope/enviroscope/pkg/validation"
)

func sampleScore() *scoring.Result {
	return &scoring.Result{
		Company: "Vattenfall AB",
		Country: "SE",
		Score:   83.0,
		Components: scoring.Components{
			Base:            50,
			ISOBonus:        6,
			RenewablesBonus: 24,
			PolicyBonus:     3,
		},
		Sources: map[string]any{
			"iso_count":         3,
			"iso_source":        "iso-registry-curated",
			"epa_matches":       0,
			"epa_source":        "unavailable",
			"renewables_source": "worldbank",
		},
		Breakdown: []scoring.SignalResult{
			{Key: scoring.KeyCertifications, Name: "ISO 14001 certifications", Contribution: 6, Detail: "3 active certifications"},
			{Key: scoring.KeyEnforcement, Name: "EPA enforcement", Contribution: 0},
			{Key: scoring.KeyRenewables, Name: "Renewable energy share", Contribution: 24, Detail: "66.2% vs 65.0% target"},
			{Key: scoring.KeyPolicy, Name: "National climate policy", Contribution: 3, Detail: "strong"},
		},
	}
}

func sampleReport() *validation.Report {
	return &validation.Report{
		Company: "Acme Power",
		SelfReported: validation.Totals{
			Scope1Kg:    530000,
			TotalKg:     530000,
			TotalTonnes: 530,
		},
		EPA:     &validation.EPASearch{Query: "Acme Power", MatchesCount: 4, Source: "epa-frs"},
		Mapping: &validation.MappingView{Company: "Acme Power", FacilityID: "3470", FacilityName: "ACME POWER PLANT"},
		QuantitativeDeviation: &validation.Deviation{
			ReferenceSource: "campd",
			Comparisons: []validation.Comparison{
				{Pollutant: "CO2", SelfTons: 530, ReferenceTons: 1000, DeviationPct: 47.0, Severity: validation.SeverityCritical},
			},
			NonComparable: []string{"SO2"},
			WorstSeverity: validation.SeverityCritical,
		},
		Flags: []validation.Flag{
			{
				Type:     validation.FlagQuantitativeDeviation,
				Severity: validation.SeverityCritical,
				Message:  "CO2: 47.0% deviation from campd reference (530.0 vs 1000.0 tons)",
			},
		},
	}
}

func TestTerminalRenderScore(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	if err := r.RenderScore(&buf, sampleScore()); err != nil {
		t.Fatalf("RenderScore() error: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "Vattenfall AB") {
		t.Error("expected company name in output")
	}
	if !strings.Contains(output, "Score 83.0") {
		t.Error("expected Score 83.0 in output")
	}
	if !strings.Contains(output, "(+24.0) Renewable energy share") {
		t.Error("expected renewables contribution line")
	}
	if !strings.Contains(output, "66.2% vs 65.0% target") {
		t.Error("expected renewables detail")
	}
	if !strings.Contains(output, "epa_source: unavailable") {
		t.Error("expected degraded provenance entry in Sources section")
	}
}

func TestTerminalRenderReport(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	if err := r.RenderReport(&buf, sampleReport()); err != nil {
		t.Fatalf("RenderReport() error: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "Acme Power") {
		t.Error("expected company name in output")
	}
	if !strings.Contains(output, "Deviation vs campd:") {
		t.Error("expected deviation section")
	}
	if !strings.Contains(output, "47.0% critical") {
		t.Error("expected deviation percentage and severity")
	}
	if !strings.Contains(output, "SO2: reference is zero, not comparable") {
		t.Error("expected non-comparable pollutant line")
	}
	if !strings.Contains(output, "[critical] quantitative_deviation") {
		t.Error("expected flag line")
	}
	if !strings.Contains(output, "CO2: 47.0% deviation") {
		t.Error("expected flag message")
	}
}

func TestTerminalRenderReportNoFlags(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	report := &validation.Report{
		Company:      "Clean Co",
		SelfReported: validation.Totals{TotalTonnes: 1},
	}
	if err := r.RenderReport(&buf, report); err != nil {
		t.Fatalf("RenderReport() error: %v", err)
	}

	if !strings.Contains(buf.String(), "No flags.") {
		t.Error("expected 'No flags.' message")
	}
}

func TestTerminalColorRespected(t *testing.T) {
	// Without NO_COLOR, output should have ANSI codes.
	os.Unsetenv("NO_COLOR")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	if err := r.RenderScore(&buf, sampleScore()); err != nil {
		t.Fatalf("RenderScore() error: %v", err)
	}
	if !strings.Contains(buf.String(), "\033[") {
		t.Error("expected ANSI escape codes when NO_COLOR is not set")
	}
}

func TestJSONRenderer(t *testing.T) {
	r := &surface.JSONRenderer{}
	var buf bytes.Buffer

	if err := r.RenderReport(&buf, sampleReport()); err != nil {
		t.Fatalf("RenderReport() error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"quantitative_deviation"`) {
		t.Error("expected quantitative_deviation key in JSON output")
	}
	if !strings.Contains(output, `"worst_severity": "critical"`) {
		t.Error("expected worst_severity in JSON output")
	}
}
