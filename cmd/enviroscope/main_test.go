package main

import (
	"context"
	"testing"

	"github.com/enviroscope/enviroscope/pkg/config"
	"github.com/enviroscope/enviroscope/pkg/validation"
)

func TestCalcCmdFlags(t *testing.T) {
	cmd := newCalcCmd()
	f := cmd.Flags()

	outputFmt, _ := f.GetString("output")
	if outputFmt != "text" {
		t.Errorf("default output = %q, want text", outputFmt)
	}

	for _, flag := range []string{"file", "output"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestScoreCmdFlags(t *testing.T) {
	cmd := newScoreCmd()
	f := cmd.Flags()

	outputFmt, _ := f.GetString("output")
	if outputFmt != "text" {
		t.Errorf("default output = %q, want text", outputFmt)
	}

	for _, flag := range []string{"country", "output", "trend-source"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestValidateCmdFlags(t *testing.T) {
	cmd := newValidateCmd()
	f := cmd.Flags()

	for _, flag := range []string{"file", "output", "facility-id", "facility-name", "state"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"a", "b", "c"}, "a"},
		{[]string{"", "b", "c"}, "b"},
		{[]string{"", "", "c"}, "c"},
		{[]string{"", "", ""}, ""},
	}

	for _, tt := range tests {
		got := firstNonEmpty(tt.args...)
		if got != tt.want {
			t.Errorf("firstNonEmpty(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestBuildSignals(t *testing.T) {
	cfg := config.DefaultConfig()

	signals, err := buildSignals(cfg)
	if err != nil {
		t.Fatalf("buildSignals() error: %v", err)
	}
	if len(signals) != 5 {
		t.Fatalf("len(signals) = %d, want 5", len(signals))
	}

	seen := map[string]bool{}
	for _, s := range signals {
		seen[s.Key()] = true
	}
	for _, key := range []string{"certifications", "enforcement", "renewables", "pollution_trend", "policy"} {
		if !seen[key] {
			t.Errorf("missing signal: %s", key)
		}
	}
}

func TestBuildValidationEngineFallback(t *testing.T) {
	cfg := config.DefaultConfig()

	engine := buildValidationEngine(cfg, validateOpts{})
	if engine.Fallback != nil {
		t.Error("fallback should be nil unless eia_fallback is enabled")
	}
	if engine.Mappings != nil {
		t.Error("mappings should be nil without --facility-id")
	}

	cfg.Sources.EIAFallback = true
	engine = buildValidationEngine(cfg, validateOpts{facilityID: "3470", state: "GA"})
	if engine.Fallback == nil {
		t.Error("fallback should be wired when eia_fallback is enabled")
	}

	m, err := engine.Mappings.GetMapping(context.Background(), "Acme Power")
	if err != nil {
		t.Fatalf("GetMapping() error: %v", err)
	}
	if m.FacilityID != "3470" || m.Company != "Acme Power" {
		t.Errorf("mapping = %+v, want facility 3470 for Acme Power", m)
	}
}

var _ validation.MappingStore = &staticMapping{}
