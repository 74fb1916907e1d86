package mapping

import (
	"context"
	"testing"

	"github.com/enviroscope/enviroscope/pkg/validation"
)

func TestNewService(t *testing.T) {
	// NewService should not panic with nil db (it just stores the reference).
	svc := NewService(nil)
	if svc == nil {
		t.Fatal("NewService returned nil")
	}
}

func TestMappingStruct(t *testing.T) {
	m := Mapping{
		Company:      "Acme Power",
		FacilityID:   "3",
		FacilityName: "Acme Generating Station",
		State:        "TX",
	}

	if m.Company != "Acme Power" {
		t.Errorf("Company = %q", m.Company)
	}
	if m.FacilityID != "3" {
		t.Errorf("FacilityID = %q", m.FacilityID)
	}
}

func TestUpsertRejectsMissingFields(t *testing.T) {
	svc := NewService(nil)

	if _, err := svc.Upsert(context.Background(), Mapping{FacilityID: "3"}); err == nil {
		t.Error("expected error for missing company")
	}
	if _, err := svc.Upsert(context.Background(), Mapping{Company: "Acme"}); err == nil {
		t.Error("expected error for missing facility_id")
	}
}

func TestResolverImplementsMappingStore(t *testing.T) {
	// The validation engine depends on the MappingStore interface; the
	// Resolver must keep satisfying it.
	var _ validation.MappingStore = &Resolver{Service: NewService(nil)}
}
