package sources

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Curated reference datasets shipped with the binary. They change rarely
// and on their own review cadence, so they are embedded rather than
// fetched.
//
//go:embed refdata/*.yaml
var refdataFS embed.FS

// Certification is one curated certification registry entry.
type Certification struct {
	Company  string `yaml:"company"`
	Standard string `yaml:"standard"`
	Status   string `yaml:"status"`
}

func loadCertifications() ([]Certification, error) {
	data, err := refdataFS.ReadFile("refdata/certifications.yaml")
	if err != nil {
		return nil, fmt.Errorf("read certifications refdata: %w", err)
	}
	var doc struct {
		Certifications []Certification `yaml:"certifications"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse certifications refdata: %w", err)
	}
	return doc.Certifications, nil
}

func loadRenewableTargets() (map[string]float64, error) {
	data, err := refdataFS.ReadFile("refdata/renewable_targets.yaml")
	if err != nil {
		return nil, fmt.Errorf("read renewable targets refdata: %w", err)
	}
	var doc struct {
		Targets map[string]float64 `yaml:"targets"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse renewable targets refdata: %w", err)
	}
	return doc.Targets, nil
}

func loadPolicyTable() (map[string]string, error) {
	data, err := refdataFS.ReadFile("refdata/policy.yaml")
	if err != nil {
		return nil, fmt.Errorf("read policy refdata: %w", err)
	}
	var doc struct {
		Policies map[string]string `yaml:"policies"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse policy refdata: %w", err)
	}
	return doc.Policies, nil
}
