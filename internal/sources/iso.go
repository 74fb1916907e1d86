package sources

import (
	"context"
	"strings"
)

const isoSourceName = "iso-registry-curated"

// ISORegistry resolves environmental management certification counts from
// the curated registry dataset. ISO does not publish a machine-readable
// registry, so the dataset is maintained by hand and embedded.
type ISORegistry struct {
	certs []Certification
}

// NewISORegistry loads the embedded certification registry.
func NewISORegistry() (*ISORegistry, error) {
	certs, err := loadCertifications()
	if err != nil {
		return nil, err
	}
	return &ISORegistry{certs: certs}, nil
}

// CertificationCount counts active certifications whose company entry
// matches the given company name, case-insensitively.
func (r *ISORegistry) CertificationCount(ctx context.Context, company, country string) (int, string, error) {
	name := normalizeCompany(company)
	count := 0
	for _, c := range r.certs {
		if c.Status != "" && !strings.EqualFold(c.Status, "active") {
			continue
		}
		if normalizeCompany(c.Company) == name {
			count++
		}
	}
	return count, isoSourceName, nil
}

// normalizeCompany folds case and strips common legal suffixes so "Acme
// Steel AB" and "acme steel" match the same registry entries.
func normalizeCompany(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range []string{" inc", " inc.", " ltd", " ltd.", " llc", " ab", " gmbh", " corp", " corp.", " co", " co."} {
		s = strings.TrimSuffix(s, suffix)
	}
	return strings.TrimSpace(s)
}
