package sources

import (
	"context"
	"fmt"
	"strings"
)

const policySourceName = "policy-table-2024"

// PolicyTable rates national climate policy strength from the embedded
// reference table.
type PolicyTable struct {
	policies map[string]string
}

// NewPolicyTable loads the embedded policy strength table.
func NewPolicyTable() (*PolicyTable, error) {
	policies, err := loadPolicyTable()
	if err != nil {
		return nil, err
	}
	return &PolicyTable{policies: policies}, nil
}

// PolicyStrength returns the rating for a country. Countries absent from
// the table are an error so the policy signal degrades to neutral rather
// than silently rating them "weak".
func (t *PolicyTable) PolicyStrength(ctx context.Context, country string) (string, string, error) {
	cc := strings.ToUpper(strings.TrimSpace(country))
	strength, ok := t.policies[cc]
	if !ok {
		return "", "", fmt.Errorf("policy: no rating for country %q", country)
	}
	return strength, policySourceName, nil
}
