package scoring

// Weights holds the scoring weights and caps for all signals.
type Weights struct {
	// Base score every company starts from.
	Base float64

	// Certifications
	CertPerItem float64
	CertCap     float64

	// Enforcement
	EnforcementPerMatch float64
	EnforcementFloor    float64 // most negative allowed penalty

	// Renewables
	RenewablesPerPoint float64 // per percentage point above target
	RenewablesCap      float64

	// Pollution trend
	PollutionSlopeWeight float64
	PollutionFloor       float64 // most negative allowed penalty

	// Policy
	PolicyStrong   float64
	PolicyModerate float64
	PolicyWeak     float64
}
