package scoring

// Defaults returns the pinned scoring weights. These are scoring policy:
// changing any of them changes published scores, so they are versioned
// here rather than exposed as per-deployment tunables.
func Defaults() Weights {
	return Weights{
		Base: 50.0,

		CertPerItem: 2.0,
		CertCap:     30.0,

		EnforcementPerMatch: 2.0,
		EnforcementFloor:    -30.0,

		RenewablesPerPoint: 2.0,
		RenewablesCap:      20.0,

		PollutionSlopeWeight: 5.0,
		PollutionFloor:       -15.0,

		PolicyStrong:   3.0,
		PolicyModerate: 1.5,
		PolicyWeak:     0.0,
	}
}
