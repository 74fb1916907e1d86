package sources

// fitSlope computes the least-squares slope of values over years. Both
// slices must have the same length; fewer than two points yields zero.
func fitSlope(years []float64, values []float64) float64 {
	n := float64(len(years))
	if len(years) != len(values) || len(years) < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i := range years {
		sumX += years[i]
		sumY += values[i]
		sumXY += years[i] * values[i]
		sumXX += years[i] * years[i]
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
