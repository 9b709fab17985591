package rewards

import "math"

// PointsPerMile is the fixed accrual rate applied to every journey.
const PointsPerMile = 0.0005

// PointsForDistance returns the points earned for a journey of the given length,
// rounded to two decimals.
func PointsForDistance(miles float64) float64 {
	if math.IsNaN(miles) || miles <= 0 {
		return 0
	}
	return RoundPoints(miles * PointsPerMile)
}

// TotalPoints sums the points earned across journeys.
func TotalPoints(journeys []Journey) float64 {
	total := 0.0
	for _, j := range journeys {
		total += j.PointsEarned
	}
	return RoundPoints(total)
}

// RoundPoints rounds a point balance to two decimals (half away from zero).
func RoundPoints(v float64) float64 {
	return math.Round(v*100) / 100
}
