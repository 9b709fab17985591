package rewards

import "time"

// BuildDashboard derives the badge and challenge view for a rider from explicit inputs.
// It is meant to be called after every state change instead of caching derived values.
func BuildDashboard(stats Stats, journeys []Journey, now time.Time) Dashboard {
	stats.Points = RoundPoints(stats.Points)
	return Dashboard{
		Stats:       stats,
		Badge:       ProgressFor(stats.TotalMiles),
		Evaluation:  EvaluateChallenges(journeys, now),
		EvaluatedAt: now,
	}
}
