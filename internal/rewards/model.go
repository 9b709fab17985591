package rewards

import "time"

// Journey is a single logged train trip. Journeys are immutable once created.
type Journey struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Date         string    `json:"date"`       // yyyy-mm-dd
	StartTime    string    `json:"start_time"` // HH:MM, 24h
	EndTime      string    `json:"end_time"`
	StartStation string    `json:"start_station"`
	EndStation   string    `json:"end_station"`
	Distance     float64   `json:"distance"` // miles
	PointsEarned float64   `json:"points_earned"`
	CreatedAt    time.Time `json:"created_at"`
}

// BadgeType identifies one of the fixed badge tiers.
type BadgeType string

const (
	BadgeBronze   BadgeType = "bronze"
	BadgeSilver   BadgeType = "silver"
	BadgeGold     BadgeType = "gold"
	BadgeDiamond  BadgeType = "diamond"
	BadgePlatinum BadgeType = "platinum"
)

// Badge is static reference data describing a mileage tier.
type Badge struct {
	Type          BadgeType `json:"type"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	MilesRequired float64   `json:"miles_required"`
	IconURL       string    `json:"icon_url"`
}

// BadgeProgress describes where a rider sits between the current and next tier.
type BadgeProgress struct {
	Current         Badge   `json:"current"`
	Next            *Badge  `json:"next"`
	TotalMiles      float64 `json:"total_miles"`
	ProgressPercent int     `json:"progress_percent"`
	MilesRemaining  float64 `json:"miles_remaining"`
}

// ChallengeType identifies how a challenge's progress is computed.
type ChallengeType string

const (
	ChallengeBackToBack  ChallengeType = "backToBack"
	ChallengeOffPeak     ChallengeType = "offPeak"
	ChallengeMonthlyGoal ChallengeType = "monthlyGoal"
)

// ChallengeDefinition is a static monthly challenge template.
type ChallengeDefinition struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Type        ChallengeType `json:"type"`
	Target      int           `json:"target"`

	// Secondary condition for the monthly goal.
	TargetMiles float64 `json:"target_miles,omitempty"`
}

// ChallengeStatus is the evaluated state of a challenge for the current month.
type ChallengeStatus struct {
	Challenge       ChallengeDefinition `json:"challenge"`
	Progress        int                 `json:"progress"`
	Target          int                 `json:"target"`
	Completed       bool                `json:"completed"`
	ProgressPercent int                 `json:"progress_percent"`

	// Only populated for the monthly goal.
	CurrentMiles float64 `json:"current_miles,omitempty"`
	TargetMiles  float64 `json:"target_miles,omitempty"`
}

// Evaluation is the result of evaluating every challenge against one month of journeys.
type Evaluation struct {
	Year         int               `json:"year"`
	Month        time.Month        `json:"month"`
	Challenges   []ChallengeStatus `json:"challenges"`
	AllCompleted bool              `json:"all_completed"`
	MonthTrips   int               `json:"month_trips"`
	MonthMiles   float64           `json:"month_miles"`
}

// Stats are the cumulative counters kept on a rider's profile.
type Stats struct {
	TotalMiles float64 `json:"total_miles"`
	TotalTrips int     `json:"total_trips"`
	Points     float64 `json:"points"`
}

// Dashboard combines badge progress and challenge state for a rider.
type Dashboard struct {
	Stats
	Badge       BadgeProgress `json:"badge"`
	Evaluation  Evaluation    `json:"evaluation"`
	EvaluatedAt time.Time     `json:"evaluated_at"`
}
