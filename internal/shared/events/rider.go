package events

import "time"

// RiderSignedUp is emitted when a rider profile is created.
type RiderSignedUp struct {
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	JoinedDate string    `json:"joinedDate"`
	SignedUpAt time.Time `json:"signedUpAt"`
}

// JourneyLogged is emitted after a journey has been persisted and the rider totals updated.
type JourneyLogged struct {
	UserID       string    `json:"userId"`
	JourneyID    string    `json:"journeyId"`
	Date         string    `json:"date"`
	StartStation string    `json:"startStation"`
	EndStation   string    `json:"endStation"`
	Distance     float64   `json:"distance"`
	PointsEarned float64   `json:"pointsEarned"`
	TotalMiles   float64   `json:"totalMiles"`
	LoggedAt     time.Time `json:"loggedAt"`
}

// BadgeUpgraded is emitted when a journey moves a rider into a higher badge tier.
type BadgeUpgraded struct {
	UserID     string    `json:"userId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	TotalMiles float64   `json:"totalMiles"`
	UpgradedAt time.Time `json:"upgradedAt"`
}
