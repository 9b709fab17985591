package rider

import (
	"context"
	"errors"
	"time"

	"github.com/railmiles/rewards-service/internal/rewards"
)

// Profile is the persisted rider document with its cumulative counters.
type Profile struct {
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Age        int       `json:"age"`
	DOB        string    `json:"dob"` // yyyy-mm-dd
	ScotRailID string    `json:"scotrail_id,omitempty"`
	TotalMiles float64   `json:"total_miles"`
	TotalTrips int       `json:"total_trips"`
	Points     float64   `json:"points"`
	JoinedDate string    `json:"joined_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Stats projects the profile counters for the rewards engine.
func (p Profile) Stats() rewards.Stats {
	return rewards.Stats{TotalMiles: p.TotalMiles, TotalTrips: p.TotalTrips, Points: p.Points}
}

// ProfileResponse is the profile as returned to clients, with the badge derived from mileage.
type ProfileResponse struct {
	Profile
	CurrentBadge rewards.Badge `json:"current_badge"`
}

// SignupInput captures the data required to create a rider profile.
type SignupInput struct {
	Name       string `json:"name" validate:"required,max=120"`
	Email      string `json:"email" validate:"required,email"`
	Age        int    `json:"age" validate:"gte=12,lte=120"`
	DOB        string `json:"dob" validate:"required,datetime=2006-01-02"`
	ScotRailID string `json:"scotrail_id" validate:"omitempty,max=32"`
}

// JourneyInput captures a journey submitted by a rider.
type JourneyInput struct {
	Date         string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string  `json:"start_time" validate:"required,datetime=15:04"`
	EndTime      string  `json:"end_time" validate:"required,datetime=15:04"`
	StartStation string  `json:"start_station" validate:"required,station"`
	EndStation   string  `json:"end_station" validate:"required,station,nefield=StartStation"`
	Distance     float64 `json:"distance" validate:"gt=0"`
}

// JourneyResult is returned after a journey is logged.
type JourneyResult struct {
	Journey   rewards.Journey   `json:"journey"`
	Dashboard rewards.Dashboard `json:"dashboard"`
	Upgrade   *BadgeUpgrade     `json:"badge_upgrade,omitempty"`
	// Stale is set when the month's journeys could not be reloaded after saving; the
	// challenges then only reflect this journey.
	Stale bool `json:"dashboard_stale,omitempty"`
}

// BadgeUpgrade describes a tier change caused by a single journey.
type BadgeUpgrade struct {
	From rewards.Badge `json:"from"`
	To   rewards.Badge `json:"to"`
}

// CalendarDay aggregates the journeys taken on one date.
type CalendarDay struct {
	Date     string  `json:"date"`
	Journeys int     `json:"journeys"`
	Miles    float64 `json:"miles"`
}

// CalendarMonth lists every day of a month with its journey count.
type CalendarMonth struct {
	Year  int           `json:"year"`
	Month time.Month    `json:"month"`
	Days  []CalendarDay `json:"days"`
}

// JourneyFilter bounds a journey listing by date. From is inclusive, To exclusive;
// both are yyyy-mm-dd and empty means unbounded.
type JourneyFilter struct {
	From string
	To   string
}

// Matches reports whether the journey date falls inside the filter.
func (f JourneyFilter) Matches(date string) bool {
	if f.From != "" && date < f.From {
		return false
	}
	if f.To != "" && date >= f.To {
		return false
	}
	return true
}

// Repository encapsulates persistence for riders and their journeys.
type Repository interface {
	CreateProfile(ctx context.Context, profile Profile) error
	GetProfile(ctx context.Context, userID string) (Profile, error)
	// AddJourney stores the journey and bumps the rider totals in one step, returning the updated profile.
	AddJourney(ctx context.Context, journey rewards.Journey) (Profile, error)
	// ListJourneys returns journeys newest first.
	ListJourneys(ctx context.Context, userID string, filter JourneyFilter) ([]rewards.Journey, error)
}

// ErrNotFound indicates the rider profile does not exist.
var ErrNotFound = errors.New("rider not found")

// ErrConflict indicates the rider profile already exists.
var ErrConflict = errors.New("rider already exists")

// ErrInvalidInput indicates the provided data failed validation.
var ErrInvalidInput = errors.New("invalid input")

// ErrMissingUserID is returned when no acting rider could be resolved.
var ErrMissingUserID = errors.New("missing user id")

// Clock delivers the current time; extracted for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique identifiers for new journeys.
type IDGenerator interface {
	NewID() string
}

// Publisher receives domain events. Delivery failures never fail the originating request.
type Publisher interface {
	Publish(ctx context.Context, subject, event string, payload any) error
}

// Metrics records domain counters.
type Metrics interface {
	RiderSignedUp()
	JourneyLogged(miles float64)
	BadgeUpgraded(tier string)
	ObserveEvaluation(d time.Duration)
}
