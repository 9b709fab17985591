package rider

import (
	"context"
	"sort"
	"sync"

	"github.com/railmiles/rewards-service/internal/rewards"
)

type memoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	journeys map[string][]rewards.Journey // userID -> journeys in insertion order
}

// NewMemoryRepository returns an in-memory repository intended for local development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		profiles: make(map[string]Profile),
		journeys: make(map[string][]rewards.Journey),
	}
}

func (r *memoryRepository) CreateProfile(_ context.Context, profile Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.UserID]; exists {
		return ErrConflict
	}
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *memoryRepository) GetProfile(_ context.Context, userID string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return profile, nil
}

func (r *memoryRepository) AddJourney(_ context.Context, journey rewards.Journey) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[journey.UserID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	for _, existing := range r.journeys[journey.UserID] {
		if existing.ID == journey.ID {
			return Profile{}, ErrConflict
		}
	}

	profile.TotalMiles += journey.Distance
	profile.TotalTrips++
	profile.Points += journey.PointsEarned
	profile.UpdatedAt = journey.CreatedAt

	r.profiles[journey.UserID] = profile
	r.journeys[journey.UserID] = append(r.journeys[journey.UserID], journey)
	return profile, nil
}

func (r *memoryRepository) ListJourneys(_ context.Context, userID string, filter JourneyFilter) ([]rewards.Journey, error) {
	r.mu.RLock()
	snapshot := make([]rewards.Journey, 0)
	for _, j := range r.journeys[userID] {
		if filter.Matches(j.Date) {
			snapshot = append(snapshot, j)
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(snapshot)
	return snapshot, nil
}

// sortNewestFirst orders by date, then start time, then creation, all descending.
func sortNewestFirst(journeys []rewards.Journey) {
	sort.SliceStable(journeys, func(i, j int) bool {
		a, b := journeys[i], journeys[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime > b.StartTime
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}
