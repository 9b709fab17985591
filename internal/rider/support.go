package rider

import (
	"time"

	"github.com/google/uuid"
)

// ===== Clock =====

type systemClock struct{}

// NewSystemClock returns a Clock implementation backed by time.Now.
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// ===== ID Generator =====

type uuidGenerator struct{}

// NewUUIDGenerator returns an IDGenerator that produces v7 UUIDs where available, falling back to v4.
func NewUUIDGenerator() IDGenerator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// ===== Date helpers =====

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// monthFilter covers the calendar month of year/month.
func monthFilter(year int, month time.Month) JourneyFilter {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return JourneyFilter{
		From: start.Format(dateLayout),
		To:   start.AddDate(0, 1, 0).Format(dateLayout),
	}
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
