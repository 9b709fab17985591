package rider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/railmiles/rewards-service/internal/rewards"
	"github.com/railmiles/rewards-service/internal/shared/events"
	"github.com/railmiles/rewards-service/internal/shared/pubsub"
)

// Service orchestrates rider profiles, journeys and the derived rewards view.
type Service struct {
	repo      Repository
	clock     Clock
	ids       IDGenerator
	publisher Publisher
	metrics   Metrics
	logger    *slog.Logger
	loc       *time.Location
}

// Option customises optional Service collaborators.
type Option func(*Service)

// WithPublisher sends domain events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics records domain counters on m.
func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger used for non-fatal failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithLocation sets the timezone that defines "today" and "this month".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// NewService constructs a Service instance with the provided collaborators.
func NewService(repo Repository, clock Clock, ids IDGenerator, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	if clock == nil {
		return nil, errors.New("clock is required")
	}
	if ids == nil {
		return nil, errors.New("id generator is required")
	}

	s := &Service{
		repo:      repo,
		clock:     clock,
		ids:       ids,
		publisher: pubsub.NewNoopPublisher(),
		metrics:   nopMetrics{},
		logger:    slog.Default(),
		loc:       time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) now() time.Time {
	return s.clock.Now().In(s.loc)
}

// SignUp creates the profile of userID with zeroed counters.
func (s *Service) SignUp(ctx context.Context, userID string, input SignupInput) (ProfileResponse, error) {
	if userID == "" {
		return ProfileResponse{}, ErrMissingUserID
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.ScotRailID = strings.TrimSpace(input.ScotRailID)

	now := s.now()
	if err := input.Validate(now); err != nil {
		return ProfileResponse{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	profile := Profile{
		UserID:     userID,
		Name:       input.Name,
		Email:      input.Email,
		Age:        input.Age,
		DOB:        input.DOB,
		ScotRailID: input.ScotRailID,
		JoinedDate: now.Format(dateLayout),
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		return ProfileResponse{}, err
	}

	s.metrics.RiderSignedUp()
	s.publish(ctx, pubsub.TopicRiderEvents, pubsub.EventRiderSignedUp, events.RiderSignedUp{
		UserID:     profile.UserID,
		Name:       profile.Name,
		Email:      profile.Email,
		JoinedDate: profile.JoinedDate,
		SignedUpAt: profile.CreatedAt,
	})

	return toResponse(profile), nil
}

// GetProfile returns the rider profile with its current badge.
func (s *Service) GetProfile(ctx context.Context, userID string) (ProfileResponse, error) {
	if userID == "" {
		return ProfileResponse{}, ErrMissingUserID
	}
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return ProfileResponse{}, err
	}
	return toResponse(profile), nil
}

// LogJourney validates and stores a journey, then returns the recomputed dashboard.
func (s *Service) LogJourney(ctx context.Context, userID string, input JourneyInput) (JourneyResult, error) {
	if userID == "" {
		return JourneyResult{}, ErrMissingUserID
	}

	input.StartStation = strings.TrimSpace(input.StartStation)
	input.EndStation = strings.TrimSpace(input.EndStation)

	now := s.now()
	if err := input.Validate(now); err != nil {
		return JourneyResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	journey := rewards.Journey{
		ID:           s.ids.NewID(),
		UserID:       userID,
		Date:         input.Date,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		StartStation: input.StartStation,
		EndStation:   input.EndStation,
		Distance:     input.Distance,
		PointsEarned: rewards.PointsForDistance(input.Distance),
		CreatedAt:    now.UTC(),
	}

	profile, err := s.repo.AddJourney(ctx, journey)
	if err != nil {
		return JourneyResult{}, err
	}
	s.metrics.JourneyLogged(journey.Distance)

	// The journey is committed; a failed reload degrades to a stale dashboard.
	stale := false
	monthJourneys, err := s.repo.ListJourneys(ctx, userID, monthFilter(now.Year(), now.Month()))
	if err != nil {
		s.logger.WarnContext(ctx, "reload month journeys failed",
			slog.String("user_id", userID),
			slog.String("journey_id", journey.ID),
			slog.Any("error", err),
		)
		monthJourneys = []rewards.Journey{journey}
		stale = true
	}

	result := JourneyResult{
		Journey:   journey,
		Dashboard: s.evaluate(profile, monthJourneys, now),
		Stale:     stale,
	}

	before := rewards.ResolveBadge(priorMiles(profile.TotalMiles, journey.Distance))
	after := result.Dashboard.Badge.Current
	if after.MilesRequired > before.MilesRequired {
		result.Upgrade = &BadgeUpgrade{From: before, To: after}
		s.metrics.BadgeUpgraded(string(after.Type))
	}

	s.publish(ctx, pubsub.TopicJourneyEvents, pubsub.EventJourneyLogged, events.JourneyLogged{
		UserID:       userID,
		JourneyID:    journey.ID,
		Date:         journey.Date,
		StartStation: journey.StartStation,
		EndStation:   journey.EndStation,
		Distance:     journey.Distance,
		PointsEarned: journey.PointsEarned,
		TotalMiles:   profile.TotalMiles,
		LoggedAt:     journey.CreatedAt,
	})
	if result.Upgrade != nil {
		s.publish(ctx, pubsub.TopicBadgeEvents, pubsub.EventBadgeUpgraded, events.BadgeUpgraded{
			UserID:     userID,
			From:       string(before.Type),
			To:         string(after.Type),
			TotalMiles: profile.TotalMiles,
			UpgradedAt: journey.CreatedAt,
		})
	}

	return result, nil
}

// ListJourneys returns the rider's journeys newest first. A zero month lists every journey.
func (s *Service) ListJourneys(ctx context.Context, userID string, year int, month time.Month) ([]rewards.Journey, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	filter := JourneyFilter{}
	if month != 0 {
		if month < time.January || month > time.December {
			return nil, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
		}
		if year == 0 {
			year = s.now().Year()
		}
		filter = monthFilter(year, month)
	}
	journeys, err := s.repo.ListJourneys(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if journeys == nil {
		journeys = []rewards.Journey{}
	}
	return journeys, nil
}

// Calendar returns one entry per day of the month with the journeys taken that day.
// A zero year or month falls back to the current one.
func (s *Service) Calendar(ctx context.Context, userID string, year int, month time.Month) (CalendarMonth, error) {
	if userID == "" {
		return CalendarMonth{}, ErrMissingUserID
	}
	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}
	if month < time.January || month > time.December {
		return CalendarMonth{}, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}

	journeys, err := s.repo.ListJourneys(ctx, userID, monthFilter(year, month))
	if err != nil {
		return CalendarMonth{}, err
	}

	n := daysIn(year, month)
	days := make([]CalendarDay, n)
	for i := range days {
		days[i].Date = time.Date(year, month, i+1, 0, 0, 0, 0, time.UTC).Format(dateLayout)
	}
	for _, j := range journeys {
		d, err := time.Parse(dateLayout, j.Date)
		if err != nil || d.Year() != year || d.Month() != month {
			continue
		}
		days[d.Day()-1].Journeys++
		days[d.Day()-1].Miles += j.Distance
	}

	return CalendarMonth{Year: year, Month: month, Days: days}, nil
}

// Dashboard loads the profile and this month's journeys concurrently and evaluates them.
func (s *Service) Dashboard(ctx context.Context, userID string) (rewards.Dashboard, error) {
	if userID == "" {
		return rewards.Dashboard{}, ErrMissingUserID
	}

	now := s.now()
	var (
		profile  Profile
		journeys []rewards.Journey
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.repo.GetProfile(gctx, userID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})

	g.Go(func() error {
		js, err := s.repo.ListJourneys(gctx, userID, monthFilter(now.Year(), now.Month()))
		if err != nil {
			return err
		}
		journeys = js
		return nil
	})

	if err := g.Wait(); err != nil {
		return rewards.Dashboard{}, err
	}

	return s.evaluate(profile, journeys, now), nil
}

// Catalog lists the reward coupons with what the rider can afford.
func (s *Service) Catalog(ctx context.Context, userID string) ([]RewardOffer, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return offersFor(profile.Points), nil
}

// ListBadges returns the badge tiers in ascending order.
func (s *Service) ListBadges(_ context.Context) []rewards.Badge {
	return rewards.Badges()
}

// ListStations returns the stations a journey may use.
func (s *Service) ListStations(_ context.Context) []string {
	return Stations()
}

// ListChallenges returns the monthly challenge definitions.
func (s *Service) ListChallenges(_ context.Context) []rewards.ChallengeDefinition {
	return rewards.ChallengeDefinitions()
}

func (s *Service) evaluate(profile Profile, journeys []rewards.Journey, now time.Time) rewards.Dashboard {
	start := time.Now()
	d := rewards.BuildDashboard(profile.Stats(), journeys, now)
	s.metrics.ObserveEvaluation(time.Since(start))
	return d
}

func (s *Service) publish(ctx context.Context, subject, event string, payload any) {
	if err := s.publisher.Publish(ctx, subject, event, payload); err != nil {
		s.logger.WarnContext(ctx, "event publish failed",
			slog.String("subject", subject),
			slog.String("event", event),
			slog.Any("error", err),
		)
	}
}

// priorMiles undoes the journey's contribution, rounded to absorb float drift at tier thresholds.
func priorMiles(total, distance float64) float64 {
	return math.Round((total-distance)*1e6) / 1e6
}

func toResponse(p Profile) ProfileResponse {
	p.Points = rewards.RoundPoints(p.Points)
	return ProfileResponse{Profile: p, CurrentBadge: rewards.ResolveBadge(p.TotalMiles)}
}

type nopMetrics struct{}

func (nopMetrics) RiderSignedUp()                  {}
func (nopMetrics) JourneyLogged(float64)           {}
func (nopMetrics) BadgeUpgraded(string)            {}
func (nopMetrics) ObserveEvaluation(time.Duration) {}
