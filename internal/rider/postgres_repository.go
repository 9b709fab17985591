package rider

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/railmiles/rewards-service/internal/rewards"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS riders (
	user_id      TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	email        TEXT NOT NULL,
	age          INTEGER NOT NULL,
	dob          TEXT NOT NULL,
	scotrail_id  TEXT NOT NULL DEFAULT '',
	total_miles  DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_trips  INTEGER NOT NULL DEFAULT 0,
	points       DOUBLE PRECISION NOT NULL DEFAULT 0,
	joined_date  TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS journeys (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL REFERENCES riders(user_id) ON DELETE CASCADE,
	journey_date   TEXT NOT NULL,
	start_time     TEXT NOT NULL,
	end_time       TEXT NOT NULL,
	start_station  TEXT NOT NULL,
	end_station    TEXT NOT NULL,
	distance       DOUBLE PRECISION NOT NULL,
	points_earned  DOUBLE PRECISION NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS journeys_user_date_idx ON journeys (user_id, journey_date DESC);
`

// Querier is the subset of *pgxpool.Pool the repository needs. pgxmock pools satisfy it too.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type postgresRepository struct {
	db Querier
}

// NewPostgresRepository instantiates a Postgres-backed repository. Call EnsureSchema once at startup.
func NewPostgresRepository(db Querier) Repository {
	return &postgresRepository{db: db}
}

// EnsureSchema creates the riders and journeys tables when missing.
func EnsureSchema(ctx context.Context, db Querier) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *postgresRepository) CreateProfile(ctx context.Context, p Profile) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO riders (user_id, name, email, age, dob, scotrail_id, total_miles, total_trips, points, joined_date, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, p.UserID, p.Name, p.Email, p.Age, p.DOB, p.ScotRailID, p.TotalMiles, p.TotalTrips, p.Points, p.JoinedDate, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *postgresRepository) GetProfile(ctx context.Context, userID string) (Profile, error) {
	row := r.db.QueryRow(ctx, `
		SELECT user_id, name, email, age, dob, scotrail_id, total_miles, total_trips, points, joined_date, created_at, updated_at
		FROM riders WHERE user_id = $1
	`, userID)
	return scanProfile(row)
}

func (r *postgresRepository) AddJourney(ctx context.Context, j rewards.Journey) (Profile, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Profile{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the rider row first so a missing rider reports not found instead of a foreign key error.
	if _, err := scanProfile(tx.QueryRow(ctx, `
		SELECT user_id, name, email, age, dob, scotrail_id, total_miles, total_trips, points, joined_date, created_at, updated_at
		FROM riders WHERE user_id = $1 FOR UPDATE
	`, j.UserID)); err != nil {
		return Profile{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO journeys (id, user_id, journey_date, start_time, end_time, start_station, end_station, distance, points_earned, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, j.ID, j.UserID, j.Date, j.StartTime, j.EndTime, j.StartStation, j.EndStation, j.Distance, j.PointsEarned, j.CreatedAt)
	if isUniqueViolation(err) {
		return Profile{}, ErrConflict
	}
	if err != nil {
		return Profile{}, err
	}

	profile, err := scanProfile(tx.QueryRow(ctx, `
		UPDATE riders
		SET total_miles = total_miles + $2, total_trips = total_trips + 1, points = points + $3, updated_at = $4
		WHERE user_id = $1
		RETURNING user_id, name, email, age, dob, scotrail_id, total_miles, total_trips, points, joined_date, created_at, updated_at
	`, j.UserID, j.Distance, j.PointsEarned, j.CreatedAt))
	if err != nil {
		return Profile{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func (r *postgresRepository) ListJourneys(ctx context.Context, userID string, filter JourneyFilter) ([]rewards.Journey, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, journey_date, start_time, end_time, start_station, end_station, distance, points_earned, created_at
		FROM journeys
		WHERE user_id = $1
		  AND ($2 = '' OR journey_date >= $2)
		  AND ($3 = '' OR journey_date < $3)
		ORDER BY journey_date DESC, start_time DESC, created_at DESC
	`, userID, filter.From, filter.To)
	if err != nil {
		return nil, err
	}

	journeys, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (rewards.Journey, error) {
		var j rewards.Journey
		err := row.Scan(&j.ID, &j.UserID, &j.Date, &j.StartTime, &j.EndTime, &j.StartStation, &j.EndStation, &j.Distance, &j.PointsEarned, &j.CreatedAt)
		return j, err
	})
	if err != nil {
		return nil, err
	}
	return journeys, nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.UserID, &p.Name, &p.Email, &p.Age, &p.DOB, &p.ScotRailID, &p.TotalMiles, &p.TotalTrips, &p.Points, &p.JoinedDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
