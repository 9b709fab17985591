package rider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/railmiles/rewards-service/internal/rewards"
)

var profileColumns = []string{
	"user_id", "name", "email", "age", "dob", "scotrail_id",
	"total_miles", "total_trips", "points", "joined_date", "created_at", "updated_at",
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestPostgresRepository_CreateProfile(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPostgresRepository(mock)
	now := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	p := Profile{UserID: "user-1", Name: "Ailsa", Email: "ailsa@example.com", Age: 30, DOB: "1994-02-01", JoinedDate: "2024-05-15", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(`INSERT INTO riders`).
		WithArgs("user-1", "Ailsa", "ailsa@example.com", 30, "1994-02-01", "", 0.0, 0, 0.0, "2024-05-15", now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	if err := repo.CreateProfile(context.Background(), p); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	mock.ExpectExec(`INSERT INTO riders`).
		WithArgs("user-1", "Ailsa", "ailsa@example.com", 30, "1994-02-01", "", 0.0, 0, 0.0, "2024-05-15", now, now).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})
	if err := repo.CreateProfile(context.Background(), p); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_GetProfile(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPostgresRepository(mock)
	now := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM riders WHERE user_id`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(profileColumns).
			AddRow("user-1", "Ailsa", "ailsa@example.com", 30, "1994-02-01", "SR123", 210.5, 4, 0.11, "2024-05-01", now, now))

	p, err := repo.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.Name != "Ailsa" || p.ScotRailID != "SR123" || p.TotalMiles != 210.5 || p.TotalTrips != 4 {
		t.Fatalf("unexpected profile: %+v", p)
	}

	mock.ExpectQuery(`FROM riders WHERE user_id`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetProfile(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_AddJourney(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPostgresRepository(mock)
	now := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	j := rewards.Journey{
		ID: "j1", UserID: "user-1", Date: "2024-05-15", StartTime: "08:00", EndTime: "08:50",
		StartStation: "Glasgow Central", EndStation: "Edinburgh Waverley", Distance: 47, PointsEarned: 0.02, CreatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(profileColumns).
			AddRow("user-1", "Ailsa", "ailsa@example.com", 30, "1994-02-01", "", 190.0, 3, 0.09, "2024-05-01", now, now))
	mock.ExpectExec(`INSERT INTO journeys`).
		WithArgs("j1", "user-1", "2024-05-15", "08:00", "08:50", "Glasgow Central", "Edinburgh Waverley", 47.0, 0.02, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`UPDATE riders`).
		WithArgs("user-1", 47.0, 0.02, now).
		WillReturnRows(pgxmock.NewRows(profileColumns).
			AddRow("user-1", "Ailsa", "ailsa@example.com", 30, "1994-02-01", "", 237.0, 4, 0.11, "2024-05-01", now, now))
	mock.ExpectCommit()

	p, err := repo.AddJourney(context.Background(), j)
	if err != nil {
		t.Fatalf("AddJourney: %v", err)
	}
	if p.TotalMiles != 237 || p.TotalTrips != 4 {
		t.Fatalf("unexpected totals: %+v", p)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_AddJourneyErrors(t *testing.T) {
	now := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	j := rewards.Journey{ID: "j1", UserID: "user-1", Date: "2024-05-15", Distance: 10, CreatedAt: now}

	t.Run("unknown rider", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WithArgs("user-1").WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		if _, err := NewPostgresRepository(mock).AddJourney(context.Background(), j); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("duplicate journey", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WithArgs("user-1").
			WillReturnRows(pgxmock.NewRows(profileColumns).
				AddRow("user-1", "Ailsa", "a@example.com", 30, "1994-02-01", "", 0.0, 0, 0.0, "2024-05-01", now, now))
		mock.ExpectExec(`INSERT INTO journeys`).
			WithArgs("j1", "user-1", "2024-05-15", "", "", "", "", 10.0, 0.0, now).
			WillReturnError(&pgconn.PgError{Code: uniqueViolation})
		mock.ExpectRollback()

		if _, err := NewPostgresRepository(mock).AddJourney(context.Background(), j); !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})
}

func TestPostgresRepository_ListJourneys(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPostgresRepository(mock)
	now := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	columns := []string{"id", "user_id", "journey_date", "start_time", "end_time", "start_station", "end_station", "distance", "points_earned", "created_at"}

	mock.ExpectQuery(`FROM journeys`).
		WithArgs("user-1", "2024-05-01", "2024-06-01").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("j2", "user-1", "2024-05-14", "18:00", "18:40", "Stirling", "Perth", 33.0, 0.02, now).
			AddRow("j1", "user-1", "2024-05-02", "07:30", "08:10", "Perth", "Dundee", 22.0, 0.01, now))

	journeys, err := repo.ListJourneys(context.Background(), "user-1", JourneyFilter{From: "2024-05-01", To: "2024-06-01"})
	if err != nil {
		t.Fatalf("ListJourneys: %v", err)
	}
	if len(journeys) != 2 || journeys[0].ID != "j2" || journeys[1].EndStation != "Dundee" {
		t.Fatalf("unexpected journeys: %+v", journeys)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureSchema(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS riders`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	if err := EnsureSchema(context.Background(), mock); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS riders`).WillReturnError(errors.New("permission denied"))
	if err := EnsureSchema(context.Background(), mock); err == nil {
		t.Fatalf("expected schema error")
	}
}
