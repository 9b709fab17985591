package rider

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/railmiles/rewards-service/internal/rewards"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository instantiates a Firestore-backed repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

const (
	profilesCollection = "profiles"
	journeysCollection = "journeys"
)

func (r *firestoreRepository) profileDoc(userID string) *firestore.DocumentRef {
	return r.client.Collection(profilesCollection).Doc(userID)
}

func (r *firestoreRepository) journeyCollection(userID string) *firestore.CollectionRef {
	return r.profileDoc(userID).Collection(journeysCollection)
}

type profileDocument struct {
	Name       string    `firestore:"name"`
	Email      string    `firestore:"email"`
	Age        int       `firestore:"age"`
	DOB        string    `firestore:"dob"`
	ScotRailID string    `firestore:"scotrail_id"`
	TotalMiles float64   `firestore:"total_miles"`
	TotalTrips int       `firestore:"total_trips"`
	Points     float64   `firestore:"points"`
	JoinedDate string    `firestore:"joined_date"`
	CreatedAt  time.Time `firestore:"created_at"`
	UpdatedAt  time.Time `firestore:"updated_at"`
}

type journeyDocument struct {
	Date         string    `firestore:"date"`
	StartTime    string    `firestore:"start_time"`
	EndTime      string    `firestore:"end_time"`
	StartStation string    `firestore:"start_station"`
	EndStation   string    `firestore:"end_station"`
	Distance     float64   `firestore:"distance"`
	PointsEarned float64   `firestore:"points_earned"`
	CreatedAt    time.Time `firestore:"created_at"`
}

func (r *firestoreRepository) CreateProfile(ctx context.Context, profile Profile) error {
	_, err := r.profileDoc(profile.UserID).Create(ctx, profileDocument{
		Name:       profile.Name,
		Email:      profile.Email,
		Age:        profile.Age,
		DOB:        profile.DOB,
		ScotRailID: profile.ScotRailID,
		TotalMiles: profile.TotalMiles,
		TotalTrips: profile.TotalTrips,
		Points:     profile.Points,
		JoinedDate: profile.JoinedDate,
		CreatedAt:  profile.CreatedAt,
		UpdatedAt:  profile.UpdatedAt,
	})
	if status.Code(err) == codes.AlreadyExists {
		return ErrConflict
	}
	return err
}

func (r *firestoreRepository) GetProfile(ctx context.Context, userID string) (Profile, error) {
	doc, err := r.profileDoc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return snapshotToProfile(doc)
}

// AddJourney creates the journey document and increments the profile counters in one transaction.
func (r *firestoreRepository) AddJourney(ctx context.Context, journey rewards.Journey) (Profile, error) {
	profileRef := r.profileDoc(journey.UserID)
	journeyRef := r.journeyCollection(journey.UserID).Doc(journey.ID)

	var updated Profile
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(profileRef)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		current, err := snapshotToProfile(doc)
		if err != nil {
			return err
		}

		if err := tx.Create(journeyRef, journeyDocument{
			Date:         journey.Date,
			StartTime:    journey.StartTime,
			EndTime:      journey.EndTime,
			StartStation: journey.StartStation,
			EndStation:   journey.EndStation,
			Distance:     journey.Distance,
			PointsEarned: journey.PointsEarned,
			CreatedAt:    journey.CreatedAt,
		}); err != nil {
			return err
		}

		if err := tx.Update(profileRef, []firestore.Update{
			{Path: "total_miles", Value: firestore.Increment(journey.Distance)},
			{Path: "total_trips", Value: firestore.Increment(1)},
			{Path: "points", Value: firestore.Increment(journey.PointsEarned)},
			{Path: "updated_at", Value: journey.CreatedAt},
		}); err != nil {
			return err
		}

		current.TotalMiles += journey.Distance
		current.TotalTrips++
		current.Points += journey.PointsEarned
		current.UpdatedAt = journey.CreatedAt
		updated = current
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return Profile{}, ErrNotFound
	}
	if status.Code(err) == codes.AlreadyExists {
		return Profile{}, ErrConflict
	}
	if err != nil {
		return Profile{}, err
	}
	return updated, nil
}

func (r *firestoreRepository) ListJourneys(ctx context.Context, userID string, filter JourneyFilter) ([]rewards.Journey, error) {
	query := r.journeyCollection(userID).Query
	if filter.From != "" {
		query = query.Where("date", ">=", filter.From)
	}
	if filter.To != "" {
		query = query.Where("date", "<", filter.To)
	}
	query = query.OrderBy("date", firestore.Desc).OrderBy("start_time", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	journeys := make([]rewards.Journey, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		journey, err := snapshotToJourney(userID, doc)
		if err != nil {
			return nil, err
		}
		journeys = append(journeys, journey)
	}

	// Ties on date and start time still need the creation order.
	sortNewestFirst(journeys)
	return journeys, nil
}

func snapshotToProfile(doc *firestore.DocumentSnapshot) (Profile, error) {
	var payload profileDocument
	if err := doc.DataTo(&payload); err != nil {
		return Profile{}, err
	}
	return Profile{
		UserID:     doc.Ref.ID,
		Name:       payload.Name,
		Email:      payload.Email,
		Age:        payload.Age,
		DOB:        payload.DOB,
		ScotRailID: payload.ScotRailID,
		TotalMiles: payload.TotalMiles,
		TotalTrips: payload.TotalTrips,
		Points:     payload.Points,
		JoinedDate: payload.JoinedDate,
		CreatedAt:  payload.CreatedAt,
		UpdatedAt:  payload.UpdatedAt,
	}, nil
}

func snapshotToJourney(userID string, doc *firestore.DocumentSnapshot) (rewards.Journey, error) {
	var payload journeyDocument
	if err := doc.DataTo(&payload); err != nil {
		return rewards.Journey{}, err
	}
	return rewards.Journey{
		ID:           doc.Ref.ID,
		UserID:       userID,
		Date:         payload.Date,
		StartTime:    payload.StartTime,
		EndTime:      payload.EndTime,
		StartStation: payload.StartStation,
		EndStation:   payload.EndStation,
		Distance:     payload.Distance,
		PointsEarned: payload.PointsEarned,
		CreatedAt:    payload.CreatedAt,
	}, nil
}
