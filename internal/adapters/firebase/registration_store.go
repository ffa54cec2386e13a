package firebase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	registrationStore "techfest/internal/adapters/storage/registration"
	domain "techfest/internal/domain/registration"
)

// registrationDoc is the Firestore layout of a registration. Field names
// match the SQL table so both backends read the same.
type registrationDoc struct {
	UserID              string    `firestore:"user_id"`
	FirstName           string    `firestore:"first_name"`
	LastName            string    `firestore:"last_name"`
	Email               string    `firestore:"email"`
	Phone               string    `firestore:"phone"`
	Gender              string    `firestore:"gender"`
	College             string    `firestore:"college"`
	Department          string    `firestore:"department"`
	Year                string    `firestore:"year"`
	StudentID           string    `firestore:"student_id"`
	EventsInterested    []string  `firestore:"events_interested"`
	TShirtSize          string    `firestore:"t_shirt_size"`
	DietaryRestrictions []string  `firestore:"dietary_restrictions"`
	SpecialRequirements *string   `firestore:"special_requirements"`
	HearAboutUs         string    `firestore:"hear_about_us"`
	CreatedAt           time.Time `firestore:"created_at"`
}

func toRegistrationDoc(s domain.Stored) registrationDoc {
	return registrationDoc{
		UserID:              s.UserID,
		FirstName:           s.FirstName,
		LastName:            s.LastName,
		Email:               s.Email,
		Phone:               s.Phone,
		Gender:              s.Gender,
		College:             s.College,
		Department:          s.Department,
		Year:                s.Year,
		StudentID:           s.StudentID,
		EventsInterested:    nonNil(s.EventsInterested),
		TShirtSize:          s.TShirtSize,
		DietaryRestrictions: nonNil(s.DietaryRestrictions),
		SpecialRequirements: s.SpecialRequirements,
		HearAboutUs:         s.HearAboutUs,
		CreatedAt:           s.CreatedAt.UTC(),
	}
}

func (d registrationDoc) toStored(id string) domain.Stored {
	return domain.Stored{
		ID:        id,
		UserID:    d.UserID,
		CreatedAt: d.CreatedAt.UTC(),
		Record: domain.Record{
			FirstName:           d.FirstName,
			LastName:            d.LastName,
			Email:               d.Email,
			Phone:               d.Phone,
			Gender:              d.Gender,
			College:             d.College,
			Department:          d.Department,
			Year:                d.Year,
			StudentID:           d.StudentID,
			EventsInterested:    nonNil(d.EventsInterested),
			TShirtSize:          d.TShirtSize,
			DietaryRestrictions: nonNil(d.DietaryRestrictions),
			SpecialRequirements: d.SpecialRequirements,
			HearAboutUs:         d.HearAboutUs,
			// Terms are enforced before insert, so every stored row agreed.
			AgreeToTerms: true,
		},
	}
}

// RegistrationStore implements the registration Store on Firestore.
type RegistrationStore struct {
	client *firestore.Client
}

var _ registrationStore.Store = (*RegistrationStore)(nil)

// NewRegistrationStore creates a Firestore-backed registration store.
func NewRegistrationStore(client *firestore.Client) *RegistrationStore {
	return &RegistrationStore{client: client}
}

func (s *RegistrationStore) collection() *firestore.CollectionRef {
	return s.client.Collection(RegistrationsCollection)
}

// Insert creates the document keyed by value.ID.
// PRE: value has been validated
// POST: Document created; an existing ID is an error
func (s *RegistrationStore) Insert(ctx context.Context, value domain.Stored) (domain.Stored, error) {
	if _, err := s.collection().Doc(value.ID).Create(ctx, toRegistrationDoc(value)); err != nil {
		return domain.Stored{}, fmt.Errorf("insert registration: %w", err)
	}
	return s.GetByID(ctx, value.ID)
}

// GetByID retrieves a registration by its document ID.
// POST: Returns the row or registrationStore.ErrNotFound
func (s *RegistrationStore) GetByID(ctx context.Context, id string) (domain.Stored, error) {
	snap, err := s.collection().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return domain.Stored{}, registrationStore.ErrNotFound
	}
	if err != nil {
		return domain.Stored{}, err
	}
	var doc registrationDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.Stored{}, fmt.Errorf("decode registration %s: %w", id, err)
	}
	return doc.toStored(snap.Ref.ID), nil
}

func (s *RegistrationStore) query(filter registrationStore.ListFilter) firestore.Query {
	q := s.collection().Query
	if filter.UserID != "" {
		q = q.Where("user_id", "==", filter.UserID)
	}
	return q
}

// List returns registrations newest first, optionally for one user.
func (s *RegistrationStore) List(ctx context.Context, filter registrationStore.ListFilter) ([]domain.Stored, error) {
	q := s.query(filter).OrderBy("created_at", firestore.Desc)
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var results []domain.Stored
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list registrations: %w", err)
		}
		var doc registrationDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode registration %s: %w", snap.Ref.ID, err)
		}
		results = append(results, doc.toStored(snap.Ref.ID))
	}
	return results, nil
}

// Count returns the number of registrations matching filter.
func (s *RegistrationStore) Count(ctx context.Context, filter registrationStore.ListFilter) (int, error) {
	q := s.query(filter)
	res, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	v, ok := res["all"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("count registrations: unexpected result %T", res["all"])
	}
	return int(v.GetIntegerValue()), nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
