package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	eventInfoStore "techfest/internal/adapters/storage/eventinfo"
	domain "techfest/internal/domain/eventinfo"
)

type eventInfoDoc struct {
	Name                 string `firestore:"name"`
	Description          string `firestore:"description"`
	StartDate            string `firestore:"start_date"`
	EndDate              string `firestore:"end_date"`
	Location             string `firestore:"location"`
	RegistrationDeadline string `firestore:"registration_deadline"`
	Logo                 string `firestore:"logo"`
}

// EventInfoStore keeps the event info in a single Firestore document.
type EventInfoStore struct {
	client *firestore.Client
}

var _ eventInfoStore.Store = (*EventInfoStore)(nil)

// NewEventInfoStore creates a Firestore-backed event-info store.
func NewEventInfoStore(client *firestore.Client) *EventInfoStore {
	return &EventInfoStore{client: client}
}

func (s *EventInfoStore) doc() *firestore.DocumentRef {
	return s.client.Collection(EventInfoCollection).Doc(eventInfoDocID)
}

// Get returns the event info or domain.ErrNotFound.
func (s *EventInfoStore) Get(ctx context.Context) (domain.Info, error) {
	snap, err := s.doc().Get(ctx)
	if status.Code(err) == codes.NotFound {
		return domain.Info{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Info{}, err
	}
	var d eventInfoDoc
	if err := snap.DataTo(&d); err != nil {
		return domain.Info{}, fmt.Errorf("decode event info: %w", err)
	}
	return domain.Info{
		Name:                 d.Name,
		Description:          d.Description,
		StartDate:            d.StartDate,
		EndDate:              d.EndDate,
		Location:             d.Location,
		RegistrationDeadline: d.RegistrationDeadline,
		Logo:                 d.Logo,
	}, nil
}

// Put replaces the event info.
// PRE: info has been validated
func (s *EventInfoStore) Put(ctx context.Context, info domain.Info) error {
	_, err := s.doc().Set(ctx, eventInfoDoc{
		Name:                 info.Name,
		Description:          info.Description,
		StartDate:            info.StartDate,
		EndDate:              info.EndDate,
		Location:             info.Location,
		RegistrationDeadline: info.RegistrationDeadline,
		Logo:                 info.Logo,
	})
	if err != nil {
		return fmt.Errorf("put event info: %w", err)
	}
	return nil
}
