package projections

import (
	"context"

	"techfest/internal/adapters/storage/registration"
	domainEventInfo "techfest/internal/domain/eventinfo"
	domainRegistration "techfest/internal/domain/registration"
)

// EventInfoStore interface for event info queries.
type EventInfoStore interface {
	Get(ctx context.Context) (domainEventInfo.Info, error)
}

// RegistrationStore interface for registration queries.
type RegistrationStore interface {
	List(ctx context.Context, filter registration.ListFilter) ([]domainRegistration.Stored, error)
	Count(ctx context.Context, filter registration.ListFilter) (int, error)
}
