package eventinfo

import (
	"context"

	domain "techfest/internal/domain/eventinfo"
)

// Store holds the single event-info record.
type Store interface {
	// Get returns the event info or domain.ErrNotFound.
	Get(ctx context.Context) (domain.Info, error)
	// Put replaces the event info.
	// PRE: info has been validated
	Put(ctx context.Context, info domain.Info) error
}
