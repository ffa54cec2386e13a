package audit

import (
	"context"

	domain "techfest/internal/domain/audit"
)

// Store defines the interface for audit event persistence.
type Store interface {
	// Save persists an audit event.
	// PRE: event is valid
	Save(ctx context.Context, event domain.Event) error

	// List returns events newest first.
	// PRE: filter.Limit > 0
	List(ctx context.Context, filter Filter) ([]domain.Event, error)
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Category domain.Category
	ActorID  string
	Limit    int
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
