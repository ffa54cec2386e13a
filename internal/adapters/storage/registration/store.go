package registration

import (
	"context"
	"errors"

	domain "techfest/internal/domain/registration"
)

// ErrNotFound is returned when no registration matches.
var ErrNotFound = errors.New("registration not found")

// Store persists accepted registrations. Rows are keyed by the owning
// user id; inserting the same record twice stores two rows.
type Store interface {
	// Insert stores a new registration and returns the row as persisted.
	// PRE: value has ID, UserID and CreatedAt set
	// POST: Row is persisted; duplicate IDs are an error
	Insert(ctx context.Context, value domain.Stored) (domain.Stored, error)
	GetByID(ctx context.Context, id string) (domain.Stored, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Stored, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
// Results are newest first.
type ListFilter struct {
	UserID string
	Limit  int
	Offset int
}
