package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"techfest/internal/adapters/storage"
	domain "techfest/internal/domain/audit"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an audit event.
// PRE: event is valid
// POST: Row inserted
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (id, timestamp, category, action, severity, actor_id, actor_email, resource_type, resource_id, ip_address)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.UTC().Format(storage.DateLayout), string(e.Category), string(e.Action), string(e.Severity),
		e.ActorID, e.ActorEmail, e.ResourceType, e.ResourceID, e.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// List returns audit events newest first.
// PRE: filter.Limit > 0
// POST: At most filter.Limit events are returned
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]domain.Event, error) {
	var b strings.Builder
	var args []any
	b.WriteString(`SELECT id, timestamp, category, action, severity, actor_id, actor_email, resource_type, resource_id, ip_address
		FROM audit_event WHERE 1=1`)
	if filter.Category != "" {
		b.WriteString(" AND category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.ActorID != "" {
		b.WriteString(" AND actor_id = ?")
		args = append(args, filter.ActorID)
	}
	b.WriteString(" ORDER BY timestamp DESC, id DESC LIMIT ?")
	args = append(args, filter.Limit)

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Category, &e.Action, &e.Severity,
			&e.ActorID, &e.ActorEmail, &e.ResourceType, &e.ResourceID, &e.IPAddress); err != nil {
			return nil, err
		}
		if e.Timestamp, err = time.Parse(storage.DateLayout, ts); err != nil {
			return nil, fmt.Errorf("decode timestamp: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
