package eventinfo

import (
	"context"
	"database/sql"
	"errors"

	"techfest/internal/adapters/storage"
	domain "techfest/internal/domain/eventinfo"
)

// SQLiteStore implements Store using SQLite. The table holds at most one row.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new event-info store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get returns the stored event info.
// POST: Returns the info or domain.ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context) (domain.Info, error) {
	var info domain.Info
	err := s.db.QueryRowContext(ctx,
		`SELECT name, description, start_date, end_date, location, registration_deadline, logo
		 FROM event_info WHERE id = 1`).Scan(
		&info.Name, &info.Description, &info.StartDate, &info.EndDate,
		&info.Location, &info.RegistrationDeadline, &info.Logo,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Info{}, domain.ErrNotFound
	}
	return info, err
}

// Put replaces the event info.
// PRE: info has been validated
// POST: The single row holds info
func (s *SQLiteStore) Put(ctx context.Context, info domain.Info) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event_info (id, name, description, start_date, end_date, location, registration_deadline, logo)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, description=excluded.description, start_date=excluded.start_date,
		   end_date=excluded.end_date, location=excluded.location,
		   registration_deadline=excluded.registration_deadline, logo=excluded.logo`,
		info.Name, info.Description, info.StartDate, info.EndDate,
		info.Location, info.RegistrationDeadline, info.Logo,
	)
	return err
}
