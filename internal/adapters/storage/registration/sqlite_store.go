package registration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"techfest/internal/adapters/storage"
	domain "techfest/internal/domain/registration"
)

const selectColumns = `SELECT id, user_id, first_name, last_name, email, phone, gender, college, department, year,
	student_id, events_interested, t_shirt_size, dietary_restrictions, special_requirements, hear_about_us, created_at
	FROM registrations`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new registration store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Insert persists a new registration row.
// PRE: value has been validated
// POST: Row inserted; the stored values are returned
func (s *SQLiteStore) Insert(ctx context.Context, value domain.Stored) (domain.Stored, error) {
	events, err := json.Marshal(nonNil(value.EventsInterested))
	if err != nil {
		return domain.Stored{}, err
	}
	dietary, err := json.Marshal(nonNil(value.DietaryRestrictions))
	if err != nil {
		return domain.Stored{}, err
	}
	var special any
	if value.SpecialRequirements != nil {
		special = *value.SpecialRequirements
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO registrations (id, user_id, first_name, last_name, email, phone, gender, college, department, year,
		 student_id, events_interested, t_shirt_size, dietary_restrictions, special_requirements, hear_about_us, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		value.ID, value.UserID, value.FirstName, value.LastName, value.Email, value.Phone, value.Gender,
		value.College, value.Department, value.Year, value.StudentID, string(events), value.TShirtSize,
		string(dietary), special, value.HearAboutUs, value.CreatedAt.UTC().Format(storage.DateLayout),
	)
	if err != nil {
		return domain.Stored{}, fmt.Errorf("insert registration: %w", err)
	}
	return s.GetByID(ctx, value.ID)
}

// GetByID retrieves a registration by its ID.
// PRE: id is non-empty
// POST: Returns the row or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Stored, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	value, err := scanRegistration(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Stored{}, ErrNotFound
	}
	return value, err
}

// List returns registrations newest first, optionally for one user.
// PRE: filter has valid parameters
// POST: Returns matching rows
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Stored, error) {
	var b strings.Builder
	var args []any
	b.WriteString(selectColumns)
	if filter.UserID != "" {
		b.WriteString(" WHERE user_id = ?")
		args = append(args, filter.UserID)
	}
	b.WriteString(" ORDER BY created_at DESC, id ASC")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Stored
	for rows.Next() {
		value, err := scanRegistration(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, value)
	}
	return results, rows.Err()
}

// Count returns the number of registrations matching filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	query := "SELECT COUNT(*) FROM registrations"
	var args []any
	if filter.UserID != "" {
		query += " WHERE user_id = ?"
		args = append(args, filter.UserID)
	}
	var n int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// scanRegistration extracts a row from a scanner function.
func scanRegistration(scan func(dest ...any) error) (domain.Stored, error) {
	var v domain.Stored
	var events, dietary, createdAt string
	var special sql.NullString
	err := scan(
		&v.ID, &v.UserID, &v.FirstName, &v.LastName, &v.Email, &v.Phone, &v.Gender,
		&v.College, &v.Department, &v.Year, &v.StudentID, &events, &v.TShirtSize,
		&dietary, &special, &v.HearAboutUs, &createdAt,
	)
	if err != nil {
		return domain.Stored{}, err
	}
	if err := json.Unmarshal([]byte(events), &v.EventsInterested); err != nil {
		return domain.Stored{}, fmt.Errorf("decode events_interested: %w", err)
	}
	if err := json.Unmarshal([]byte(dietary), &v.DietaryRestrictions); err != nil {
		return domain.Stored{}, fmt.Errorf("decode dietary_restrictions: %w", err)
	}
	if special.Valid {
		s := special.String
		v.SpecialRequirements = &s
	}
	// Terms are enforced before insert, so every stored row agreed.
	v.AgreeToTerms = true
	v.CreatedAt, err = time.Parse(storage.DateLayout, createdAt)
	if err != nil {
		return domain.Stored{}, fmt.Errorf("decode created_at: %w", err)
	}
	return v, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
