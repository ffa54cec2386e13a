package eventinfo

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for event dates.
const DateLayout = "2006-01-02"

// Domain errors
var (
	ErrEmptyName      = errors.New("event name cannot be empty")
	ErrInvalidDate    = errors.New("event dates must be formatted as YYYY-MM-DD")
	ErrEndBeforeStart = errors.New("event end date cannot be before start date")
	ErrNotFound       = errors.New("event info not found")
)

// Info holds the metadata shown above the registration wizard.
// Description may contain markdown.
type Info struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	StartDate            string `json:"startDate"`
	EndDate              string `json:"endDate"`
	Location             string `json:"location"`
	RegistrationDeadline string `json:"registrationDeadline"`
	Logo                 string `json:"logo,omitempty"`
}

// Default returns the TechFest 2025 event used to seed empty stores.
func Default() Info {
	return Info{
		Name:                 "TechFest 2025",
		Description:          "Join us for the biggest tech event of the year! Featuring workshops, hackathons, tech talks, and networking opportunities.",
		StartDate:            "2025-03-15",
		EndDate:              "2025-03-17",
		Location:             "University Tech Center",
		RegistrationDeadline: "2025-02-28",
		Logo:                 "https://via.placeholder.com/150",
	}
}

// Validate checks that the Info has valid data.
// PRE: Info struct is populated
// POST: Returns nil if valid, error otherwise
func (i *Info) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	start, err := parseOptional(i.StartDate)
	if err != nil {
		return err
	}
	end, err := parseOptional(i.EndDate)
	if err != nil {
		return err
	}
	if _, err := parseOptional(i.RegistrationDeadline); err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return ErrEndBeforeStart
	}
	return nil
}

// IsRegistrationOpen reports whether now falls on or before the deadline day.
// An event without a deadline is always open.
// INVARIANT: Info fields are not mutated
func (i *Info) IsRegistrationOpen(now time.Time) bool {
	deadline, err := parseOptional(i.RegistrationDeadline)
	if err != nil || deadline.IsZero() {
		return true
	}
	return now.Before(deadline.AddDate(0, 0, 1))
}

// FormatDate renders a YYYY-MM-DD date as "March 15, 2025".
// Unparseable values are returned unchanged.
func FormatDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}

// DateRange renders the event dates for display.
func (i *Info) DateRange() string {
	if i.EndDate == "" || i.EndDate == i.StartDate {
		return FormatDate(i.StartDate)
	}
	return FormatDate(i.StartDate) + " - " + FormatDate(i.EndDate)
}

func parseOptional(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
