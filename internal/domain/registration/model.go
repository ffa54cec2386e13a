package registration

import (
	"errors"
	"strings"
	"time"
)

// Gender values accepted by the personal step.
const (
	GenderMale           = "male"
	GenderFemale         = "female"
	GenderOther          = "other"
	GenderPreferNotToSay = "prefer-not-to-say"
)

// Year of study values. "1".."5" are undergraduate years.
const (
	YearFirst    = "1"
	YearSecond   = "2"
	YearThird    = "3"
	YearFourth   = "4"
	YearFifth    = "5"
	YearGraduate = "graduate"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength               = 254
	MaxSpecialRequirementsLength = 2000
)

// Domain errors
var (
	ErrEmptyID     = errors.New("registration id cannot be empty")
	ErrEmptyUserID = errors.New("registration user id cannot be empty")
)

// Record is the registration form data accumulated across the wizard steps.
type Record struct {
	FirstName           string   `json:"firstName"`
	LastName            string   `json:"lastName"`
	Email               string   `json:"email"`
	Phone               string   `json:"phone"`
	Gender              string   `json:"gender"`
	College             string   `json:"college"`
	Department          string   `json:"department"`
	Year                string   `json:"year"`
	StudentID           string   `json:"studentId"`
	EventsInterested    []string `json:"eventsInterested"`
	TShirtSize          string   `json:"tShirtSize"`
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	SpecialRequirements *string  `json:"specialRequirements"`
	HearAboutUs         string   `json:"hearAboutUs"`
	AgreeToTerms        bool     `json:"agreeToTerms"`
}

// Stored is a Record accepted by a submission backend.
// ID and CreatedAt are assigned by the backend, never by the wizard.
type Stored struct {
	Record
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks that the stored identifiers are set. Field values were
// gated step by step by the wizard and are not re-checked here.
// PRE: Stored struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Stored) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(s.UserID) == "" {
		return ErrEmptyUserID
	}
	return nil
}

// Clone returns a deep copy so callers can mutate slices safely.
// INVARIANT: Receiver is not mutated
func (r Record) Clone() Record {
	out := r
	if r.EventsInterested != nil {
		out.EventsInterested = append([]string(nil), r.EventsInterested...)
	}
	if r.DietaryRestrictions != nil {
		out.DietaryRestrictions = append([]string(nil), r.DietaryRestrictions...)
	}
	if r.SpecialRequirements != nil {
		v := *r.SpecialRequirements
		out.SpecialRequirements = &v
	}
	return out
}

// Normalize trims free-text fields; a blank special requirements note becomes nil.
// PRE: none
// POST: Returned record has no surrounding whitespace in text fields
func (r Record) Normalize() Record {
	out := r.Clone()
	out.FirstName = strings.TrimSpace(out.FirstName)
	out.LastName = strings.TrimSpace(out.LastName)
	out.Email = strings.TrimSpace(out.Email)
	out.Phone = strings.TrimSpace(out.Phone)
	out.College = strings.TrimSpace(out.College)
	out.Department = strings.TrimSpace(out.Department)
	out.StudentID = strings.TrimSpace(out.StudentID)
	if out.SpecialRequirements != nil {
		v := strings.TrimSpace(*out.SpecialRequirements)
		if v == "" {
			out.SpecialRequirements = nil
		} else {
			out.SpecialRequirements = &v
		}
	}
	if out.EventsInterested == nil {
		out.EventsInterested = []string{}
	}
	if out.DietaryRestrictions == nil {
		out.DietaryRestrictions = []string{}
	}
	return out
}

// FullName joins first and last name.
func (r Record) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}
