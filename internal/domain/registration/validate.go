package registration

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation messages shown next to the offending field.
const (
	MsgFirstNameRequired   = "Please enter your first name"
	MsgLastNameRequired    = "Please enter your last name"
	MsgEmailRequired       = "Please enter your email"
	MsgEmailInvalid        = "Please enter a valid email"
	MsgPhoneRequired       = "Please enter your phone number"
	MsgPhoneInvalid        = "Please enter a valid 10-digit phone number"
	MsgGenderRequired      = "Please select your gender"
	MsgCollegeRequired     = "Please enter your college name"
	MsgDepartmentRequired  = "Please enter your department"
	MsgYearRequired        = "Please select your year of study"
	MsgStudentIDRequired   = "Please enter your student ID"
	MsgEventsRequired      = "Please select at least one event"
	MsgEventUnknown        = "Please choose events from the list"
	MsgTShirtSizeRequired  = "Please select your T-shirt size"
	MsgDietaryUnknown      = "Please choose dietary restrictions from the list"
	MsgHearAboutUsRequired = "Please select an option"
	MsgTermsRequired       = "You must agree to the terms and conditions"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// FieldError attaches a validation message to a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is an ordered list of field-scoped validation failures.
type FieldErrors []FieldError

// Get returns the message for field, or "" if the field passed.
func (fe FieldErrors) Get(field string) string {
	for _, e := range fe {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Fields returns the names of the failing fields in order.
func (fe FieldErrors) Fields() []string {
	names := make([]string, len(fe))
	for i, e := range fe {
		names[i] = e.Field
	}
	return names
}

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// ValidateStep checks only the fields collected on step.
// Earlier and later steps are never looked at.
// PRE: step.Valid()
// POST: Returns an empty list if every required field of step passes
// INVARIANT: rec is not mutated
func ValidateStep(step Step, rec Record) FieldErrors {
	var errs FieldErrors
	add := func(field, msg string) {
		errs = append(errs, FieldError{Field: field, Message: msg})
	}

	switch step {
	case StepPersonal:
		if blank(rec.FirstName) {
			add(FieldFirstName, MsgFirstNameRequired)
		}
		if blank(rec.LastName) {
			add(FieldLastName, MsgLastNameRequired)
		}
		email := strings.TrimSpace(rec.Email)
		switch {
		case email == "":
			add(FieldEmail, MsgEmailRequired)
		case len(email) > MaxEmailLength || !emailPattern.MatchString(email):
			add(FieldEmail, MsgEmailInvalid)
		}
		phone := strings.TrimSpace(rec.Phone)
		switch {
		case phone == "":
			add(FieldPhone, MsgPhoneRequired)
		case !ValidPhone(phone):
			add(FieldPhone, MsgPhoneInvalid)
		}
		if !hasOption(GenderOptions, rec.Gender) {
			add(FieldGender, MsgGenderRequired)
		}

	case StepAcademic:
		if blank(rec.College) {
			add(FieldCollege, MsgCollegeRequired)
		}
		if blank(rec.Department) {
			add(FieldDepartment, MsgDepartmentRequired)
		}
		if !hasOption(YearOptions, rec.Year) {
			add(FieldYear, MsgYearRequired)
		}
		if blank(rec.StudentID) {
			add(FieldStudentID, MsgStudentIDRequired)
		}

	case StepEvents:
		if len(rec.EventsInterested) == 0 {
			add(FieldEventsInterested, MsgEventsRequired)
		} else if !allOptions(EventOptions, rec.EventsInterested) {
			add(FieldEventsInterested, MsgEventUnknown)
		}
		if !hasOption(TShirtOptions, rec.TShirtSize) {
			add(FieldTShirtSize, MsgTShirtSizeRequired)
		}
		if !allOptions(DietaryOptions, rec.DietaryRestrictions) {
			add(FieldDietaryRestrictions, MsgDietaryUnknown)
		}

	case StepAdditional:
		if rec.SpecialRequirements != nil && len(*rec.SpecialRequirements) > MaxSpecialRequirementsLength {
			add(FieldSpecialRequirements, fmt.Sprintf("Special requirements cannot exceed %d characters", MaxSpecialRequirementsLength))
		}
		if !hasOption(HearAboutUsOptions, rec.HearAboutUs) {
			add(FieldHearAboutUs, MsgHearAboutUsRequired)
		}
		if !rec.AgreeToTerms {
			add(FieldAgreeToTerms, MsgTermsRequired)
		}
	}
	return errs
}

// ValidPhone reports whether phone is exactly ten digits.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidEmail reports whether email looks like an address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func allOptions(options []Option, values []string) bool {
	for _, v := range values {
		if !hasOption(options, v) {
			return false
		}
	}
	return true
}
