package registration

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Answer parsing errors
var (
	ErrUnknownField  = errors.New("unknown field")
	ErrUnknownOption = errors.New("not one of the listed options")
)

// SkipAnswer leaves an optional field empty in text front ends.
const SkipAnswer = "-"

// Apply parses a free-text answer for spec and stores it in r. Option
// fields accept the option's 1-based number, value or label; checkbox
// fields take a comma-separated list. Nothing is validated beyond
// matching options.
// POST: on error r is unchanged
func (r *Record) Apply(spec FieldSpec, answer string) error {
	answer = strings.TrimSpace(answer)

	switch spec.Kind {
	case KindRadio, KindSelect:
		value := ""
		if answer != "" {
			v, err := matchOption(spec.Options, answer)
			if err != nil {
				return fmt.Errorf("%s: %w", spec.Label, err)
			}
			value = v
		}
		return r.setText(spec.Name, value)

	case KindCheckbox:
		values := []string{}
		if answer != "" && answer != SkipAnswer {
			for part := range strings.SplitSeq(answer, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				v, err := matchOption(spec.Options, part)
				if err != nil {
					return fmt.Errorf("%s: %q %w", spec.Label, part, err)
				}
				values = append(values, v)
			}
		}
		switch spec.Name {
		case FieldEventsInterested:
			r.EventsInterested = values
		case FieldDietaryRestrictions:
			r.DietaryRestrictions = values
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, spec.Name)
		}
		return nil

	case KindTextArea:
		if spec.Name != FieldSpecialRequirements {
			return fmt.Errorf("%w: %s", ErrUnknownField, spec.Name)
		}
		if answer == "" || answer == SkipAnswer {
			r.SpecialRequirements = nil
			return nil
		}
		r.SpecialRequirements = &answer
		return nil

	case KindAgree:
		if spec.Name != FieldAgreeToTerms {
			return fmt.Errorf("%w: %s", ErrUnknownField, spec.Name)
		}
		switch strings.ToLower(answer) {
		case "y", "yes", "true", "agree", "i agree":
			r.AgreeToTerms = true
		default:
			r.AgreeToTerms = false
		}
		return nil
	}
	return r.setText(spec.Name, answer)
}

func (r *Record) setText(field, value string) error {
	switch field {
	case FieldFirstName:
		r.FirstName = value
	case FieldLastName:
		r.LastName = value
	case FieldEmail:
		r.Email = value
	case FieldPhone:
		r.Phone = value
	case FieldGender:
		r.Gender = value
	case FieldCollege:
		r.College = value
	case FieldDepartment:
		r.Department = value
	case FieldYear:
		r.Year = value
	case FieldStudentID:
		r.StudentID = value
	case FieldTShirtSize:
		r.TShirtSize = value
	case FieldHearAboutUs:
		r.HearAboutUs = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

func matchOption(options []Option, answer string) (string, error) {
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return options[n-1].Value, nil
	}
	for _, o := range options {
		if strings.EqualFold(o.Value, answer) || strings.EqualFold(o.Label, answer) {
			return o.Value, nil
		}
	}
	return "", ErrUnknownOption
}

// FieldSpecFor returns the schema of the named field and the step it is on.
func FieldSpecFor(name string) (FieldSpec, Step, bool) {
	for _, st := range steps {
		for _, f := range st.Fields {
			if f.Name == name {
				return f, st.Step, true
			}
		}
	}
	return FieldSpec{}, 0, false
}

// Text returns the current value of a single-valued field as text.
func (r Record) Text(field string) string {
	switch field {
	case FieldFirstName:
		return r.FirstName
	case FieldLastName:
		return r.LastName
	case FieldEmail:
		return r.Email
	case FieldPhone:
		return r.Phone
	case FieldGender:
		return r.Gender
	case FieldCollege:
		return r.College
	case FieldDepartment:
		return r.Department
	case FieldYear:
		return r.Year
	case FieldStudentID:
		return r.StudentID
	case FieldTShirtSize:
		return r.TShirtSize
	case FieldHearAboutUs:
		return r.HearAboutUs
	case FieldSpecialRequirements:
		if r.SpecialRequirements != nil {
			return *r.SpecialRequirements
		}
	}
	return ""
}
