package registration_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"techfest/internal/domain/registration"
)

func validRecord() registration.Record {
	return registration.Record{
		FirstName:        "Ann",
		LastName:         "Lee",
		Email:            "ann@example.com",
		Phone:            "1234567890",
		Gender:           registration.GenderFemale,
		College:          "State University",
		Department:       "Computer Science",
		Year:             registration.YearThird,
		StudentID:        "S-1001",
		EventsInterested: []string{"hackathon", "talks"},
		TShirtSize:       "M",
		HearAboutUs:      "friend",
		AgreeToTerms:     true,
	}
}

// TestValidateStepRequiredFields checks each step reports exactly its own required fields.
func TestValidateStepRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		step registration.Step
		want []string
	}{
		{"personal", registration.StepPersonal, []string{"firstName", "lastName", "email", "phone", "gender"}},
		{"academic", registration.StepAcademic, []string{"college", "department", "year", "studentId"}},
		{"events", registration.StepEvents, []string{"eventsInterested", "tShirtSize"}},
		{"additional", registration.StepAdditional, []string{"hearAboutUs", "agreeToTerms"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := registration.ValidateStep(tt.step, registration.Record{})
			if diff := cmp.Diff(tt.want, got.Fields()); diff != "" {
				t.Errorf("failing fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestValidateStepValidRecord checks a fully filled record passes every step.
func TestValidateStepValidRecord(t *testing.T) {
	rec := validRecord()
	for step := registration.StepPersonal; step <= registration.StepAdditional; step++ {
		if errs := registration.ValidateStep(step, rec); len(errs) != 0 {
			t.Errorf("step %d: unexpected errors: %v", step, errs)
		}
	}
}

// TestValidateStepIgnoresOtherSteps checks validation is local to the step.
func TestValidateStepIgnoresOtherSteps(t *testing.T) {
	rec := validRecord()
	rec.College = ""
	rec.AgreeToTerms = false

	if errs := registration.ValidateStep(registration.StepPersonal, rec); len(errs) != 0 {
		t.Errorf("personal step should ignore academic and terms fields, got %v", errs)
	}
	if errs := registration.ValidateStep(registration.StepAcademic, rec); len(errs) != 1 || errs[0].Field != registration.FieldCollege {
		t.Errorf("academic step should report only college, got %v", errs)
	}
}

// TestValidateStepMessages checks field messages match the form wording.
func TestValidateStepMessages(t *testing.T) {
	tests := []struct {
		name   string
		step   registration.Step
		mutate func(*registration.Record)
		field  string
		want   string
	}{
		{"short phone", registration.StepPersonal, func(r *registration.Record) { r.Phone = "12345" }, "phone", registration.MsgPhoneInvalid},
		{"letters in phone", registration.StepPersonal, func(r *registration.Record) { r.Phone = "12345abcde" }, "phone", registration.MsgPhoneInvalid},
		{"missing phone", registration.StepPersonal, func(r *registration.Record) { r.Phone = "" }, "phone", registration.MsgPhoneRequired},
		{"bad email", registration.StepPersonal, func(r *registration.Record) { r.Email = "not-an-email" }, "email", registration.MsgEmailInvalid},
		{"blank first name", registration.StepPersonal, func(r *registration.Record) { r.FirstName = "   " }, "firstName", registration.MsgFirstNameRequired},
		{"unknown gender", registration.StepPersonal, func(r *registration.Record) { r.Gender = "robot" }, "gender", registration.MsgGenderRequired},
		{"unknown year", registration.StepAcademic, func(r *registration.Record) { r.Year = "7" }, "year", registration.MsgYearRequired},
		{"no events", registration.StepEvents, func(r *registration.Record) { r.EventsInterested = nil }, "eventsInterested", registration.MsgEventsRequired},
		{"unknown event", registration.StepEvents, func(r *registration.Record) { r.EventsInterested = []string{"karaoke"} }, "eventsInterested", registration.MsgEventUnknown},
		{"unknown size", registration.StepEvents, func(r *registration.Record) { r.TShirtSize = "XXXL" }, "tShirtSize", registration.MsgTShirtSizeRequired},
		{"unknown diet", registration.StepEvents, func(r *registration.Record) { r.DietaryRestrictions = []string{"keto"} }, "dietaryRestrictions", registration.MsgDietaryUnknown},
		{"terms not agreed", registration.StepAdditional, func(r *registration.Record) { r.AgreeToTerms = false }, "agreeToTerms", registration.MsgTermsRequired},
		{"no source", registration.StepAdditional, func(r *registration.Record) { r.HearAboutUs = "" }, "hearAboutUs", registration.MsgHearAboutUsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)
			errs := registration.ValidateStep(tt.step, rec)
			if len(errs) != 1 {
				t.Fatalf("expected exactly one error, got %v", errs)
			}
			if got := errs.Get(tt.field); got != tt.want {
				t.Errorf("message for %s = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestValidPhone(t *testing.T) {
	if registration.ValidPhone("12345") {
		t.Error("expected 12345 to be rejected")
	}
	if !registration.ValidPhone("1234567890") {
		t.Error("expected 1234567890 to be accepted")
	}
	if registration.ValidPhone("12345678901") {
		t.Error("expected 11 digits to be rejected")
	}
}

func TestSpecialRequirementsOptional(t *testing.T) {
	rec := validRecord()
	rec.SpecialRequirements = nil
	if errs := registration.ValidateStep(registration.StepAdditional, rec); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	long := strings.Repeat("a", registration.MaxSpecialRequirementsLength+1)
	rec.SpecialRequirements = &long
	errs := registration.ValidateStep(registration.StepAdditional, rec)
	if errs.Get("specialRequirements") == "" {
		t.Error("expected overly long special requirements to be rejected")
	}
}
