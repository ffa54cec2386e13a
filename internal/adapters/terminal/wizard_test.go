package terminal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"techfest/internal/domain/registration"
	"techfest/internal/domain/wizard"
)

// stubDriver answers prompts from per-label queues. The last answer in a
// queue is repeated once the queue runs dry.
type stubDriver struct {
	text     map[string][]string
	choice   map[string][]int
	choices  map[string][][]int
	confirm  map[string][]bool
	abortOn  string
	info     []string
	prompted []string
}

func newStub() *stubDriver {
	d := &stubDriver{
		text:    map[string][]string{},
		choice:  map[string][]int{},
		choices: map[string][][]int{},
		confirm: map[string][]bool{},
	}
	d.text["First Name"] = []string{"Ann"}
	d.text["Last Name"] = []string{"Lee"}
	d.text["Email"] = []string{"ann@example.com"}
	d.text["Phone Number"] = []string{"1234567890"}
	d.text["College/University"] = []string{"State University"}
	d.text["Department/Major"] = []string{"CS"}
	d.text["Student ID"] = []string{"S1"}
	d.text["Special Requirements or Accommodations"] = []string{""}
	d.choice["Gender"] = []int{1}
	d.choice["Year of Study"] = []int{1}
	d.choice["T-Shirt Size"] = []int{2}
	d.choice["How did you hear about this event?"] = []int{0}
	d.choices["Events Interested In"] = [][]int{{0, 7}}
	d.choices["Dietary Restrictions"] = [][]int{{}}
	d.confirm["I agree to the Terms and Conditions and Privacy Policy"] = []bool{true}
	return d
}

func label(message string) string {
	return strings.TrimSuffix(message, " *")
}

func next[T any](queues map[string][]T, key string) T {
	q := queues[key]
	if len(q) == 0 {
		var zero T
		return zero
	}
	v := q[0]
	if len(q) > 1 {
		queues[key] = q[1:]
	}
	return v
}

func (d *stubDriver) ask(message string) error {
	d.prompted = append(d.prompted, label(message))
	if d.abortOn != "" && label(message) == d.abortOn {
		return ErrAborted
	}
	return nil
}

func (d *stubDriver) Input(_ context.Context, message, _ string) (string, error) {
	if err := d.ask(message); err != nil {
		return "", err
	}
	return next(d.text, label(message)), nil
}

func (d *stubDriver) Confirm(_ context.Context, message string, _ bool) (bool, error) {
	if err := d.ask(message); err != nil {
		return false, err
	}
	return next(d.confirm, label(message)), nil
}

func (d *stubDriver) Select(_ context.Context, message string, _ []string, _ int) (int, error) {
	if err := d.ask(message); err != nil {
		return 0, err
	}
	return next(d.choice, label(message)), nil
}

func (d *stubDriver) MultiSelect(_ context.Context, message string, _ []string, _ []int) ([]int, error) {
	if err := d.ask(message); err != nil {
		return nil, err
	}
	return next(d.choices, label(message)), nil
}

func (d *stubDriver) TextArea(_ context.Context, message, _ string) (string, error) {
	if err := d.ask(message); err != nil {
		return "", err
	}
	return next(d.text, label(message)), nil
}

func (d *stubDriver) Info(_ context.Context, msg string) error {
	d.info = append(d.info, msg)
	return nil
}

func (d *stubDriver) output() string {
	return strings.Join(d.info, "\n")
}

// recordingSubmitter fails the first failures calls, then stores.
type recordingSubmitter struct {
	failures int
	calls    int
	got      []registration.Record
	identity wizard.Identity
}

func (s *recordingSubmitter) Submit(_ context.Context, id wizard.Identity, rec registration.Record) (registration.Stored, error) {
	s.calls++
	if s.calls <= s.failures {
		return registration.Stored{}, wizard.NewSubmissionError(wizard.StoreUnavailable, errors.New("connection refused"))
	}
	s.got = append(s.got, rec)
	s.identity = id
	return registration.Stored{Record: rec, ID: "reg-1", UserID: id.UserID, CreatedAt: time.Now()}, nil
}

func run(t *testing.T, d *stubDriver, sub *recordingSubmitter) (registration.Stored, error) {
	t.Helper()
	w := New(sub, d, wizard.Identity{UserID: "local:ann"}, time.Second)
	return w.Run(context.Background())
}

func TestRunWalksAllSteps(t *testing.T) {
	d := newStub()
	sub := &recordingSubmitter{}

	stored, err := run(t, d, sub)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stored.ID != "reg-1" || sub.identity.UserID != "local:ann" {
		t.Errorf("unexpected stored %+v identity %+v", stored, sub.identity)
	}

	want := registration.Record{
		FirstName:           "Ann",
		LastName:            "Lee",
		Email:               "ann@example.com",
		Phone:               "1234567890",
		Gender:              registration.GenderFemale,
		College:             "State University",
		Department:          "CS",
		Year:                registration.YearSecond,
		StudentID:           "S1",
		EventsInterested:    []string{"hackathon", "career"},
		TShirtSize:          "M",
		DietaryRestrictions: []string{},
		HearAboutUs:         "social",
		AgreeToTerms:        true,
	}
	if diff := cmp.Diff(want, sub.got[0]); diff != "" {
		t.Errorf("submitted record mismatch (-want +got):\n%s", diff)
	}

	out := d.output()
	for _, s := range []string{"Step 1 of 4: Personal Information", "Step 4 of 4: Additional Information", "Registration Successful!", "Reference: reg-1"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

func TestRunReasksOnlyInvalidFields(t *testing.T) {
	d := newStub()
	d.text["Phone Number"] = []string{"12345", "1234567890"}
	sub := &recordingSubmitter{}

	if _, err := run(t, d, sub); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(d.output(), registration.MsgPhoneInvalid) {
		t.Errorf("expected phone error in output:\n%s", d.output())
	}

	counts := map[string]int{}
	for _, p := range d.prompted {
		counts[p]++
	}
	if counts["Phone Number"] != 2 || counts["First Name"] != 1 {
		t.Errorf("prompt counts = %v", counts)
	}
	if sub.got[0].Phone != "1234567890" {
		t.Errorf("phone = %q", sub.got[0].Phone)
	}
}

func TestRunTermsMustBeAccepted(t *testing.T) {
	d := newStub()
	d.confirm["I agree to the Terms and Conditions and Privacy Policy"] = []bool{false, true}
	sub := &recordingSubmitter{}

	if _, err := run(t, d, sub); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(d.output(), registration.MsgTermsRequired) {
		t.Errorf("expected terms error in output:\n%s", d.output())
	}
	if sub.calls != 1 {
		t.Errorf("submitter calls = %d, want 1", sub.calls)
	}
}

func TestRunRetriesFailedSubmission(t *testing.T) {
	d := newStub()
	d.confirm["Try submitting again?"] = []bool{true}
	sub := &recordingSubmitter{failures: 1}

	stored, err := run(t, d, sub)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sub.calls != 2 || stored.FirstName != "Ann" {
		t.Errorf("calls = %d stored = %+v", sub.calls, stored)
	}
	if !strings.Contains(d.output(), "connection refused") {
		t.Errorf("expected failure reason in output:\n%s", d.output())
	}
}

func TestRunDeclinedRetryReturnsError(t *testing.T) {
	d := newStub()
	d.confirm["Try submitting again?"] = []bool{false}
	sub := &recordingSubmitter{failures: 1}

	_, err := run(t, d, sub)
	var se *wizard.SubmissionError
	if !errors.As(err, &se) || se.Kind != wizard.StoreUnavailable {
		t.Fatalf("expected StoreUnavailable submission error, got %v", err)
	}
}

func TestRunAbort(t *testing.T) {
	d := newStub()
	d.abortOn = "Student ID"
	sub := &recordingSubmitter{}

	if _, err := run(t, d, sub); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if sub.calls != 0 {
		t.Errorf("submitter should not be called, got %d", sub.calls)
	}
}
