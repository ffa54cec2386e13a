package telegram

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"techfest/internal/domain/registration"
	"techfest/internal/domain/wizard"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []*bot.SendMessageParams
}

func (f *fakeSender) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, p)
	return &models.Message{}, nil
}

func (f *fakeSender) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].Text
}

func (f *fakeSender) all() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var texts []string
	for _, p := range f.sent {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n---\n")
}

type recordingSubmitter struct {
	calls []wizard.Identity
	err   error
}

func (s *recordingSubmitter) Submit(_ context.Context, id wizard.Identity, rec registration.Record) (registration.Stored, error) {
	s.calls = append(s.calls, id)
	if s.err != nil {
		return registration.Stored{}, s.err
	}
	return registration.Stored{Record: rec.Normalize(), ID: "reg-1", UserID: id.UserID, CreatedAt: time.Now()}, nil
}

type harness struct {
	bot    *Bot
	out    *fakeSender
	submit *recordingSubmitter
}

func newHarness() *harness {
	sub := &recordingSubmitter{}
	return &harness{
		bot:    New(wizard.NewSessions(sub), time.Second),
		out:    &fakeSender{},
		submit: sub,
	}
}

func (h *harness) say(text string) string {
	h.bot.handle(context.Background(), h.out, &models.Update{Message: &models.Message{
		Chat: models.Chat{ID: 100},
		From: &models.User{ID: 42},
		Text: text,
	}})
	return h.out.last()
}

var validAnswers = []string{
	// personal
	"Ann", "Lee", "ann@example.com", "1234567890", "Female",
	// academic
	"State University", "Computer Science", "3", "S-1001",
	// events
	"1,6", "M", "-",
	// additional
	"-", "Friend or Colleague", "yes",
}

func TestRegisterWalksEveryField(t *testing.T) {
	h := newHarness()
	if got := h.say("/register"); !strings.HasPrefix(got, "First Name") {
		t.Fatalf("first prompt = %q", got)
	}
	for _, a := range validAnswers {
		h.say(a)
	}

	if len(h.submit.calls) != 1 || h.submit.calls[0].UserID != "telegram:42" || h.submit.calls[0].Email != "ann@example.com" {
		t.Fatalf("submit calls = %+v", h.submit.calls)
	}
	last := h.out.last()
	for _, want := range []string{"Registration Successful!", "Full Name: Ann Lee", "Events Interested In: Hackathon, Gaming", "Dietary Restrictions: None", "Reference: reg-1"} {
		if !strings.Contains(last, want) {
			t.Errorf("success message missing %q:\n%s", want, last)
		}
	}
	if !strings.Contains(h.out.all(), "Step 4 of 4: Additional Information") {
		t.Error("step headings not announced")
	}

	if got := h.say("/register"); !strings.Contains(got, "already registered") {
		t.Errorf("register after complete = %q", got)
	}
	if got := h.say("/reset"); !strings.HasPrefix(got, "First Name") {
		t.Errorf("reset should restart the first step, got %q", got)
	}
}

func TestStepGateReasksFailingFields(t *testing.T) {
	h := newHarness()
	h.say("/register")
	for _, a := range []string{"Ann", "Lee", "not-an-email", "123", "Male"} {
		h.say(a)
	}

	all := h.out.all()
	if !strings.Contains(all, "Please fix the following") {
		t.Fatalf("expected validation report:\n%s", all)
	}
	if got := h.out.last(); !strings.HasPrefix(got, "Email") {
		t.Fatalf("should re-ask email first, got %q", got)
	}
	if got := h.say("ann@example.com"); !strings.HasPrefix(got, "Phone Number") {
		t.Fatalf("should re-ask phone next, got %q", got)
	}
	if got := h.say("1234567890"); !strings.HasPrefix(got, "College/University") {
		t.Errorf("step should advance once fixed, got %q", got)
	}
}

func TestUnknownOptionIsReasked(t *testing.T) {
	h := newHarness()
	h.say("/register")
	for _, a := range validAnswers[:4] {
		h.say(a)
	}
	h.say("Robot")
	all := h.out.all()
	if !strings.Contains(all, "not one of the listed options") {
		t.Errorf("expected option error:\n%s", all)
	}
	if got := h.out.last(); !strings.HasPrefix(got, "Gender") {
		t.Errorf("gender should be asked again, got %q", got)
	}
}

func TestBackStatusAndCancel(t *testing.T) {
	h := newHarness()
	if got := h.say("/back"); !strings.Contains(got, "No registration in progress") {
		t.Errorf("/back without session = %q", got)
	}
	h.say("/register")
	for _, a := range validAnswers[:5] {
		h.say(a)
	}
	if got := h.say("/status"); !strings.Contains(got, "Step 2 of 4: Academic") || !strings.Contains(got, "Full Name: Ann Lee") {
		t.Errorf("/status = %q", got)
	}
	if got := h.say("/back"); !strings.HasPrefix(got, "First Name") {
		t.Errorf("/back should restart the personal step, got %q", got)
	}
	if got := h.say("/back"); !strings.Contains(got, "first step") {
		t.Errorf("/back on first step = %q", got)
	}
	h.say("/cancel")
	if got := h.say("hello"); !strings.Contains(got, "/register") {
		t.Errorf("text after cancel = %q", got)
	}
}

func TestPruneDropsChatStateWithSession(t *testing.T) {
	h := newHarness()
	h.say("/register")
	h.say("Ann")
	key := IdentityKey(42)
	if len(h.bot.pending(key)) == 0 {
		t.Fatal("expected pending fields while a step is in progress")
	}

	if removed := h.bot.Prune(time.Hour); removed != 0 {
		t.Fatalf("Prune removed %d active sessions", removed)
	}
	if len(h.bot.pending(key)) == 0 {
		t.Error("chat state of an active session was pruned")
	}

	// A negative idle limit puts the cutoff in the future.
	if removed := h.bot.Prune(-time.Minute); removed != 1 {
		t.Fatalf("Prune removed %d, want 1", removed)
	}
	if got := h.bot.pending(key); got != nil {
		t.Errorf("chat state survived its session: %v", got)
	}
	if got := h.say("Lee"); !strings.Contains(got, "/register") {
		t.Errorf("answer after prune = %q", got)
	}
}

func TestSubmitFailureKeepsValues(t *testing.T) {
	h := newHarness()
	h.submit.err = &wizard.SubmissionError{Kind: wizard.StoreUnavailable, Message: wizard.MsgSubmitFailed}
	h.say("/register")
	for _, a := range validAnswers {
		h.say(a)
	}
	if got := h.out.last(); !strings.Contains(got, wizard.MsgSubmitFailed) || !strings.Contains(got, "/submit") {
		t.Fatalf("failure message = %q", got)
	}

	h.submit.err = nil
	if got := h.say("/submit"); !strings.Contains(got, "Registration Successful!") {
		t.Errorf("retry = %q", got)
	}
	if len(h.submit.calls) != 2 {
		t.Errorf("submit calls = %d, want 2", len(h.submit.calls))
	}
}

func TestPromptText(t *testing.T) {
	spec, _, _ := registration.FieldSpecFor(registration.FieldDietaryRestrictions)
	got := promptText(spec)
	if !strings.Contains(got, "or - for none") || !strings.Contains(got, "5. None") {
		t.Errorf("dietary prompt = %q", got)
	}
	spec, _, _ = registration.FieldSpecFor(registration.FieldSpecialRequirements)
	if got := promptText(spec); !strings.Contains(got, "optional") {
		t.Errorf("special requirements prompt = %q", got)
	}
}

func TestIgnoresUpdatesWithoutMessage(t *testing.T) {
	h := newHarness()
	h.bot.handle(context.Background(), h.out, &models.Update{})
	if len(h.out.sent) != 0 {
		t.Error("expected no reply")
	}
}
