package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"techfest/internal/adapters/http/perf"
	"techfest/internal/domain/outbox"
	"techfest/internal/domain/registration"
	"techfest/internal/domain/wizard"
)

// RegistrationStoreForSubmit defines the store interface needed to accept a submission.
type RegistrationStoreForSubmit interface {
	Insert(ctx context.Context, value registration.Stored) (registration.Stored, error)
}

// OutboxStoreForSubmit queues follow-up work for an accepted registration.
type OutboxStoreForSubmit interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// ConfirmationPayload is the outbox payload of a confirmation email.
type ConfirmationPayload struct {
	RegistrationID string `json:"registration_id"`
}

// RegistrationSubmitter is the hosted submission backend. It inserts one row
// per submission keyed by the caller's user id and queues the confirmation
// email. It satisfies wizard.Submitter.
type RegistrationSubmitter struct {
	Store   RegistrationStoreForSubmit
	Outbox  OutboxStoreForSubmit // optional
	Perf    *perf.Collector      // optional
	Backend string               // label used in logs and timings

	Now        func() time.Time
	GenerateID func() string
}

// Submit stores rec for the identity.
// PRE: rec passed the final step's validation
// POST: On success the inserted row is returned; on failure nothing is stored
// INVARIANT: Exactly one insert is attempted per call
func (s *RegistrationSubmitter) Submit(ctx context.Context, id wizard.Identity, rec registration.Record) (registration.Stored, error) {
	if id.UserID == "" {
		return registration.Stored{}, &wizard.SubmissionError{
			Kind:    wizard.AuthenticationRequired,
			Message: wizard.MsgUserNotAuthenticated,
		}
	}

	stored := registration.Stored{
		Record:    rec.Normalize(),
		ID:        s.GenerateID(),
		UserID:    id.UserID,
		CreatedAt: s.Now().UTC(),
	}
	if err := stored.Validate(); err != nil {
		return registration.Stored{}, wizard.NewSubmissionError(wizard.Rejected, err)
	}

	start := time.Now()
	inserted, err := s.Store.Insert(ctx, stored)
	s.record(start, err)
	if err != nil {
		slog.Error("registration_event", "event", "insert_failed", "backend", s.Backend, "user_id", id.UserID, "error", err)
		msg := wizard.MsgSubmitFailed
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg = wizard.MsgSubmitTimedOut
		}
		return registration.Stored{}, &wizard.SubmissionError{Kind: wizard.StoreUnavailable, Message: msg, Err: err}
	}
	slog.Info("registration_event", "event", "stored", "backend", s.Backend, "id", inserted.ID, "user_id", id.UserID)

	s.queueConfirmation(ctx, inserted)
	return inserted, nil
}

func (s *RegistrationSubmitter) record(start time.Time, err error) {
	if s.Perf == nil {
		return
	}
	s.Perf.Record(perf.Entry{
		Kind:       perf.KindSubmission,
		Path:       s.Backend,
		Failed:     err != nil,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000,
		Timestamp:  start,
	})
}

// queueConfirmation enqueues the confirmation email. Failures are logged;
// the registration itself has already been accepted.
func (s *RegistrationSubmitter) queueConfirmation(ctx context.Context, stored registration.Stored) {
	if s.Outbox == nil || stored.Email == "" {
		return
	}
	payload, err := json.Marshal(ConfirmationPayload{RegistrationID: stored.ID})
	if err != nil {
		slog.Error("outbox_enqueue_failed", "registration_id", stored.ID, "error", err)
		return
	}
	entry := outbox.New(s.GenerateID(), outbox.ActionTypeConfirmationEmail, string(payload), s.Now())
	if err := s.Outbox.Save(ctx, entry); err != nil {
		slog.Error("outbox_enqueue_failed", "registration_id", stored.ID, "error", err)
		return
	}
	slog.Info("outbox_enqueued", "entry_id", entry.ID, "action_type", entry.ActionType, "registration_id", stored.ID)
}
