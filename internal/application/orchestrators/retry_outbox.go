package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"techfest/internal/adapters/email"
	"techfest/internal/domain/eventinfo"
	domain "techfest/internal/domain/outbox"
	"techfest/internal/domain/registration"
)

// OutboxStoreForProcessor defines the store interface needed by the OutboxProcessor.
type OutboxStoreForProcessor interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)
}

// OutboxProcessor delivers queued side effects, retrying failures with
// exponential backoff.
type OutboxProcessor struct {
	store     OutboxStoreForProcessor
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the external action with the given payload.
	// Returns the provider's id for the action and any error.
	Execute(ctx context.Context, payload string) (string, error)
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store OutboxStoreForProcessor, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: 30 * time.Second,
		maxDelay:  1 * time.Hour,
		batchSize: 10,
		now:       time.Now,
	}
}

// ProcessPending processes pending outbox entries whose backoff has elapsed.
// PRE: Context is valid
// POST: Due entries are attempted once; failures stay queued until their
// attempts are spent
func (p *OutboxProcessor) ProcessPending(ctx context.Context) error {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("list pending outbox entries: %w", err)
	}

	for _, entry := range entries {
		if !entry.Due(p.now(), p.baseDelay, p.maxDelay) {
			continue
		}
		if err := p.processEntry(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err.Error())
		}
	}
	return nil
}

// processEntry runs one attempt and persists the outcome.
func (p *OutboxProcessor) processEntry(ctx context.Context, entry domain.Entry) error {
	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.Attempts = entry.MaxAttempts
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType))
		return p.store.Save(ctx, entry)
	}

	entry.MarkAttempt(p.now())
	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}
	return p.store.Save(ctx, entry)
}

// ProcessSingle manually processes a single outbox entry, ignoring backoff.
// A failed entry is granted one extra attempt.
// PRE: entryID is non-empty
// POST: Entry is attempted once, status updated
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	switch entry.Status {
	case domain.StatusDone, domain.StatusAbandoned:
		return fmt.Errorf("entry %s: %w", entryID, domain.ErrTerminal)
	case domain.StatusFailed:
		entry.MaxAttempts = entry.Attempts + 1
	}
	return p.processEntry(ctx, entry)
}

// AbandonEntry marks an entry as abandoned by admin.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	entry.MarkAbandoned()
	return p.store.Save(ctx, entry)
}

// --- Confirmation Email Executor ---

// RegistrationLookup loads a stored registration by id.
type RegistrationLookup interface {
	GetByID(ctx context.Context, id string) (registration.Stored, error)
}

// EventInfoLookup loads the event details.
type EventInfoLookup interface {
	Get(ctx context.Context) (eventinfo.Info, error)
}

// ConfirmationExecutor sends the registration confirmation email.
type ConfirmationExecutor struct {
	Registrations RegistrationLookup
	EventInfo     EventInfoLookup
	Sender        email.Sender
}

// Execute loads the registration named in the payload and emails its summary.
// PRE: payload is valid JSON matching ConfirmationPayload
// POST: email accepted by the provider, returns message ID
// INVARIANT: outbox entry status managed by caller
func (e *ConfirmationExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p ConfirmationPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}

	stored, err := e.Registrations.GetByID(ctx, p.RegistrationID)
	if err != nil {
		return "", fmt.Errorf("load registration %s: %w", p.RegistrationID, err)
	}
	info, err := e.EventInfo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("load event info: %w", err)
	}

	req, err := email.Confirmation(stored, info)
	if err != nil {
		return "", err
	}
	res, err := e.Sender.Send(ctx, req)
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// --- Background Worker ---

// StartBackgroundWorker starts a goroutine that periodically processes
// pending outbox entries.
// PRE: ctx is cancelled to signal shutdown
// POST: Worker runs until ctx is done
func StartBackgroundWorker(ctx context.Context, processor *OutboxProcessor, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
				if err := processor.ProcessPending(runCtx); err != nil {
					slog.Error("outbox_background_process_failed", "error", err.Error())
				}
				cancel()
			case <-ctx.Done():
				slog.Info("outbox_background_worker_stopped")
				return
			}
		}
	}()
}
