package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"techfest/internal/domain/registration"
)

// Identity is the authenticated user a registration is filed under.
type Identity struct {
	UserID string
	Email  string
}

// Submitter durably records a finished registration. A failed call returns
// a *SubmissionError; a nil error means the Stored value is valid.
// Submit is attempted once per call and is not idempotent.
type Submitter interface {
	Submit(ctx context.Context, id Identity, rec registration.Record) (registration.Stored, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, id Identity, rec registration.Record) (registration.Stored, error)

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, id Identity, rec registration.Record) (registration.Stored, error) {
	return f(ctx, id, rec)
}

// State is a snapshot of a wizard session.
type State struct {
	CurrentStep  registration.Step        `json:"currentStepIndex"`
	StepTitle    string                   `json:"stepTitle"`
	StepCount    int                      `json:"stepCount"`
	Values       registration.Record      `json:"values"`
	IsSubmitting bool                     `json:"isSubmitting"`
	IsComplete   bool                     `json:"isComplete"`
	FieldErrors  registration.FieldErrors `json:"fieldErrors,omitempty"`
	FormError    string                   `json:"formError,omitempty"`
	Stored       *registration.Stored     `json:"stored,omitempty"`
}

// Controller drives one registration session through the four steps.
// Validation gates the step being left; earlier steps are never re-checked.
type Controller struct {
	mu        sync.Mutex
	submitter Submitter

	step        registration.Step
	values      registration.Record
	submitting  bool
	complete    bool
	fieldErrors registration.FieldErrors
	formError   string
	stored      *registration.Stored
}

// NewController creates a session positioned on the first step.
func NewController(s Submitter) *Controller {
	return &Controller{submitter: s}
}

// State returns a copy of the current session state.
// INVARIANT: Controller state is not mutated
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		CurrentStep:  c.step,
		StepTitle:    c.step.Title(),
		StepCount:    registration.StepCount,
		Values:       c.values.Clone(),
		IsSubmitting: c.submitting,
		IsComplete:   c.complete,
		FormError:    c.formError,
	}
	if len(c.fieldErrors) > 0 {
		st.FieldErrors = append(registration.FieldErrors(nil), c.fieldErrors...)
	}
	if c.stored != nil {
		stored := *c.stored
		stored.Record = c.stored.Record.Clone()
		st.Stored = &stored
	}
	return st
}

// Values returns a copy of the accumulated form values.
func (c *Controller) Values() registration.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values.Clone()
}

// Update replaces the accumulated values with the user's edits. No
// validation happens here.
// PRE: session is on a step and not submitting
// POST: values replaced
func (c *Controller) Update(rec registration.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editableLocked(); err != nil {
		return err
	}
	c.values = rec.Clone()
	return nil
}

// Advance validates the current step and moves to the next one.
// PRE: session is on step i < 3
// POST: on success step is i+1 and field errors are cleared; on failure the
// step is unchanged and a *ValidationError is returned
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editableLocked(); err != nil {
		return err
	}
	if c.step >= registration.LastStep {
		return ErrInvalidTransition
	}
	if errs := registration.ValidateStep(c.step, c.values); len(errs) > 0 {
		c.fieldErrors = errs
		return &ValidationError{Step: c.step, Fields: errs}
	}
	c.step++
	c.fieldErrors = nil
	c.formError = ""
	return nil
}

// Retreat moves back one step without validating.
// PRE: session is on step i > 0
// POST: step is i-1, values untouched
func (c *Controller) Retreat() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editableLocked(); err != nil {
		return err
	}
	if c.step <= registration.StepPersonal {
		return ErrInvalidTransition
	}
	c.step--
	c.fieldErrors = nil
	c.formError = ""
	return nil
}

// Submit validates the last step and hands the accumulated record to the
// submitter. A nil or anonymous identity fails with AuthenticationRequired
// before the submitter is called.
// PRE: session is on the last step and not submitting
// POST: on success the session is Complete; on failure it stays on the
// last step with every value intact and a form-level error set
func (c *Controller) Submit(ctx context.Context, id *Identity) (registration.Stored, error) {
	c.mu.Lock()
	if err := c.editableLocked(); err != nil {
		c.mu.Unlock()
		return registration.Stored{}, err
	}
	if c.step != registration.LastStep {
		c.mu.Unlock()
		return registration.Stored{}, ErrInvalidTransition
	}
	if errs := registration.ValidateStep(c.step, c.values); len(errs) > 0 {
		c.fieldErrors = errs
		c.mu.Unlock()
		return registration.Stored{}, &ValidationError{Step: c.step, Fields: errs}
	}
	c.fieldErrors = nil
	if id == nil || strings.TrimSpace(id.UserID) == "" {
		err := NewSubmissionError(AuthenticationRequired, nil)
		c.formError = err.Error()
		c.mu.Unlock()
		return registration.Stored{}, err
	}
	if c.submitter == nil {
		c.mu.Unlock()
		return registration.Stored{}, ErrNoSubmitter
	}
	c.submitting = true
	c.formError = ""
	rec := c.values.Clone()
	identity := *id
	c.mu.Unlock()

	stored, err := c.submitter.Submit(ctx, identity, rec)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		se := asSubmissionError(ctx, err)
		c.formError = se.Error()
		return registration.Stored{}, se
	}
	c.complete = true
	c.stored = &stored
	return stored, nil
}

// Reset starts a fresh registration from the success view.
// PRE: session is Complete
// POST: session equals a newly created one
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.complete {
		return ErrInvalidTransition
	}
	c.step = registration.StepPersonal
	c.values = registration.Record{}
	c.complete = false
	c.fieldErrors = nil
	c.formError = ""
	c.stored = nil
	return nil
}

func (c *Controller) editableLocked() error {
	if c.submitting {
		return ErrSubmitInProgress
	}
	if c.complete {
		return ErrInvalidTransition
	}
	return nil
}

func asSubmissionError(ctx context.Context, err error) *SubmissionError {
	var se *SubmissionError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &SubmissionError{Kind: StoreUnavailable, Message: MsgSubmitTimedOut, Err: err}
	}
	return NewSubmissionError(StoreUnavailable, err)
}
