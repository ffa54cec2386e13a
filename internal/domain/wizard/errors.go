package wizard

import (
	"errors"
	"fmt"

	"techfest/internal/domain/registration"
)

// Domain errors
var (
	ErrInvalidTransition = errors.New("transition not allowed from current state")
	ErrSubmitInProgress  = errors.New("a submission is already in progress")
	ErrNoSubmitter       = errors.New("wizard has no submitter")
)

// ValidationError reports field-scoped failures for the step being left.
type ValidationError struct {
	Step   registration.Step
	Fields registration.FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %d is invalid: %s", int(e.Step), e.Fields.Error())
}

// SubmissionErrorKind classifies why a submission failed.
type SubmissionErrorKind int

const (
	// StoreUnavailable covers transport and storage failures; retrying may succeed.
	StoreUnavailable SubmissionErrorKind = iota
	// AuthenticationRequired means no signed-in user was available.
	AuthenticationRequired
	// Rejected means the backend refused the record.
	Rejected
)

func (k SubmissionErrorKind) String() string {
	switch k {
	case AuthenticationRequired:
		return "authentication_required"
	case Rejected:
		return "rejected"
	default:
		return "store_unavailable"
	}
}

// Form-level messages
const (
	MsgAuthenticationRequired = "Authentication required"
	MsgUserNotAuthenticated   = "User not authenticated"
	MsgSubmitFailed           = "Failed to submit registration"
	MsgSubmitTimedOut         = "Registration timed out, please try again"
)

// SubmissionError is the failure half of a submission result. It is surfaced
// as a single form-level message and never attached to a field.
type SubmissionError struct {
	Kind    SubmissionErrorKind
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind == AuthenticationRequired {
		return MsgAuthenticationRequired
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return MsgSubmitFailed
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// NewSubmissionError builds a SubmissionError of kind wrapping err.
func NewSubmissionError(kind SubmissionErrorKind, err error) *SubmissionError {
	return &SubmissionError{Kind: kind, Err: err}
}

// IsAuthenticationRequired reports whether err is an authentication failure.
func IsAuthenticationRequired(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se) && se.Kind == AuthenticationRequired
}
