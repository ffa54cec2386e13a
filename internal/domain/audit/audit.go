package audit

import (
	"errors"
	"time"
)

// Category groups audit events by the part of the system they touch.
type Category string

const (
	CategoryAccount      Category = "account"
	CategoryRegistration Category = "registration"
	CategoryOutbox       Category = "outbox"
)

// Action is what happened.
type Action string

const (
	ActionSignup      Action = "signup"
	ActionLogin       Action = "login"
	ActionLoginFailed Action = "login_failed"
	ActionLockout     Action = "lockout"
	ActionLogout      Action = "logout"
	ActionSubmit      Action = "submit"
	ActionRetry       Action = "retry"
	ActionAbandon     Action = "abandon"
)

// Severity marks events an admin should look at first.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Domain errors
var (
	ErrMissingID       = errors.New("audit event id is required")
	ErrMissingCategory = errors.New("audit event category is required")
	ErrMissingAction   = errors.New("audit event action is required")
)

// Event is one entry of the audit trail.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	ActorID      string    `json:"actorId,omitempty"`
	ActorEmail   string    `json:"actorEmail,omitempty"`
	ResourceType string    `json:"resourceType,omitempty"`
	ResourceID   string    `json:"resourceId,omitempty"`
	IPAddress    string    `json:"ipAddress,omitempty"`
}

// NewEvent creates an info-level event.
// PRE: id is unique
func NewEvent(id string, at time.Time, category Category, action Action) Event {
	return Event{
		ID:        id,
		Timestamp: at,
		Category:  category,
		Action:    action,
		Severity:  SeverityInfo,
	}
}

// WithActor sets who caused the event.
func (e Event) WithActor(id, email string) Event {
	e.ActorID = id
	e.ActorEmail = email
	return e
}

// WithResource sets what the event acted on.
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithIP records the client address.
func (e Event) WithIP(ip string) Event {
	e.IPAddress = ip
	return e
}

// Validate checks the fields every stored event needs.
func (e Event) Validate() error {
	if e.ID == "" {
		return ErrMissingID
	}
	if e.Category == "" {
		return ErrMissingCategory
	}
	if e.Action == "" {
		return ErrMissingAction
	}
	return nil
}
