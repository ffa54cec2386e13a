package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"techfest/internal/adapters/http/middleware"
	"techfest/internal/domain/audit"
	"techfest/internal/domain/registration"
	"techfest/internal/domain/wizard"
)

// wizardErrorResponse carries a failed wizard action together with the
// session state the client should render.
type wizardErrorResponse struct {
	Error       string                   `json:"error"`
	FieldErrors registration.FieldErrors `json:"fieldErrors,omitempty"`
	State       wizard.State             `json:"state"`
}

// controllerFor returns the wizard session of the signed-in caller.
// PRE: request passed RequireAuth
func controllerFor(r *http.Request) (*wizard.Controller, middleware.Session) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return wizards.Get(sess.AccountID), sess
}

// handleWizardState handles GET /api/wizard.
func handleWizardState(w http.ResponseWriter, r *http.Request) {
	c, _ := controllerFor(r)
	writeJSON(w, http.StatusOK, c.State())
}

// handleWizardValues handles PUT /api/wizard/values. The body is merged over
// the accumulated values: keys it omits keep their current value. Nothing is
// validated until the step is left.
func handleWizardValues(w http.ResponseWriter, r *http.Request) {
	c, _ := controllerFor(r)
	rec := c.Values()
	if err := strictDecode(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := c.Update(rec); err != nil {
		writeWizardError(w, c, err)
		return
	}
	writeJSON(w, http.StatusOK, c.State())
}

// handleWizardNext handles POST /api/wizard/next.
func handleWizardNext(w http.ResponseWriter, r *http.Request) {
	c, _ := controllerFor(r)
	if err := c.Advance(); err != nil {
		writeWizardError(w, c, err)
		return
	}
	writeJSON(w, http.StatusOK, c.State())
}

// handleWizardBack handles POST /api/wizard/back.
func handleWizardBack(w http.ResponseWriter, r *http.Request) {
	c, _ := controllerFor(r)
	if err := c.Retreat(); err != nil {
		writeWizardError(w, c, err)
		return
	}
	writeJSON(w, http.StatusOK, c.State())
}

// handleWizardSubmit handles POST /api/wizard/submit.
// POST: 201 with the Complete state, or an error carrying the retained values
func handleWizardSubmit(w http.ResponseWriter, r *http.Request) {
	c, sess := controllerFor(r)

	ctx, cancel := context.WithTimeout(r.Context(), submitTimeout)
	defer cancel()

	stored, err := c.Submit(ctx, &wizard.Identity{UserID: sess.AccountID, Email: sess.Email})
	if err != nil {
		writeWizardError(w, c, err)
		return
	}
	slog.Info("registration_event", "event", "wizard_submitted", "account_id", sess.AccountID, "registration_id", stored.ID)
	recordSessionAudit(r, audit.CategoryRegistration, audit.ActionSubmit, "registration", stored.ID)
	writeJSON(w, http.StatusCreated, c.State())
}

// handleWizardReset handles POST /api/wizard/reset.
func handleWizardReset(w http.ResponseWriter, r *http.Request) {
	c, _ := controllerFor(r)
	if err := c.Reset(); err != nil {
		writeWizardError(w, c, err)
		return
	}
	writeJSON(w, http.StatusOK, c.State())
}

func writeWizardError(w http.ResponseWriter, c *wizard.Controller, err error) {
	resp := wizardErrorResponse{Error: err.Error(), State: c.State()}

	var ve *wizard.ValidationError
	var se *wizard.SubmissionError
	switch {
	case errors.As(err, &ve):
		resp.Error = "Please fix the highlighted fields"
		resp.FieldErrors = ve.Fields
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, wizard.ErrInvalidTransition), errors.Is(err, wizard.ErrSubmitInProgress):
		writeJSON(w, http.StatusConflict, resp)
	case errors.As(err, &se):
		slog.Warn("registration_event", "event", "submit_failed", "kind", se.Kind.String(), "error", err)
		switch se.Kind {
		case wizard.AuthenticationRequired:
			writeJSON(w, http.StatusUnauthorized, resp)
		case wizard.Rejected:
			writeJSON(w, http.StatusUnprocessableEntity, resp)
		default:
			writeJSON(w, http.StatusBadGateway, resp)
		}
	default:
		internalError(w, err)
	}
}
