package web

import (
	"errors"
	"log/slog"
	"net/http"

	"techfest/internal/adapters/http/middleware"
	"techfest/internal/application/orchestrators"
	"techfest/internal/domain/account"
	"techfest/internal/domain/audit"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	AccountID     string `json:"accountId,omitempty"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role,omitempty"`
}

// accountInputErrors are reported to the caller verbatim.
var accountInputErrors = []error{
	account.ErrEmptyEmail,
	account.ErrInvalidEmail,
	account.ErrEmailTooLong,
	account.ErrEmptyPassword,
	account.ErrPasswordTooShort,
}

func isAccountInputError(err error) bool {
	for _, target := range accountInputErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// handleSignup handles POST /api/auth/signup. New accounts are attendees and
// are signed in immediately.
func handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     account.RoleAttendee,
	}, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		Now:          timeNow,
		GenerateID:   generateID,
	})
	switch {
	case errors.Is(err, orchestrators.ErrEmailAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil && isAccountInputError(err):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		internalError(w, err)
		return
	}

	recordAudit(r, newAuditEvent(r, audit.CategoryAccount, audit.ActionSignup).
		WithActor(acct.ID, acct.Email).
		WithResource("account", acct.ID))
	startSession(w, acct.ID, acct.Email, acct.Role, http.StatusCreated)
}

// handleLogin handles POST /api/auth/login.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		Now:          timeNow,
	})
	switch {
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		recordAudit(r, newAuditEvent(r, audit.CategoryAccount, audit.ActionLoginFailed).
			WithActor("", account.NormalizeEmail(req.Email)))
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	case errors.Is(err, orchestrators.ErrAccountLocked):
		recordAudit(r, newAuditEvent(r, audit.CategoryAccount, audit.ActionLockout).
			WithActor("", account.NormalizeEmail(req.Email)).
			WithSeverity(audit.SeverityWarning))
		writeError(w, http.StatusLocked, err.Error())
		return
	case err != nil:
		internalError(w, err)
		return
	}

	recordAudit(r, newAuditEvent(r, audit.CategoryAccount, audit.ActionLogin).
		WithActor(result.AccountID, result.Email))
	startSession(w, result.AccountID, result.Email, result.Role, http.StatusOK)
}

func startSession(w http.ResponseWriter, accountID, email, role string, status int) {
	token, err := sessions.Create(accountID, email, role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token, secureCookies)
	slog.Info("auth_event", "event", "session_started", "account_id", accountID)
	writeJSON(w, status, sessionResponse{
		Authenticated: true,
		AccountID:     accountID,
		Email:         email,
		Role:          role,
	})
}

// handleLogout handles POST /api/auth/logout. The caller's wizard session is
// discarded with the login session.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		wizards.Drop(sess.AccountID)
		recordSessionAudit(r, audit.CategoryAccount, audit.ActionLogout, "", "")
	}
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w, secureCookies)
	w.WriteHeader(http.StatusNoContent)
}

// handleSession handles GET /api/auth/session.
func handleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		AccountID:     sess.AccountID,
		Email:         sess.Email,
		Role:          sess.Role,
	})
}
