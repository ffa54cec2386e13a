package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"techfest/internal/adapters/http/middleware"
)

// timeNow is overridable in tests.
var timeNow = time.Now

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// registerRoutes attaches every handler to mux.
func registerRoutes(mux *http.ServeMux) {
	authed := middleware.RequireAuth
	admin := middleware.RequireRole("admin")

	mux.HandleFunc("GET /healthz", handleHealthz)

	mux.HandleFunc("POST /api/auth/signup", handleSignup)
	mux.HandleFunc("POST /api/auth/login", handleLogin)
	mux.HandleFunc("POST /api/auth/logout", handleLogout)
	mux.HandleFunc("GET /api/auth/session", handleSession)

	mux.HandleFunc("GET /api/event-info", handleGetEventInfo)
	mux.Handle("GET /api/registrations", authed(http.HandlerFunc(handleGetRegistrations)))

	mux.Handle("GET /api/wizard", authed(http.HandlerFunc(handleWizardState)))
	mux.Handle("PUT /api/wizard/values", authed(http.HandlerFunc(handleWizardValues)))
	mux.Handle("POST /api/wizard/next", authed(http.HandlerFunc(handleWizardNext)))
	mux.Handle("POST /api/wizard/back", authed(http.HandlerFunc(handleWizardBack)))
	mux.Handle("POST /api/wizard/submit", authed(http.HandlerFunc(handleWizardSubmit)))
	mux.Handle("POST /api/wizard/reset", authed(http.HandlerFunc(handleWizardReset)))

	mux.Handle("GET /api/admin/perf", admin(http.HandlerFunc(handleAdminPerf)))
	mux.Handle("GET /api/admin/outbox", admin(http.HandlerFunc(handleAdminOutbox)))
	mux.Handle("POST /api/admin/outbox/{id}/retry", admin(http.HandlerFunc(handleAdminOutboxRetry)))
	mux.Handle("POST /api/admin/outbox/{id}/abandon", admin(http.HandlerFunc(handleAdminOutboxAbandon)))
	mux.Handle("GET /api/admin/audit", admin(http.HandlerFunc(handleAdminAudit)))
}

func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
