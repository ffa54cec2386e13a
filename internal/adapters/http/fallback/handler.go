// Package fallback serves the file-backed development API:
// GET /eventInfo, GET and POST /registrations.
package fallback

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"techfest/internal/adapters/storage/jsonfile"
)

// MaxBodyBytes caps a registration payload.
const MaxBodyBytes = 1 << 20

// Error bodies
const (
	MsgInvalidRegistration = "Invalid registration data"
	MsgNotFound            = "Not found"

	// MsgSaveFailed answers a POST whose document write failed, with status
	// 500. The registration is not reported as created when it was not
	// persisted.
	MsgSaveFailed = "Failed to save registration"
)

// Handler serves the fallback API from a jsonfile.Store.
type Handler struct {
	store *jsonfile.Store
}

// NewHandler creates a handler backed by store.
func NewHandler(store *jsonfile.Store) *Handler {
	return &Handler{store: store}
}

// ServeHTTP routes by exact path and method. Every response carries the
// permissive CORS headers and a JSON content type.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	hdr := w.Header()
	hdr.Set("Access-Control-Allow-Origin", "*")
	hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	hdr.Set("Access-Control-Allow-Headers", "Content-Type")
	hdr.Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	switch {
	case r.URL.Path == "/eventInfo" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, h.store.EventInfo())
	case r.URL.Path == "/registrations" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, h.store.Registrations())
	case r.URL.Path == "/registrations" && r.Method == http.MethodPost:
		h.createRegistration(w, r)
	default:
		writeJSON(w, http.StatusNotFound, errorBody(MsgNotFound))
	}
}

func (h *Handler) createRegistration(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		slog.Warn("fallback_event", "event", "body_read_failed", "error", err)
		writeJSON(w, http.StatusBadRequest, errorBody(MsgInvalidRegistration))
		return
	}

	entry, err := h.store.Append(body)
	if err != nil {
		if jsonfile.IsDecodeError(err) {
			slog.Info("fallback_event", "event", "invalid_registration", "error", err)
			writeJSON(w, http.StatusBadRequest, errorBody(MsgInvalidRegistration))
			return
		}
		slog.Error("fallback_event", "event", "save_failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody(MsgSaveFailed))
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("fallback_event", "event", "encode_failed", "error", err)
	}
}
