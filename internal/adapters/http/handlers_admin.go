package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	outboxStore "techfest/internal/adapters/storage/outbox"
	"techfest/internal/domain/audit"
	"techfest/internal/domain/outbox"
)

// outboxEntryView is the admin JSON shape of an outbox entry.
type outboxEntryView struct {
	ID              string     `json:"id"`
	ActionType      string     `json:"actionType"`
	Status          string     `json:"status"`
	Attempts        int        `json:"attempts"`
	MaxAttempts     int        `json:"maxAttempts"`
	LastAttemptedAt *time.Time `json:"lastAttemptedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	ExternalID      string     `json:"externalId,omitempty"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
}

func newOutboxEntryView(e outbox.Entry) outboxEntryView {
	v := outboxEntryView{
		ID:           e.ID,
		ActionType:   e.ActionType,
		Status:       e.Status,
		Attempts:     e.Attempts,
		MaxAttempts:  e.MaxAttempts,
		CreatedAt:    e.CreatedAt,
		ExternalID:   e.ExternalID,
		ErrorMessage: e.ErrorMessage,
	}
	if !e.LastAttemptedAt.IsZero() {
		at := e.LastAttemptedAt
		v.LastAttemptedAt = &at
	}
	return v
}

// handleAdminPerf handles GET /api/admin/perf?minutes=N.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		writeError(w, http.StatusNotFound, "performance collection is disabled")
		return
	}
	minutes := 15
	if n, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && n > 0 && n <= 24*60 {
		minutes = n
	}
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, 10))
}

// handleAdminOutbox handles GET /api/admin/outbox?status=failed|pending&limit=N.
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	if stores.OutboxStore == nil {
		writeError(w, http.StatusNotFound, "outbox is disabled")
		return
	}
	ctx := r.Context()

	limit := 50
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 100 {
		limit = n
	}

	var entries []outbox.Entry
	var err error
	switch r.URL.Query().Get("status") {
	case "", outbox.StatusFailed:
		entries, err = stores.OutboxStore.ListFailed(ctx, limit)
	case outbox.StatusPending:
		entries, err = stores.OutboxStore.ListPending(ctx, limit)
	default:
		writeError(w, http.StatusBadRequest, "status must be failed or pending")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	views := make([]outboxEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newOutboxEntryView(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": views})
}

// handleAdminOutboxRetry handles POST /api/admin/outbox/{id}/retry.
func handleAdminOutboxRetry(w http.ResponseWriter, r *http.Request) {
	if outboxProcessor == nil {
		writeError(w, http.StatusNotFound, "outbox is disabled")
		return
	}
	id := r.PathValue("id")
	if err := outboxProcessor.ProcessSingle(r.Context(), id); err != nil {
		writeOutboxError(w, err)
		return
	}
	recordSessionAudit(r, audit.CategoryOutbox, audit.ActionRetry, "outbox_entry", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "retry triggered"})
}

// handleAdminOutboxAbandon handles POST /api/admin/outbox/{id}/abandon.
func handleAdminOutboxAbandon(w http.ResponseWriter, r *http.Request) {
	if outboxProcessor == nil {
		writeError(w, http.StatusNotFound, "outbox is disabled")
		return
	}
	id := r.PathValue("id")
	if err := outboxProcessor.AbandonEntry(r.Context(), id); err != nil {
		writeOutboxError(w, err)
		return
	}
	recordSessionAudit(r, audit.CategoryOutbox, audit.ActionAbandon, "outbox_entry", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

func writeOutboxError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, outboxStore.ErrNotFound):
		writeError(w, http.StatusNotFound, "outbox entry not found")
	case errors.Is(err, outbox.ErrTerminal):
		writeError(w, http.StatusConflict, err.Error())
	default:
		internalError(w, err)
	}
}
