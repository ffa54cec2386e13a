package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"techfest/internal/adapters/http/middleware"
	auditStore "techfest/internal/adapters/storage/audit"
	"techfest/internal/domain/audit"
)

// newAuditEvent starts an event stamped with a fresh id, the current time
// and the client address of r.
func newAuditEvent(r *http.Request, category audit.Category, action audit.Action) audit.Event {
	return audit.NewEvent(generateID(), timeNow(), category, action).WithIP(middleware.ClientIP(r))
}

// recordAudit stores e when an audit store is configured. Failures are
// logged and never reach the caller.
func recordAudit(r *http.Request, e audit.Event) {
	if stores.AuditStore == nil {
		return
	}
	if err := stores.AuditStore.Save(r.Context(), e); err != nil {
		slog.Error("audit_event", "event", "save_failed", "action", string(e.Action), "error", err)
	}
}

// recordSessionAudit records an event caused by the signed-in caller.
func recordSessionAudit(r *http.Request, category audit.Category, action audit.Action, resourceType, resourceID string) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	recordAudit(r, newAuditEvent(r, category, action).
		WithActor(sess.AccountID, sess.Email).
		WithResource(resourceType, resourceID))
}

// handleAdminAudit handles GET /api/admin/audit?category=&actor_id=&limit=N.
func handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	if stores.AuditStore == nil {
		writeError(w, http.StatusNotFound, "audit trail is disabled")
		return
	}
	q := r.URL.Query()
	filter := auditStore.Filter{
		Category: audit.Category(q.Get("category")),
		ActorID:  q.Get("actor_id"),
		Limit:    100,
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 && n <= 1000 {
		filter.Limit = n
	}

	events, err := stores.AuditStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}
