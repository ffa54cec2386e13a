package web

import (
	"errors"
	"net/http"

	"techfest/internal/adapters/http/middleware"
	"techfest/internal/application/listutil"
	"techfest/internal/application/projections"
	"techfest/internal/domain/eventinfo"
)

// handleGetEventInfo handles GET /api/event-info.
func handleGetEventInfo(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetEventInfo(r.Context(),
		projections.GetEventInfoQuery{Now: timeNow()},
		projections.GetEventInfoDeps{EventInfoStore: stores.EventInfoStore},
	)
	if errors.Is(err, eventinfo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event info not found")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetRegistrations handles GET /api/registrations?page=N&per_page=N.
// Attendees see their own registrations; admins see everyone's.
func handleGetRegistrations(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	result, err := projections.QueryGetRegistrations(r.Context(), projections.GetRegistrationsQuery{
		UserID: sess.AccountID,
		All:    sess.IsAdmin(),
		Page:   listutil.ParsePageParams(r.URL.Query()),
	}, projections.GetRegistrationsDeps{RegistrationStore: stores.RegistrationStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
