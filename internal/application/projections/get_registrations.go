package projections

import (
	"context"

	"techfest/internal/adapters/storage/registration"
	"techfest/internal/application/listutil"
	domain "techfest/internal/domain/registration"
)

// GetRegistrationsQuery carries query parameters.
type GetRegistrationsQuery struct {
	UserID string // owner filter; ignored when All is set
	All    bool   // admin view across every user
	Page   listutil.PageParams
}

// GetRegistrationsResult carries one page of registrations, newest first.
type GetRegistrationsResult struct {
	Registrations []domain.Stored    `json:"registrations"`
	Page          listutil.PageInfo `json:"page"`
}

// GetRegistrationsDeps holds dependencies for GetRegistrations.
type GetRegistrationsDeps struct {
	RegistrationStore RegistrationStore
}

// QueryGetRegistrations lists registrations for one user, or for everyone
// when All is set.
// PRE: UserID is non-empty unless All is set
// POST: Returns at most Page.PerPage rows ordered by created_at descending
func QueryGetRegistrations(ctx context.Context, query GetRegistrationsQuery, deps GetRegistrationsDeps) (GetRegistrationsResult, error) {
	filter := registration.ListFilter{}
	if !query.All {
		if query.UserID == "" {
			return GetRegistrationsResult{
				Registrations: []domain.Stored{},
				Page:          listutil.NewPageInfo(1, query.Page.PerPage, 0),
			}, nil
		}
		filter.UserID = query.UserID
	}

	total, err := deps.RegistrationStore.Count(ctx, filter)
	if err != nil {
		return GetRegistrationsResult{}, err
	}
	page := listutil.NewPageInfo(query.Page.Page, query.Page.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()

	rows, err := deps.RegistrationStore.List(ctx, filter)
	if err != nil {
		return GetRegistrationsResult{}, err
	}
	if rows == nil {
		rows = []domain.Stored{}
	}
	return GetRegistrationsResult{Registrations: rows, Page: page}, nil
}
