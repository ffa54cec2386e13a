package projections

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"techfest/internal/domain/eventinfo"
)

var (
	descriptionRenderer = goldmark.New()
	descriptionPolicy   = bluemonday.UGCPolicy()
)

// GetEventInfoQuery carries query parameters.
type GetEventInfoQuery struct {
	Now time.Time
}

// GetEventInfoResult is the event header view.
type GetEventInfoResult struct {
	eventinfo.Info
	DescriptionHTML  string `json:"descriptionHtml"`
	DateRange        string `json:"dateRange"`
	DeadlineDisplay  string `json:"deadlineDisplay"`
	RegistrationOpen bool   `json:"registrationOpen"`
}

// GetEventInfoDeps holds dependencies for GetEventInfo.
type GetEventInfoDeps struct {
	EventInfoStore EventInfoStore
}

// QueryGetEventInfo loads the event and renders its description.
// PRE: none
// POST: Returns the event with sanitised description HTML, or eventinfo.ErrNotFound
// INVARIANT: Registration is open through the end of the deadline day
func QueryGetEventInfo(ctx context.Context, query GetEventInfoQuery, deps GetEventInfoDeps) (GetEventInfoResult, error) {
	info, err := deps.EventInfoStore.Get(ctx)
	if err != nil {
		return GetEventInfoResult{}, err
	}

	var buf bytes.Buffer
	if err := descriptionRenderer.Convert([]byte(info.Description), &buf); err != nil {
		return GetEventInfoResult{}, fmt.Errorf("render description: %w", err)
	}

	result := GetEventInfoResult{
		Info:             info,
		DescriptionHTML:  descriptionPolicy.Sanitize(buf.String()),
		DateRange:        info.DateRange(),
		RegistrationOpen: info.IsRegistrationOpen(query.Now),
	}
	if info.RegistrationDeadline != "" {
		result.DeadlineDisplay = eventinfo.FormatDate(info.RegistrationDeadline)
	}
	return result, nil
}
