package calendar

import (
	"context"
	"time"
)

// WithTimeout bounds every call on the wrapped API. A stalled upstream then
// surfaces to callers as context.DeadlineExceeded instead of hanging the
// webhook until the server write timeout.
func WithTimeout(api API, d time.Duration) API {
	if d <= 0 {
		return api
	}
	return &timeoutAPI{api: api, d: d}
}

type timeoutAPI struct {
	api API
	d   time.Duration
}

func (t *timeoutAPI) FreeBusy(ctx context.Context, calendarID string, start, end time.Time) ([]Interval, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.api.FreeBusy(ctx, calendarID, start, end)
}

func (t *timeoutAPI) GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.api.GetEvent(ctx, calendarID, eventID)
}

func (t *timeoutAPI) InsertEvent(ctx context.Context, calendarID string, event *Event) (*Event, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.api.InsertEvent(ctx, calendarID, event)
}
