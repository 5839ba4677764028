package schedule

import (
	"context"
	"fmt"

	"github.com/clinicware/agendabot/internal/calendar"
)

// AvailabilityFilter narrows candidate slots to the ones the calendar
// reports as free. The calendar is queried one candidate at a time and the
// scan stops as soon as enough free slots are found.
type AvailabilityFilter struct {
	api calendar.API
}

// NewAvailabilityFilter builds a filter over the calendar collaborator.
func NewAvailabilityFilter(api calendar.API) *AvailabilityFilter {
	if api == nil {
		panic("schedule: calendar API cannot be nil")
	}
	return &AvailabilityFilter{api: api}
}

// FirstFree returns the first count free candidates in their original order.
// A slot is free when the free/busy query over [start, end) reports no busy
// intervals. Re-validating a chosen slot is the same call with a single
// candidate and count 1.
func (f *AvailabilityFilter) FirstFree(ctx context.Context, calendarID string, candidates []Slot, count int) ([]Slot, error) {
	var free []Slot
	for _, candidate := range candidates {
		if len(free) >= count {
			break
		}
		busy, err := f.api.FreeBusy(ctx, calendarID, candidate.Start, candidate.End)
		if err != nil {
			return nil, fmt.Errorf("schedule: availability check for %s: %w", candidate.Start.Format("2006-01-02 15:04"), err)
		}
		if len(busy) == 0 {
			free = append(free, candidate)
		}
	}
	return free, nil
}
