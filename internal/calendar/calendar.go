package calendar

import (
	"context"
	"errors"
	"time"
)

// ErrEventNotFound indicates the requested event id does not exist on the calendar.
var ErrEventNotFound = errors.New("calendar: event not found")

// Interval is a busy period returned by a free/busy query.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Event is a calendar event as this system sees it. Events are created once
// at booking time and never mutated afterwards.
type Event struct {
	ID            string
	Summary       string
	Description   string
	Start         time.Time
	End           time.Time
	Location      string
	AttendeePhone string
}

// API is the calendar collaborator contract. The calendar is the sole source
// of truth for booking conflicts; this system holds no lock over slots.
type API interface {
	// FreeBusy returns the busy intervals overlapping [start, end) on the calendar.
	FreeBusy(ctx context.Context, calendarID string, start, end time.Time) ([]Interval, error)
	// GetEvent fetches an event by id, returning ErrEventNotFound when absent.
	GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error)
	// InsertEvent creates a new event and returns the stored copy.
	InsertEvent(ctx context.Context, calendarID string, event *Event) (*Event, error)
}
