package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleClient implements API against the Google Calendar v3 service.
type GoogleClient struct {
	svc      *gcal.Service
	timezone string
}

// NewGoogleClient builds a client authenticated with a service-account
// credentials JSON blob. timezone is the clinic timezone used on event and
// free/busy payloads.
func NewGoogleClient(ctx context.Context, credentialsJSON []byte, timezone string) (*GoogleClient, error) {
	if len(credentialsJSON) == 0 {
		return nil, errors.New("calendar: google credentials are required")
	}
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("calendar: failed to build google client: %w", err)
	}
	return &GoogleClient{svc: svc, timezone: timezone}, nil
}

// FreeBusy queries busy intervals for the calendar over [start, end).
func (c *GoogleClient) FreeBusy(ctx context.Context, calendarID string, start, end time.Time) ([]Interval, error) {
	resp, err := c.svc.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin:  start.Format(time.RFC3339),
		TimeMax:  end.Format(time.RFC3339),
		TimeZone: c.timezone,
		Items:    []*gcal.FreeBusyRequestItem{{Id: calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: freebusy query failed: %w", err)
	}

	cal, ok := resp.Calendars[calendarID]
	if !ok {
		return nil, nil
	}
	intervals := make([]Interval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		busyStart, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("calendar: bad busy start %q: %w", period.Start, err)
		}
		busyEnd, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("calendar: bad busy end %q: %w", period.End, err)
		}
		intervals = append(intervals, Interval{Start: busyStart, End: busyEnd})
	}
	return intervals, nil
}

// GetEvent fetches an event by id, mapping 404/410 to ErrEventNotFound.
func (c *GoogleClient) GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error) {
	ev, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && (gerr.Code == 404 || gerr.Code == 410) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("calendar: get event %s: %w", eventID, err)
	}
	// Cancelled events keep their id but no longer block the slot.
	if ev.Status == "cancelled" {
		return nil, ErrEventNotFound
	}
	return fromGoogleEvent(ev)
}

// InsertEvent creates the event with its caller-supplied deterministic id.
func (c *GoogleClient) InsertEvent(ctx context.Context, calendarID string, event *Event) (*Event, error) {
	payload := &gcal.Event{
		Id:          event.ID,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
		Reminders: &gcal.EventReminders{
			UseDefault:      true,
			ForceSendFields: []string{"UseDefault"},
		},
	}
	if event.AttendeePhone != "" {
		payload.ExtendedProperties = &gcal.EventExtendedProperties{
			Private: map[string]string{"attendeePhone": event.AttendeePhone},
		}
	}

	created, err := c.svc.Events.Insert(calendarID, payload).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: insert event: %w", err)
	}
	return fromGoogleEvent(created)
}

func fromGoogleEvent(ev *gcal.Event) (*Event, error) {
	out := &Event{
		ID:          ev.Id,
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
	}
	if ev.ExtendedProperties != nil {
		out.AttendeePhone = ev.ExtendedProperties.Private["attendeePhone"]
	}
	if ev.Start != nil && ev.Start.DateTime != "" {
		start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
		if err != nil {
			return nil, fmt.Errorf("calendar: bad event start %q: %w", ev.Start.DateTime, err)
		}
		out.Start = start
	}
	if ev.End != nil && ev.End.DateTime != "" {
		end, err := time.Parse(time.RFC3339, ev.End.DateTime)
		if err != nil {
			return nil, fmt.Errorf("calendar: bad event end %q: %w", ev.End.DateTime, err)
		}
		out.End = end
	}
	return out, nil
}
