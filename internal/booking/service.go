package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clinicware/agendabot/internal/calendar"
	"github.com/clinicware/agendabot/internal/schedule"
	"github.com/clinicware/agendabot/internal/session"
	"github.com/clinicware/agendabot/pkg/logging"
)

// Request carries everything needed to create the appointment event.
type Request struct {
	PatientID   string
	Slot        schedule.Slot
	Reason      string
	BillingMode string
	PlanName    string
}

// Service books appointments on the clinic calendar. Booking is idempotent:
// the event id is a deterministic hash of (patient, start, end), and an
// existing event with that id short-circuits the insert, so re-delivered
// webhook calls never double-book.
type Service struct {
	api           calendar.API
	calendarID    string
	clinicName    string
	clinicAddress string
	logger        *logging.Logger
}

// NewService wires the booking service to the calendar collaborator.
func NewService(api calendar.API, calendarID, clinicName, clinicAddress string, logger *logging.Logger) *Service {
	if api == nil {
		panic("booking: calendar API cannot be nil")
	}
	if calendarID == "" {
		panic("booking: calendar id cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		api:           api,
		calendarID:    calendarID,
		clinicName:    clinicName,
		clinicAddress: clinicAddress,
		logger:        logger,
	}
}

// Book creates the calendar event for the confirmed slot. created reports
// whether a new event was inserted; false means the deterministic id already
// existed and that event was returned instead.
func (s *Service) Book(ctx context.Context, req Request) (event *calendar.Event, created bool, err error) {
	eventID := calendar.EventID(req.PatientID, req.Slot.Start, req.Slot.End)

	existing, err := s.api.GetEvent(ctx, s.calendarID, eventID)
	if err == nil {
		s.logger.Info("booking already exists, returning existing event",
			"patient", req.PatientID, "event_id", eventID)
		return existing, false, nil
	}
	if !errors.Is(err, calendar.ErrEventNotFound) {
		return nil, false, fmt.Errorf("booking: lookup event %s: %w", eventID, err)
	}

	inserted, err := s.api.InsertEvent(ctx, s.calendarID, &calendar.Event{
		ID:            eventID,
		Summary:       fmt.Sprintf("%s – %s", req.Reason, s.clinicName),
		Description:   s.description(req),
		Start:         req.Slot.Start,
		End:           req.Slot.End,
		Location:      s.clinicAddress,
		AttendeePhone: req.PatientID,
	})
	if err != nil {
		return nil, false, fmt.Errorf("booking: insert event: %w", err)
	}

	s.logger.Info("appointment booked",
		"patient", req.PatientID, "event_id", inserted.ID, "start", req.Slot.Start)
	return inserted, true, nil
}

func (s *Service) description(req Request) string {
	lines := []string{
		"Origem: WhatsApp",
		"Telefone: " + req.PatientID,
	}
	if req.BillingMode == session.BillingConvenio {
		lines = append(lines, "Convênio: "+req.PlanName)
	}
	return strings.Join(lines, "\n")
}
