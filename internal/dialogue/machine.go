package dialogue

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/clinicware/agendabot/internal/booking"
	"github.com/clinicware/agendabot/internal/calendar"
	"github.com/clinicware/agendabot/internal/schedule"
	"github.com/clinicware/agendabot/internal/session"
	"github.com/clinicware/agendabot/pkg/logging"
)

// overscanFactor controls how many grid candidates are generated per
// requested suggestion before the availability filter narrows them down.
const overscanFactor = 4

// Availability narrows candidate slots to the free ones, in order.
type Availability interface {
	FirstFree(ctx context.Context, calendarID string, candidates []schedule.Slot, count int) ([]schedule.Slot, error)
}

// Booker creates the calendar event for a confirmed slot.
type Booker interface {
	Book(ctx context.Context, req booking.Request) (*calendar.Event, bool, error)
}

// Config tunes the dialogue flow for one clinic.
type Config struct {
	Clinic             ClinicInfo
	CalendarID         string
	AcceptHealthPlans  bool
	CollectPatientName bool
	SlotDuration       time.Duration
	SlotCount          int
	WindowDays         int
}

// Machine is the deterministic dialogue state machine. One Step call handles
// one inbound message: it mutates the session and returns the reply text.
// Collaborator errors bubble up with the session untouched by the caller, so
// the patient can retry the same message.
type Machine struct {
	cfg    Config
	gen    *schedule.Generator
	avail  Availability
	booker Booker
	logger *logging.Logger
	now    func() time.Time
}

// NewMachine wires the dialogue to its collaborators. now is injectable so
// tests can pin the clock; nil means time.Now.
func NewMachine(cfg Config, gen *schedule.Generator, avail Availability, booker Booker, logger *logging.Logger, now func() time.Time) *Machine {
	if gen == nil {
		panic("dialogue: generator cannot be nil")
	}
	if avail == nil {
		panic("dialogue: availability cannot be nil")
	}
	if booker == nil {
		panic("dialogue: booker cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = time.Now
	}
	if cfg.SlotCount <= 0 {
		cfg.SlotCount = 3
	}
	if cfg.SlotDuration <= 0 {
		cfg.SlotDuration = 30 * time.Minute
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 14
	}
	return &Machine{cfg: cfg, gen: gen, avail: avail, booker: booker, logger: logger, now: now}
}

// Step advances the dialogue with one patient message.
func (m *Machine) Step(ctx context.Context, sess *session.Session, input string) (string, error) {
	input = strings.TrimSpace(input)

	if IsRestart(input) {
		sess.Data = session.Data{}
		sess.State = StateAskContinue
		return m.greeting(), nil
	}

	switch sess.State {
	case "", StateWelcome:
		sess.State = StateAskContinue
		return m.greeting(), nil
	case StateAskContinue:
		return m.stepAskContinue(sess, input)
	case StateAskName:
		return m.stepAskName(sess, input)
	case StateAskInsurance:
		return m.stepAskInsurance(sess, input)
	case StateAskPlanName:
		return m.stepAskPlanName(sess, input)
	case StateAskReason:
		return m.stepAskReason(ctx, sess, input)
	case StateAskPreferredDate:
		return m.stepAskPreferredDate(ctx, sess, input)
	case StateProposeSlots:
		return m.stepProposeSlots(ctx, sess, input)
	case StateConfirmSlot:
		return m.stepConfirmSlot(ctx, sess, input)
	case StateBooked:
		return replyAlreadyBooked, nil
	default:
		m.logger.Warn("unknown dialogue state, restarting", "patient", sess.PatientID, "state", sess.State)
		sess.Data = session.Data{}
		sess.State = StateAskContinue
		return m.greeting(), nil
	}
}

func (m *Machine) stepAskContinue(sess *session.Session, input string) (string, error) {
	yes, ok := ParseYesNo(input)
	if !ok {
		return replyYesNoReprompt, nil
	}
	if !yes {
		sess.Data = session.Data{}
		sess.State = StateWelcome
		return replyGoodbye, nil
	}
	return m.beginIntake(sess), nil
}

// beginIntake routes past the optional name and insurance steps.
func (m *Machine) beginIntake(sess *session.Session) string {
	if m.cfg.CollectPatientName {
		sess.State = StateAskName
		return replyAskName
	}
	return m.afterName(sess)
}

func (m *Machine) afterName(sess *session.Session) string {
	if m.cfg.AcceptHealthPlans {
		sess.State = StateAskInsurance
		return replyAskInsurance
	}
	sess.State = StateAskReason
	return replyAskReason
}

func (m *Machine) stepAskName(sess *session.Session, input string) (string, error) {
	if utf8.RuneCountInString(input) < 2 {
		return replyNameReprompt, nil
	}
	sess.Data.PatientName = input
	return m.afterName(sess), nil
}

func (m *Machine) stepAskInsurance(sess *session.Session, input string) (string, error) {
	switch classifyBilling(input) {
	case billingParticular:
		sess.Data.BillingMode = session.BillingParticular
		sess.State = StateAskReason
		return replyAskReason, nil
	case billingInsurance:
		sess.Data.BillingMode = session.BillingConvenio
		sess.State = StateAskPlanName
		return replyAskPlanName, nil
	default:
		return replyInsuranceReprompt, nil
	}
}

func (m *Machine) stepAskPlanName(sess *session.Session, input string) (string, error) {
	if input == "" {
		return replyPlanReprompt, nil
	}
	sess.Data.PlanName = input
	sess.State = StateAskReason
	if schedule.LeadTime(input) > 0 {
		return leadTimeNotice(input), nil
	}
	return "Obrigado! Qual o motivo da consulta?", nil
}

func (m *Machine) stepAskReason(ctx context.Context, sess *session.Session, input string) (string, error) {
	if input == "" {
		return replyAskReason, nil
	}
	sess.Data.Reason = CanonicalReason(input)
	day, hasDay := ParseDayExpression(input, m.now(), m.gen.Location())
	return m.suggest(ctx, sess, day, hasDay)
}

func (m *Machine) stepAskPreferredDate(ctx context.Context, sess *session.Session, input string) (string, error) {
	day, ok := ParseDayExpression(input, m.now(), m.gen.Location())
	if !ok {
		return replyDateReprompt, nil
	}
	return m.suggest(ctx, sess, day, true)
}

func (m *Machine) stepProposeSlots(ctx context.Context, sess *session.Session, input string) (string, error) {
	offered := sess.Data.SuggestedSlots
	if len(offered) == 0 {
		return m.suggest(ctx, sess, time.Time{}, false)
	}
	if n, ok := ParseSlotSelection(input, len(offered)); ok {
		chosen := offered[n-1]
		sess.Data.ChosenSlot = &chosen
		sess.State = StateConfirmSlot
		return confirmPrompt(chosen), nil
	}
	if day, ok := ParseDayExpression(input, m.now(), m.gen.Location()); ok {
		return m.suggest(ctx, sess, day, true)
	}
	return chooseReprompt(len(offered)), nil
}

func (m *Machine) stepConfirmSlot(ctx context.Context, sess *session.Session, input string) (string, error) {
	if sess.Data.ChosenSlot == nil {
		sess.State = StateAskReason
		return replyAskReason, nil
	}
	yes, ok := ParseYesNo(input)
	if !ok {
		return replyYesNoReprompt, nil
	}
	if !yes {
		sess.Data.SuggestedSlots = nil
		sess.Data.ChosenSlot = nil
		sess.State = StateAskReason
		return replyDeclinedSlot, nil
	}

	chosen := *sess.Data.ChosenSlot
	free, err := m.avail.FirstFree(ctx, m.cfg.CalendarID, []schedule.Slot{chosen}, 1)
	if err != nil {
		return "", err
	}
	if len(free) == 0 {
		sess.Data.SuggestedSlots = nil
		sess.Data.ChosenSlot = nil
		sess.State = StateAskReason
		return replySlotTaken, nil
	}

	event, created, err := m.booker.Book(ctx, booking.Request{
		PatientID:   sess.PatientID,
		Slot:        chosen,
		Reason:      sess.Data.Reason,
		BillingMode: sess.Data.BillingMode,
		PlanName:    sess.Data.PlanName,
	})
	if err != nil {
		return "", err
	}
	if !created {
		m.logger.Info("confirmation replay, event already existed",
			"patient", sess.PatientID, "event_id", event.ID)
	}
	sess.Data.BookedEventID = event.ID
	sess.State = StateBooked
	return m.bookedConfirmation(chosen), nil
}

// suggest generates candidates, filters them against the calendar, and moves
// the dialogue to propose_slots (or ask_preferred_date when nothing is free).
func (m *Machine) suggest(ctx context.Context, sess *session.Session, day time.Time, hasDay bool) (string, error) {
	loc := m.gen.Location()
	now := m.now().In(loc)
	want := m.cfg.SlotCount

	var preferred time.Time
	if hasDay {
		preferred = day
	}
	from, adjusted := schedule.EffectiveFrom(now, preferred, sess.Data.PlanName)

	var candidates []schedule.Slot
	if hasDay && !adjusted {
		candidates = m.gen.ForDay(day, now, m.cfg.SlotDuration, want*overscanFactor)
		if len(candidates) == 0 {
			// Weekend or exhausted day: roll forward, never behind now.
			start := day
			if now.After(start) {
				start = now
			}
			candidates = m.gen.Candidates(start, m.cfg.SlotDuration, want*overscanFactor, m.cfg.WindowDays)
		}
	} else {
		candidates = m.gen.Candidates(from, m.cfg.SlotDuration, want*overscanFactor, m.cfg.WindowDays)
	}

	free, err := m.avail.FirstFree(ctx, m.cfg.CalendarID, candidates, want)
	if err != nil {
		return "", err
	}
	if len(free) == 0 {
		sess.Data.SuggestedSlots = nil
		sess.Data.ChosenSlot = nil
		sess.State = StateAskPreferredDate
		return replyNoSlots, nil
	}

	sess.Data.SuggestedSlots = free
	sess.Data.ChosenSlot = nil
	sess.State = StateProposeSlots

	var prefix string
	if adjusted {
		prefix = leadTimeAdjusted(sess.Data.PlanName)
	}
	return proposalList(free, prefix), nil
}
