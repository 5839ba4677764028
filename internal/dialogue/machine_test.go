package dialogue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicware/agendabot/internal/booking"
	"github.com/clinicware/agendabot/internal/calendar"
	"github.com/clinicware/agendabot/internal/schedule"
	"github.com/clinicware/agendabot/internal/session"
)

type fakeAvailability struct {
	busy  map[time.Time]bool
	err   error
	calls int
}

func newFakeAvailability() *fakeAvailability {
	return &fakeAvailability{busy: make(map[time.Time]bool)}
}

func (f *fakeAvailability) FirstFree(_ context.Context, _ string, candidates []schedule.Slot, count int) ([]schedule.Slot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var free []schedule.Slot
	for _, c := range candidates {
		if len(free) >= count {
			break
		}
		if !f.busy[c.Start.UTC()] {
			free = append(free, c)
		}
	}
	return free, nil
}

type fakeBooker struct {
	requests []booking.Request
	err      error
}

func (f *fakeBooker) Book(_ context.Context, req booking.Request) (*calendar.Event, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	f.requests = append(f.requests, req)
	return &calendar.Event{
		ID:    calendar.EventID(req.PatientID, req.Slot.Start, req.Slot.End),
		Start: req.Slot.Start,
		End:   req.Slot.End,
	}, true, nil
}

// testNow is a Monday morning inside business hours.
func testNow(loc *time.Location) time.Time {
	return time.Date(2026, 3, 2, 10, 0, 0, 0, loc)
}

func newTestMachine(t *testing.T, mutate func(*Config)) (*Machine, *fakeAvailability, *fakeBooker) {
	t.Helper()
	loc := saoPaulo(t)
	cfg := Config{
		Clinic: ClinicInfo{
			Name:    "Clínica de Urologia Dr. Souza",
			Address: "Rua das Flores, 100 – Porto Alegre",
			Phone:   "(51) 3333-0000",
		},
		CalendarID:        "primary",
		AcceptHealthPlans: true,
		SlotCount:         3,
		SlotDuration:      30 * time.Minute,
		WindowDays:        14,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	avail := newFakeAvailability()
	booker := &fakeBooker{}
	m := NewMachine(cfg, schedule.NewGenerator(loc), avail, booker, nil, func() time.Time { return testNow(loc) })
	return m, avail, booker
}

func newTestSession() *session.Session {
	return &session.Session{PatientID: "whatsapp:+5551999990000", State: StateWelcome}
}

func step(t *testing.T, m *Machine, sess *session.Session, input string) string {
	t.Helper()
	reply, err := m.Step(context.Background(), sess, input)
	require.NoError(t, err)
	return reply
}

func TestFirstMessageGreets(t *testing.T) {
	m, _, _ := newTestMachine(t, nil)
	sess := newTestSession()

	reply := step(t, m, sess, "oi")
	assert.Contains(t, reply, "Clínica de Urologia Dr. Souza")
	assert.Contains(t, reply, "Sim ou Não")
	assert.Equal(t, StateAskContinue, sess.State)
}

func TestAskContinueRepromptsOnGibberish(t *testing.T) {
	m, _, _ := newTestMachine(t, nil)
	sess := newTestSession()
	step(t, m, sess, "oi")

	reply := step(t, m, sess, "talvez depois")
	assert.Equal(t, replyYesNoReprompt, reply)
	assert.Equal(t, StateAskContinue, sess.State)
}

func TestAskContinueNoSaysGoodbye(t *testing.T) {
	m, _, _ := newTestMachine(t, nil)
	sess := newTestSession()
	step(t, m, sess, "oi")

	reply := step(t, m, sess, "não")
	assert.Equal(t, replyGoodbye, reply)
	assert.Equal(t, StateWelcome, sess.State)

	// A later message starts over with the greeting.
	reply = step(t, m, sess, "oi de novo")
	assert.Contains(t, reply, "Posso ajudar a agendar")
}

func TestInsuranceRepromptsWithoutAdvancing(t *testing.T) {
	m, _, _ := newTestMachine(t, nil)
	sess := newTestSession()
	step(t, m, sess, "oi")
	step(t, m, sess, "sim")
	require.Equal(t, StateAskInsurance, sess.State)

	reply := step(t, m, sess, "sei lá")
	assert.Equal(t, replyInsuranceReprompt, reply)
	assert.Equal(t, StateAskInsurance, sess.State)
	assert.Empty(t, sess.Data.BillingMode)
}

func TestInsuranceDisabledSkipsToReason(t *testing.T) {
	m, _, _ := newTestMachine(t, func(cfg *Config) { cfg.AcceptHealthPlans = false })
	sess := newTestSession()
	step(t, m, sess, "oi")

	reply := step(t, m, sess, "sim")
	assert.Equal(t, replyAskReason, reply)
	assert.Equal(t, StateAskReason, sess.State)
}

func TestCollectNameStep(t *testing.T) {
	m, _, _ := newTestMachine(t, func(cfg *Config) { cfg.CollectPatientName = true })
	sess := newTestSession()
	step(t, m, sess, "oi")

	reply := step(t, m, sess, "sim")
	assert.Equal(t, replyAskName, reply)

	reply = step(t, m, sess, "J")
	assert.Equal(t, replyNameReprompt, reply)
	assert.Equal(t, StateAskName, sess.State)

	step(t, m, sess, "João da Silva")
	assert.Equal(t, "João da Silva", sess.Data.PatientName)
	assert.Equal(t, StateAskInsurance, sess.State)
}

func TestHappyPathToBooked(t *testing.T) {
	m, _, booker := newTestMachine(t, nil)
	sess := newTestSession()

	step(t, m, sess, "oi")
	step(t, m, sess, "sim")
	step(t, m, sess, "particular")
	require.Equal(t, StateAskReason, sess.State)

	reply := step(t, m, sess, "Consulta")
	require.Equal(t, StateProposeSlots, sess.State)
	require.Len(t, sess.Data.SuggestedSlots, 3)
	assert.Contains(t, reply, "1) ")
	assert.Contains(t, reply, "2) ")
	assert.Contains(t, reply, "3) ")

	reply = step(t, m, sess, "2")
	require.Equal(t, StateConfirmSlot, sess.State)
	require.NotNil(t, sess.Data.ChosenSlot)
	assert.Contains(t, reply, "Você confirma")

	reply = step(t, m, sess, "sim")
	require.Equal(t, StateBooked, sess.State)
	assert.Contains(t, reply, "Agendamento confirmado")
	assert.Contains(t, reply, "Clínica de Urologia Dr. Souza")
	assert.NotEmpty(t, sess.Data.BookedEventID)

	require.Len(t, booker.requests, 1)
	req := booker.requests[0]
	assert.Equal(t, "Consulta", req.Reason)
	assert.Equal(t, session.BillingParticular, req.BillingMode)
	assert.True(t, req.Slot.Start.Equal(sess.Data.ChosenSlot.Start))

	// Further messages do not rebook.
	reply = step(t, m, sess, "sim")
	assert.Equal(t, replyAlreadyBooked, reply)
	assert.Len(t, booker.requests, 1)
}

func TestSlotsSkipBusyCandidates(t *testing.T) {
	m, avail, _ := newTestMachine(t, nil)
	loc := saoPaulo(t)
	// First grid slot after 10:00 on the pinned Monday.
	avail.busy[time.Date(2026, 3, 2, 10, 15, 0, 0, loc).UTC()] = true

	sess := newTestSession()
	step(t, m, sess, "oi")
	step(t, m, sess, "sim")
	step(t, m, sess, "particular")
	step(t, m, sess, "Consulta")

	require.Len(t, sess.Data.SuggestedSlots, 3)
	first := sess.Data.SuggestedSlots[0].Start.In(loc)
	assert.Equal(t, "10:30", first.Format("15:04"))
}

func TestSelectionOutOfRangeReprompts(t *testing.T) {
	m, _, _ := newTestMachine(t, nil)
	sess := newTestSession()
	step(t, m, sess, "oi")
	step(t, m, sess, "sim")
	step(t, m, sess, "particular")
	step(t, m, sess, "Consulta")

	reply := step(t, m, sess, "9")
	assert.Equal(t, chooseReprompt(3), reply)
	assert.Equal(t, StateProposeSlots, sess.State)
	assert.Nil(t, sess.Data.ChosenSlot)
}

func TestProposeSlotsAcceptsNewDay(t *testing.T) {
	m, _, _ := newTestMachine(t, nil)
	loc := saoPaulo(t)
	sess := newTestSession()
	step(t, m, sess, "oi")
	step(t, m, sess, "sim")
	step(t, m, sess, "particular")
	step(t, m, sess, "Consulta")

	step(t, m, sess, "pode ser na quinta?")
	require.Equal(t, StateProposeSlots, sess.State)
	for _, s := range sess.Data.SuggestedSlots {
		assert.Equal(t, time.Thursday, s.Start.In(loc).Weekday())
	}
}

func TestPreferredDayInReasonMessage(t *testing.T) {
	m, _, _ := newTestMachine(t, nil)
	loc := saoPaulo(t)
	sess := newTestSession()
	step(t, m, sess, "oi")
	step(t, m, sess, "sim")
	step(t, m, sess, "particular")

	step(t, m, sess, "Consulta, pode ser na próxima quarta")
	require.Equal(t, StateProposeSlots, sess.State)
	require.NotEmpty(t, sess.Data.SuggestedSlots)
	for _, s := range sess.Data.SuggestedSlots {
		assert.Equal(t, time.Wednesday, s.Start.In(loc).Weekday())
	}
}

func TestLeadTimePlanPushesSuggestions(t *testing.T) {
	m, _, _ := newTestMachine(t, nil)
	loc := saoPaulo(t)
	sess := newTestSession()
	step(t, m, sess, "oi")
	step(t, m, sess, "sim")
	step(t, m, sess, "convênio")
	require.Equal(t, StateAskPlanName, sess.State)

	reply := step(t, m, sess, "IPERGS")
	assert.Contains(t, reply, "14 dias")
	require.Equal(t, StateAskReason, sess.State)

	reply = step(t, m, sess, "Consulta amanhã")
	require.Equal(t, StateProposeSlots, sess.State)
	assert.Contains(t, reply, "14 dias de antecedência")

	earliest := testNow(loc).Add(14 * 24 * time.Hour)
	for _, s := range sess.Data.SuggestedSlots {
		assert.True(t, s.Start.After(earliest), "slot %s violates lead time", s.Start)
	}
}

func TestWeekendPreferenceRollsForward(t *testing.T) {
	m, _, _ := newTestMachine(t, nil)
	loc := saoPaulo(t)
	sess := newTestSession()
	step(t, m, sess, "oi")
	step(t, m, sess, "sim")
	step(t, m, sess, "particular")

	// Saturday has no business hours; suggestions land on Monday.
	step(t, m, sess, "Consulta, pode ser sábado")
	require.Equal(t, StateProposeSlots, sess.State)
	require.NotEmpty(t, sess.Data.SuggestedSlots)
	first := sess.Data.SuggestedSlots[0].Start.In(loc)
	assert.Equal(t, time.Monday, first.Weekday())
	assert.Equal(t, 9, first.Day())
}

func TestSameDayEveningSuggestsNextDay(t *testing.T) {
	m, _, _ := newTestMachine(t, nil)
	loc := saoPaulo(t)
	// Monday after the afternoon window has closed.
	evening := time.Date(2026, 3, 2, 19, 0, 0, 0, loc)
	m.now = func() time.Time { return evening }

	sess := newTestSession()
	step(t, m, sess, "oi")
	step(t, m, sess, "sim")
	step(t, m, sess, "particular")

	step(t, m, sess, "Consulta hoje")
	require.Equal(t, StateProposeSlots, sess.State)
	require.NotEmpty(t, sess.Data.SuggestedSlots)
	for _, s := range sess.Data.SuggestedSlots {
		assert.True(t, s.Start.After(evening), "slot %s is in the past", s.Start)
	}
	first := sess.Data.SuggestedSlots[0].Start.In(loc)
	assert.Equal(t, 3, first.Day())
	assert.Equal(t, "09:00", first.Format("15:04"))
}

func TestNoFreeSlotsAsksForPreferredDate(t *testing.T) {
	m, _, _ := newTestMachine(t, nil)
	sess := newTestSession()
	step(t, m, sess, "oi")
	step(t, m, sess, "sim")
	step(t, m, sess, "particular")

	// Everything is busy: the filter frees nothing.
	m.avail = availabilityFunc(func(context.Context, string, []schedule.Slot, int) ([]schedule.Slot, error) {
		return nil, nil
	})

	reply := step(t, m, sess, "Consulta")
	assert.Equal(t, replyNoSlots, reply)
	assert.Equal(t, StateAskPreferredDate, sess.State)

	reply = step(t, m, sess, "qualquer dia serve")
	assert.Equal(t, replyDateReprompt, reply)
	assert.Equal(t, StateAskPreferredDate, sess.State)
}

type availabilityFunc func(context.Context, string, []schedule.Slot, int) ([]schedule.Slot, error)

func (f availabilityFunc) FirstFree(ctx context.Context, calID string, c []schedule.Slot, n int) ([]schedule.Slot, error) {
	return f(ctx, calID, c, n)
}

func TestConfirmConflictReturnsToReason(t *testing.T) {
	m, avail, booker := newTestMachine(t, nil)
	sess := newTestSession()
	step(t, m, sess, "oi")
	step(t, m, sess, "sim")
	step(t, m, sess, "particular")
	step(t, m, sess, "Consulta")
	step(t, m, sess, "1")
	require.Equal(t, StateConfirmSlot, sess.State)

	// The slot is taken between proposal and confirmation.
	avail.busy[sess.Data.ChosenSlot.Start.UTC()] = true

	reply := step(t, m, sess, "sim")
	assert.Equal(t, replySlotTaken, reply)
	assert.Equal(t, StateAskReason, sess.State)
	assert.Nil(t, sess.Data.ChosenSlot)
	assert.Empty(t, booker.requests)
}

func TestConfirmDeclinedReturnsToReason(t *testing.T) {
	m, _, booker := newTestMachine(t, nil)
	sess := newTestSession()
	step(t, m, sess, "oi")
	step(t, m, sess, "sim")
	step(t, m, sess, "particular")
	step(t, m, sess, "Consulta")
	step(t, m, sess, "1")

	reply := step(t, m, sess, "não")
	assert.Equal(t, replyDeclinedSlot, reply)
	assert.Equal(t, StateAskReason, sess.State)
	assert.Empty(t, booker.requests)
}

func TestRestartFromEveryState(t *testing.T) {
	states := []string{
		StateWelcome, StateAskContinue, StateAskName, StateAskInsurance,
		StateAskPlanName, StateAskReason, StateAskPreferredDate,
		StateProposeSlots, StateConfirmSlot, StateBooked,
	}
	for _, state := range states {
		m, _, _ := newTestMachine(t, nil)
		sess := newTestSession()
		sess.State = state
		sess.Data = session.Data{Reason: "Consulta", PlanName: "Unimed"}

		reply := step(t, m, sess, "menu")
		assert.Contains(t, reply, "Posso ajudar a agendar", "state %s", state)
		assert.Equal(t, StateAskContinue, sess.State, "state %s", state)
		assert.Equal(t, session.Data{}, sess.Data, "state %s", state)
	}
}

func TestAvailabilityErrorBubbles(t *testing.T) {
	m, avail, _ := newTestMachine(t, nil)
	sess := newTestSession()
	step(t, m, sess, "oi")
	step(t, m, sess, "sim")
	step(t, m, sess, "particular")

	avail.err = errors.New("calendar unreachable")
	_, err := m.Step(context.Background(), sess, "Consulta")
	require.Error(t, err)
}

func TestBookingErrorBubbles(t *testing.T) {
	m, _, booker := newTestMachine(t, nil)
	sess := newTestSession()
	step(t, m, sess, "oi")
	step(t, m, sess, "sim")
	step(t, m, sess, "particular")
	step(t, m, sess, "Consulta")
	step(t, m, sess, "1")

	booker.err = errors.New("insert failed")
	_, err := m.Step(context.Background(), sess, "sim")
	require.Error(t, err)
	assert.Equal(t, StateConfirmSlot, sess.State)
}
