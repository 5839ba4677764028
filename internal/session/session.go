package session

import (
	"context"
	"errors"
	"time"

	"github.com/clinicware/agendabot/internal/schedule"
)

// ErrNotFound indicates no session exists for the patient identifier.
var ErrNotFound = errors.New("session: not found")

// Billing modes collected during intake.
const (
	BillingParticular = "particular"
	BillingConvenio   = "convenio"
)

// Data holds the intake fields accumulated over a dialogue.
type Data struct {
	PatientName    string          `json:"patientName,omitempty"`
	BillingMode    string          `json:"billingMode,omitempty"`
	PlanName       string          `json:"planName,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	SuggestedSlots []schedule.Slot `json:"suggestedSlots,omitempty"`
	ChosenSlot     *schedule.Slot  `json:"chosenSlot,omitempty"`
	BookedEventID  string          `json:"bookedEventId,omitempty"`
}

// Session is the per-patient dialogue state. It is mutated exclusively by
// the dialogue state machine, one inbound message at a time.
type Session struct {
	PatientID string    `json:"patientId"`
	State     string    `json:"state"`
	Data      Data      `json:"data"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy, used to snapshot a session before a step so a
// collaborator failure can leave the stored state untouched.
func (s *Session) Clone() *Session {
	cp := *s
	if s.Data.SuggestedSlots != nil {
		cp.Data.SuggestedSlots = append([]schedule.Slot(nil), s.Data.SuggestedSlots...)
	}
	if s.Data.ChosenSlot != nil {
		chosen := *s.Data.ChosenSlot
		cp.Data.ChosenSlot = &chosen
	}
	return &cp
}

// Store is the swappable session backend: get/put/delete keyed by patient
// identifier. Expiry is backend-specific (sweeper for memory, TTL for redis).
type Store interface {
	Get(ctx context.Context, patientID string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, patientID string) error
}
