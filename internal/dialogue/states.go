package dialogue

// Dialogue states. Each inbound message is handled against exactly one of
// these; invalid input re-prompts without advancing.
const (
	StateWelcome          = "welcome"
	StateAskContinue      = "ask_continue"
	StateAskName          = "ask_name"
	StateAskInsurance     = "ask_insurance"
	StateAskPlanName      = "ask_plan_name"
	StateAskReason        = "ask_reason"
	StateAskPreferredDate = "ask_preferred_date"
	StateProposeSlots     = "propose_slots"
	StateConfirmSlot      = "confirm_slot"
	StateBooked           = "booked"
)
