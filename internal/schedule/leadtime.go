package schedule

import (
	"strings"
	"time"

	"github.com/clinicware/agendabot/internal/textnorm"
)

// minimumLeadTime is the advance notice required for plans subject to the
// lead-time policy.
const minimumLeadTime = 14 * 24 * time.Hour

// leadTimePlans are matched case- and diacritic-insensitively against the
// patient's plan name.
var leadTimePlans = []string{"ipergs", "ipe"}

// LeadTime returns the minimum booking lead time for the given plan name,
// zero for plans without one.
func LeadTime(planName string) time.Duration {
	folded := textnorm.Fold(planName)
	if folded == "" {
		return 0
	}
	for _, plan := range leadTimePlans {
		if strings.Contains(folded, plan) {
			return minimumLeadTime
		}
	}
	return 0
}

// EffectiveFrom resolves the instant candidate generation may start from,
// given the patient's preferred instant (zero when none) and their plan.
// adjusted reports that the lead-time policy pushed the start past what the
// patient asked for, so the dialogue can say so.
func EffectiveFrom(now, preferred time.Time, planName string) (from time.Time, adjusted bool) {
	from = now
	if !preferred.IsZero() && preferred.After(now) {
		from = preferred
	}
	earliest := now.Add(LeadTime(planName))
	if from.Before(earliest) {
		adjusted = !preferred.IsZero()
		from = earliest
	}
	return from, adjusted
}
