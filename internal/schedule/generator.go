package schedule

import "time"

const (
	// gridMinutes is the slot grid: starts are always multiples of 15 minutes.
	gridMinutes = 15

	morningOpen    = 9
	morningClose   = 12
	afternoonOpen  = 14
	afternoonClose = 18
)

// Generator produces candidate slots under the clinic's business-hour and
// grid-alignment rules: Monday through Friday, [09:00,12:00) and
// [14:00,18:00), starts on 15-minute boundaries.
type Generator struct {
	loc *time.Location
}

// NewGenerator builds a generator bound to the clinic timezone.
func NewGenerator(loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{loc: loc}
}

// Location returns the clinic timezone the generator operates in.
func (g *Generator) Location() *time.Location { return g.loc }

// Candidates returns up to count slots of the given duration, starting after
// from and within windowDays. Inadmissible cursor positions jump straight to
// the next window boundary instead of scanning rejected minutes, so the walk
// is O(candidates), not O(minutes).
func (g *Generator) Candidates(from time.Time, duration time.Duration, count, windowDays int) []Slot {
	horizon := from.Add(time.Duration(windowDays) * 24 * time.Hour)
	return g.scan(g.alignUp(from), horizon, duration, count)
}

// ForDay restricts generation to a single target day's admissible windows.
// notBefore keeps same-day suggestions from landing in the past.
func (g *Generator) ForDay(day time.Time, notBefore time.Time, duration time.Duration, count int) []Slot {
	day = day.In(g.loc)
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), morningOpen, 0, 0, 0, g.loc)
	cursor := dayStart
	if aligned := g.alignUp(notBefore); aligned.After(cursor) {
		cursor = aligned
	}
	horizon := time.Date(day.Year(), day.Month(), day.Day(), afternoonClose, 0, 0, 0, g.loc)
	return g.scan(cursor, horizon, duration, count)
}

func (g *Generator) scan(cursor, horizon time.Time, duration time.Duration, count int) []Slot {
	var slots []Slot
	for cursor.Before(horizon) && len(slots) < count {
		if g.admissible(cursor) {
			slots = append(slots, Slot{Start: cursor, End: cursor.Add(duration)})
			cursor = cursor.Add(gridMinutes * time.Minute)
			continue
		}
		cursor = g.nextWindow(cursor)
	}
	return slots
}

// alignUp returns the first grid boundary strictly after t, seconds dropped.
func (g *Generator) alignUp(t time.Time) time.Time {
	t = t.In(g.loc)
	aligned := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()-t.Minute()%gridMinutes, 0, 0, g.loc)
	return aligned.Add(gridMinutes * time.Minute)
}

func (g *Generator) admissible(t time.Time) bool {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	h := t.Hour()
	return (h >= morningOpen && h < morningClose) || (h >= afternoonOpen && h < afternoonClose)
}

// nextWindow jumps an inadmissible cursor to the next window boundary: the
// afternoon window today, or 09:00 the next day. Weekends resolve within a
// bounded number of jumps because admissible rejects them again.
func (g *Generator) nextWindow(t time.Time) time.Time {
	switch {
	case t.Hour() < morningOpen:
		return time.Date(t.Year(), t.Month(), t.Day(), morningOpen, 0, 0, 0, g.loc)
	case t.Hour() < afternoonOpen:
		return time.Date(t.Year(), t.Month(), t.Day(), afternoonOpen, 0, 0, 0, g.loc)
	default:
		next := t.AddDate(0, 0, 1)
		return time.Date(next.Year(), next.Month(), next.Day(), morningOpen, 0, 0, 0, g.loc)
	}
}
