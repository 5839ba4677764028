package dialogue

import (
	"regexp"
	"time"

	"github.com/clinicware/agendabot/internal/textnorm"
)

// Recognized relative-date vocabulary. Folding strips diacritics, so
// "amanhã" and "amanha" are the same token and weekday names lose accents.
var (
	todayRE    = regexp.MustCompile(`\bhoje\b`)
	tomorrowRE = regexp.MustCompile(`\bamanha\b`)
	weekdayRE  = regexp.MustCompile(`\b(domingo|segunda|terca|quarta|quinta|sexta|sabado)\b`)
)

var weekdayByName = map[string]time.Weekday{
	"domingo": time.Sunday,
	"segunda": time.Monday,
	"terca":   time.Tuesday,
	"quarta":  time.Wednesday,
	"quinta":  time.Thursday,
	"sexta":   time.Friday,
	"sabado":  time.Saturday,
}

// ParseDayExpression extracts a preferred day from free text: "hoje",
// "amanhã", a weekday name, or "próxima/próximo <weekday>". A bare weekday
// and a qualified one both resolve to the next strictly-future occurrence.
// The returned instant is midnight of that day in loc.
func ParseDayExpression(input string, now time.Time, loc *time.Location) (time.Time, bool) {
	folded := textnorm.Fold(input)
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	if todayRE.MatchString(folded) {
		return today, true
	}
	if tomorrowRE.MatchString(folded) {
		return today.AddDate(0, 0, 1), true
	}
	if m := weekdayRE.FindStringSubmatch(folded); m != nil {
		target := weekdayByName[m[1]]
		days := int(target-now.Weekday()+7) % 7
		if days == 0 {
			days = 7
		}
		return today.AddDate(0, 0, days), true
	}
	return time.Time{}, false
}
