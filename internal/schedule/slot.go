package schedule

import (
	"fmt"
	"time"
)

// Slot is a candidate appointment window. Start always falls on the clinic's
// 15-minute grid inside a weekday business window.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

var weekdayShort = [...]string{"dom", "seg", "ter", "qua", "qui", "sex", "sáb"}

var weekdayLong = [...]string{
	"domingo", "segunda-feira", "terça-feira", "quarta-feira",
	"quinta-feira", "sexta-feira", "sábado",
}

var monthLong = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// Label renders the start instant the way it is offered to patients,
// e.g. "seg, 02/03 às 09:00".
func (s Slot) Label() string {
	return fmt.Sprintf("%s, %02d/%02d às %02d:%02d",
		weekdayShort[s.Start.Weekday()],
		s.Start.Day(), int(s.Start.Month()),
		s.Start.Hour(), s.Start.Minute())
}

// LongLabel renders the start instant for booking confirmations,
// e.g. "segunda-feira, 02 de março às 09:00".
func (s Slot) LongLabel() string {
	return fmt.Sprintf("%s, %02d de %s às %02d:%02d",
		weekdayLong[s.Start.Weekday()],
		s.Start.Day(), monthLong[s.Start.Month()-1],
		s.Start.Hour(), s.Start.Minute())
}
