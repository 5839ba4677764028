package dialogue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func TestParseDayExpression(t *testing.T) {
	loc := saoPaulo(t)
	// Monday.
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, loc)

	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"hoje", time.Date(2026, 3, 2, 0, 0, 0, 0, loc), true},
		{"pode ser hoje?", time.Date(2026, 3, 2, 0, 0, 0, 0, loc), true},
		{"amanhã", time.Date(2026, 3, 3, 0, 0, 0, 0, loc), true},
		{"amanha", time.Date(2026, 3, 3, 0, 0, 0, 0, loc), true},
		{"quarta", time.Date(2026, 3, 4, 0, 0, 0, 0, loc), true},
		{"próxima quarta", time.Date(2026, 3, 4, 0, 0, 0, 0, loc), true},
		{"na quinta-feira", time.Date(2026, 3, 5, 0, 0, 0, 0, loc), true},
		{"sábado", time.Date(2026, 3, 7, 0, 0, 0, 0, loc), true},
		{"oi, tudo bem?", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseDayExpression(tc.in, now, loc)
		assert.Equal(t, tc.ok, ok, "ok for %q", tc.in)
		if tc.ok {
			assert.True(t, got.Equal(tc.want), "for %q: got %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseDayExpressionSameWeekdayIsNextWeek(t *testing.T) {
	loc := saoPaulo(t)
	// A Wednesday; "quarta" must mean next Wednesday, never today.
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, loc)

	got, ok := ParseDayExpression("quarta", now, loc)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, loc)), "got %s", got)
}
