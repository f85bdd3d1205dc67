package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"day only defaults to current month", "12", date(2024, time.June, 12)},
		{"day and month default to current year", "12.06", date(2024, time.June, 12)},
		{"two digit year", "12.06.24", date(2024, time.June, 12)},
		{"four digit year", "12.06.2024", date(2024, time.June, 12)},
		{"other month", "03.09", date(2024, time.September, 3)},
		{"days modifier", "12.06 + 10 сут", date(2024, time.June, 22)},
		{"modifier without spaces around plus", "12.06+10 сут", date(2024, time.June, 22)},
		{"months modifier is thirty days", "01.01 + 2 мес", date(2024, time.March, 1)},
		{"years modifier is 365 days", "10 + 1 лет", date(2025, time.June, 10)},
		{"zero modifier", "12.06 + 0 сут", date(2024, time.June, 12)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseExpiry(tc.input, now)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseExpiryRejects(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	badDates := []string{
		"",
		"abc",
		"1.6",
		"32.01",
		"31.02",
		"12.13",
		"12.06.202",
		"12.06.20244",
		"12.06.2024.01",
		"+ 10 сут",
	}
	for _, input := range badDates {
		t.Run("date "+input, func(t *testing.T) {
			_, err := ParseExpiry(input, now)
			require.ErrorIs(t, err, ErrBadDate)
		})
	}

	badModifiers := []string{
		"12.06 + 10",
		"12.06 + сут",
		"12.06 + x сут",
		"12.06 + -1 сут",
		"12.06 + 10 недель",
		"12.06 + 10 сут лишнее",
	}
	for _, input := range badModifiers {
		t.Run("modifier "+input, func(t *testing.T) {
			_, err := ParseExpiry(input, now)
			require.ErrorIs(t, err, ErrBadModifier)
		})
	}
}
