package schedule_test

import (
	"roombook/internal/domains/reservation/schedule"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name     string
		rate     string
		start    string
		end      string
		expected string
		err      error
	}{
		{name: "rate 100 for two and a half hours", rate: "100", start: "09:00", end: "11:30", expected: "250.00"},
		{name: "rounds a third of an hour", rate: "10", start: "09:00", end: "09:20", expected: "3.33"},
		{name: "rounds half away from zero", rate: "0.25", start: "09:00", end: "09:30", expected: "0.13"},
		{name: "free room", rate: "0", start: "09:00", end: "17:00", expected: "0"},
		{name: "fractional rate", rate: "12.99", start: "13:00", end: "14:45", expected: "22.73"},
		{name: "inverted window", rate: "100", start: "11:00", end: "09:00", err: schedule.ErrInvalidInterval},
		{name: "empty window", rate: "100", start: "11:00", end: "11:00", err: schedule.ErrInvalidInterval},
		{name: "negative rate", rate: "-1", start: "09:00", end: "10:00", err: schedule.ErrNegativeRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := schedule.ComputeTotal(
				decimal.RequireFromString(tt.rate),
				schedule.MustParseClockTime(tt.start),
				schedule.MustParseClockTime(tt.end),
			)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)

				return
			}

			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestComputeTotal_DeterministicAndNonNegative(t *testing.T) {
	rate := decimal.RequireFromString("37.50")

	for start := 0; start < 24*60; start += 45 {
		for end := start + 15; end <= 24*60; end += 95 {
			first, err := schedule.ComputeTotal(rate, schedule.ClockTime(start), schedule.ClockTime(end))
			require.NoError(t, err)

			second, err := schedule.ComputeTotal(rate, schedule.ClockTime(start), schedule.ClockTime(end))
			require.NoError(t, err)

			assert.True(t, first.Equal(second))
			assert.False(t, first.IsNegative())
		}
	}
}
