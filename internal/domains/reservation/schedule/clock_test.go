package schedule_test

import (
	"encoding/json"
	"roombook/internal/domains/reservation/schedule"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		minutes int
		hours   string
		wantErr bool
	}{
		{name: "half hour", input: "13:30", minutes: 810, hours: "13.5"},
		{name: "midnight", input: "00:00", minutes: 0, hours: "0"},
		{name: "end of day", input: "24:00", minutes: 1440, hours: "24"},
		{name: "postgres seconds suffix", input: "09:15:00", minutes: 555, hours: "9.25"},
		{name: "single digit hour", input: "9:00", wantErr: true},
		{name: "minute out of range", input: "10:60", wantErr: true},
		{name: "hour out of range", input: "25:00", wantErr: true},
		{name: "past end of day", input: "24:30", wantErr: true},
		{name: "non zero seconds", input: "10:00:30", wantErr: true},
		{name: "not numbers", input: "ab:cd", wantErr: true},
		{name: "no separator", input: "1330", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := schedule.ParseClockTime(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, schedule.ErrMalformedTime)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.minutes, got.Minutes())
			assert.True(t, decimal.RequireFromString(tt.hours).Equal(got.Hours()), "hours %s", got.Hours())
		})
	}
}

func TestClockTime_JSON(t *testing.T) {
	var payload struct {
		At schedule.ClockTime `json:"at"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"at":"07:05"}`), &payload))
	assert.Equal(t, schedule.MustParseClockTime("07:05"), payload.At)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"07:05"}`, string(out))

	err = json.Unmarshal([]byte(`{"at":"7am"}`), &payload)
	assert.ErrorIs(t, err, schedule.ErrMalformedTime)
}

func TestClockTime_Scan(t *testing.T) {
	tests := []struct {
		name     string
		src      any
		expected schedule.ClockTime
		wantErr  bool
	}{
		{name: "bytes", src: []byte("10:30:00"), expected: schedule.MustParseClockTime("10:30")},
		{name: "string with fraction", src: "08:00:00.000000", expected: schedule.MustParseClockTime("08:00")},
		{name: "time value", src: time.Date(0, 1, 1, 17, 45, 0, 0, time.UTC), expected: schedule.MustParseClockTime("17:45")},
		{name: "end of day as next midnight", src: time.Date(0, 1, 2, 0, 0, 0, 0, time.UTC), expected: schedule.EndOfDay},
		{name: "unsupported type", src: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got schedule.ClockTime

			err := got.Scan(tt.src)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClockTime_Value(t *testing.T) {
	value, err := schedule.MustParseClockTime("09:05").Value()

	require.NoError(t, err)
	assert.Equal(t, "09:05:00", value)
}

func TestParseDate(t *testing.T) {
	date, err := schedule.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), date)

	_, err = schedule.ParseDate("2023-02-29")
	assert.ErrorIs(t, err, schedule.ErrMalformedDate)
}
