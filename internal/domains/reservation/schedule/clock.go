// Package schedule holds the time arithmetic behind reservations: clock times,
// half-open intervals and the price of an interval.
package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"net/http"
	"roombook/shared/constant"
	"roombook/shared/failure"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	minutesPerHour = 60
	hoursPerDay    = 24

	// EndOfDay is 24:00, usable only as the end of a window.
	EndOfDay ClockTime = hoursPerDay * minutesPerHour
)

var (
	ErrMalformedTime   = failure.New(http.StatusBadRequest, "malformed time, expected HH:MM")
	ErrMalformedDate   = failure.New(http.StatusBadRequest, "malformed date, expected YYYY-MM-DD")
	ErrInvalidInterval = failure.New(http.StatusBadRequest, "end time must be after start time")
)

// ClockTime is a time of day in minutes since midnight.
type ClockTime int

// ParseClockTime parses "HH:MM". A trailing ":00" seconds part, as PostgreSQL
// renders TIME values, is tolerated. Reservations have minute granularity, so
// any other seconds value is rejected.
func ParseClockTime(value string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, value)
	}

	hour, err := parseClockPart(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, value)
	}

	minute, err := parseClockPart(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, value)
	}

	if len(parts) == 3 {
		second, err := parseClockPart(parts[2])
		if err != nil || second != 0 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedTime, value)
		}
	}

	if minute >= minutesPerHour || hour > hoursPerDay || (hour == hoursPerDay && minute != 0) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, value)
	}

	return ClockTime(hour*minutesPerHour + minute), nil
}

// MustParseClockTime is ParseClockTime for literals known to be valid.
func MustParseClockTime(value string) ClockTime {
	clock, err := ParseClockTime(value)
	if err != nil {
		panic(err)
	}

	return clock
}

func parseClockPart(part string) (int, error) {
	if len(part) != 2 {
		return 0, strconv.ErrSyntax
	}

	return strconv.Atoi(part)
}

// Minutes returns the offset from midnight in minutes.
func (c ClockTime) Minutes() int {
	return int(c)
}

// Hours returns the offset from midnight in hours, "13:30" is 13.5.
func (c ClockTime) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(c)).Div(decimal.NewFromInt(minutesPerHour))
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/minutesPerHour, int(c)%minutesPerHour)
}

// MarshalJSON renders the clock time as "HH:MM".
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedTime, string(data))
	}

	parsed, err := ParseClockTime(raw)
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// Value implements driver.Valuer for TIME columns.
func (c ClockTime) Value() (driver.Value, error) {
	return c.String() + ":00", nil
}

// Scan implements sql.Scanner for TIME columns.
func (c *ClockTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		// lib/pq decodes 24:00:00 as midnight of the following day.
		if v.YearDay() > 1 && v.Hour() == 0 && v.Minute() == 0 {
			*c = EndOfDay

			return nil
		}

		*c = ClockTime(v.Hour()*minutesPerHour + v.Minute())

		return nil
	case []byte:
		return c.scanString(string(v))
	case string:
		return c.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", src)
	}
}

func (c *ClockTime) scanString(value string) error {
	// TIME columns may carry fractional seconds.
	if idx := strings.IndexByte(value, '.'); idx > 0 {
		value = value[:idx]
	}

	parsed, err := ParseClockTime(value)
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// ParseDate parses a calendar date in YYYY-MM-DD form. Dates carry no timezone.
func ParseDate(value string) (time.Time, error) {
	date, err := time.Parse(constant.DateOnlyFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, value)
	}

	return date, nil
}
