package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Interval is the half-open window [Start, End) on a single date.
type Interval struct {
	Start ClockTime `json:"start_time"`
	End   ClockTime `json:"end_time"`
}

// NewInterval builds an interval and rejects empty or inverted windows.
func NewInterval(start, end ClockTime) (Interval, error) {
	if end <= start {
		return Interval{}, fmt.Errorf("%w: %s-%s", ErrInvalidInterval, start, end)
	}

	if start >= EndOfDay {
		return Interval{}, fmt.Errorf("%w: start %s is not a time of day", ErrMalformedTime, start)
	}

	return Interval{Start: start, End: end}, nil
}

// ParseInterval parses both bounds and validates their ordering.
func ParseInterval(start, end string) (Interval, error) {
	startTime, err := ParseClockTime(start)
	if err != nil {
		return Interval{}, err
	}

	endTime, err := ParseClockTime(end)
	if err != nil {
		return Interval{}, err
	}

	return NewInterval(startTime, endTime)
}

// Overlaps reports whether the two windows share any instant. Windows that only
// touch, one ending exactly when the other begins, do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// Duration returns the interval length in hours.
func (i Interval) Duration() decimal.Decimal {
	return decimal.NewFromInt(int64(i.End - i.Start)).Div(decimal.NewFromInt(minutesPerHour))
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start, i.End)
}

// Duration returns end - start in hours and fails when the window is empty or inverted.
func Duration(start, end ClockTime) (decimal.Decimal, error) {
	interval, err := NewInterval(start, end)
	if err != nil {
		return decimal.Zero, err
	}

	return interval.Duration(), nil
}
