// Package timezone pins "now" and calendar dates to APP_TIMEZONE. Reservation
// dates are calendar days in that zone, stored as midnight UTC.
package timezone

import (
	"roombook/config"
	"roombook/shared/constant"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultTimezone = "UTC"

var (
	location *time.Location
	once     sync.Once
	mu       sync.RWMutex
)

// Location loads APP_TIMEZONE on first use. An unknown zone falls back to UTC.
func Location() *time.Location {
	once.Do(func() {
		name := config.Get().App.Timezone
		if name == constant.Empty {
			name = defaultTimezone
		}

		loc, err := time.LoadLocation(name)
		if err != nil {
			log.Error().Err(err).Str("timezone", name).Msg("Unknown timezone, falling back to UTC")

			loc = time.UTC
		}

		mu.Lock()
		if location == nil {
			location = loc
		}
		mu.Unlock()
	})

	mu.RLock()
	defer mu.RUnlock()

	return location
}

// SetLocation overrides the configured zone.
func SetLocation(loc *time.Location) {
	once.Do(func() {})

	mu.Lock()
	location = loc
	mu.Unlock()
}

func Now() time.Time {
	return time.Now().In(Location())
}

// Format renders t in the application timezone.
func Format(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}

// DateOf returns the calendar day of t in the application timezone as midnight UTC.
func DateOf(t time.Time) time.Time {
	local := t.In(Location())

	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Today is DateOf(Now()).
func Today() time.Time {
	return DateOf(time.Now())
}
