package repository

import (
	"errors"
	"fmt"
	"roombook/internal/domains/reservation/model"
	"roombook/internal/domains/reservation/schedule"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictFilter(t *testing.T) {
	interval, err := schedule.ParseInterval("09:00", "11:30")
	require.NoError(t, err)

	date := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	t.Run("single room and date excluding the updated reservation", func(t *testing.T) {
		filter := ConflictFilter(model.ConflictQuery{
			RoomID:    "room-1",
			DateFrom:  date,
			Interval:  interval,
			ExcludeID: "res-1",
		})

		where, args := filter.GetWhereClause()

		assert.Equal(t, "(reservations.reservation_date >= :date_from"+
			" AND reservations.reservation_date <= :date_to"+
			" AND reservations.start_time < :window_end"+
			" AND reservations.end_time > :window_start"+
			" AND reservations.status != :free_status"+
			" AND reservations.room_id = :room_id"+
			" AND reservations.id != :exclude_id)", where)
		assert.Equal(t, "2024-05-01", args[argDateFrom])
		assert.Equal(t, "2024-05-01", args[argDateTo])
		assert.Equal(t, interval.End, args[argWindowEnd])
		assert.Equal(t, interval.Start, args[argWindowStart])
		assert.Equal(t, model.StatusCancelled, args[argFreeStatus])
		assert.Equal(t, "room-1", args[model.FieldRoomID])
		assert.Equal(t, "res-1", args[argExcludeID])
	})

	t.Run("date range across all rooms", func(t *testing.T) {
		filter := ConflictFilter(model.ConflictQuery{
			DateFrom: date,
			DateTo:   date.AddDate(0, 0, 6),
			Interval: interval,
		})

		where, args := filter.GetWhereClause()

		assert.NotContains(t, where, "room_id")
		assert.NotContains(t, where, "exclude_id")
		assert.Equal(t, "2024-05-07", args[argDateTo])
	})
}

func TestStatusFilter(t *testing.T) {
	filter := StatusFilter("res-1", model.StatusPendingPayment)
	where, args := filter.GetWhereClause()

	assert.Equal(t, "(reservations.id = :id AND reservations.status = :from_status)", where)
	assert.Equal(t, map[string]any{"id": "res-1", argFromStatus: model.StatusPendingPayment}, args)
	assert.NotContains(t, args, model.FieldStatus)
}

func TestUnchanged(t *testing.T) {
	current := model.Reservation{ID: "res-1", UserID: "customer-1", Status: model.StatusPendingPayment}

	tests := []struct {
		name     string
		locked   lockedReservation
		expected error
	}{
		{
			name:   "same owner and status",
			locked: lockedReservation{UserID: "customer-1", Status: model.StatusPendingPayment},
		},
		{
			name:     "payment confirmed after the read",
			locked:   lockedReservation{UserID: "customer-1", Status: model.StatusBooked},
			expected: model.ErrInvalidState,
		},
		{
			name:     "expired after the read",
			locked:   lockedReservation{UserID: "customer-1", Status: model.StatusCancelled},
			expected: model.ErrInvalidState,
		},
		{
			name:     "owner changed",
			locked:   lockedReservation{UserID: "customer-2", Status: model.StatusPendingPayment},
			expected: model.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, unchanged(current, tt.locked))
		})
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "nil", err: nil, expected: nil},
		{
			name:     "exclusion violation",
			err:      fmt.Errorf("insert: %w", &pq.Error{Code: "23P01", Constraint: "reservations_no_overlap"}),
			expected: model.ErrBookingConflict,
		},
		{
			name:     "missing room",
			err:      &pq.Error{Code: "23503", Constraint: constraintRoomFK},
			expected: model.ErrRoomNotFound,
		},
		{
			name:     "missing user",
			err:      &pq.Error{Code: "23503", Constraint: constraintUserFK},
			expected: model.ErrUserNotFound,
		},
		{
			name:     "sentinel from the locked check passes through",
			err:      model.ErrBookingConflict,
			expected: model.ErrBookingConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.err)
			if tt.expected == nil {
				assert.NoError(t, got)

				return
			}

			assert.ErrorIs(t, got, tt.expected)
		})
	}

	t.Run("unrelated storage error stays internal", func(t *testing.T) {
		raw := &pq.Error{Code: "08006"}
		got := translate(raw)

		var pqErr *pq.Error
		assert.True(t, errors.As(got, &pqErr))
	})
}
