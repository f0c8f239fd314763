package model

import (
	"database/sql/driver"
	"fmt"
	"slices"
)

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusBooked         Status = "booked"
	StatusCancelled      Status = "cancelled"
	StatusCompleted      Status = "completed"
)

// transitions lists the statuses each status may move to in place.
// A pending reservation leaves the table when its owner cancels it, which is
// a delete rather than a transition.
var transitions = map[Status][]Status{
	StatusPendingPayment: {StatusBooked, StatusCancelled},
	StatusBooked:         {StatusCancelled, StatusCompleted},
}

func ParseStatus(value string) (Status, error) {
	status := Status(value)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, value)
	}

	return status, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPendingPayment, StatusBooked, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether s may be changed to next.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// BlocksSlot reports whether a reservation in this status occupies its window.
func (s Status) BlocksSlot() bool {
	return s != StatusCancelled
}

// OwnerCancellable reports whether the owner may withdraw the reservation.
func (s Status) OwnerCancellable() bool {
	return s == StatusPendingPayment
}

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		*s = Status(v)
	case string:
		*s = Status(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", src)
	}

	return nil
}
