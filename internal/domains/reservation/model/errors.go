package model

import (
	"net/http"
	"roombook/internal/domains/reservation/schedule"
	roomModel "roombook/internal/domains/room/model"
	"roombook/shared/failure"
)

var (
	ErrMalformedTime   = schedule.ErrMalformedTime
	ErrMalformedDate   = schedule.ErrMalformedDate
	ErrInvalidInterval = schedule.ErrInvalidInterval

	ErrRoomNotFound        = roomModel.ErrRoomNotFound
	ErrReservationNotFound = failure.New(http.StatusNotFound, "reservation not found")
	ErrBookingConflict     = failure.New(http.StatusConflict, "room is already reserved for the requested time")
	ErrForbidden           = failure.New(http.StatusForbidden, "you are not allowed to act on this reservation")
	ErrInvalidState        = failure.New(http.StatusConflict, "reservation status does not allow this action")
	ErrUserNotFound        = failure.New(http.StatusNotFound, "user not found")
	ErrDateRangeTooLarge   = failure.New(http.StatusBadRequest, "date range is too large")
	ErrInvalidDateRange    = failure.New(http.StatusBadRequest, "end date must not be before start date")
	ErrEmptyUpdate         = failure.New(http.StatusBadRequest, "no fields to update")
	ErrUnknownStatus       = failure.New(http.StatusBadRequest, "unknown reservation status")
)
