package model

import (
	"net/http"
	"roombook/shared/failure"
)

var (
	ErrNegativePrice  = failure.New(http.StatusBadRequest, "price_per_hour must not be negative")
	ErrInvalidPrice   = failure.New(http.StatusBadRequest, "price_per_hour must be a decimal number")
	ErrRoomNotFound   = failure.New(http.StatusNotFound, "room not found")
	ErrRoomInUse      = failure.New(http.StatusConflict, "room still has reservations")
	ErrEmptyUpdate    = failure.New(http.StatusBadRequest, "update request cannot be empty")
	ErrStorageMissing = failure.New(http.StatusBadRequest, "image storage is not configured")
)
