package model

import (
	"net/http"
	"roombook/shared/failure"
)

var (
	ErrUserNotFound = failure.New(http.StatusNotFound, "user not found")
	ErrForbidden    = failure.New(http.StatusForbidden, "you are not allowed to access this user")

	ErrEmailTaken     = failure.New(http.StatusBadRequest, "email already registered")
	ErrUsernameTaken  = failure.New(http.StatusBadRequest, "username already taken")
	ErrBadCredentials = failure.New(http.StatusBadRequest, "invalid email or password")
	ErrWrongPassword  = failure.New(http.StatusBadRequest, "current password is incorrect")
	ErrRoleNotAllowed = failure.New(http.StatusForbidden, "role can only be granted by an internal service")
	ErrInvalidRefresh = failure.New(http.StatusUnauthorized, "invalid refresh token")
)
