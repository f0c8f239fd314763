// Package failure carries an HTTP status alongside an error message. Domain
// packages declare their sentinels with New and compare them with errors.Is.
package failure

import (
	"errors"
	"fmt"
	"net/http"
)

type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var (
	ErrForbidden    = New(http.StatusForbidden, "You don't have the required permissions")
	ErrUnauthorized = New(http.StatusUnauthorized, "Authentication required")
)

func New(code int, message string) *Failure {
	return &Failure{Code: code, Message: message}
}

func (e *Failure) Error() string {
	return e.Message
}

// BadRequest turns err into a 400. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return New(http.StatusBadRequest, err.Error())
}

func BadRequestf(format string, args ...any) error {
	return New(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

func Unauthorized(msg string) error {
	return New(http.StatusUnauthorized, msg)
}

// GetCode returns the status of the first Failure in err's chain, or 500.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// IsInternal reports whether err must not be shown to the caller.
func IsInternal(err error) bool {
	return GetCode(err) >= http.StatusInternalServerError
}

// PublicMessage is what a client may see for err. Internal errors collapse to
// fallback.
func PublicMessage(err error, fallback string) string {
	var fail *Failure
	if !errors.As(err, &fail) || fail.Code >= http.StatusInternalServerError {
		return fallback
	}

	return fail.Message
}
