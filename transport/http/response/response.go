// Package response writes the JSON envelopes every endpoint answers with:
// {"data": ...} on success, {"message": ...} for plain acknowledgements and
// {"error": ...} on failure.
package response

import (
	"bytes"
	"encoding/json"
	"net/http"
	"roombook/shared/constant"
	"roombook/shared/failure"
	"roombook/shared/logger"

	"github.com/rs/zerolog/log"
)

type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

type Error struct {
	Error *string `json:"error,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

func WithMessage(writer http.ResponseWriter, code int, message string) {
	write(writer, code, Message{Message: &message})
}

func WithJSON[T any](writer http.ResponseWriter, code int, payload T) {
	write(writer, code, Data[T]{Data: &payload})
}

// WithError answers with err's failure code. Internal errors are logged and
// replaced by a generic message.
func WithError(writer http.ResponseWriter, err error) {
	if failure.IsInternal(err) {
		logger.ErrorWithStack(err)
	}

	message := failure.PublicMessage(err, constant.ResponseErrorInternal)
	write(writer, failure.GetCode(err), Error{Error: &message})
}

func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

// write encodes before touching the writer so a marshal failure still yields
// a well-formed 500.
func write(writer http.ResponseWriter, code int, payload any) {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		log.Error().Err(err).Int("status", code).Msg("failed to encode response")

		code = http.StatusInternalServerError
		body.Reset()
		body.WriteString(`{"error":"` + constant.ResponseErrorInternal + `"}`)
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)

	if _, err := writer.Write(body.Bytes()); err != nil {
		log.Debug().Err(err).Msg("failed to write response")
	}
}
