package response_test

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"roombook/shared/constant"
	"roombook/shared/failure"
	"roombook/transport/http/response"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	response.WithJSON(rec, http.StatusCreated, map[string]string{"id": "r-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, constant.ContentTypeJSON, rec.Header().Get(constant.RequestHeaderContentType))
	assert.Equal(t, map[string]any{"data": map[string]any{"id": "r-1"}}, decode(t, rec))
}

func TestWithMessage(t *testing.T) {
	rec := httptest.NewRecorder()

	response.WithMessage(rec, http.StatusOK, "Reservation cancelled successfully")

	assert.Equal(t, map[string]any{"message": "Reservation cancelled successfully"}, decode(t, rec))
}

func TestWithError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "client failure keeps its message",
			err:      failure.New(http.StatusConflict, "room is already reserved for the requested time"),
			wantCode: http.StatusConflict,
			wantBody: "room is already reserved for the requested time",
		},
		{
			name:     "wrapped failure",
			err:      errors.Join(errors.New("insert"), failure.ErrForbidden),
			wantCode: http.StatusForbidden,
			wantBody: failure.ErrForbidden.Message,
		},
		{
			name:     "internal error is hidden",
			err:      errors.New("pq: connection refused"),
			wantCode: http.StatusInternalServerError,
			wantBody: constant.ResponseErrorInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			response.WithError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, map[string]any{"error": tt.wantBody}, decode(t, rec))
		})
	}
}

func TestWithJSON_UnencodablePayload(t *testing.T) {
	rec := httptest.NewRecorder()

	response.WithJSON(rec, http.StatusOK, math.Inf(1))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]any{"error": constant.ResponseErrorInternal}, decode(t, rec))
}

func TestCannedResponses(t *testing.T) {
	tests := []struct {
		write    func(http.ResponseWriter)
		wantCode int
		wantBody string
	}{
		{write: response.WithRequestLimitExceeded, wantCode: http.StatusTooManyRequests, wantBody: constant.ResponseErrorRequestLimitExceeded},
		{write: response.WithPreparingShutdown, wantCode: http.StatusServiceUnavailable, wantBody: constant.ResponseErrorPrepareShutdown},
		{write: response.WithUnhealthy, wantCode: http.StatusServiceUnavailable, wantBody: constant.ResponseErrorUnhealthy},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()

		tt.write(rec)

		assert.Equal(t, tt.wantCode, rec.Code)
		assert.Equal(t, map[string]any{"message": tt.wantBody}, decode(t, rec))
	}
}
