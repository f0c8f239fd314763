package otel_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"roombook/infras/otel"
	"roombook/shared/failure"
)

func record(t *testing.T, fn func(scope otel.Scope)) tracetest.SpanStub {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))

	_, span := provider.Tracer("test").Start(context.Background(), "op")
	scope := otel.NewScope(span)
	fn(scope)
	scope.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	return tracetest.SpanStubFromReadOnlySpan(ended[0])
}

func attributeValue(stub tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, kv := range stub.Attributes {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}

	return attribute.Value{}, false
}

func TestScope_TraceError(t *testing.T) {
	t.Run("client failures keep the span healthy", func(t *testing.T) {
		conflict := failure.New(http.StatusConflict, "room is already booked")

		stub := record(t, func(scope otel.Scope) { scope.TraceError(conflict) })

		assert.NotEqual(t, codes.Error, stub.Status.Code)
		assert.Len(t, stub.Events, 1)

		code, ok := attributeValue(stub, "failure.code")
		require.True(t, ok)
		assert.Equal(t, int64(http.StatusConflict), code.AsInt64())
	})

	t.Run("internal errors fail the span", func(t *testing.T) {
		stub := record(t, func(scope otel.Scope) { scope.TraceError(errors.New("pq: connection reset")) })

		assert.Equal(t, codes.Error, stub.Status.Code)
		assert.Equal(t, "pq: connection reset", stub.Status.Description)
	})

	t.Run("nil is ignored", func(t *testing.T) {
		stub := record(t, func(scope otel.Scope) { scope.TraceIfError(nil) })

		assert.Empty(t, stub.Events)
		assert.Equal(t, codes.Unset, stub.Status.Code)
	})
}

func TestScope_SetAttributes(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	stub := record(t, func(scope otel.Scope) {
		scope.SetAttributes(map[string]any{
			"reservations.expired": 3,
			"room.id":              "r-1",
			"window.start":         at,
			"paid":                 true,
		})
	})

	expired, _ := attributeValue(stub, "reservations.expired")
	assert.Equal(t, int64(3), expired.AsInt64())

	start, _ := attributeValue(stub, "window.start")
	assert.Equal(t, "2025-03-14T09:00:00Z", start.AsString())

	paid, _ := attributeValue(stub, "paid")
	assert.True(t, paid.AsBool())
}
