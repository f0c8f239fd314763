package model_test

import (
	"roombook/internal/domains/reservation/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     model.Status
		to       model.Status
		expected bool
	}{
		{from: model.StatusPendingPayment, to: model.StatusBooked, expected: true},
		{from: model.StatusPendingPayment, to: model.StatusCancelled, expected: true},
		{from: model.StatusPendingPayment, to: model.StatusCompleted, expected: false},
		{from: model.StatusBooked, to: model.StatusCancelled, expected: true},
		{from: model.StatusBooked, to: model.StatusCompleted, expected: true},
		{from: model.StatusBooked, to: model.StatusPendingPayment, expected: false},
		{from: model.StatusCancelled, to: model.StatusBooked, expected: false},
		{from: model.StatusCompleted, to: model.StatusCancelled, expected: false},
		{from: model.StatusBooked, to: model.StatusBooked, expected: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_Predicates(t *testing.T) {
	assert.True(t, model.StatusPendingPayment.OwnerCancellable())
	assert.False(t, model.StatusBooked.OwnerCancellable())

	assert.True(t, model.StatusBooked.BlocksSlot())
	assert.True(t, model.StatusPendingPayment.BlocksSlot())
	assert.True(t, model.StatusCompleted.BlocksSlot())
	assert.False(t, model.StatusCancelled.BlocksSlot())

	assert.True(t, model.StatusCancelled.Terminal())
	assert.True(t, model.StatusCompleted.Terminal())
	assert.False(t, model.StatusPendingPayment.Terminal())
}

func TestParseStatus(t *testing.T) {
	status, err := model.ParseStatus("booked")
	require.NoError(t, err)
	assert.Equal(t, model.StatusBooked, status)

	_, err = model.ParseStatus("paid")
	assert.ErrorIs(t, err, model.ErrUnknownStatus)
}

func TestStatus_Scan(t *testing.T) {
	var status model.Status

	require.NoError(t, status.Scan([]byte("completed")))
	assert.Equal(t, model.StatusCompleted, status)

	assert.Error(t, status.Scan(7))
}
