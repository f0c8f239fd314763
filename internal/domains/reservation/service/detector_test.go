package service_test

import (
	"context"
	"errors"
	"roombook/internal/domains/reservation/mocks"
	"roombook/internal/domains/reservation/model"
	"roombook/internal/domains/reservation/repository"
	"roombook/internal/domains/reservation/service"
	gDto "roombook/shared/dto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDetector_FindConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReservation(ctrl)
	detector := service.NewDetector(repo)

	query := model.ConflictQuery{
		RoomID:   roomID,
		DateFrom: date(t, "2025-03-14"),
		Interval: interval(t, "09:00", "10:00"),
	}

	repo.EXPECT().
		GetAll(gomock.Any(), gDto.QueryParams{}, repository.ConflictFilter(query), model.FieldID).
		Return([]model.Reservation{{ID: "r-1"}, {ID: "r-2"}}, nil)

	ids, err := detector.FindConflicts(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, []string{"r-1", "r-2"}, ids)

	repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	ids, err = detector.FindConflicts(context.Background(), query)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDetector_BusyRoomIDs(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReservation(ctrl)
	detector := service.NewDetector(repo)

	from, to := date(t, "2025-03-14"), date(t, "2025-03-20")
	window := interval(t, "10:00", "12:00")

	repo.EXPECT().
		GetAll(gomock.Any(), gDto.QueryParams{}, repository.ConflictFilter(model.ConflictQuery{
			DateFrom: from,
			DateTo:   to,
			Interval: window,
		}), model.FieldRoomID).
		Return([]model.Reservation{{RoomID: "room-a"}, {RoomID: "room-b"}, {RoomID: "room-a"}}, nil)

	busy, err := detector.BusyRoomIDs(context.Background(), from, to, window)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"room-a": {}, "room-b": {}}, busy)

	repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

	_, err = detector.BusyRoomIDs(context.Background(), from, to, window)
	assert.Error(t, err)
}
