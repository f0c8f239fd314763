package service_test

import (
	"context"
	"errors"
	"roombook/config"
	otelMocks "roombook/infras/otel/mocks"
	"roombook/internal/domains/reservation/mocks"
	"roombook/internal/domains/reservation/model"
	"roombook/internal/domains/reservation/model/dto"
	"roombook/internal/domains/reservation/repository"
	"roombook/internal/domains/reservation/schedule"
	"roombook/internal/domains/reservation/service"
	roomMocks "roombook/internal/domains/room/mocks"
	roomModel "roombook/internal/domains/room/model"
	"roombook/shared"
	cacheMocks "roombook/shared/cache/mocks"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	notifierMocks "roombook/shared/notifier/mocks"
	"roombook/shared/role"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	roomID        = "7f6c2a52-4a8e-4a53-9d2e-0b7f5a1c9e01"
	reservationID = "b3e1f0d4-2c4b-4f7a-8d35-6a2c9e8f1a10"
	cacheStats    = "reservation:stats"
)

var (
	customer = role.Actor{UserID: "customer-1", Role: role.Customer}
	stranger = role.Actor{UserID: "customer-2", Role: role.Customer}
	admin    = role.Actor{UserID: "admin-1", Role: role.Admin}
)

type fixture struct {
	repo     *mocks.MockReservation
	rooms    *roomMocks.MockRoom
	notifier *notifierMocks.MockNotifier
	cache    *cacheMocks.MockRedisCache
	cfg      *config.Config
	svc      service.Reservation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:     mocks.NewMockReservation(ctrl),
		rooms:    roomMocks.NewMockRoom(ctrl),
		notifier: notifierMocks.NewMockNotifier(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
		cfg:      &config.Config{},
	}

	f.svc = service.New(f.repo, f.rooms, f.notifier, f.cfg, f.cache, otelMocks.NewOtel())

	return f
}

// expectChanged registers the stats invalidation and booking_updated event
// that follow a successful write. The returned channel closes on emission.
func (f *fixture) expectChanged() <-chan struct{} {
	done := make(chan struct{})

	f.cache.EXPECT().Delete(gomock.Any(), cacheStats).Return(nil)
	f.notifier.EXPECT().
		Notify(gomock.Any(), constant.EventBookingUpdated).
		DoAndReturn(func(context.Context, string) error {
			close(done)

			return nil
		})

	return done
}

func (f *fixture) expectRoom(price int64) roomModel.Room {
	room := roomModel.Room{ID: roomID, Name: "Orchid", PricePerHour: decimal.NewFromInt(price)}

	f.rooms.EXPECT().
		Get(gomock.Any(), shared.FilterByID(roomID, roomModel.FieldID, roomModel.TableName)).
		Return(room, nil)

	return room
}

func (f *fixture) expectConflicts(query model.ConflictQuery, ids ...string) {
	existing := make([]model.Reservation, len(ids))
	for i, id := range ids {
		existing[i] = model.Reservation{ID: id}
	}

	f.repo.EXPECT().
		GetAll(gomock.Any(), gDto.QueryParams{}, repository.ConflictFilter(query), model.FieldID).
		Return(existing, nil)
}

func (f *fixture) expectReservation(reservation model.Reservation) {
	f.repo.EXPECT().
		Get(gomock.Any(), shared.FilterByID(reservation.ID, model.FieldID, model.TableName)).
		Return(reservation, nil)
}

func waitFor(t *testing.T, done <-chan struct{}) {
	t.Helper()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("booking_updated was not emitted")
	}
}

func date(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := schedule.ParseDate(value)
	require.NoError(t, err)

	return parsed
}

func interval(t *testing.T, start, end string) schedule.Interval {
	t.Helper()

	parsed, err := schedule.ParseInterval(start, end)
	require.NoError(t, err)

	return parsed
}

func existing(t *testing.T, status model.Status) model.Reservation {
	t.Helper()

	return model.Reservation{
		ID:              reservationID,
		UserID:          customer.UserID,
		RoomID:          roomID,
		ReservationDate: date(t, "2025-03-14"),
		StartTime:       schedule.MustParseClockTime("09:00"),
		EndTime:         schedule.MustParseClockTime("10:00"),
		Status:          status,
		TotalPrice:      decimal.NewFromInt(100),
	}
}

func createRequest(start, end string) dto.CreateReservationRequest {
	return dto.CreateReservationRequest{
		RoomID:          roomID,
		ReservationDate: "2025-03-14",
		StartTime:       start,
		EndTime:         end,
	}
}

func TestCreate_PricesTheWindow(t *testing.T) {
	f := newFixture(t)

	f.expectConflicts(model.ConflictQuery{RoomID: roomID, DateFrom: date(t, "2025-03-14"), Interval: interval(t, "09:00", "11:30")})
	f.expectRoom(100)

	var stored model.Reservation
	f.repo.EXPECT().InsertExclusive(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, reservation model.Reservation) error {
		stored = reservation

		return nil
	})

	done := f.expectChanged()

	res, err := f.svc.Create(context.Background(), customer, createRequest("09:00", "11:30"))
	require.NoError(t, err)
	waitFor(t, done)

	assert.Equal(t, "250.00", res.TotalPrice)
	assert.Equal(t, "pending_payment", res.Status)
	assert.Equal(t, "Orchid", res.RoomName)
	assert.Equal(t, customer.UserID, stored.UserID)
	assert.Equal(t, model.StatusPendingPayment, stored.Status)
	assert.True(t, decimal.NewFromInt(250).Equal(stored.TotalPrice))
	assert.NotEmpty(t, stored.ID)
}

func TestCreate_RejectsOverlapWithBookedReservation(t *testing.T) {
	f := newFixture(t)

	f.expectConflicts(model.ConflictQuery{RoomID: roomID, DateFrom: date(t, "2025-03-14"), Interval: interval(t, "09:30", "10:30")}, reservationID)

	_, err := f.svc.Create(context.Background(), customer, createRequest("09:30", "10:30"))

	assert.ErrorIs(t, err, model.ErrBookingConflict)
}

func TestCreate_TouchingWindowIsFree(t *testing.T) {
	f := newFixture(t)

	// The detector is asked about [10:00, 11:00); an existing [09:00, 10:00)
	// does not match the half-open filter, so storage returns nothing.
	f.expectConflicts(model.ConflictQuery{RoomID: roomID, DateFrom: date(t, "2025-03-14"), Interval: interval(t, "10:00", "11:00")})
	f.expectRoom(80)
	f.repo.EXPECT().InsertExclusive(gomock.Any(), gomock.Any()).Return(nil)

	done := f.expectChanged()

	res, err := f.svc.Create(context.Background(), customer, createRequest("10:00", "11:00"))
	require.NoError(t, err)
	waitFor(t, done)

	assert.Equal(t, "80.00", res.TotalPrice)
}

func TestCreate_Failures(t *testing.T) {
	tests := []struct {
		name        string
		actor       role.Actor
		req         dto.CreateReservationRequest
		setupMock   func(t *testing.T, f *fixture)
		expectedErr error
	}{
		{
			name:        "inverted window",
			actor:       customer,
			req:         createRequest("11:00", "10:00"),
			expectedErr: model.ErrInvalidInterval,
		},
		{
			name:        "zero length window",
			actor:       customer,
			req:         createRequest("10:00", "10:00"),
			expectedErr: model.ErrInvalidInterval,
		},
		{
			name:        "malformed time",
			actor:       customer,
			req:         createRequest("9:00", "10:00"),
			expectedErr: model.ErrMalformedTime,
		},
		{
			name:  "customer booking for someone else",
			actor: customer,
			req: func() dto.CreateReservationRequest {
				req := createRequest("09:00", "10:00")
				req.UserID = stranger.UserID

				return req
			}(),
			expectedErr: model.ErrForbidden,
		},
		{
			name:  "customer skipping payment",
			actor: customer,
			req: func() dto.CreateReservationRequest {
				req := createRequest("09:00", "10:00")
				req.Status = string(model.StatusBooked)

				return req
			}(),
			expectedErr: model.ErrForbidden,
		},
		{
			name:  "unknown room",
			actor: customer,
			req:   createRequest("09:00", "10:00"),
			setupMock: func(t *testing.T, f *fixture) {
				f.expectConflicts(model.ConflictQuery{RoomID: roomID, DateFrom: date(t, "2025-03-14"), Interval: interval(t, "09:00", "10:00")})
				f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roomModel.Room{}, nil)
			},
			expectedErr: model.ErrRoomNotFound,
		},
		{
			name:  "race lost at storage",
			actor: customer,
			req:   createRequest("09:00", "10:00"),
			setupMock: func(t *testing.T, f *fixture) {
				f.expectConflicts(model.ConflictQuery{RoomID: roomID, DateFrom: date(t, "2025-03-14"), Interval: interval(t, "09:00", "10:00")})
				f.expectRoom(100)
				f.repo.EXPECT().InsertExclusive(gomock.Any(), gomock.Any()).Return(model.ErrBookingConflict)
			},
			expectedErr: model.ErrBookingConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setupMock != nil {
				tt.setupMock(t, f)
			}

			_, err := f.svc.Create(context.Background(), tt.actor, tt.req)

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestCreate_AdminBooksForCustomer(t *testing.T) {
	f := newFixture(t)

	req := createRequest("13:00", "14:00")
	req.UserID = customer.UserID
	req.Status = string(model.StatusBooked)

	f.expectConflicts(model.ConflictQuery{RoomID: roomID, DateFrom: date(t, "2025-03-14"), Interval: interval(t, "13:00", "14:00")})
	f.expectRoom(100)
	f.repo.EXPECT().InsertExclusive(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, reservation model.Reservation) error {
		assert.Equal(t, customer.UserID, reservation.UserID)
		assert.Equal(t, admin.UserID, reservation.CreatedBy)
		assert.Equal(t, model.StatusBooked, reservation.Status)

		return nil
	})

	done := f.expectChanged()

	_, err := f.svc.Create(context.Background(), admin, req)
	require.NoError(t, err)
	waitFor(t, done)
}

func TestCreate_StorageFailureIsInternal(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	_, err := f.svc.Create(context.Background(), customer, createRequest("09:00", "10:00"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrBookingConflict)
}

func TestUpdate_UnchangedWindowExcludesItself(t *testing.T) {
	f := newFixture(t)
	current := existing(t, model.StatusPendingPayment)

	f.expectReservation(current)
	f.expectConflicts(model.ConflictQuery{
		RoomID:    roomID,
		DateFrom:  current.ReservationDate,
		Interval:  current.Interval(),
		ExcludeID: reservationID,
	})
	f.expectRoom(100)
	f.repo.EXPECT().
		UpdateExclusive(gomock.Any(), current, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, next model.Reservation, fields map[string]any) error {
			assert.Equal(t, current.Interval(), next.Interval())
			assert.Equal(t, current.StartTime, fields[model.FieldStartTime])

			return nil
		})

	done := f.expectChanged()

	res, err := f.svc.Update(context.Background(), customer, reservationID, dto.UpdateReservationRequest{
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	require.NoError(t, err)
	waitFor(t, done)

	assert.Equal(t, "100.00", res.TotalPrice)
}

func TestUpdate_RepricesMovedWindow(t *testing.T) {
	f := newFixture(t)
	current := existing(t, model.StatusPendingPayment)

	f.expectReservation(current)
	f.expectConflicts(model.ConflictQuery{
		RoomID:    roomID,
		DateFrom:  current.ReservationDate,
		Interval:  interval(t, "09:00", "10:30"),
		ExcludeID: reservationID,
	})
	f.expectRoom(40)
	f.repo.EXPECT().
		UpdateExclusive(gomock.Any(), current, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, next model.Reservation, fields map[string]any) error {
			assert.True(t, decimal.NewFromInt(60).Equal(next.TotalPrice))
			assert.Equal(t, next.TotalPrice, fields[model.FieldTotalPrice])
			assert.NotContains(t, fields, model.FieldStatus)

			return nil
		})

	done := f.expectChanged()

	res, err := f.svc.Update(context.Background(), customer, reservationID, dto.UpdateReservationRequest{EndTime: "10:30"})
	require.NoError(t, err)
	waitFor(t, done)

	assert.Equal(t, "60.00", res.TotalPrice)
}

func TestUpdate_StatusOnlyKeepsPrice(t *testing.T) {
	f := newFixture(t)
	current := existing(t, model.StatusPendingPayment)

	f.expectReservation(current)
	f.expectConflicts(model.ConflictQuery{
		RoomID:    roomID,
		DateFrom:  current.ReservationDate,
		Interval:  current.Interval(),
		ExcludeID: reservationID,
	})
	// The room rate changed since the reservation was priced.
	f.expectRoom(500)
	f.repo.EXPECT().
		UpdateExclusive(gomock.Any(), current, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, next model.Reservation, fields map[string]any) error {
			assert.Equal(t, model.StatusBooked, next.Status)
			assert.Equal(t, model.StatusBooked, fields[model.FieldStatus])
			assert.True(t, current.TotalPrice.Equal(next.TotalPrice))

			return nil
		})

	done := f.expectChanged()

	_, err := f.svc.Update(context.Background(), admin, reservationID, dto.UpdateReservationRequest{Status: "booked"})
	require.NoError(t, err)
	waitFor(t, done)
}

func TestUpdate_RowChangedSinceRead(t *testing.T) {
	tests := []struct {
		name        string
		lockErr     error
		expectedErr error
	}{
		{name: "confirmed meanwhile", lockErr: model.ErrInvalidState, expectedErr: model.ErrInvalidState},
		{name: "deleted meanwhile", lockErr: model.ErrReservationNotFound, expectedErr: model.ErrReservationNotFound},
		{name: "slot taken meanwhile", lockErr: model.ErrBookingConflict, expectedErr: model.ErrBookingConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			current := existing(t, model.StatusPendingPayment)

			f.expectReservation(current)
			f.expectConflicts(model.ConflictQuery{
				RoomID:    roomID,
				DateFrom:  current.ReservationDate,
				Interval:  interval(t, "09:00", "10:30"),
				ExcludeID: reservationID,
			})
			f.expectRoom(40)
			f.repo.EXPECT().UpdateExclusive(gomock.Any(), current, gomock.Any(), gomock.Any()).Return(tt.lockErr)

			_, err := f.svc.Update(context.Background(), customer, reservationID, dto.UpdateReservationRequest{EndTime: "10:30"})

			assert.Equal(t, tt.expectedErr, err)
		})
	}
}

func TestUpdate_Failures(t *testing.T) {
	tests := []struct {
		name        string
		actor       role.Actor
		current     model.Status
		req         dto.UpdateReservationRequest
		setupMock   func(t *testing.T, f *fixture, current model.Reservation)
		expectedErr error
	}{
		{
			name:        "nothing to change",
			actor:       customer,
			req:         dto.UpdateReservationRequest{},
			expectedErr: model.ErrEmptyUpdate,
		},
		{
			name:    "missing reservation",
			actor:   customer,
			current: model.StatusPendingPayment,
			req:     dto.UpdateReservationRequest{EndTime: "11:00"},
			setupMock: func(_ *testing.T, f *fixture, _ model.Reservation) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{}, nil)
			},
			expectedErr: model.ErrReservationNotFound,
		},
		{
			name:    "not the owner",
			actor:   stranger,
			current: model.StatusPendingPayment,
			req:     dto.UpdateReservationRequest{EndTime: "11:00"},
			setupMock: func(_ *testing.T, f *fixture, current model.Reservation) {
				f.expectReservation(current)
			},
			expectedErr: model.ErrForbidden,
		},
		{
			name:    "customer changing status",
			actor:   customer,
			current: model.StatusPendingPayment,
			req:     dto.UpdateReservationRequest{Status: "booked"},
			setupMock: func(_ *testing.T, f *fixture, current model.Reservation) {
				f.expectReservation(current)
			},
			expectedErr: model.ErrForbidden,
		},
		{
			name:    "status moving backwards",
			actor:   admin,
			current: model.StatusBooked,
			req:     dto.UpdateReservationRequest{Status: "pending_payment"},
			setupMock: func(_ *testing.T, f *fixture, current model.Reservation) {
				f.expectReservation(current)
			},
			expectedErr: model.ErrInvalidState,
		},
		{
			name:    "new window collides",
			actor:   customer,
			current: model.StatusPendingPayment,
			req:     dto.UpdateReservationRequest{EndTime: "12:00"},
			setupMock: func(t *testing.T, f *fixture, current model.Reservation) {
				f.expectReservation(current)
				f.expectConflicts(model.ConflictQuery{
					RoomID:    roomID,
					DateFrom:  current.ReservationDate,
					Interval:  interval(t, "09:00", "12:00"),
					ExcludeID: reservationID,
				}, "another-reservation")
			},
			expectedErr: model.ErrBookingConflict,
		},
		{
			name:    "window inverted by the change",
			actor:   customer,
			current: model.StatusPendingPayment,
			req:     dto.UpdateReservationRequest{StartTime: "10:00"},
			setupMock: func(_ *testing.T, f *fixture, current model.Reservation) {
				f.expectReservation(current)
			},
			expectedErr: model.ErrInvalidInterval,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			current := existing(t, tt.current)

			if tt.setupMock != nil {
				tt.setupMock(t, f, current)
			}

			_, err := f.svc.Update(context.Background(), tt.actor, reservationID, tt.req)

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestCancel(t *testing.T) {
	t.Run("owner withdraws a pending reservation", func(t *testing.T) {
		f := newFixture(t)

		f.expectReservation(existing(t, model.StatusPendingPayment))
		f.repo.EXPECT().DeletePending(gomock.Any(), reservationID).Return(nil)

		done := f.expectChanged()

		require.NoError(t, f.svc.Cancel(context.Background(), customer, reservationID))
		waitFor(t, done)
	})

	t.Run("confirmed after it was read", func(t *testing.T) {
		f := newFixture(t)

		f.expectReservation(existing(t, model.StatusPendingPayment))
		f.repo.EXPECT().DeletePending(gomock.Any(), reservationID).Return(model.ErrInvalidState)

		err := f.svc.Cancel(context.Background(), customer, reservationID)

		assert.Equal(t, model.ErrInvalidState, err)
	})

	t.Run("storage failure is internal", func(t *testing.T) {
		f := newFixture(t)

		f.expectReservation(existing(t, model.StatusPendingPayment))
		f.repo.EXPECT().DeletePending(gomock.Any(), reservationID).Return(errors.New("connection reset"))

		err := f.svc.Cancel(context.Background(), customer, reservationID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to cancel reservation")
	})

	tests := []struct {
		name        string
		actor       role.Actor
		status      model.Status
		expectedErr error
	}{
		{name: "booked reservation", actor: customer, status: model.StatusBooked, expectedErr: model.ErrInvalidState},
		{name: "booked reservation as admin", actor: admin, status: model.StatusBooked, expectedErr: model.ErrInvalidState},
		{name: "completed reservation", actor: customer, status: model.StatusCompleted, expectedErr: model.ErrInvalidState},
		{name: "someone else's reservation", actor: stranger, status: model.StatusPendingPayment, expectedErr: model.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectReservation(existing(t, tt.status))

			err := f.svc.Cancel(context.Background(), tt.actor, reservationID)

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}

	t.Run("missing reservation", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{}, nil)

		err := f.svc.Cancel(context.Background(), customer, reservationID)

		assert.ErrorIs(t, err, model.ErrReservationNotFound)
	})
}

func TestTransition(t *testing.T) {
	t.Run("admin confirms payment", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetDetail(gomock.Any(), gomock.Any()).Return(model.ReservationDetail{
			Reservation: existing(t, model.StatusPendingPayment),
			RoomName:    "Orchid",
		}, nil)
		f.repo.EXPECT().
			SetStatus(gomock.Any(), reservationID, model.StatusPendingPayment, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ model.Status, fields map[string]any) error {
				assert.Equal(t, model.StatusBooked, fields[model.FieldStatus])

				return nil
			})

		done := f.expectChanged()

		res, err := f.svc.Transition(context.Background(), admin, reservationID, dto.TransitionRequest{Status: "booked"})
		require.NoError(t, err)
		waitFor(t, done)

		assert.Equal(t, "booked", res.Status)
		assert.Equal(t, "Orchid", res.RoomName)
	})

	t.Run("customer cannot transition", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Transition(context.Background(), customer, reservationID, dto.TransitionRequest{Status: "booked"})

		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("status moved after it was read", func(t *testing.T) {
		tests := []struct {
			name        string
			writeErr    error
			expectedErr error
		}{
			{name: "expired by the sweep", writeErr: model.ErrInvalidState, expectedErr: model.ErrInvalidState},
			{name: "slot rejected by the exclusion constraint", writeErr: model.ErrBookingConflict, expectedErr: model.ErrBookingConflict},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)

				f.repo.EXPECT().GetDetail(gomock.Any(), gomock.Any()).Return(model.ReservationDetail{
					Reservation: existing(t, model.StatusPendingPayment),
				}, nil)
				f.repo.EXPECT().SetStatus(gomock.Any(), reservationID, model.StatusPendingPayment, gomock.Any()).Return(tt.writeErr)

				_, err := f.svc.Transition(context.Background(), admin, reservationID, dto.TransitionRequest{Status: "booked"})

				assert.Equal(t, tt.expectedErr, err)
			})
		}
	})

	t.Run("terminal status", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().GetDetail(gomock.Any(), gomock.Any()).Return(model.ReservationDetail{
			Reservation: existing(t, model.StatusCancelled),
		}, nil)

		_, err := f.svc.Transition(context.Background(), admin, reservationID, dto.TransitionRequest{Status: "booked"})

		assert.ErrorIs(t, err, model.ErrInvalidState)
	})
}

func TestRemove(t *testing.T) {
	t.Run("admin removes a booked reservation", func(t *testing.T) {
		f := newFixture(t)

		f.expectReservation(existing(t, model.StatusBooked))
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		done := f.expectChanged()

		require.NoError(t, f.svc.Remove(context.Background(), admin, reservationID))
		waitFor(t, done)
	})

	t.Run("customer cannot remove", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Remove(context.Background(), customer, reservationID)

		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}

func TestGet(t *testing.T) {
	detail := model.ReservationDetail{Reservation: existing(t, model.StatusBooked), RoomName: "Orchid"}

	t.Run("owner", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().GetDetail(gomock.Any(), gomock.Any()).Return(detail, nil)

		res, err := f.svc.Get(context.Background(), customer, reservationID)
		require.NoError(t, err)
		assert.Equal(t, reservationID, res.ID)
	})

	t.Run("stranger", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().GetDetail(gomock.Any(), gomock.Any()).Return(detail, nil)

		_, err := f.svc.Get(context.Background(), stranger, reservationID)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}

func TestListing(t *testing.T) {
	details := []model.ReservationDetail{{Reservation: existing(t, model.StatusBooked)}}

	t.Run("customer lists own reservations newest first", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().CountDetails(gomock.Any(), gomock.Any()).Return(1, nil)
		f.repo.EXPECT().
			GetAllDetails(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.ReservationDetail, error) {
				assert.Equal(t, "reservations.reservation_date", params.SortBy)
				assert.Equal(t, gDto.SortDirDesc, params.SortDir)

				where, args := filter.GetWhereClause()
				assert.Contains(t, where, "reservations.user_id")
				assert.Contains(t, args, "user_id")

				return details, nil
			})

		res, err := f.svc.ListForUser(context.Background(), customer, customer.UserID, gDto.QueryParams{Page: 1, Limit: 10, SortBy: "password"})
		require.NoError(t, err)
		assert.Equal(t, 1, res.TotalData)
		assert.Len(t, res.Reservations, 1)
	})

	t.Run("customer cannot list another user", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ListForUser(context.Background(), customer, stranger.UserID, gDto.QueryParams{})
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("only admins list everything", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ListAll(context.Background(), customer, gDto.QueryParams{})
		assert.ErrorIs(t, err, model.ErrForbidden)

		f.repo.EXPECT().CountDetails(gomock.Any(), gDto.FilterGroup{}).Return(1, nil)
		f.repo.EXPECT().GetAllDetails(gomock.Any(), gomock.Any(), gDto.FilterGroup{}).Return(details, nil)

		res, err := f.svc.ListAll(context.Background(), admin, gDto.QueryParams{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, res.Reservations, 1)
	})
}

func TestAvailability(t *testing.T) {
	rooms := []roomModel.Room{
		{ID: "room-a", Name: "Aster", PricePerHour: decimal.NewFromInt(50)},
		{ID: "room-b", Name: "Birch", PricePerHour: decimal.NewFromInt(75)},
	}

	req := dto.AvailabilityRequest{StartDate: "2025-03-14", EndDate: "2025-03-16", StartTime: "10:00", EndTime: "12:00"}

	busyQuery := model.ConflictQuery{
		DateFrom: date(t, "2025-03-14"),
		DateTo:   date(t, "2025-03-16"),
		Interval: interval(t, "10:00", "12:00"),
	}

	t.Run("no reservations in range", func(t *testing.T) {
		f := newFixture(t)

		f.rooms.EXPECT().GetAll(gomock.Any(), gomock.Any(), gDto.FilterGroup{}).Return(rooms, nil)
		f.repo.EXPECT().
			GetAll(gomock.Any(), gDto.QueryParams{}, repository.ConflictFilter(busyQuery), model.FieldRoomID).
			Return(nil, nil)

		res, err := f.svc.Availability(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, res, 2)

		for _, room := range res {
			assert.True(t, room.Available, room.Name)
		}
	})

	t.Run("room with an overlapping reservation", func(t *testing.T) {
		f := newFixture(t)

		f.rooms.EXPECT().GetAll(gomock.Any(), gomock.Any(), gDto.FilterGroup{}).Return(rooms, nil)
		f.repo.EXPECT().
			GetAll(gomock.Any(), gDto.QueryParams{}, repository.ConflictFilter(busyQuery), model.FieldRoomID).
			Return([]model.Reservation{{RoomID: "room-b"}, {RoomID: "room-b"}}, nil)

		res, err := f.svc.Availability(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, []dto.RoomAvailability{
			{ID: "room-a", Name: "Aster", PricePerHour: "50.00", Available: true},
			{ID: "room-b", Name: "Birch", PricePerHour: "75.00", Available: false},
		}, res)
	})

	t.Run("range too large", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.Reservation.MaxAvailabilityDays = 2

		_, err := f.svc.Availability(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrDateRangeTooLarge)
	})

	t.Run("inverted window", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Availability(context.Background(), dto.AvailabilityRequest{
			StartDate: "2025-03-14", EndDate: "2025-03-14", StartTime: "12:00", EndTime: "10:00",
		})
		assert.ErrorIs(t, err, model.ErrInvalidInterval)
	})
}

func TestDashboardStats(t *testing.T) {
	t.Run("customers are refused", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.DashboardStats(context.Background(), customer)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("served from cache", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), cacheStats, gomock.Any()).DoAndReturn(func(_ context.Context, _ string, value any) error {
			value.(*dto.DashboardStatsResponse).TotalRooms = 4

			return nil
		})

		res, err := f.svc.DashboardStats(context.Background(), admin)
		require.NoError(t, err)
		assert.Equal(t, 4, res.TotalRooms)
	})

	t.Run("aggregated over the window", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.Reservation.StatsWindowDays = 3

		saved := make(chan struct{})

		f.cache.EXPECT().Get(gomock.Any(), cacheStats, gomock.Any()).Return(errors.New("redis: nil"))
		f.rooms.EXPECT().Count(gomock.Any(), gDto.FilterGroup{}).Return(4, nil)
		f.repo.EXPECT().Count(gomock.Any(), gDto.FilterGroup{}).Return(9, nil)
		f.repo.EXPECT().DailyStats(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, from, to time.Time) ([]model.DailyStat, error) {
			assert.Equal(t, 2*24*time.Hour, to.Sub(from))

			return []model.DailyStat{{Date: to, Count: 2, Revenue: decimal.RequireFromString("99.5")}}, nil
		})
		f.cache.EXPECT().Save(gomock.Any(), cacheStats, gomock.Any(), 60).DoAndReturn(func(context.Context, string, any, int) error {
			close(saved)

			return nil
		})

		res, err := f.svc.DashboardStats(context.Background(), admin)
		require.NoError(t, err)
		waitFor(t, saved)

		assert.Equal(t, 4, res.TotalRooms)
		assert.Equal(t, 9, res.TotalReservations)
		require.Len(t, res.Revenue, 3)
		assert.Equal(t, "0.00", res.Revenue[0].Total)
		assert.Equal(t, "99.50", res.Revenue[2].Total)
		assert.Equal(t, 2, res.Bookings[2].Count)
	})
}
