package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Reservation=MockReservationService

import (
	"context"
	"errors"
	"fmt"
	"roombook/config"
	"roombook/infras/otel"
	"roombook/internal/domains/reservation/model"
	"roombook/internal/domains/reservation/model/dto"
	"roombook/internal/domains/reservation/repository"
	"roombook/internal/domains/reservation/schedule"
	roomModel "roombook/internal/domains/room/model"
	roomRepo "roombook/internal/domains/room/repository"
	"roombook/shared"
	"roombook/shared/cache"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	gModel "roombook/shared/model"
	"roombook/shared/notifier"
	"roombook/shared/role"
	"roombook/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheStats = model.CacheKeyStats
)

type Reservation interface {
	Create(ctx context.Context, actor role.Actor, req dto.CreateReservationRequest) (dto.ReservationResponse, error)
	Update(ctx context.Context, actor role.Actor, id string, req dto.UpdateReservationRequest) (dto.ReservationResponse, error)
	// Cancel withdraws a reservation still awaiting payment. The row is removed.
	Cancel(ctx context.Context, actor role.Actor, id string) error
	Transition(ctx context.Context, actor role.Actor, id string, req dto.TransitionRequest) (dto.ReservationResponse, error)
	Remove(ctx context.Context, actor role.Actor, id string) error
	Get(ctx context.Context, actor role.Actor, id string) (dto.ReservationResponse, error)

	ListForUser(ctx context.Context, actor role.Actor, userID string, params gDto.QueryParams) (dto.GetReservationsResponse, error)
	ListAll(ctx context.Context, actor role.Actor, params gDto.QueryParams) (dto.GetReservationsResponse, error)
	Availability(ctx context.Context, req dto.AvailabilityRequest) ([]dto.RoomAvailability, error)
	DashboardStats(ctx context.Context, actor role.Actor) (dto.DashboardStatsResponse, error)
}

type serviceImpl struct {
	repo     repository.Reservation
	rooms    roomRepo.Room
	detector Detector
	notifier notifier.Notifier
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(repo repository.Reservation, rooms roomRepo.Room, notifier notifier.Notifier, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Reservation {
	return &serviceImpl{
		repo:     repo,
		rooms:    rooms,
		detector: NewDetector(repo),
		notifier: notifier,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, actor role.Actor, req dto.CreateReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	owner := actor.UserID
	if req.UserID != constant.Empty && req.UserID != actor.UserID {
		if !actor.Role.CanBookForOthers() {
			return res, model.ErrForbidden
		}

		owner = req.UserID
	}

	status := model.StatusPendingPayment
	if req.Status != constant.Empty {
		if status, err = model.ParseStatus(req.Status); err != nil {
			return res, err //nolint:wrapcheck
		}

		if status != model.StatusPendingPayment && !actor.Role.CanSetStatus() {
			return res, model.ErrForbidden
		}
	}

	date, interval, err := req.Slot()
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if err = s.ensureFree(ctx, model.ConflictQuery{RoomID: req.RoomID, DateFrom: date, Interval: interval}); err != nil {
		return res, err
	}

	room, err := s.room(ctx, req.RoomID)
	if err != nil {
		return res, err
	}

	price, err := schedule.ComputeTotal(room.PricePerHour, interval.Start, interval.End)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	now := timezone.Now()
	reservation := model.Reservation{
		ID:              uuid.NewString(),
		UserID:          owner,
		RoomID:          room.ID,
		ReservationDate: date,
		StartTime:       interval.Start,
		EndTime:         interval.End,
		Status:          status,
		TotalPrice:      price,
		Metadata:        gModel.Created(actor.UserID, now),
	}

	if err = s.repo.InsertExclusive(ctx, reservation); err != nil {
		log.Error().Err(err).Str("room_id", room.ID).Msg("failed to create reservation")

		return res, fmt.Errorf("failed to create reservation: %w", err)
	}

	s.changed(ctx)

	res.FromModel(reservation)
	res.RoomName = room.Name

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, actor role.Actor, id string, req dto.UpdateReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return res, model.ErrEmptyUpdate
	}

	current, err := s.accessible(ctx, actor, id)
	if err != nil {
		return res, err
	}

	next, err := req.Apply(current)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if req.Status != constant.Empty {
		if !actor.Role.CanSetStatus() {
			return res, model.ErrForbidden
		}

		if next.Status, err = model.ParseStatus(req.Status); err != nil {
			return res, err //nolint:wrapcheck
		}

		if next.Status != current.Status && !current.Status.CanTransitionTo(next.Status) {
			return res, model.ErrInvalidState
		}
	}

	if next.Status.BlocksSlot() {
		err = s.ensureFree(ctx, model.ConflictQuery{
			RoomID:    next.RoomID,
			DateFrom:  next.ReservationDate,
			Interval:  next.Interval(),
			ExcludeID: next.ID,
		})
		if err != nil {
			return res, err
		}
	}

	room, err := s.room(ctx, next.RoomID)
	if err != nil {
		return res, err
	}

	if req.ChangesSlot() {
		next.TotalPrice, err = schedule.ComputeTotal(room.PricePerHour, next.StartTime, next.EndTime)
		if err != nil {
			return res, err //nolint:wrapcheck
		}
	}

	next.ModifiedAt = timezone.Now()
	next.ModifiedBy = actor.UserID

	fields := map[string]any{
		model.FieldRoomID:          next.RoomID,
		model.FieldReservationDate: next.ReservationDate,
		model.FieldStartTime:       next.StartTime,
		model.FieldEndTime:         next.EndTime,
		model.FieldTotalPrice:      next.TotalPrice,
		constant.FieldModifiedAt:   next.ModifiedAt,
		constant.FieldModifiedBy:   next.ModifiedBy,
	}

	// Status is only written when asked for, so a slot change never
	// overwrites a concurrent confirmation.
	if req.Status != constant.Empty {
		fields[model.FieldStatus] = next.Status
	}

	if err = s.repo.UpdateExclusive(ctx, current, next, fields); err != nil {
		return res, writeFailed(err, id, "update reservation")
	}

	s.changed(ctx)

	res.FromModel(next)
	res.RoomName = room.Name

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, actor role.Actor, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	current, err := s.accessible(ctx, actor, id)
	if err != nil {
		return err
	}

	if !current.Status.OwnerCancellable() {
		return model.ErrInvalidState
	}

	if err = s.repo.DeletePending(ctx, id); err != nil {
		return writeFailed(err, id, "cancel reservation")
	}

	s.changed(ctx)

	return nil
}

// Transition moves a reservation along the status machine, for example when
// a payment is confirmed. The window does not change, so no conflict check
// is needed.
func (s *serviceImpl) Transition(ctx context.Context, actor role.Actor, id string, req dto.TransitionRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Transition")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.Role.CanSetStatus() {
		return res, model.ErrForbidden
	}

	status, err := model.ParseStatus(req.Status)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.GetDetail(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get reservation")

		return res, fmt.Errorf("failed to get reservation: %w", err)
	}

	if current.ID == constant.Empty {
		return res, model.ErrReservationNotFound
	}

	if !current.Status.CanTransitionTo(status) {
		return res, model.ErrInvalidState
	}

	from := current.Status

	current.Status = status
	current.ModifiedAt = timezone.Now()
	current.ModifiedBy = actor.UserID

	fields := map[string]any{
		model.FieldStatus:        current.Status,
		constant.FieldModifiedAt: current.ModifiedAt,
		constant.FieldModifiedBy: current.ModifiedBy,
	}

	if err = s.repo.SetStatus(ctx, id, from, fields); err != nil {
		return res, writeFailed(err, id, "change reservation status")
	}

	s.changed(ctx)

	res.FromDetail(current)

	return res, nil
}

func (s *serviceImpl) Remove(ctx context.Context, actor role.Actor, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Remove")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.Role.CanActOnAnyReservation() {
		return model.ErrForbidden
	}

	if _, err = s.accessible(ctx, actor, id); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to remove reservation")

		return fmt.Errorf("failed to remove reservation: %w", err)
	}

	s.changed(ctx)

	return nil
}

func (s *serviceImpl) Get(ctx context.Context, actor role.Actor, id string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	detail, err := s.repo.GetDetail(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get reservation")

		return res, fmt.Errorf("failed to get reservation: %w", err)
	}

	if detail.ID == constant.Empty {
		return res, model.ErrReservationNotFound
	}

	if !actor.CanAccess(detail.UserID) {
		return res, model.ErrForbidden
	}

	res.FromDetail(detail)

	return res, nil
}

// accessible loads reservation id and checks that actor owns it or may act
// on any reservation.
func (s *serviceImpl) accessible(ctx context.Context, actor role.Actor, id string) (model.Reservation, error) {
	reservation, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get reservation")

		return reservation, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return reservation, model.ErrReservationNotFound
	}

	if !actor.CanAccess(reservation.UserID) {
		return reservation, model.ErrForbidden
	}

	return reservation, nil
}

// writeFailed logs and wraps storage errors. Reservation failures raised by
// the guarded writes are returned as they are.
func writeFailed(err error, id, action string) error {
	var known *failure.Failure
	if errors.As(err, &known) {
		return err
	}

	log.Error().Err(err).Str("id", id).Msg("failed to " + action)

	return fmt.Errorf("failed to %s: %w", action, err)
}

func (s *serviceImpl) ensureFree(ctx context.Context, query model.ConflictQuery) error {
	conflicts, err := s.detector.FindConflicts(ctx, query)
	if err != nil {
		log.Error().Err(err).Str("room_id", query.RoomID).Msg("failed to check reservation conflicts")

		return err
	}

	if len(conflicts) > 0 {
		log.Info().Str("room_id", query.RoomID).Strs("conflicts", conflicts).Msg("requested window is taken")

		return model.ErrBookingConflict
	}

	return nil
}

func (s *serviceImpl) room(ctx context.Context, id string) (roomModel.Room, error) {
	room, err := s.rooms.Get(ctx, shared.FilterByID(id, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to get room")

		return room, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return room, model.ErrRoomNotFound
	}

	return room, nil
}

// changed emits booking_updated and drops cached stats. Neither can fail the
// request.
func (s *serviceImpl) changed(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, cacheStats); err != nil {
			log.Error().Err(err).Msg("failed to delete reservation stats from cache")
		}

		if err := s.notifier.Notify(c, constant.EventBookingUpdated); err != nil {
			log.Warn().Err(err).Msg("failed to emit booking update")
		}
	}()
}
