package service

import (
	"context"
	"fmt"
	"roombook/internal/domains/reservation/model"
	"roombook/internal/domains/reservation/model/dto"
	roomModel "roombook/internal/domains/room/model"
	"roombook/shared/cache"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/role"
	"roombook/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	defaultMaxAvailabilityDays  = 31
	defaultStatsWindowDays      = 7
	defaultStatsCacheTTLSeconds = 60
)

var sortColumns = map[string]string{
	model.FieldReservationDate: model.TableName + "." + model.FieldReservationDate,
	model.FieldStartTime:       model.TableName + "." + model.FieldStartTime,
	model.FieldStatus:          model.TableName + "." + model.FieldStatus,
	model.FieldTotalPrice:      model.TableName + "." + model.FieldTotalPrice,
	constant.FieldCreatedAt:    model.TableName + "." + constant.FieldCreatedAt,
}

func (s *serviceImpl) ListForUser(ctx context.Context, actor role.Actor, userID string, params gDto.QueryParams) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListForUser")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.CanAccess(userID) {
		return res, model.ErrForbidden
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldUserID,
				Value:    userID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}

	return s.list(ctx, params, filter)
}

func (s *serviceImpl) ListAll(ctx context.Context, actor role.Actor, params gDto.QueryParams) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.Role.CanActOnAnyReservation() {
		return res, model.ErrForbidden
	}

	return s.list(ctx, params, gDto.FilterGroup{})
}

// list orders by reservation date, newest first, unless a known column is requested.
func (s *serviceImpl) list(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetReservationsResponse, err error) {
	params.RestrictSort(sortColumns, sortColumns[model.FieldReservationDate], gDto.SortDirDesc)

	total, err := s.repo.CountDetails(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	details, err := s.repo.GetAllDetails(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservations")

		return res, fmt.Errorf("failed to get reservations: %w", err)
	}

	res.FromDetails(details, total, params.Limit)

	return res, nil
}

// Availability reports, for every room, whether the window is free on every
// date of the requested range.
func (s *serviceImpl) Availability(ctx context.Context, req dto.AvailabilityRequest) (res []dto.RoomAvailability, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Availability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	from, to, interval, err := req.Window()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	maxDays := s.cfg.Reservation.MaxAvailabilityDays
	if maxDays <= 0 {
		maxDays = defaultMaxAvailabilityDays
	}

	if to.After(from.AddDate(0, 0, maxDays-1)) {
		return nil, model.ErrDateRangeTooLarge
	}

	rooms, err := s.rooms.GetAll(ctx, gDto.QueryParams{
		SortBy:  roomModel.TableName + "." + roomModel.FieldName,
		SortDir: gDto.SortDirAsc,
	}, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return nil, fmt.Errorf("failed to get rooms: %w", err)
	}

	busy, err := s.detector.BusyRoomIDs(ctx, from, to, interval)
	if err != nil {
		log.Error().Err(err).Msg("failed to get busy rooms")

		return nil, err //nolint:wrapcheck
	}

	res = make([]dto.RoomAvailability, len(rooms))
	for i, room := range rooms {
		_, taken := busy[room.ID]
		res[i].FromModel(room, !taken)
	}

	return res, nil
}

// DashboardStats summarises reservations over the trailing stats window
// ending today.
func (s *serviceImpl) DashboardStats(ctx context.Context, actor role.Actor) (res dto.DashboardStatsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".DashboardStats")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.Role.CanViewStats() {
		return res, model.ErrForbidden
	}

	ttl := s.cfg.Reservation.StatsCacheTTLSeconds
	if ttl <= 0 {
		ttl = defaultStatsCacheTTLSeconds
	}

	return cache.Remember(ctx, s.cache, cacheStats, ttl, s.loadStats)
}

func (s *serviceImpl) loadStats(ctx context.Context) (res dto.DashboardStatsResponse, err error) {
	windowDays := s.cfg.Reservation.StatsWindowDays
	if windowDays <= 0 {
		windowDays = defaultStatsWindowDays
	}

	to := timezone.Today()
	from := to.AddDate(0, 0, -(windowDays - 1))

	if res.TotalRooms, err = s.rooms.Count(ctx, gDto.FilterGroup{}); err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	if res.TotalReservations, err = s.repo.Count(ctx, gDto.FilterGroup{}); err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	stats, err := s.repo.DailyStats(ctx, from, to)
	if err != nil {
		log.Error().Err(err).Msg("failed to aggregate reservations")

		return res, fmt.Errorf("failed to aggregate reservations: %w", err)
	}

	res.FromDailyStats(stats, from, to)

	return res, nil
}
