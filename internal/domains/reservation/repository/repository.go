package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/internal/domains/reservation/model"
	roomModel "roombook/internal/domains/room/model"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/logger"
	gRepo "roombook/shared/repository"
	"roombook/shared/timezone"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	argWindowStart  = "window_start"
	argWindowEnd    = "window_end"
	argDateFrom     = "date_from"
	argDateTo       = "date_to"
	argFreeStatus   = "free_status"
	argExcludeID    = "exclude_id"
	argExpireStatus = "expire_status"
	argCutoff       = "cutoff"
	argFromStatus   = "from_status"

	constraintRoomFK = "reservations_room_id_fkey"
	constraintUserFK = "reservations_user_id_fkey"
)

const (
	queryLockRoom        = "SELECT id FROM " + roomModel.TableName + " WHERE id = $1 FOR UPDATE"
	queryLockReservation = "SELECT user_id, status FROM " + model.TableName + " WHERE id = $1 FOR UPDATE"

	queryDailyStats = `SELECT reservation_date AS day,
	COUNT(*) AS reservations,
	COALESCE(SUM(total_price) FILTER (WHERE status = $3), 0) AS revenue
FROM reservations
WHERE reservation_date BETWEEN $1 AND $2
GROUP BY reservation_date
ORDER BY reservation_date ASC`
)

type Reservation interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Reservation, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Reservation, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error

	// InsertExclusive stores reservation unless another slot-blocking
	// reservation overlaps it. The room row is locked for the duration.
	InsertExclusive(ctx context.Context, reservation model.Reservation) error
	// UpdateExclusive applies fields to the reservation read as current, whose
	// resulting state is next, under the same guarantee as InsertExclusive.
	// The reservation row is locked first and must still have current's owner
	// and status.
	UpdateExclusive(ctx context.Context, current, next model.Reservation, fields map[string]any) error
	// SetStatus applies fields to reservation id only while its status is
	// still from. ErrInvalidState otherwise.
	SetStatus(ctx context.Context, id string, from model.Status, fields map[string]any) error
	// DeletePending deletes reservation id only while it is pending_payment.
	// ErrInvalidState otherwise.
	DeletePending(ctx context.Context, id string) error

	GetDetail(ctx context.Context, filter gDto.FilterGroup) (model.ReservationDetail, error)
	GetAllDetails(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.ReservationDetail, error)
	CountDetails(ctx context.Context, filter gDto.FilterGroup) (int, error)

	DailyStats(ctx context.Context, from, to time.Time) ([]model.DailyStat, error)
	// CancelPendingCreatedBefore moves stale pending reservations to cancelled
	// and returns their ids.
	CancelPendingCreatedBefore(ctx context.Context, cutoff time.Time, modifiedBy string) ([]string, error)
}

// lockedReservation is the part of a locked row that guards a write.
type lockedReservation struct {
	UserID string       `db:"user_id"`
	Status model.Status `db:"status"`
}

type repositoryImpl struct {
	gRepo.Repository[model.Reservation]
	details gRepo.Repository[model.ReservationDetail]
	db      *postgres.Connection
	otel    otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Reservation {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel),
		details:    gRepo.NewRepository[model.ReservationDetail](model.EntityName+"_detail", model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// ConflictFilter selects the slot-blocking reservations matched by query.
// Overlap is half-open: start < window end AND end > window start.
func ConflictFilter(query model.ConflictQuery) gDto.FilterGroup {
	from, to := query.DateFrom, query.DateTo
	if to.IsZero() {
		to = from
	}

	filters := []any{
		gDto.Filter{
			Field:    model.FieldReservationDate,
			ArgName:  argDateFrom,
			Value:    from.Format(constant.DateOnlyFormat),
			Operator: gDto.FilterOperatorGreaterEq,
			Table:    model.TableName,
		},
		gDto.Filter{
			Field:    model.FieldReservationDate,
			ArgName:  argDateTo,
			Value:    to.Format(constant.DateOnlyFormat),
			Operator: gDto.FilterOperatorLessEq,
			Table:    model.TableName,
		},
		gDto.Filter{
			Field:    model.FieldStartTime,
			ArgName:  argWindowEnd,
			Value:    query.Interval.End,
			Operator: gDto.FilterOperatorLess,
			Table:    model.TableName,
		},
		gDto.Filter{
			Field:    model.FieldEndTime,
			ArgName:  argWindowStart,
			Value:    query.Interval.Start,
			Operator: gDto.FilterOperatorGreater,
			Table:    model.TableName,
		},
		gDto.Filter{
			Field:    model.FieldStatus,
			ArgName:  argFreeStatus,
			Value:    model.StatusCancelled,
			Operator: gDto.FilterOperatorNotEq,
			Table:    model.TableName,
		},
	}

	if query.RoomID != constant.Empty {
		filters = append(filters, gDto.Filter{
			Field:    model.FieldRoomID,
			Value:    query.RoomID,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	if query.ExcludeID != constant.Empty {
		filters = append(filters, gDto.Filter{
			Field:    model.FieldID,
			ArgName:  argExcludeID,
			Value:    query.ExcludeID,
			Operator: gDto.FilterOperatorNotEq,
			Table:    model.TableName,
		})
	}

	return gDto.And(filters...)
}

// StatusFilter matches reservation id while it is in status. The status is
// bound apart from the status column an update sets.
func StatusFilter(id string, status model.Status) gDto.FilterGroup {
	return gDto.And(
		gDto.Filter{
			Field:    model.FieldID,
			Value:    id,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		},
		gDto.Filter{
			Field:    model.FieldStatus,
			ArgName:  argFromStatus,
			Value:    status,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		},
	)
}

func (r *repositoryImpl) InsertExclusive(ctx context.Context, reservation model.Reservation) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".InsertExclusive")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	err = r.db.WithTx(ctx, nil, func(tx *sqlx.Tx) error {
		if err := r.lockRoomAndCheck(ctx, tx, reservation); err != nil {
			return err
		}

		return r.InsertTx(ctx, tx, reservation) //nolint:wrapcheck
	})

	return translate(err)
}

func (r *repositoryImpl) UpdateExclusive(ctx context.Context, current, next model.Reservation, fields map[string]any) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".UpdateExclusive")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	err = r.db.WithTx(ctx, nil, func(tx *sqlx.Tx) error {
		if err := r.lockReservation(ctx, tx, current); err != nil {
			return err
		}

		if next.Status.BlocksSlot() {
			if err := r.lockRoomAndCheck(ctx, tx, next); err != nil {
				return err
			}
		}

		return r.UpdateTx(ctx, tx, fields, StatusFilter(current.ID, current.Status)) //nolint:wrapcheck
	})

	return translate(err)
}

func (r *repositoryImpl) SetStatus(ctx context.Context, id string, from model.Status, fields map[string]any) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".SetStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	ids, err := r.UpdateReturning(ctx, fields, StatusFilter(id, from), model.FieldID)
	if err != nil {
		return translate(err)
	}

	if len(ids) == 0 {
		return model.ErrInvalidState
	}

	return nil
}

func (r *repositoryImpl) DeletePending(ctx context.Context, id string) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".DeletePending")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	ids, err := r.DeleteReturning(ctx, StatusFilter(id, model.StatusPendingPayment), model.FieldID)
	if err != nil {
		return fmt.Errorf("failed to delete pending reservation: %w", err)
	}

	if len(ids) == 0 {
		return model.ErrInvalidState
	}

	return nil
}

// lockReservation locks the row current was read from. Writes lock the
// reservation before the room.
func (r *repositoryImpl) lockReservation(ctx context.Context, tx *sqlx.Tx, current model.Reservation) error {
	var locked lockedReservation

	err := tx.GetContext(ctx, &locked, queryLockReservation, current.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrReservationNotFound
	}

	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to lock reservation: %w", err)
	}

	return unchanged(current, locked)
}

// unchanged fails when the row moved on after current was read and checked.
func unchanged(current model.Reservation, locked lockedReservation) error {
	switch {
	case locked.UserID != current.UserID:
		return model.ErrForbidden
	case locked.Status != current.Status:
		return model.ErrInvalidState
	default:
		return nil
	}
}

func (r *repositoryImpl) lockRoomAndCheck(ctx context.Context, tx *sqlx.Tx, reservation model.Reservation) error {
	var roomID string

	err := tx.GetContext(ctx, &roomID, queryLockRoom, reservation.RoomID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrRoomNotFound
	}

	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to lock room: %w", err)
	}

	conflicts, err := r.GetAllTx(ctx, tx, gDto.QueryParams{Limit: 1}, ConflictFilter(model.ConflictQuery{
		RoomID:    reservation.RoomID,
		DateFrom:  reservation.ReservationDate,
		Interval:  reservation.Interval(),
		ExcludeID: reservation.ID,
	}), model.FieldID)
	if err != nil {
		return fmt.Errorf("failed to check conflicting reservations: %w", err)
	}

	if len(conflicts) > 0 {
		return model.ErrBookingConflict
	}

	return nil
}

func (r *repositoryImpl) GetDetail(ctx context.Context, filter gDto.FilterGroup) (model.ReservationDetail, error) {
	return r.details.Get(ctx, filter) //nolint:wrapcheck
}

func (r *repositoryImpl) GetAllDetails(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.ReservationDetail, error) {
	return r.details.GetAll(ctx, params, filter) //nolint:wrapcheck
}

func (r *repositoryImpl) CountDetails(ctx context.Context, filter gDto.FilterGroup) (int, error) {
	return r.details.Count(ctx, filter) //nolint:wrapcheck
}

func (r *repositoryImpl) DailyStats(ctx context.Context, from, to time.Time) (stats []model.DailyStat, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".DailyStats")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryDailyStats)

	err = r.db.Read.SelectContext(ctx, &stats, queryDailyStats,
		from.Format(constant.DateOnlyFormat),
		to.Format(constant.DateOnlyFormat),
		model.StatusBooked,
	)
	if err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to aggregate reservations: %w", err)
	}

	return stats, nil
}

func (r *repositoryImpl) CancelPendingCreatedBefore(ctx context.Context, cutoff time.Time, modifiedBy string) (ids []string, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".CancelPendingCreatedBefore")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	stale := gDto.And(
		gDto.Filter{
			Field:    model.FieldStatus,
			ArgName:  argExpireStatus,
			Value:    model.StatusPendingPayment,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		},
		gDto.Filter{
			Field:    constant.FieldCreatedAt,
			ArgName:  argCutoff,
			Value:    cutoff,
			Operator: gDto.FilterOperatorLess,
			Table:    model.TableName,
		},
	)

	ids, err = r.UpdateReturning(ctx, map[string]any{
		model.FieldStatus:        model.StatusCancelled,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: modifiedBy,
	}, stale, model.FieldID)
	if err != nil {
		return nil, fmt.Errorf("failed to expire pending reservations: %w", err)
	}

	return ids, nil
}

// translate maps storage constraint violations onto reservation failures.
func translate(err error) error {
	if err == nil {
		return nil
	}

	code, constraint, ok := postgres.ErrorCode(err)
	if !ok {
		return err
	}

	switch {
	case code == constant.PqErrorCodeExclusionViolation:
		log.Warn().Err(err).Msg("overlapping reservation rejected by exclusion constraint")

		return model.ErrBookingConflict
	case code == constant.PqErrorCodeFkViolation && constraint == constraintRoomFK:
		return model.ErrRoomNotFound
	case code == constant.PqErrorCodeFkViolation && constraint == constraintUserFK:
		return model.ErrUserNotFound
	default:
		return err
	}
}
