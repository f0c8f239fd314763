package service

import (
	"context"
	"fmt"
	"roombook/internal/domains/reservation/model"
	"roombook/internal/domains/reservation/repository"
	"roombook/internal/domains/reservation/schedule"
	gDto "roombook/shared/dto"
	"time"
)

// Detector finds reservations colliding with a window. It takes no locks, so
// its answer is advisory: the exclusive writes in the repository decide.
type Detector interface {
	FindConflicts(ctx context.Context, query model.ConflictQuery) ([]string, error)
	BusyRoomIDs(ctx context.Context, from, to time.Time, interval schedule.Interval) (map[string]struct{}, error)
}

type detector struct {
	repo repository.Reservation
}

func NewDetector(repo repository.Reservation) Detector {
	return &detector{repo: repo}
}

// FindConflicts returns the ids of slot-blocking reservations of query.RoomID
// whose window overlaps query.Interval on the queried dates.
func (d *detector) FindConflicts(ctx context.Context, query model.ConflictQuery) ([]string, error) {
	reservations, err := d.repo.GetAll(ctx, gDto.QueryParams{}, repository.ConflictFilter(query), model.FieldID)
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicting reservations: %w", err)
	}

	ids := make([]string, len(reservations))
	for i, reservation := range reservations {
		ids[i] = reservation.ID
	}

	return ids, nil
}

// BusyRoomIDs returns every room holding a slot-blocking reservation that
// overlaps interval on any date from from to to inclusive.
func (d *detector) BusyRoomIDs(ctx context.Context, from, to time.Time, interval schedule.Interval) (map[string]struct{}, error) {
	query := model.ConflictQuery{
		DateFrom: from,
		DateTo:   to,
		Interval: interval,
	}

	reservations, err := d.repo.GetAll(ctx, gDto.QueryParams{}, repository.ConflictFilter(query), model.FieldRoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to find busy rooms: %w", err)
	}

	busy := make(map[string]struct{}, len(reservations))
	for _, reservation := range reservations {
		busy[reservation.RoomID] = struct{}{}
	}

	return busy, nil
}
