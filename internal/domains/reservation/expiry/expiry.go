// Package expiry decides what happens to reservations left in
// pending_payment. The policy is chosen by RESERVATION_EXPIRY_POLICY.
package expiry

import (
	"context"
	"fmt"
	"roombook/config"
	"roombook/internal/domains/reservation/model"
	"roombook/internal/domains/reservation/repository"
	"roombook/shared/cache"
	"roombook/shared/constant"
	"roombook/shared/notifier"
	"roombook/shared/timezone"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	PolicyNone = "none"
	PolicyTTL  = "ttl"

	// systemActor is recorded as modified_by on expired reservations.
	systemActor = "system"

	defaultPendingTTLMinutes = 30
)

var ErrUnknownPolicy = errors.New("unknown expiry policy")

// Policy expires stale pending reservations and reports how many it cancelled.
type Policy interface {
	Name() string
	Expire(ctx context.Context) (int, error)
}

// New selects the configured policy. An empty policy means none.
func New(cfg *config.Config, repo repository.Reservation, notifier notifier.Notifier, store cache.RedisCache) (Policy, error) {
	switch name := strings.ToLower(strings.TrimSpace(cfg.Reservation.ExpiryPolicy)); name {
	case constant.Empty, PolicyNone:
		return none{}, nil
	case PolicyTTL:
		minutes := cfg.Reservation.PendingTTLMinutes
		if minutes <= 0 {
			minutes = defaultPendingTTLMinutes
		}

		return NewTTL(repo, notifier, store, time.Duration(minutes)*time.Minute), nil
	default:
		return nil, errors.Wrapf(ErrUnknownPolicy, "%q", name)
	}
}

type none struct{}

func (none) Name() string { return PolicyNone }

func (none) Expire(context.Context) (int, error) { return 0, nil }

type ttl struct {
	repo     repository.Reservation
	notifier notifier.Notifier
	cache    cache.RedisCache
	age      time.Duration
	now      func() time.Time
}

// NewTTL cancels pending reservations created more than age ago.
func NewTTL(repo repository.Reservation, notifier notifier.Notifier, store cache.RedisCache, age time.Duration) Policy {
	return &ttl{
		repo:     repo,
		notifier: notifier,
		cache:    store,
		age:      age,
		now:      timezone.Now,
	}
}

func (t *ttl) Name() string { return PolicyTTL }

func (t *ttl) Expire(ctx context.Context) (int, error) {
	cutoff := t.now().Add(-t.age)

	ids, err := t.repo.CancelPendingCreatedBefore(ctx, cutoff, systemActor)
	if err != nil {
		return 0, fmt.Errorf("failed to expire pending reservations: %w", err)
	}

	if len(ids) == 0 {
		return 0, nil
	}

	log.Info().Strs("ids", ids).Time("cutoff", cutoff).Msg("expired pending reservations")

	if err = t.cache.Delete(ctx, model.CacheKeyStats); err != nil {
		log.Error().Err(err).Msg("failed to delete reservation stats from cache")
	}

	if err = t.notifier.Notify(ctx, constant.EventBookingUpdated); err != nil {
		log.Warn().Err(err).Msg("failed to emit booking update")
	}

	return len(ids), nil
}
