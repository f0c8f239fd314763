// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"roombook/config"
	"roombook/infras/otel"
	"roombook/internal/domains/reservation/expiry"
	"roombook/shared/constant"
	"roombook/shared/timezone"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultExpiryCron = "@every 1m"
	jobTimeout        = 30 * time.Second
)

type Scheduler interface {
	Start()
	// Stop waits for running jobs up to ctx's deadline.
	Stop(ctx context.Context)
}

type schedulerImpl struct {
	cron *cron.Cron
}

// New registers the expiry job. With the none policy nothing is scheduled.
func New(cfg *config.Config, policy expiry.Policy, otel otel.Otel) (Scheduler, error) {
	logger := cronLogger{logger: log.With().Str("component", "cron").Logger()}

	c := cron.New(
		cron.WithLocation(timezone.Location()),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	if policy.Name() == expiry.PolicyNone {
		log.Info().Msg("Reservation expiry disabled")

		return &schedulerImpl{cron: c}, nil
	}

	spec := cfg.Reservation.ExpiryCron
	if spec == constant.Empty {
		spec = defaultExpiryCron
	}

	if _, err := c.AddJob(spec, expiryJob{policy: policy, otel: otel}); err != nil {
		return nil, fmt.Errorf("failed to schedule reservation expiry %q: %w", spec, err)
	}

	log.Info().Str("policy", policy.Name()).Str("schedule", spec).Msg("Reservation expiry scheduled")

	return &schedulerImpl{cron: c}, nil
}

func (s *schedulerImpl) Start() {
	s.cron.Start()
}

func (s *schedulerImpl) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		log.Warn().Msg("cron jobs still running at shutdown")
	}
}

type expiryJob struct {
	policy expiry.Policy
	otel   otel.Otel
}

func (j expiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	ctx, scope := j.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".ExpireReservations")
	defer scope.End()

	count, err := j.policy.Expire(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("policy", j.policy.Name()).Msg("failed to expire pending reservations")

		return
	}

	scope.SetAttribute("reservations.expired", count)
}

// cronLogger routes cron's own messages through zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
