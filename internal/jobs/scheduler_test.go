package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/config"
	"roombook/infras/otel/mocks"
	"roombook/internal/domains/reservation/expiry"
)

type fakePolicy struct {
	name        string
	calls       int
	sawDeadline bool
	err         error
}

func (p *fakePolicy) Name() string { return p.name }

func (p *fakePolicy) Expire(ctx context.Context) (int, error) {
	p.calls++
	_, p.sawDeadline = ctx.Deadline()

	return 2, p.err
}

func TestNew(t *testing.T) {
	t.Run("none schedules nothing", func(t *testing.T) {
		s, err := New(&config.Config{}, &fakePolicy{name: expiry.PolicyNone}, mocks.NewOtel())
		require.NoError(t, err)

		assert.Empty(t, s.(*schedulerImpl).cron.Entries())
	})

	t.Run("ttl uses the default schedule", func(t *testing.T) {
		s, err := New(&config.Config{}, &fakePolicy{name: expiry.PolicyTTL}, mocks.NewOtel())
		require.NoError(t, err)

		assert.Len(t, s.(*schedulerImpl).cron.Entries(), 1)
	})

	t.Run("custom schedule", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Reservation.ExpiryCron = "*/5 * * * *"

		s, err := New(cfg, &fakePolicy{name: expiry.PolicyTTL}, mocks.NewOtel())
		require.NoError(t, err)

		assert.Len(t, s.(*schedulerImpl).cron.Entries(), 1)
	})

	t.Run("bad schedule", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Reservation.ExpiryCron = "every now and then"

		_, err := New(cfg, &fakePolicy{name: expiry.PolicyTTL}, mocks.NewOtel())
		assert.Error(t, err)
	})
}

func TestExpiryJob_Run(t *testing.T) {
	policy := &fakePolicy{name: expiry.PolicyTTL}
	job := expiryJob{policy: policy, otel: mocks.NewOtel()}

	job.Run()
	assert.Equal(t, 1, policy.calls)
	assert.True(t, policy.sawDeadline)

	policy.err = errors.New("database unavailable")

	assert.NotPanics(t, job.Run)
	assert.Equal(t, 2, policy.calls)
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := New(&config.Config{}, &fakePolicy{name: expiry.PolicyTTL}, mocks.NewOtel())
	require.NoError(t, err)

	s.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Stop(ctx)
}
