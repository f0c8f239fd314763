package cache

import (
	"context"
	"errors"
	"fmt"
	"roombook/shared/cache/mocks"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type roomStats struct {
	Rooms   int    `json:"rooms"`
	Revenue string `json:"revenue"`
}

func TestEncodeDecode(t *testing.T) {
	t.Run("struct round trips as JSON", func(t *testing.T) {
		payload, err := encode(roomStats{Rooms: 4, Revenue: "250.00"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"rooms":4,"revenue":"250.00"}`, string(payload))

		var got roomStats
		require.NoError(t, decode(string(payload), &got))
		assert.Equal(t, roomStats{Rooms: 4, Revenue: "250.00"}, got)
	})

	t.Run("strings are stored verbatim", func(t *testing.T) {
		payload, err := encode("plain")
		require.NoError(t, err)
		assert.Equal(t, "plain", string(payload))

		var got string
		require.NoError(t, decode("plain", &got))
		assert.Equal(t, "plain", got)
	})

	t.Run("unencodable value", func(t *testing.T) {
		_, err := encode(make(chan int))
		assert.Error(t, err)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		var got roomStats
		assert.Error(t, decode("{", &got))
	})
}

func TestIsMiss(t *testing.T) {
	assert.True(t, IsMiss(fmt.Errorf("cache miss for room:get:r-1: %w", redis.Nil)))
	assert.False(t, IsMiss(fmt.Errorf("dial tcp: %w", assert.AnError)))
	assert.False(t, IsMiss(nil))
}

func TestRemember(t *testing.T) {
	ctx := context.Background()

	t.Run("hit skips the loader", func(t *testing.T) {
		store := mocks.NewMockRedisCache(gomock.NewController(t))
		store.EXPECT().Get(ctx, "stats", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, value any) error {
			*value.(*roomStats) = roomStats{Rooms: 3}

			return nil
		})

		got, err := Remember(ctx, store, "stats", 60, func(context.Context) (roomStats, error) {
			t.Fatal("loader called on a hit")

			return roomStats{}, nil
		})

		require.NoError(t, err)
		assert.Equal(t, roomStats{Rooms: 3}, got)
	})

	t.Run("miss loads and writes back", func(t *testing.T) {
		saved := make(chan any, 1)

		store := mocks.NewMockRedisCache(gomock.NewController(t))
		store.EXPECT().Get(ctx, "stats", gomock.Any()).Return(fmt.Errorf("miss: %w", redis.Nil))
		store.EXPECT().Save(gomock.Any(), "stats", gomock.Any(), 60).DoAndReturn(func(_ context.Context, _ string, value any, _ int) error {
			saved <- value

			return nil
		})

		got, err := Remember(ctx, store, "stats", 60, func(context.Context) (roomStats, error) {
			return roomStats{Rooms: 5, Revenue: "90.00"}, nil
		})

		require.NoError(t, err)
		assert.Equal(t, roomStats{Rooms: 5, Revenue: "90.00"}, got)

		select {
		case value := <-saved:
			assert.Equal(t, got, value)
		case <-time.After(time.Second):
			t.Fatal("value was not written back")
		}
	})

	t.Run("loader error is returned and not cached", func(t *testing.T) {
		store := mocks.NewMockRedisCache(gomock.NewController(t))
		store.EXPECT().Get(ctx, "stats", gomock.Any()).Return(errors.New("connection refused"))

		_, err := Remember(ctx, store, "stats", 60, func(context.Context) (roomStats, error) {
			return roomStats{}, assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
	})
}
