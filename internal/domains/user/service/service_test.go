package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombook/config"
	"roombook/infras/otel/mocks"
	userMocks "roombook/internal/domains/user/mocks"
	"roombook/internal/domains/user/model"
	"roombook/internal/domains/user/service"
	cacheMocks "roombook/shared/cache/mocks"
	gDto "roombook/shared/dto"
	"roombook/shared/role"
)

const (
	aliceID = "5a1d9e0c-7b3f-4c2e-9a61-1f0e2d3c4b5a"
	bobID   = "9c8b7a6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

func publicColumns() []any {
	columns := make([]any, len(model.PublicColumns))
	for i, column := range model.PublicColumns {
		columns[i] = column
	}

	return columns
}

func newService(t *testing.T) (*userMocks.MockUser, *cacheMocks.MockRedisCache, service.User) {
	t.Helper()

	ctrl := gomock.NewController(t)

	repo := userMocks.NewMockUser(ctrl)
	cache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return repo, cache, service.New(repo, cfg, cache, mocks.NewOtel())
}

func TestUserService_Get(t *testing.T) {
	alice := role.Actor{UserID: aliceID, Role: role.Customer}
	admin := role.Actor{UserID: bobID, Role: role.Admin}

	tests := []struct {
		name      string
		actor     role.Actor
		id        string
		setupMock func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache)
		wantErr   error
	}{
		{
			name:  "customer reads own profile",
			actor: alice,
			id:    aliceID,
			setupMock: func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				repo.EXPECT().
					Get(gomock.Any(), gomock.Any(), publicColumns()...).
					Return(model.User{ID: aliceID, Username: "alice", Role: "customer"}, nil)
			},
		},
		{
			name:    "customer cannot read others",
			actor:   alice,
			id:      bobID,
			wantErr: model.ErrForbidden,
		},
		{
			name:  "admin reads anyone",
			actor: admin,
			id:    aliceID,
			setupMock: func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				repo.EXPECT().
					Get(gomock.Any(), gomock.Any(), publicColumns()...).
					Return(model.User{ID: aliceID, Username: "alice", Role: "customer"}, nil)
			},
		},
		{
			name:  "missing user",
			actor: admin,
			id:    aliceID,
			setupMock: func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				repo.EXPECT().Get(gomock.Any(), gomock.Any(), publicColumns()...).Return(model.User{}, nil)
			},
			wantErr: model.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, cache, svc := newService(t)
			if tt.setupMock != nil {
				tt.setupMock(repo, cache)
			}

			res, err := svc.Get(context.Background(), tt.actor, tt.id)

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.id, res.ID)
			assert.Equal(t, "alice", res.Username)
		})
	}
}

func TestUserService_GetAll(t *testing.T) {
	params := gDto.QueryParams{Page: 1, Limit: 10}

	t.Run("customers cannot list users", func(t *testing.T) {
		_, _, svc := newService(t)

		_, err := svc.GetAll(context.Background(), role.Actor{UserID: aliceID, Role: role.Customer}, params, gDto.FilterGroup{})

		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("admin lists without password hashes", func(t *testing.T) {
		repo, cache, svc := newService(t)

		cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
		repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)
		repo.EXPECT().
			GetAll(gomock.Any(), params, gomock.Any(), publicColumns()...).
			Return([]model.User{{ID: aliceID, Username: "alice"}, {ID: bobID, Username: "bob"}}, nil)

		res, err := svc.GetAll(context.Background(), role.Actor{UserID: bobID, Role: role.Admin}, params, gDto.FilterGroup{})

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 2, res.TotalData)
		assert.Equal(t, 1, res.TotalPage)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo, cache, svc := newService(t)

		cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
		repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("database error"))

		_, err := svc.GetAll(context.Background(), role.Actor{UserID: bobID, Role: role.Admin}, params, gDto.FilterGroup{})

		assert.Error(t, err)
	})
}

func TestUserService_Invalidate(t *testing.T) {
	_, cache, svc := newService(t)

	done := make(chan struct{})

	cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
	cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	cache.EXPECT().Clear(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, string) error {
		close(done)

		return nil
	})

	svc.Invalidate(context.Background(), aliceID)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cache was not invalidated")
	}
}
