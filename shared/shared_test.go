package shared_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"roombook/shared"
	cacheMocks "roombook/shared/cache/mocks"
	"roombook/shared/constant"
	"roombook/shared/dto"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{total: 0, limit: 10, want: 1},
		{total: 10, limit: 10, want: 1},
		{total: 11, limit: 10, want: 2},
		{total: 5, limit: 0, want: 1},
		{total: -3, limit: 10, want: 1},
		{total: 99, limit: 1, want: 99},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, shared.CalculateTotalPage(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

type roomChange struct {
	Name        string  `db:"name"`
	Description *string `db:"description"`
	Capacity    int     `db:"capacity"`
	Upload      string
	Internal    string `db:"-"`
}

func TestTransformFields(t *testing.T) {
	empty := ""

	tests := []struct {
		name string
		data any
		want map[string]any
	}{
		{
			name: "only set fields become columns",
			data: roomChange{Name: "Orchid", Upload: "ignored", Internal: "ignored"},
			want: map[string]any{"name": "Orchid"},
		},
		{
			name: "pointer to empty string clears the column",
			data: roomChange{Description: &empty},
			want: map[string]any{"description": &empty},
		},
		{
			name: "pointer to struct is dereferenced",
			data: &roomChange{Capacity: 8},
			want: map[string]any{"capacity": 8},
		},
		{
			name: "nothing set",
			data: roomChange{},
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shared.TransformFields(tt.data, "admin-1")

			assert.Equal(t, "admin-1", result[constant.FieldModifiedBy])
			assert.IsType(t, time.Time{}, result[constant.FieldModifiedAt])

			delete(result, constant.FieldModifiedBy)
			delete(result, constant.FieldModifiedAt)

			assert.Equal(t, tt.want, result)
		})
	}
}

func TestFilterByID(t *testing.T) {
	group := shared.FilterByID("r-1", "id", "reservations")

	where, args := group.GetWhereClause()

	assert.Equal(t, "(reservations.id = :id)", where)
	assert.Equal(t, map[string]any{"id": "r-1"}, args)
	assert.Equal(t, dto.Filter{Field: "id", Value: "r-1", Operator: dto.FilterOperatorEq, Table: "reservations"}, group.Filters[0])
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "room:get:r-1", shared.BuildCacheKey("room:get", "r-1"))
	assert.Equal(t, "stats", shared.BuildCacheKey("stats"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10, SortBy: "name", SortDir: "ASC"}
	byName := dto.FilterGroup{Filters: []any{dto.Filter{Field: "name", Value: "Orchid", Operator: dto.FilterOperatorLike}}}

	key := shared.BuildCacheKeyWithQuery("room:gets", params, byName)

	assert.True(t, strings.HasPrefix(key, "room:gets:"))
	assert.Equal(t, key, shared.BuildCacheKeyWithQuery("room:gets", params, byName), "keys are stable")

	params.Page = 2
	assert.NotEqual(t, key, shared.BuildCacheKeyWithQuery("room:gets", params, byName))
	assert.NotEqual(t, key, shared.BuildCacheKeyWithQuery("room:gets", dto.QueryParams{Page: 1, Limit: 10, SortBy: "name", SortDir: "ASC"}, dto.FilterGroup{}))
}

func TestInvalidateCaches(t *testing.T) {
	cache := cacheMocks.NewMockRedisCache(gomock.NewController(t))

	cache.EXPECT().Clear(gomock.Any(), "room:gets:*").Return(errors.New("redis down"))

	assert.NotPanics(t, func() {
		shared.InvalidateCaches(context.Background(), cache, "room:gets")
	})
}
