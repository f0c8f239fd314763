package dto_test

import (
	"net/http/httptest"
	"roombook/shared/constant"
	"roombook/shared/dto"
	"roombook/shared/model"
	"roombook/shared/timezone"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2026, time.March, 1, 8, 30, 0, 0, time.UTC)

	var metadata dto.Metadata
	metadata.FromModel(model.Metadata{
		CreatedAt:  createdAt,
		ModifiedAt: createdAt.Add(time.Hour),
		CreatedBy:  "admin-1",
		ModifiedBy: "customer-7",
	})

	assert.Equal(t, dto.Metadata{
		CreatedAt:  timezone.Format(createdAt, constant.DateFormat),
		ModifiedAt: timezone.Format(createdAt.Add(time.Hour), constant.DateFormat),
		CreatedBy:  "admin-1",
		ModifiedBy: "customer-7",
	}, metadata)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		withDefaults bool
		want         dto.QueryParams
	}{
		{
			name:  "all parameters",
			query: "page=2&limit=20&sort_by=name&sort_dir=asc",
			want:  dto.QueryParams{Page: 2, Limit: 20, SortBy: "name", SortDir: dto.SortDirAsc},
		},
		{
			name:         "defaults",
			withDefaults: true,
			want:         dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name: "no defaults leaves zero values",
			want: dto.QueryParams{},
		},
		{
			name:         "malformed and non-positive numbers are ignored",
			query:        "page=abc&limit=-5",
			withDefaults: true,
			want:         dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:         "zero page",
			query:        "page=0",
			withDefaults: true,
			want:         dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:  "limit is capped",
			query: "limit=5000",
			want:  dto.QueryParams{Limit: constant.MaxValueLimit},
		},
		{
			name:  "unknown sort direction is dropped",
			query: "sort_by=price_per_hour&sort_dir=sideways",
			want:  dto.QueryParams{SortBy: "price_per_hour"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/v1/rooms?"+tt.query, nil)

			var params dto.QueryParams
			params.FromRequest(request, tt.withDefaults)

			assert.Equal(t, tt.want, params)
		})
	}
}

func TestQueryParams_RestrictSort(t *testing.T) {
	allowed := map[string]string{"name": "rooms.name"}

	tests := []struct {
		name   string
		params dto.QueryParams
		want   dto.QueryParams
	}{
		{
			name:   "known key is mapped to its column",
			params: dto.QueryParams{SortBy: "name", SortDir: dto.SortDirAsc},
			want:   dto.QueryParams{SortBy: "rooms.name", SortDir: dto.SortDirAsc},
		},
		{
			name:   "unknown key falls back",
			params: dto.QueryParams{SortBy: "name; DROP TABLE rooms"},
			want:   dto.QueryParams{SortBy: "rooms.created_at", SortDir: dto.SortDirDesc},
		},
		{
			name:   "missing key falls back",
			params: dto.QueryParams{},
			want:   dto.QueryParams{SortBy: "rooms.created_at", SortDir: dto.SortDirDesc},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tt.params
			params.RestrictSort(allowed, "rooms.created_at", dto.SortDirDesc)

			assert.Equal(t, tt.want, params)
		})
	}
}

func TestQueryParams_Offset(t *testing.T) {
	assert.Equal(t, 0, dto.QueryParams{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 40, dto.QueryParams{Page: 5, Limit: 10}.Offset())
	assert.Equal(t, 0, dto.QueryParams{Limit: 10}.Offset())
	assert.Equal(t, 0, dto.QueryParams{Page: 3}.Offset())
}

func TestMetadata_FromModel_ZeroTimes(t *testing.T) {
	var metadata dto.Metadata
	metadata.FromModel(model.Created("admin-1", time.Time{}))

	assert.Equal(t, dto.Metadata{CreatedBy: "admin-1", ModifiedBy: "admin-1"}, metadata)
}
