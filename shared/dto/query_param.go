package dto

import (
	"net/http"
	"roombook/shared/constant"
	"strconv"
	"strings"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

func positive(raw string) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0
	}

	return value
}

// FromRequest reads page, limit, sort_by and sort_dir. Malformed or
// non-positive numbers are ignored. With withDefaults, a missing page or limit
// gets its default. limit is always capped at MaxValueLimit.
func (q *QueryParams) FromRequest(r *http.Request, withDefaults bool) {
	query := r.URL.Query()

	if page := positive(query.Get(constant.RequestParamPage)); page > 0 {
		q.Page = page
	}

	if limit := positive(query.Get(constant.RequestParamLimit)); limit > 0 {
		q.Limit = min(limit, constant.MaxValueLimit)
	}

	if sortBy := query.Get(constant.RequestParamSortBy); sortBy != constant.Empty {
		q.SortBy = sortBy
	}

	switch dir := strings.ToUpper(query.Get(constant.RequestParamSortDir)); dir {
	case SortDirAsc, SortDirDesc:
		q.SortDir = dir
	}

	if withDefaults {
		if q.Page == 0 {
			q.Page = constant.DefaultValuePage
		}

		if q.Limit == 0 {
			q.Limit = constant.DefaultValueLimit
		}
	}
}

// RestrictSort maps SortBy through allowed, which pairs public sort keys with
// qualified columns. Unknown or missing keys fall back to sortBy, and an empty
// SortDir falls back to sortDir.
func (q *QueryParams) RestrictSort(allowed map[string]string, sortBy, sortDir string) {
	column, ok := allowed[q.SortBy]
	if !ok {
		column = sortBy
	}

	q.SortBy = column

	if q.SortDir == constant.Empty {
		q.SortDir = sortDir
	}
}

// Offset is the number of rows skipped before Page. Zero without paging.
func (q QueryParams) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}

	return (q.Page - 1) * q.Limit
}
