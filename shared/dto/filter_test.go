package dto_test

import (
	"testing"

	"roombook/shared/dto"

	"github.com/stretchr/testify/assert"
)

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "eq with table",
			filter:    dto.Filter{Field: "room_id", Value: "r-1", Operator: dto.FilterOperatorEq, Table: "reservations"},
			wantWhere: "reservations.room_id = :room_id",
			wantArgs:  map[string]any{"room_id": "r-1"},
		},
		{
			name:      "less uses arg name",
			filter:    dto.Filter{ArgName: "window_end", Field: "start_time", Value: "11:00", Operator: dto.FilterOperatorLess},
			wantWhere: "start_time < :window_end",
			wantArgs:  map[string]any{"window_end": "11:00"},
		},
		{
			name:      "greater uses arg name",
			filter:    dto.Filter{ArgName: "window_start", Field: "end_time", Value: "09:00", Operator: dto.FilterOperatorGreater},
			wantWhere: "end_time > :window_start",
			wantArgs:  map[string]any{"window_start": "09:00"},
		},
		{
			name:      "date range bounds",
			filter:    dto.Filter{ArgName: "date_from", Field: "reservation_date", Value: "2026-10-19", Operator: dto.FilterOperatorGreaterEq},
			wantWhere: "reservation_date >= :date_from",
			wantArgs:  map[string]any{"date_from": "2026-10-19"},
		},
		{
			name:      "not eq",
			filter:    dto.Filter{ArgName: "exclude_id", Field: "id", Value: "x", Operator: dto.FilterOperatorNotEq},
			wantWhere: "id != :exclude_id",
			wantArgs:  map[string]any{"exclude_id": "x"},
		},
		{
			name:      "like escapes wildcards",
			filter:    dto.Filter{Field: "name", Value: "50%_off", Operator: dto.FilterOperatorLike, Table: "rooms"},
			wantWhere: "LOWER(rooms.name) LIKE LOWER(:name)",
			wantArgs:  map[string]any{"name": `%50\%\_off%`},
		},
		{
			name:      "in with slice",
			filter:    dto.Filter{Field: "status", Value: []string{"pending", "confirmed"}, Operator: dto.FilterOperatorIn},
			wantWhere: "status IN (:status_0, :status_1)",
			wantArgs:  map[string]any{"status_0": "pending", "status_1": "confirmed"},
		},
		{
			name:      "in with empty slice matches nothing",
			filter:    dto.Filter{Field: "status", Value: []string{}, Operator: dto.FilterOperatorIn},
			wantWhere: "FALSE",
			wantArgs:  map[string]any{},
		},
		{
			name:      "in with scalar is bound",
			filter:    dto.Filter{Field: "status", Value: "cancelled", Operator: dto.FilterOperatorIn},
			wantWhere: "status IN (:status)",
			wantArgs:  map[string]any{"status": "cancelled"},
		},
		{
			name:      "plain query",
			filter:    dto.Filter{Value: "end_time > start_time", Operator: dto.FilterPlainQuery},
			wantWhere: "(end_time > start_time)",
			wantArgs:  map[string]any{},
		},
		{
			name:      "is null",
			filter:    dto.Filter{Field: "image", Operator: dto.FilterIsNull, Table: "rooms"},
			wantWhere: "rooms.image IS NULL",
			wantArgs:  map[string]any{},
		},
		{
			name:      "unknown operator",
			filter:    dto.Filter{Field: "x", Operator: "between"},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.And(
		dto.Filter{Field: "room_id", Value: "r-1", Operator: dto.FilterOperatorEq},
		dto.Or(
			dto.Filter{Field: "status", Value: "pending", Operator: dto.FilterOperatorEq},
			dto.Filter{Field: "deleted_at", Operator: dto.FilterIsNull},
		),
	)

	where, args := group.GetWhereClause()

	assert.Equal(t, "(room_id = :room_id AND (status = :status OR deleted_at IS NULL))", where)
	assert.Equal(t, map[string]any{"room_id": "r-1", "status": "pending"}, args)
}

func TestFilterGroup_SkipsEmptyClauses(t *testing.T) {
	group := dto.FilterGroup{}
	group.Add(
		dto.Filter{Field: "x", Operator: "between"},
		dto.FilterGroup{},
		"not a filter",
		&dto.Filter{Field: "id", Value: "u-1", Operator: dto.FilterOperatorEq},
	)

	where, args := group.GetWhereClause()

	assert.Equal(t, "(id = :id)", where)
	assert.Equal(t, map[string]any{"id": "u-1"}, args)
}

func TestFilterGroup_Empty(t *testing.T) {
	empty := dto.And()

	where, args := empty.GetWhereClause()

	assert.Empty(t, where)
	assert.Empty(t, args)
}
