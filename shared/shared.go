package shared

import (
	"math"
	"reflect"
	"roombook/shared/constant"
	"roombook/shared/dto"
	"roombook/shared/timezone"
)

const tagSkip = "-"

// CalculateTotalPage never returns less than one page.
func CalculateTotalPage(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}

	return int(math.Ceil(float64(total) / float64(limit)))
}

// TransformFields turns the non-zero, db-tagged fields of a request struct into
// an update set and stamps it with modifiedBy. Nil pointers are left out, so an
// explicit pointer to an empty value still clears a column.
func TransformFields(data any, modifiedBy string) map[string]any {
	val := reflect.Indirect(reflect.ValueOf(data))
	typ := val.Type()

	updatedFields := make(map[string]any, val.NumField()+2) //nolint:mnd

	for index := range val.NumField() {
		column := typ.Field(index).Tag.Get("db")
		if column == constant.Empty || column == tagSkip {
			continue
		}

		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		updatedFields[column] = field.Interface()
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	updatedFields[constant.FieldModifiedBy] = modifiedBy

	return updatedFields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}
