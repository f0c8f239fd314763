package model

import (
	"roombook/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID           = "id"
	FieldName         = "name"
	FieldDescription  = "description"
	FieldPricePerHour = "price_per_hour"
	FieldImage        = "image"
)

type Room struct {
	ID           string          `db:"id"`
	Name         string          `db:"name"`
	Description  *string         `db:"description"`
	PricePerHour decimal.Decimal `db:"price_per_hour"`
	Image        string          `db:"image"`
	model.Metadata
}
