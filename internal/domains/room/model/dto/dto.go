package dto

import (
	"mime/multipart"
	"roombook/internal/domains/room/model"
	"roombook/shared"
	gDto "roombook/shared/dto"
	gModel "roombook/shared/model"
	"roombook/shared/timezone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const pricePlaces = 2

type CreateRoomRequest struct {
	Name         string                `json:"name"           validate:"required,max=100"`
	Description  *string               `json:"description"    validate:"omitempty,max=1000"`
	PricePerHour string                `json:"price_per_hour" validate:"required,numeric"`
	Image        *multipart.FileHeader `json:"image"          validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile    multipart.File        `json:"-"`
}

func (c *CreateRoomRequest) ToModel(user string, price decimal.Decimal, imageURL string) model.Room {
	now := timezone.Now()

	return model.Room{
		ID:           uuid.NewString(),
		Name:         c.Name,
		Description:  c.Description,
		PricePerHour: price,
		Image:        imageURL,
		Metadata:     gModel.Created(user, now),
	}
}

type UpdateRoomRequest struct {
	Name         string                `db:"name"        json:"name"           validate:"omitempty,max=100"`
	Description  *string               `db:"description" json:"description"    validate:"omitempty,max=1000"`
	PricePerHour string                `json:"price_per_hour"                  validate:"omitempty,numeric"`
	Image        *multipart.FileHeader `json:"image"                           validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile    multipart.File        `json:"-"`
}

// IsEmpty reports whether the request changes nothing.
func (u *UpdateRoomRequest) IsEmpty() bool {
	return u.Name == "" && u.Description == nil && u.PricePerHour == "" && u.Image == nil
}

// ParsePrice parses a non-negative hourly price. ok is false when value is empty.
func ParsePrice(value string) (price decimal.Decimal, ok bool, err error) {
	if value == "" {
		return decimal.Zero, false, nil
	}

	price, err = decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false, model.ErrInvalidPrice
	}

	if price.IsNegative() {
		return decimal.Zero, false, model.ErrNegativePrice
	}

	return price.Round(pricePlaces), true, nil
}

type RoomResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	PricePerHour string  `json:"price_per_hour"`
	Image        string  `json:"image,omitempty"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Name = model.Name
	r.Description = model.Description
	r.PricePerHour = model.PricePerHour.StringFixed(pricePlaces)
	r.Image = model.Image
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
