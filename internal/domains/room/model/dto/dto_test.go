package dto_test

import (
	"testing"

	"roombook/internal/domains/room/model"
	"roombook/internal/domains/room/model/dto"
	gModel "roombook/shared/model"
	"roombook/shared/timezone"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantOK  bool
		wantErr error
	}{
		{name: "empty means unchanged", input: ""},
		{name: "integer", input: "100", want: "100", wantOK: true},
		{name: "rounded to cents", input: "12.345", want: "12.35", wantOK: true},
		{name: "zero is allowed", input: "0", want: "0", wantOK: true},
		{name: "negative", input: "-0.01", wantErr: model.ErrNegativePrice},
		{name: "not a number", input: "cheap", wantErr: model.ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, ok, err := dto.ParsePrice(tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.True(t, price.Equal(decimal.RequireFromString(tt.want)), "got %s", price)
			}
		})
	}
}

func TestCreateRoomRequest_ToModel(t *testing.T) {
	description := "Quiet room on the third floor"
	req := dto.CreateRoomRequest{Name: "Orchid", Description: &description}

	room := req.ToModel("admin-id", decimal.RequireFromString("75"), "https://cdn.example.com/room/a.png")

	assert.NotEmpty(t, room.ID)
	assert.Equal(t, "Orchid", room.Name)
	assert.Equal(t, &description, room.Description)
	assert.Equal(t, "https://cdn.example.com/room/a.png", room.Image)
	assert.Equal(t, "admin-id", room.CreatedBy)
	assert.Equal(t, room.CreatedAt, room.ModifiedAt)
}

func TestUpdateRoomRequest_IsEmpty(t *testing.T) {
	assert.True(t, (&dto.UpdateRoomRequest{}).IsEmpty())
	assert.False(t, (&dto.UpdateRoomRequest{PricePerHour: "10"}).IsEmpty())
}

func TestGetRoomsResponse_FromModels(t *testing.T) {
	now := timezone.Now()
	rooms := []model.Room{
		{ID: "1", Name: "Orchid", PricePerHour: decimal.RequireFromString("100"), Metadata: gModel.Metadata{CreatedAt: now, ModifiedAt: now}},
		{ID: "2", Name: "Lotus", PricePerHour: decimal.RequireFromString("42.5"), Metadata: gModel.Metadata{CreatedAt: now, ModifiedAt: now}},
	}

	var res dto.GetRoomsResponse
	res.FromModels(rooms, 5, 2)

	assert.Equal(t, 5, res.TotalData)
	assert.Equal(t, 3, res.TotalPage)
	assert.Equal(t, "100.00", res.Rooms[0].PricePerHour)
	assert.Equal(t, "42.50", res.Rooms[1].PricePerHour)
}
