package dto

import (
	"roombook/internal/domains/reservation/model"
	"roombook/internal/domains/reservation/schedule"
	roomModel "roombook/internal/domains/room/model"
	"roombook/shared"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"time"

	"github.com/shopspring/decimal"
)

const pricePlaces = 2

type CreateReservationRequest struct {
	RoomID          string `json:"room_id"          validate:"required,uuid"`
	UserID          string `json:"user_id"          validate:"omitempty,uuid"`
	ReservationDate string `json:"reservation_date" validate:"required,date"`
	StartTime       string `json:"start_time"       validate:"required,clocktime"`
	EndTime         string `json:"end_time"         validate:"required,clocktime"`
	Status          string `json:"status"           validate:"omitempty,oneof=pending_payment booked"`
}

// Slot parses the requested date and window.
func (c *CreateReservationRequest) Slot() (time.Time, schedule.Interval, error) {
	date, err := schedule.ParseDate(c.ReservationDate)
	if err != nil {
		return time.Time{}, schedule.Interval{}, err //nolint:wrapcheck
	}

	interval, err := schedule.ParseInterval(c.StartTime, c.EndTime)
	if err != nil {
		return time.Time{}, schedule.Interval{}, err //nolint:wrapcheck
	}

	return date, interval, nil
}

// UpdateReservationRequest carries the fields to change. Empty fields keep
// their current value.
type UpdateReservationRequest struct {
	RoomID          string `json:"room_id"          validate:"omitempty,uuid"`
	ReservationDate string `json:"reservation_date" validate:"omitempty,date"`
	StartTime       string `json:"start_time"       validate:"omitempty,clocktime"`
	EndTime         string `json:"end_time"         validate:"omitempty,clocktime"`
	Status          string `json:"status"           validate:"omitempty,oneof=pending_payment booked cancelled completed"`
}

func (u *UpdateReservationRequest) IsEmpty() bool {
	return !u.ChangesSlot() && u.Status == constant.Empty
}

// ChangesSlot reports whether the room, date or window is being changed,
// which is when the price is recomputed.
func (u *UpdateReservationRequest) ChangesSlot() bool {
	return u.RoomID != constant.Empty ||
		u.ReservationDate != constant.Empty ||
		u.StartTime != constant.Empty ||
		u.EndTime != constant.Empty
}

// Apply returns current with the requested room, date and window applied.
func (u *UpdateReservationRequest) Apply(current model.Reservation) (model.Reservation, error) {
	next := current

	if u.RoomID != constant.Empty {
		next.RoomID = u.RoomID
	}

	if u.ReservationDate != constant.Empty {
		date, err := schedule.ParseDate(u.ReservationDate)
		if err != nil {
			return current, err //nolint:wrapcheck
		}

		next.ReservationDate = date
	}

	if u.StartTime != constant.Empty {
		start, err := schedule.ParseClockTime(u.StartTime)
		if err != nil {
			return current, err //nolint:wrapcheck
		}

		next.StartTime = start
	}

	if u.EndTime != constant.Empty {
		end, err := schedule.ParseClockTime(u.EndTime)
		if err != nil {
			return current, err //nolint:wrapcheck
		}

		next.EndTime = end
	}

	if _, err := schedule.NewInterval(next.StartTime, next.EndTime); err != nil {
		return current, err //nolint:wrapcheck
	}

	return next, nil
}

type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=booked cancelled completed"`
}

type AvailabilityRequest struct {
	StartDate string `json:"startDate" validate:"required,date"`
	EndDate   string `json:"endDate"   validate:"required,date"`
	StartTime string `json:"startTime" validate:"required,clocktime"`
	EndTime   string `json:"endTime"   validate:"required,clocktime"`
}

// Window parses the requested dates and window. The date range is inclusive.
func (a *AvailabilityRequest) Window() (from, to time.Time, interval schedule.Interval, err error) {
	from, err = schedule.ParseDate(a.StartDate)
	if err != nil {
		return from, to, interval, err //nolint:wrapcheck
	}

	to, err = schedule.ParseDate(a.EndDate)
	if err != nil {
		return from, to, interval, err //nolint:wrapcheck
	}

	if to.Before(from) {
		return from, to, interval, model.ErrInvalidDateRange
	}

	interval, err = schedule.ParseInterval(a.StartTime, a.EndTime)

	return from, to, interval, err //nolint:wrapcheck
}

type ReservationResponse struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	Username        string `json:"username,omitempty"`
	RoomID          string `json:"room_id"`
	RoomName        string `json:"room_name,omitempty"`
	ReservationDate string `json:"reservation_date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Status          string `json:"status"`
	TotalPrice      string `json:"total_price"`
	gDto.Metadata
}

func (r *ReservationResponse) FromModel(model model.Reservation) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.RoomID = model.RoomID
	r.ReservationDate = model.ReservationDate.Format(constant.DateOnlyFormat)
	r.StartTime = model.StartTime.String()
	r.EndTime = model.EndTime.String()
	r.Status = model.Status.String()
	r.TotalPrice = model.TotalPrice.StringFixed(pricePlaces)
	r.Metadata.FromModel(model.Metadata)
}

func (r *ReservationResponse) FromDetail(detail model.ReservationDetail) {
	r.FromModel(detail.Reservation)
	r.RoomName = detail.RoomName
	r.Username = detail.Username
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromDetails(details []model.ReservationDetail, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(details))
	for i, detail := range details {
		r.Reservations[i].FromDetail(detail)
	}
}

type RoomAvailability struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	PricePerHour string  `json:"pricePerHour"`
	Available    bool    `json:"available"`
}

func (r *RoomAvailability) FromModel(room roomModel.Room, available bool) {
	r.ID = room.ID
	r.Name = room.Name
	r.Description = room.Description
	r.PricePerHour = room.PricePerHour.StringFixed(pricePlaces)
	r.Available = available
}

type DailyRevenue struct {
	Date  string `json:"date"`
	Total string `json:"total"`
}

type DailyBookings struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DashboardStatsResponse struct {
	TotalRooms        int             `json:"totalRooms"`
	TotalReservations int             `json:"totalReservations"`
	Revenue           []DailyRevenue  `json:"revenue"`
	Bookings          []DailyBookings `json:"bookings"`
}

// FromDailyStats lays stats out over every day from from to to inclusive.
// Days without reservations are reported as zero.
func (d *DashboardStatsResponse) FromDailyStats(stats []model.DailyStat, from, to time.Time) {
	byDay := make(map[string]model.DailyStat, len(stats))
	for _, stat := range stats {
		byDay[stat.Date.Format(constant.DateOnlyFormat)] = stat
	}

	d.Revenue = []DailyRevenue{}
	d.Bookings = []DailyBookings{}

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(constant.DateOnlyFormat)

		stat, ok := byDay[key]
		if !ok {
			stat.Revenue = decimal.Zero
		}

		d.Revenue = append(d.Revenue, DailyRevenue{Date: key, Total: stat.Revenue.StringFixed(pricePlaces)})
		d.Bookings = append(d.Bookings, DailyBookings{Date: key, Count: stat.Count})
	}
}
