package model

import (
	"roombook/internal/domains/reservation/schedule"
	"roombook/shared/model"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	// CacheKeyStats holds the dashboard stats. Any status change drops it.
	CacheKeyStats = "reservation:stats"

	FieldID              = "id"
	FieldUserID          = "user_id"
	FieldRoomID          = "room_id"
	FieldReservationDate = "reservation_date"
	FieldStartTime       = "start_time"
	FieldEndTime         = "end_time"
	FieldStatus          = "status"
	FieldTotalPrice      = "total_price"
)

// Reservation is one room held for a half-open window on a single date.
type Reservation struct {
	ID              string             `db:"id"`
	UserID          string             `db:"user_id"`
	RoomID          string             `db:"room_id"`
	ReservationDate time.Time          `db:"reservation_date"`
	StartTime       schedule.ClockTime `db:"start_time"`
	EndTime         schedule.ClockTime `db:"end_time"`
	Status          Status             `db:"status"`
	TotalPrice      decimal.Decimal    `db:"total_price"`
	model.Metadata
}

func (r Reservation) Interval() schedule.Interval {
	return schedule.Interval{Start: r.StartTime, End: r.EndTime}
}

// ReservationDetail is a reservation joined with the names of its room and owner.
type ReservationDetail struct {
	Reservation
	RoomName string `column:"name"     db:"room_name" table:"rooms"`
	Username string `column:"username" db:"username"  table:"users"`
}

func (ReservationDetail) GetJoinQuery() string {
	return "JOIN rooms ON rooms.id = reservations.room_id JOIN users ON users.id = reservations.user_id"
}

// DailyStat aggregates reservations of one calendar day.
type DailyStat struct {
	Date    time.Time       `db:"day"`
	Count   int             `db:"reservations"`
	Revenue decimal.Decimal `db:"revenue"`
}

// ConflictQuery selects reservations that would collide with Interval.
// An empty RoomID spans every room and a zero DateTo means DateFrom only.
type ConflictQuery struct {
	RoomID    string
	DateFrom  time.Time
	DateTo    time.Time
	Interval  schedule.Interval
	ExcludeID string
}
