package schedule

import (
	"fmt"
	"net/http"
	"roombook/shared/failure"

	"github.com/shopspring/decimal"
)

const pricePlaces = 2

var ErrNegativeRate = failure.New(http.StatusBadRequest, "hourly rate must not be negative")

// ComputeTotal returns rate x duration rounded half away from zero to cents.
// The product is taken on minutes before dividing so that thirds of an hour
// do not accumulate division error.
func ComputeTotal(rate decimal.Decimal, start, end ClockTime) (decimal.Decimal, error) {
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNegativeRate, rate)
	}

	interval, err := NewInterval(start, end)
	if err != nil {
		return decimal.Zero, err
	}

	minutes := decimal.NewFromInt(int64(interval.End - interval.Start))

	return rate.Mul(minutes).Div(decimal.NewFromInt(minutesPerHour)).Round(pricePlaces), nil
}
