package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Rental struct {
	ID         uuid.UUID       `json:"id"`
	Customer   *Customer       `json:"customer"`
	Films      []Film          `json:"films"`
	Lines      []RentalLine    `json:"lines"`
	TotalPrice decimal.Decimal `json:"total_price"`
	RentalDate time.Time       `json:"rental_date"`
	ReturnDate time.Time       `json:"return_date"`
	ReturnedOn *time.Time      `json:"returned_on,omitempty"`
	CreatedOn  time.Time       `json:"created_on"`
}

// RentalLine is the charge for one film at its position in the rental.
// Position is 1-based and follows request order.
type RentalLine struct {
	Position   int             `json:"position"`
	FilmID     int32           `json:"film_id"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Amount     decimal.Decimal `json:"amount"`
}

// IsPending reports whether the films have not been brought back yet.
func (r *Rental) IsPending() bool {
	return r.ReturnedOn == nil
}

// IsOverdueOn reports whether the rental is still out after its return day.
// Only calendar days are compared, in day's location; a rental due today is not overdue.
func (r *Rental) IsOverdueOn(day time.Time) bool {
	if !r.IsPending() {
		return false
	}
	rd := r.ReturnDate.In(day.Location())
	due := time.Date(rd.Year(), rd.Month(), rd.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today)
}
