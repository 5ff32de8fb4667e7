package utils

import (
	"github.com/shopspring/decimal"

	"filmrental-backend/internal/domain"
)

// positionMultipliers is the progressive discount policy, indexed by 1-based
// position in the rental (index 0 is position 1). Positions past the end of
// the table pay full price.
var positionMultipliers = []decimal.Decimal{
	decimal.NewFromInt(1),      // 1st film
	decimal.NewFromInt(1),      // 2nd film
	decimal.NewFromFloat(0.75), // 3rd film: 25% off
	decimal.NewFromFloat(0.50), // 4th film: 50% off
	decimal.NewFromFloat(0.25), // 5th film: 75% off
	decimal.Zero,               // 6th film: free
}

// RentalPriceBreakdown provides the per-position charges of a rental
type RentalPriceBreakdown struct {
	Lines    []domain.RentalLine
	Subtotal decimal.Decimal // sum of unit prices before discount
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// DiscountMultiplier returns the fraction of the unit price charged for the
// film at the given 1-based position.
func DiscountMultiplier(position int) decimal.Decimal {
	if position < 1 || position > len(positionMultipliers) {
		return decimal.NewFromInt(1)
	}
	return positionMultipliers[position-1]
}

// CalculateRentalTotal returns the price of renting films in the given order.
// The discount depends only on each film's position in the list, never on
// which film is cheapest.
func CalculateRentalTotal(films []domain.Film) decimal.Decimal {
	total := decimal.Zero
	for i, film := range films {
		total = total.Add(film.RentalPrice.Mul(DiscountMultiplier(i + 1)))
	}
	return total
}

// CalculateRentalTotalWithBreakdown provides the detailed charge for each position
func CalculateRentalTotalWithBreakdown(films []domain.Film) RentalPriceBreakdown {
	breakdown := RentalPriceBreakdown{
		Lines:    make([]domain.RentalLine, 0, len(films)),
		Subtotal: decimal.Zero,
		Total:    decimal.Zero,
	}

	for i, film := range films {
		multiplier := DiscountMultiplier(i + 1)
		amount := film.RentalPrice.Mul(multiplier)
		breakdown.Lines = append(breakdown.Lines, domain.RentalLine{
			Position:   i + 1,
			FilmID:     film.ID,
			UnitPrice:  film.RentalPrice,
			Multiplier: multiplier,
			Amount:     amount,
		})
		breakdown.Subtotal = breakdown.Subtotal.Add(film.RentalPrice)
		breakdown.Total = breakdown.Total.Add(amount)
	}

	breakdown.Discount = breakdown.Subtotal.Sub(breakdown.Total)
	return breakdown
}
