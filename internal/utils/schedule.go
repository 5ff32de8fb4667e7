package utils

import "time"

// ScheduleRental returns the rental and return dates for a rental made at now.
// Films are due back the next day; a Sunday due date moves to Monday.
// Saturday is not deferred.
func ScheduleRental(now time.Time) (rentalDate, returnDate time.Time) {
	rentalDate = now
	returnDate = AddDays(now, 1)
	if IsWeekday(returnDate, time.Sunday) {
		returnDate = AddDays(returnDate, 1)
	}
	return rentalDate, returnDate
}
