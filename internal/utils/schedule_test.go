package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleRental(t *testing.T) {
	// 2024-06-03 is a Monday.
	monday := time.Date(2024, 6, 3, 14, 30, 0, 0, time.UTC)

	for offset := 0; offset < 7; offset++ {
		now := AddDays(monday, offset)
		t.Run(now.Weekday().String(), func(t *testing.T) {
			rentalDate, returnDate := ScheduleRental(now)

			assert.Equal(t, now, rentalDate)
			if now.Weekday() == time.Saturday {
				assert.True(t, IsWeekday(returnDate, time.Monday))
				assert.Equal(t, AddDays(now, 2), returnDate)
			} else {
				assert.Equal(t, AddDays(now, 1), returnDate)
			}
			assert.False(t, IsWeekday(returnDate, time.Sunday))
		})
	}
}

func TestScheduleRental_FridayReturnsOnSaturday(t *testing.T) {
	friday := time.Date(2024, 6, 7, 9, 0, 0, 0, time.UTC)

	_, returnDate := ScheduleRental(friday)
	assert.True(t, IsWeekday(returnDate, time.Saturday))
}
