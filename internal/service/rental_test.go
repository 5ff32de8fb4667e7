package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"filmrental-backend/internal/domain"
	"filmrental-backend/internal/service"
	"filmrental-backend/internal/utils"
)

// 2024-06-03 is a Monday.
var monday = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) service.RentalServiceOption {
	return service.WithClock(func() time.Time { return t })
}

func newCustomer(id int32, name string) *domain.Customer {
	return &domain.Customer{ID: id, Name: name, Email: fmt.Sprintf("customer%d@test.com", id)}
}

func newFilm(id int32, price string) domain.Film {
	return domain.Film{
		ID:          id,
		Title:       fmt.Sprintf("Film %d", id),
		RentalPrice: decimal.RequireFromString(price),
		StockCount:  2,
	}
}

func newFilms(n int, price string) []domain.Film {
	films := make([]domain.Film, 0, n)
	for i := 1; i <= n; i++ {
		films = append(films, newFilm(int32(i), price))
	}
	return films
}

type rentalFixture struct {
	rentalRepo      *MockRentalRepo
	delinquencyRepo *MockDelinquencyRepo
	emailSvc        *MockEmailService
	svc             service.RentalService
}

func newRentalFixture(now time.Time) *rentalFixture {
	f := &rentalFixture{
		rentalRepo:      new(MockRentalRepo),
		delinquencyRepo: new(MockDelinquencyRepo),
		emailSvc:        new(MockEmailService),
	}
	f.svc = service.NewRentalService(f.rentalRepo, f.delinquencyRepo, f.emailSvc, fixedClock(now))
	return f
}

func (f *rentalFixture) assertNothingPersisted(t *testing.T) {
	f.rentalRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRentalService_RentFilms(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newRentalFixture(monday)
		customer := newCustomer(1, "Customer")
		films := []domain.Film{newFilm(3, "5.00"), newFilm(1, "4.00"), newFilm(2, "4.00")}

		f.delinquencyRepo.On("IsDelinquent", ctx, customer.ID).Return(false, nil)
		f.rentalRepo.On("Create", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)

		res, err := f.svc.RentFilms(ctx, customer, films)
		require.NoError(t, err)
		require.NotNil(t, res)

		assert.NotEqual(t, uuid.Nil, res.ID)
		assert.Equal(t, customer, res.Customer)
		assert.Equal(t, films, res.Films)
		assert.True(t, decimal.RequireFromString("12").Equal(res.TotalPrice), "got %s", res.TotalPrice)
		assert.True(t, utils.CalculateRentalTotal(films).Round(2).Equal(res.TotalPrice))
		require.Len(t, res.Lines, 3)
		assert.Equal(t, int32(2), res.Lines[2].FilmID)
		assert.True(t, utils.SameDate(res.RentalDate, monday))
		assert.True(t, utils.SameDate(res.ReturnDate, monday.AddDate(0, 0, 1)))

		f.rentalRepo.AssertNumberOfCalls(t, "Create", 1)
		f.delinquencyRepo.AssertNumberOfCalls(t, "IsDelinquent", 1)
	})

	t.Run("Rented on Saturday returns on Monday", func(t *testing.T) {
		saturday := monday.AddDate(0, 0, 5)
		f := newRentalFixture(saturday)
		customer := newCustomer(1, "Customer")

		f.delinquencyRepo.On("IsDelinquent", ctx, customer.ID).Return(false, nil)
		f.rentalRepo.On("Create", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)

		res, err := f.svc.RentFilms(ctx, customer, newFilms(1, "4.00"))
		require.NoError(t, err)
		assert.True(t, utils.IsWeekday(res.ReturnDate, time.Monday))
		assert.Equal(t, 2, utils.DaysBetween(res.RentalDate, res.ReturnDate))
	})

	t.Run("Rented on Friday returns on Saturday", func(t *testing.T) {
		friday := monday.AddDate(0, 0, 4)
		f := newRentalFixture(friday)
		customer := newCustomer(1, "Customer")

		f.delinquencyRepo.On("IsDelinquent", ctx, customer.ID).Return(false, nil)
		f.rentalRepo.On("Create", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)

		res, err := f.svc.RentFilms(ctx, customer, newFilms(1, "4.00"))
		require.NoError(t, err)
		assert.True(t, utils.IsWeekday(res.ReturnDate, time.Saturday))
	})

	t.Run("Empty film list", func(t *testing.T) {
		for name, films := range map[string][]domain.Film{"nil": nil, "empty": {}} {
			t.Run(name, func(t *testing.T) {
				f := newRentalFixture(monday)

				res, err := f.svc.RentFilms(ctx, newCustomer(1, "Customer"), films)
				assert.Nil(t, res)
				assert.ErrorIs(t, err, domain.ErrEmptyFilmList)
				assert.True(t, domain.IsKind(err, domain.KindEmptyFilmList))
				f.assertNothingPersisted(t)
				f.delinquencyRepo.AssertNotCalled(t, "IsDelinquent", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("Film out of stock", func(t *testing.T) {
		f := newRentalFixture(monday)
		films := newFilms(3, "4.00")
		films[1].StockCount = 0
		films[2].StockCount = 0

		res, err := f.svc.RentFilms(ctx, newCustomer(1, "Customer"), films)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, domain.ErrOutOfStock)

		var rentalErr *domain.RentalError
		require.ErrorAs(t, err, &rentalErr)
		assert.Equal(t, films[1].ID, rentalErr.FilmID)
		assert.Equal(t, 2, rentalErr.Position)
		f.assertNothingPersisted(t)
		f.delinquencyRepo.AssertNotCalled(t, "IsDelinquent", mock.Anything, mock.Anything)
	})

	t.Run("Empty customer", func(t *testing.T) {
		f := newRentalFixture(monday)

		res, err := f.svc.RentFilms(ctx, nil, newFilms(1, "4.00"))
		assert.Nil(t, res)
		assert.ErrorIs(t, err, domain.ErrEmptyCustomer)
		f.assertNothingPersisted(t)
		f.delinquencyRepo.AssertNotCalled(t, "IsDelinquent", mock.Anything, mock.Anything)
	})

	t.Run("Film checks run before the customer check", func(t *testing.T) {
		f := newRentalFixture(monday)

		_, err := f.svc.RentFilms(ctx, nil, nil)
		assert.ErrorIs(t, err, domain.ErrEmptyFilmList)

		films := newFilms(1, "4.00")
		films[0].StockCount = 0
		_, err = f.svc.RentFilms(ctx, nil, films)
		assert.ErrorIs(t, err, domain.ErrOutOfStock)
	})

	t.Run("Customer blacklisted", func(t *testing.T) {
		f := newRentalFixture(monday)
		customer := newCustomer(7, "Delinquent")

		f.delinquencyRepo.On("IsDelinquent", ctx, customer.ID).Return(true, nil)

		res, err := f.svc.RentFilms(ctx, customer, newFilms(2, "4.00"))
		assert.Nil(t, res)
		assert.ErrorIs(t, err, domain.ErrCustomerBlacklisted)
		assert.Equal(t, domain.KindCustomerBlacklisted, domain.KindOf(err))

		f.delinquencyRepo.AssertCalled(t, "IsDelinquent", ctx, customer.ID)
		f.delinquencyRepo.AssertNumberOfCalls(t, "IsDelinquent", 1)
		f.assertNothingPersisted(t)
	})

	t.Run("Registry failure", func(t *testing.T) {
		f := newRentalFixture(monday)
		customer := newCustomer(1, "Customer")

		f.delinquencyRepo.On("IsDelinquent", ctx, customer.ID).Return(false, errors.New("registry unavailable"))

		res, err := f.svc.RentFilms(ctx, customer, newFilms(1, "4.00"))
		assert.Nil(t, res)
		assert.Error(t, err)
		assert.Equal(t, domain.ErrorKind(""), domain.KindOf(err))
		assert.Contains(t, err.Error(), "registry unavailable")
		f.assertNothingPersisted(t)
	})

	t.Run("Store failure", func(t *testing.T) {
		f := newRentalFixture(monday)
		customer := newCustomer(1, "Customer")

		f.delinquencyRepo.On("IsDelinquent", ctx, customer.ID).Return(false, nil)
		f.rentalRepo.On("Create", ctx, mock.AnythingOfType("*domain.Rental")).Return(errors.New("connection reset"))

		res, err := f.svc.RentFilms(ctx, customer, newFilms(1, "4.00"))
		assert.Nil(t, res)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "save rental")
		f.rentalRepo.AssertNumberOfCalls(t, "Create", 1)
	})
}

func TestRentalService_RentFilms_DiscountTable(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		count    int
		expected string
	}{
		{"2 films", 2, "8.00"},
		{"3 films", 3, "11.00"},
		{"4 films", 4, "13.00"},
		{"5 films", 5, "14.00"},
		{"6 films", 6, "14.00"},
		{"7 films", 7, "18.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRentalFixture(monday)
			customer := newCustomer(1, "Customer")
			f.delinquencyRepo.On("IsDelinquent", ctx, customer.ID).Return(false, nil)
			f.rentalRepo.On("Create", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)

			res, err := f.svc.RentFilms(ctx, customer, newFilms(tt.count, "4.00"))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.TotalPrice.StringFixed(2))
		})
	}
}

func TestRentalService_RentFilms_RoundsTotal(t *testing.T) {
	ctx := context.Background()
	f := newRentalFixture(monday)
	customer := newCustomer(1, "Customer")
	f.delinquencyRepo.On("IsDelinquent", ctx, customer.ID).Return(false, nil)
	f.rentalRepo.On("Create", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)

	// 3.99 + 3.99 + 0.75 * 3.99 = 10.9725
	res, err := f.svc.RentFilms(ctx, customer, newFilms(3, "3.99"))
	require.NoError(t, err)
	assert.Equal(t, "10.97", res.TotalPrice.String())
}

func TestRentalService_ReturnRental(t *testing.T) {
	ctx := context.Background()
	now := monday.AddDate(0, 0, 1)

	t.Run("Success", func(t *testing.T) {
		f := newRentalFixture(now)
		id := uuid.New()
		rental := &domain.Rental{ID: id, Customer: newCustomer(1, "Customer"), RentalDate: monday, ReturnDate: now}

		f.rentalRepo.On("GetByID", ctx, id).Return(rental, nil)
		f.rentalRepo.On("MarkReturned", ctx, id, now).Return(nil)

		res, err := f.svc.ReturnRental(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, res.ReturnedOn)
		assert.Equal(t, now, *res.ReturnedOn)
	})

	t.Run("Already returned", func(t *testing.T) {
		f := newRentalFixture(now)
		id := uuid.New()
		returned := monday
		rental := &domain.Rental{ID: id, Customer: newCustomer(1, "Customer"), ReturnedOn: &returned}

		f.rentalRepo.On("GetByID", ctx, id).Return(rental, nil)

		res, err := f.svc.ReturnRental(ctx, id)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, domain.ErrAlreadyReturned)
		f.rentalRepo.AssertNotCalled(t, "MarkReturned", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Concurrent return", func(t *testing.T) {
		f := newRentalFixture(now)
		id := uuid.New()
		rental := &domain.Rental{ID: id, Customer: newCustomer(1, "Customer")}

		f.rentalRepo.On("GetByID", ctx, id).Return(rental, nil)
		f.rentalRepo.On("MarkReturned", ctx, id, now).Return(fmt.Errorf("pending rental %s: %w", id, domain.ErrNotFound))

		_, err := f.svc.ReturnRental(ctx, id)
		assert.ErrorIs(t, err, domain.ErrAlreadyReturned)
	})

	t.Run("Not found", func(t *testing.T) {
		f := newRentalFixture(now)
		id := uuid.New()

		f.rentalRepo.On("GetByID", ctx, id).Return(nil, domain.ErrNotFound)

		_, err := f.svc.ReturnRental(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRentalService_NotifyOverdueRentals(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	newRental := func(customer *domain.Customer, daysLate int) domain.Rental {
		due := today.AddDate(0, 0, -daysLate)
		return domain.Rental{
			ID:         uuid.New(),
			Customer:   customer,
			Films:      newFilms(1, "4.00"),
			RentalDate: due.AddDate(0, 0, -1),
			ReturnDate: due,
		}
	}

	t.Run("One notice per overdue rental", func(t *testing.T) {
		f := newRentalFixture(today)
		late := newCustomer(1, "Late")
		onTime := newCustomer(2, "On time")
		twiceLate := newCustomer(3, "Twice late")

		rentals := []domain.Rental{
			newRental(late, 2),
			newRental(onTime, 0),
			newRental(twiceLate, 1),
			newRental(twiceLate, 5),
		}
		f.rentalRepo.On("ListPending", ctx, utils.StartOfDay(today)).Return(rentals, nil)
		f.emailSvc.On("SendOverdueNotification", ctx, mock.Anything, mock.Anything).Return(nil)

		sent, err := f.svc.NotifyOverdueRentals(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, sent)

		f.emailSvc.AssertNumberOfCalls(t, "SendOverdueNotification", 3)
		f.emailSvc.AssertCalled(t, "SendOverdueNotification", ctx, late, &rentals[0])
		f.emailSvc.AssertNotCalled(t, "SendOverdueNotification", ctx, onTime, mock.Anything)

		perCustomer := map[int32]int{}
		for _, call := range f.emailSvc.Calls {
			perCustomer[call.Arguments.Get(1).(*domain.Customer).ID]++
		}
		assert.Equal(t, map[int32]int{1: 1, 3: 2}, perCustomer)
	})

	t.Run("Failed notice does not stop the batch", func(t *testing.T) {
		f := newRentalFixture(today)
		first := newCustomer(1, "First")
		second := newCustomer(2, "Second")

		rentals := []domain.Rental{newRental(first, 1), newRental(second, 1)}
		f.rentalRepo.On("ListPending", ctx, utils.StartOfDay(today)).Return(rentals, nil)
		f.emailSvc.On("SendOverdueNotification", ctx, first, mock.Anything).Return(errors.New("mailbox full"))
		f.emailSvc.On("SendOverdueNotification", ctx, second, mock.Anything).Return(nil)

		sent, err := f.svc.NotifyOverdueRentals(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, sent)
		f.emailSvc.AssertNumberOfCalls(t, "SendOverdueNotification", 2)
	})

	t.Run("Rental without customer is skipped", func(t *testing.T) {
		f := newRentalFixture(today)
		late := newCustomer(1, "Late")

		rentals := []domain.Rental{newRental(nil, 3), newRental(late, 1)}
		f.rentalRepo.On("ListPending", ctx, utils.StartOfDay(today)).Return(rentals, nil)
		f.emailSvc.On("SendOverdueNotification", ctx, late, mock.Anything).Return(nil)

		sent, err := f.svc.NotifyOverdueRentals(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, sent)
		f.emailSvc.AssertNumberOfCalls(t, "SendOverdueNotification", 1)
	})

	t.Run("Overdue across time zones", func(t *testing.T) {
		brt := time.FixedZone("BRT", -3*60*60)
		now := time.Date(2024, 6, 5, 10, 0, 0, 0, brt)
		f := newRentalFixture(now)
		customer := newCustomer(1, "Late")

		// Due 2024-06-04 23:30 BRT, as read back from the database in UTC.
		rentals := []domain.Rental{{
			ID:         uuid.New(),
			Customer:   customer,
			ReturnDate: time.Date(2024, 6, 5, 2, 30, 0, 0, time.UTC),
		}}
		f.rentalRepo.On("ListPending", ctx, utils.StartOfDay(now)).Return(rentals, nil)
		f.emailSvc.On("SendOverdueNotification", ctx, customer, mock.Anything).Return(nil)

		sent, err := f.svc.NotifyOverdueRentals(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, sent)
	})

	t.Run("Nothing pending", func(t *testing.T) {
		f := newRentalFixture(today)
		f.rentalRepo.On("ListPending", ctx, utils.StartOfDay(today)).Return([]domain.Rental{}, nil)

		sent, err := f.svc.NotifyOverdueRentals(ctx)
		assert.NoError(t, err)
		assert.Zero(t, sent)
		f.emailSvc.AssertNotCalled(t, "SendOverdueNotification", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Store failure", func(t *testing.T) {
		f := newRentalFixture(today)
		f.rentalRepo.On("ListPending", ctx, utils.StartOfDay(today)).Return(nil, errors.New("connection refused"))

		sent, err := f.svc.NotifyOverdueRentals(ctx)
		assert.Error(t, err)
		assert.Zero(t, sent)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		f := newRentalFixture(today)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		f.rentalRepo.On("ListPending", cctx, utils.StartOfDay(today)).Return([]domain.Rental{newRental(newCustomer(1, "Late"), 1)}, nil)

		sent, err := f.svc.NotifyOverdueRentals(cctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, sent)
		f.emailSvc.AssertNotCalled(t, "SendOverdueNotification", mock.Anything, mock.Anything, mock.Anything)
	})
}
