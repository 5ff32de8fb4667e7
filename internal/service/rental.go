package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"filmrental-backend/internal/domain"
	"filmrental-backend/internal/logger"
	"filmrental-backend/internal/repository"
	"filmrental-backend/internal/utils"
)

type rentalService struct {
	rentalRepo      repository.RentalRepository
	delinquencyRepo repository.DelinquencyRepository
	emailSvc        EmailService
	now             func() time.Time
}

// RentalServiceOption customizes a rental service.
type RentalServiceOption func(*rentalService)

// WithClock replaces time.Now as the source of rental and overdue dates.
func WithClock(now func() time.Time) RentalServiceOption {
	return func(s *rentalService) {
		s.now = now
	}
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	delinquencyRepo repository.DelinquencyRepository,
	emailSvc EmailService,
	opts ...RentalServiceOption,
) RentalService {
	s := &rentalService{
		rentalRepo:      rentalRepo,
		delinquencyRepo: delinquencyRepo,
		emailSvc:        emailSvc,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *rentalService) RentFilms(ctx context.Context, customer *domain.Customer, films []domain.Film) (*domain.Rental, error) {
	const method = "rentalService.RentFilms"
	logger.EnterMethod(method, "films", len(films))

	if len(films) == 0 {
		return nil, reject(method, domain.NewRentalError(domain.KindEmptyFilmList))
	}
	for i, film := range films {
		if !film.InStock() {
			return nil, reject(method, domain.NewOutOfStockError(film, i+1))
		}
	}
	if customer == nil {
		return nil, reject(method, domain.NewRentalError(domain.KindEmptyCustomer))
	}

	listed, err := s.delinquencyRepo.IsDelinquent(ctx, customer.ID)
	if err != nil {
		logger.ExitMethodWithError(method, err, "customerID", customer.ID, "reason", "delinquency lookup failed")
		return nil, fmt.Errorf("check delinquency registry: %w", err)
	}
	if listed {
		return nil, reject(method, domain.NewRentalError(domain.KindCustomerBlacklisted), "customerID", customer.ID)
	}

	breakdown := utils.CalculateRentalTotalWithBreakdown(films)
	now := s.now()
	rentalDate, returnDate := utils.ScheduleRental(now)

	rental := &domain.Rental{
		ID:         uuid.New(),
		Customer:   customer,
		Films:      append([]domain.Film(nil), films...),
		Lines:      breakdown.Lines,
		TotalPrice: breakdown.Total.Round(2),
		RentalDate: rentalDate,
		ReturnDate: returnDate,
		CreatedOn:  now,
	}

	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		logger.ExitMethodWithError(method, err, "customerID", customer.ID)
		return nil, fmt.Errorf("save rental: %w", err)
	}

	logger.Info("Rental created",
		"rental_id", rental.ID,
		"customer_id", customer.ID,
		"films", len(films),
		"total", rental.TotalPrice.StringFixed(2),
		"return_date", rental.ReturnDate.Format("2006-01-02"))
	logger.ExitMethod(method, "rentalID", rental.ID)
	return rental, nil
}

func (s *rentalService) GetRental(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	return s.rentalRepo.GetByID(ctx, id)
}

func (s *rentalService) ReturnRental(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	const method = "rentalService.ReturnRental"
	logger.EnterMethod(method, "rentalID", id)

	rt, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError(method, err, "rentalID", id)
		return nil, err
	}
	if !rt.IsPending() {
		return nil, reject(method, domain.NewRentalError(domain.KindAlreadyReturned), "rentalID", id)
	}

	now := s.now()
	if err := s.rentalRepo.MarkReturned(ctx, id, now); err != nil {
		// Lost a race with another return of the same rental.
		if errors.Is(err, domain.ErrNotFound) {
			return nil, reject(method, domain.NewRentalError(domain.KindAlreadyReturned), "rentalID", id)
		}
		logger.ExitMethodWithError(method, err, "rentalID", id)
		return nil, err
	}
	rt.ReturnedOn = &now

	logger.ExitMethod(method, "rentalID", id, "late", rt.IsOverdueOn(now))
	return rt, nil
}

// NotifyOverdueRentals notifies once per overdue rental, so a customer with two
// late rentals receives two notices. A failed notice is logged and skipped.
func (s *rentalService) NotifyOverdueRentals(ctx context.Context) (int, error) {
	const method = "rentalService.NotifyOverdueRentals"
	now := s.now()
	logger.EnterMethod(method, "asOf", now)

	rentals, err := s.rentalRepo.ListPending(ctx, utils.StartOfDay(now))
	if err != nil {
		logger.ExitMethodWithError(method, err)
		return 0, fmt.Errorf("list pending rentals: %w", err)
	}

	sent, failed := 0, 0
	for i := range rentals {
		if err := ctx.Err(); err != nil {
			logger.ExitMethodWithError(method, err, "sent", sent)
			return sent, err
		}

		rt := &rentals[i]
		if !rt.IsOverdueOn(now) {
			logger.Debug("Skipping rental that is not overdue", "rental_id", rt.ID)
			continue
		}
		if rt.Customer == nil {
			failed++
			logger.Warn("Overdue rental has no customer", "rental_id", rt.ID)
			continue
		}

		if err := s.emailSvc.SendOverdueNotification(ctx, rt.Customer, rt); err != nil {
			failed++
			logger.Error("Failed to send overdue notification",
				"rental_id", rt.ID,
				"customer_id", rt.Customer.ID,
				"email", rt.Customer.Email,
				"error", err)
			continue
		}

		sent++
		logger.Debug("Sent overdue notification",
			"rental_id", rt.ID,
			"customer_id", rt.Customer.ID,
			"days_late", utils.DaysBetween(rt.ReturnDate, now))
	}

	logger.Info("Overdue notifications sent", "pending", len(rentals), "sent", sent, "failed", failed)
	logger.ExitMethod(method, "sent", sent)
	return sent, nil
}

func reject(method string, err *domain.RentalError, args ...any) error {
	logger.ExitMethodRejected(method, err, args...)
	return err
}
