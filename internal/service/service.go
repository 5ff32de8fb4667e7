package service

import (
	"context"

	"github.com/google/uuid"

	"filmrental-backend/internal/domain"
)

type RentalService interface {
	// RentFilms validates the request, prices it, schedules it and persists the rental.
	// Business rejections are returned as *domain.RentalError.
	RentFilms(ctx context.Context, customer *domain.Customer, films []domain.Film) (*domain.Rental, error)
	GetRental(ctx context.Context, id uuid.UUID) (*domain.Rental, error)
	ReturnRental(ctx context.Context, id uuid.UUID) (*domain.Rental, error)
	// NotifyOverdueRentals sends one notice per overdue rental and returns how many were sent.
	NotifyOverdueRentals(ctx context.Context) (int, error)
}

type EmailService interface {
	SendOverdueNotification(ctx context.Context, customer *domain.Customer, rental *domain.Rental) error
}
