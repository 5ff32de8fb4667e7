package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"filmrental-backend/internal/domain"
)

type CustomerRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Customer, error)
}

type FilmRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Film, error)
	// GetByIDs returns the films in the order of ids. Repeated ids yield repeated films.
	GetByIDs(ctx context.Context, ids []int32) ([]domain.Film, error)
}

type RentalRepository interface {
	// Create persists the rental with its films and price lines atomically.
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Rental, error)
	MarkReturned(ctx context.Context, id uuid.UUID, returnedOn time.Time) error
	// ListPending returns rentals not yet returned whose return date is before asOf.
	ListPending(ctx context.Context, asOf time.Time) ([]domain.Rental, error)
}

// DelinquencyRepository is the registry of customers barred from renting.
type DelinquencyRepository interface {
	IsDelinquent(ctx context.Context, customerID int32) (bool, error)
}
