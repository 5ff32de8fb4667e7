package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"filmrental-backend/internal/domain"
)

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) MarkReturned(ctx context.Context, id uuid.UUID, returnedOn time.Time) error {
	args := m.Called(ctx, id, returnedOn)
	return args.Error(0)
}
func (m *MockRentalRepo) ListPending(ctx context.Context, asOf time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}

// MockDelinquencyRepo
type MockDelinquencyRepo struct {
	mock.Mock
}

func (m *MockDelinquencyRepo) IsDelinquent(ctx context.Context, customerID int32) (bool, error) {
	args := m.Called(ctx, customerID)
	return args.Bool(0), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendOverdueNotification(ctx context.Context, customer *domain.Customer, rental *domain.Rental) error {
	args := m.Called(ctx, customer, rental)
	return args.Error(0)
}
