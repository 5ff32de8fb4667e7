package postgres

import (
	"database/sql"

	"filmrental-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.CustomerRepository
	repository.FilmRepository
	repository.RentalRepository
	repository.DelinquencyRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		CustomerRepository:    NewCustomerRepository(db),
		FilmRepository:        NewFilmRepository(db),
		RentalRepository:      NewRentalRepository(db),
		DelinquencyRepository: NewDelinquencyRepository(db),
	}
}

// DB exposes the underlying pool for health checks and shutdown.
func (s *Store) DB() *sql.DB {
	return s.db
}
