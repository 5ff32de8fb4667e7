package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"filmrental-backend/internal/domain"
	"filmrental-backend/internal/logger"
	"filmrental-backend/internal/repository"
)

type filmRepository struct {
	db *sql.DB
}

func NewFilmRepository(db *sql.DB) repository.FilmRepository {
	return &filmRepository{db: db}
}

func (r *filmRepository) GetByID(ctx context.Context, id int32) (*domain.Film, error) {
	f := &domain.Film{}
	query := `SELECT id, title, rental_price, stock_count FROM films WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.Title, &f.RentalPrice, &f.StockCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("film %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *filmRepository) GetByIDs(ctx context.Context, ids []int32) ([]domain.Film, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id, title, rental_price, stock_count FROM films WHERE id = ANY($1)`
	logger.DatabaseCall("SELECT", "films", "ids", ids)
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int32]domain.Film, len(ids))
	for rows.Next() {
		var f domain.Film
		if err := rows.Scan(&f.ID, &f.Title, &f.RentalPrice, &f.StockCount); err != nil {
			return nil, err
		}
		byID[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(byID)), nil)

	films := make([]domain.Film, 0, len(ids))
	for _, id := range ids {
		f, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("film %d: %w", id, domain.ErrNotFound)
		}
		films = append(films, f)
	}
	return films, nil
}
