package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"filmrental-backend/internal/domain"
	"filmrental-backend/internal/logger"
	"filmrental-backend/internal/repository"
)

const rentalColumns = `r.id, r.total_price, r.rental_date, r.return_date, r.returned_on, r.created_on, c.id, c.name, c.email`

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) (err error) {
	logger.EnterMethod("rentalRepository.Create", "rentalID", rt.ID, "lines", len(rt.Lines))
	if rt.Customer == nil {
		return errors.New("rental has no customer")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.Create", err, "reason", "failed to begin transaction")
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("Failed to roll back rental insert", "rentalID", rt.ID, "error", rbErr)
			}
			logger.ExitMethodWithError("rentalRepository.Create", err, "rentalID", rt.ID)
		}
	}()

	query := `INSERT INTO rentals (id, customer_id, total_price, rental_date, return_date, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	logger.DatabaseCall("INSERT", "rentals", "rentalID", rt.ID, "customerID", rt.Customer.ID)
	if _, err = tx.ExecContext(ctx, query, rt.ID, rt.Customer.ID, rt.TotalPrice, rt.RentalDate, rt.ReturnDate, rt.CreatedOn); err != nil {
		return fmt.Errorf("insert rental: %w", err)
	}

	lineQuery := `INSERT INTO rental_films (rental_id, position, film_id, unit_price, multiplier, amount)
	              VALUES ($1, $2, $3, $4, $5, $6)`
	for _, line := range rt.Lines {
		if _, err = tx.ExecContext(ctx, lineQuery, rt.ID, line.Position, line.FilmID, line.UnitPrice, line.Multiplier, line.Amount); err != nil {
			return fmt.Errorf("insert rental film at position %d: %w", line.Position, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit rental: %w", err)
	}
	logger.ExitMethod("rentalRepository.Create", "rentalID", rt.ID)
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + `
	          FROM rentals r JOIN customers c ON c.id = r.customer_id
	          WHERE r.id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rental %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rentals := []domain.Rental{*rt}
	if err := r.loadLines(ctx, rentals); err != nil {
		return nil, err
	}
	return &rentals[0], nil
}

func (r *rentalRepository) MarkReturned(ctx context.Context, id uuid.UUID, returnedOn time.Time) error {
	query := `UPDATE rentals SET returned_on = $1 WHERE id = $2 AND returned_on IS NULL`
	logger.DatabaseCall("UPDATE", "rentals", "rentalID", id)
	result, err := r.db.ExecContext(ctx, query, returnedOn, id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UPDATE", rows, nil, "rentalID", id)
	if rows == 0 {
		return fmt.Errorf("pending rental %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *rentalRepository) ListPending(ctx context.Context, asOf time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + `
	          FROM rentals r JOIN customers c ON c.id = r.customer_id
	          WHERE r.returned_on IS NULL AND r.return_date < $1
	          ORDER BY r.return_date`
	logger.DatabaseCall("SELECT", "rentals", "asOf", asOf)
	rows, err := r.db.QueryContext(ctx, query, asOf)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(rentals)), nil)

	if err := r.loadLines(ctx, rentals); err != nil {
		return nil, err
	}
	return rentals, nil
}

// loadLines fills Films and Lines of each rental in position order.
func (r *rentalRepository) loadLines(ctx context.Context, rentals []domain.Rental) error {
	if len(rentals) == 0 {
		return nil
	}

	ids := make([]string, 0, len(rentals))
	index := make(map[uuid.UUID]int, len(rentals))
	for i := range rentals {
		ids = append(ids, rentals[i].ID.String())
		index[rentals[i].ID] = i
	}

	query := `SELECT rf.rental_id, rf.position, rf.film_id, f.title, rf.unit_price, rf.multiplier, rf.amount
	          FROM rental_films rf JOIN films f ON f.id = rf.film_id
	          WHERE rf.rental_id = ANY($1)
	          ORDER BY rf.rental_id, rf.position`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rentalID uuid.UUID
			title    string
			line     domain.RentalLine
		)
		if err := rows.Scan(&rentalID, &line.Position, &line.FilmID, &title, &line.UnitPrice, &line.Multiplier, &line.Amount); err != nil {
			return err
		}
		i, ok := index[rentalID]
		if !ok {
			continue
		}
		rentals[i].Lines = append(rentals[i].Lines, line)
		rentals[i].Films = append(rentals[i].Films, domain.Film{
			ID:          line.FilmID,
			Title:       title,
			RentalPrice: line.UnitPrice,
		})
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{Customer: &domain.Customer{}}
	var returnedOn sql.NullTime
	err := row.Scan(&rt.ID, &rt.TotalPrice, &rt.RentalDate, &rt.ReturnDate, &returnedOn, &rt.CreatedOn,
		&rt.Customer.ID, &rt.Customer.Name, &rt.Customer.Email)
	if err != nil {
		return nil, err
	}
	if returnedOn.Valid {
		t := returnedOn.Time
		rt.ReturnedOn = &t
	}
	return rt, nil
}
