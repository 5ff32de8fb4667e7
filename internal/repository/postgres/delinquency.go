package postgres

import (
	"context"
	"database/sql"

	"filmrental-backend/internal/logger"
	"filmrental-backend/internal/repository"
)

type delinquencyRepository struct {
	db *sql.DB
}

func NewDelinquencyRepository(db *sql.DB) repository.DelinquencyRepository {
	return &delinquencyRepository{db: db}
}

// IsDelinquent reports whether the customer has an uncleared registry entry.
func (r *delinquencyRepository) IsDelinquent(ctx context.Context, customerID int32) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM delinquent_customers WHERE customer_id = $1 AND cleared_on IS NULL
	)`
	logger.DatabaseCall("SELECT", "delinquent_customers", "customerID", customerID)

	var listed bool
	err := r.db.QueryRowContext(ctx, query, customerID).Scan(&listed)
	logger.DatabaseResult("SELECT", 1, err, "customerID", customerID, "listed", listed)
	return listed, err
}
