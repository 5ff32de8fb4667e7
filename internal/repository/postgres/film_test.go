package postgres_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmrental-backend/internal/domain"
	"filmrental-backend/internal/repository/postgres"
)

func TestFilmRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewFilmRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM films WHERE id = \\$1").
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "rental_price", "stock_count"}).
				AddRow(3, "Alien", "4.50", 2))

		film, err := repo.GetByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "Alien", film.Title)
		assert.True(t, decimal.RequireFromString("4.5").Equal(film.RentalPrice))
		assert.Equal(t, int32(2), film.StockCount)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM films WHERE id = \\$1").
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "rental_price", "stock_count"}))

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestFilmRepository_GetByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewFilmRepository(db)
	ctx := context.Background()

	t.Run("Keeps request order and repeats", func(t *testing.T) {
		mock.ExpectQuery("FROM films WHERE id = ANY").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "rental_price", "stock_count"}).
				AddRow(1, "Alien", "4.00", 2).
				AddRow(2, "Heat", "3.00", 0).
				AddRow(3, "Ran", "5.00", 1))

		films, err := repo.GetByIDs(ctx, []int32{3, 1, 2, 1})
		require.NoError(t, err)
		require.Len(t, films, 4)
		assert.Equal(t, []int32{3, 1, 2, 1}, []int32{films[0].ID, films[1].ID, films[2].ID, films[3].ID})
		assert.False(t, films[2].InStock())
	})

	t.Run("Unknown id", func(t *testing.T) {
		mock.ExpectQuery("FROM films WHERE id = ANY").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "rental_price", "stock_count"}).
				AddRow(1, "Alien", "4.00", 2))

		_, err := repo.GetByIDs(ctx, []int32{1, 42})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Contains(t, err.Error(), "film 42")
	})

	t.Run("Empty request", func(t *testing.T) {
		films, err := repo.GetByIDs(ctx, nil)
		assert.NoError(t, err)
		assert.Empty(t, films)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
