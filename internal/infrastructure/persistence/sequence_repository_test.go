package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/retailerp/backend/internal/domain/shared"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormCounterRepository_Increment(t *testing.T) {
	t.Run("returns the advanced value in one statement", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCounterRepository(db)

		rows := sqlmock.NewRows([]string{"current_value"}).AddRow(42)
		mock.ExpectQuery(`UPDATE sequence_counters SET current_value = current_value \+ 1`).
			WithArgs("STR001-20260115").
			WillReturnRows(rows)

		value, err := repo.Increment(context.Background(), "STR001-20260115")

		require.NoError(t, err)
		assert.Equal(t, int64(42), value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when the counter row is missing", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCounterRepository(db)

		rows := sqlmock.NewRows([]string{"current_value"})
		mock.ExpectQuery(`UPDATE sequence_counters SET current_value = current_value \+ 1`).
			WithArgs("DC-20260115").
			WillReturnRows(rows)

		_, err := repo.Increment(context.Background(), "DC-20260115")

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCounterRepository_EnsureExists(t *testing.T) {
	t.Run("inserts with ON CONFLICT DO NOTHING", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCounterRepository(db)

		mock.ExpectExec(`INSERT INTO "sequence_counters"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.EnsureExists(context.Background(), "STR001-20260115")

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a lost insert race is not an error", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCounterRepository(db)

		// Another issuer created the row first; DO NOTHING affects 0 rows.
		mock.ExpectExec(`INSERT INTO "sequence_counters"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.EnsureExists(context.Background(), "STR001-20260115")

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects an empty counter id", func(t *testing.T) {
		db, _, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCounterRepository(db)

		err := repo.EnsureExists(context.Background(), "")

		require.Error(t, err)
	})
}

func TestGormCounterRepository_CurrentValue(t *testing.T) {
	t.Run("reads the value without advancing", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCounterRepository(db)

		rows := sqlmock.NewRows([]string{"current_value"}).AddRow(7)
		mock.ExpectQuery(`SELECT current_value FROM sequence_counters`).
			WithArgs("STR001-20260115").
			WillReturnRows(rows)

		value, err := repo.CurrentValue(context.Background(), "STR001-20260115")

		require.NoError(t, err)
		assert.Equal(t, int64(7), value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a counter never created reads as zero", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCounterRepository(db)

		rows := sqlmock.NewRows([]string{"current_value"})
		mock.ExpectQuery(`SELECT current_value FROM sequence_counters`).
			WithArgs("STR999-20260115").
			WillReturnRows(rows)

		value, err := repo.CurrentValue(context.Background(), "STR999-20260115")

		require.NoError(t, err)
		assert.Equal(t, int64(0), value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCounterRepository_Reset(t *testing.T) {
	t.Run("returns not found for a missing counter", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCounterRepository(db)

		mock.ExpectExec(`UPDATE "sequence_counters" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Reset(context.Background(), "STR001-20260115", 0)

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
