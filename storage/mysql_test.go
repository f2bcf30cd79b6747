package storage_test

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bxcodec/faker/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	rates "github.com/malusev998/exchange-rates"
	"github.com/malusev998/exchange-rates/storage"
)

type (
	IDGeneratorMock struct {
		mock.Mock
	}
)

func (i *IDGeneratorMock) Generate() []byte {
	args := i.Called()
	if value, ok := args.Get(0).([]byte); ok {
		return value
	}
	return nil
}

const (
	insertQuery = "INSERT INTO rates_store_test_unit(id, rate_date, currency, provider, sale, purchase, created_at) VALUES (?,?,?,?,?,?,?);"
	selectQuery = "SELECT id, currency, provider, sale, purchase, created_at FROM rates_store_test_unit WHERE rate_date = ? AND provider = ? ORDER BY created_at, id;"
)

var rateDate = time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)

func storedRates() []rates.StoredRate {
	return []rates.StoredRate{
		{
			Date:      rateDate,
			Currency:  "USD",
			Provider:  rates.PrivatBankProvider,
			Sale:      decimal.RequireFromString("27.1"),
			Purchase:  decimal.RequireFromString("26.8"),
			CreatedAt: time.Now(),
		},
		{
			Date:      rateDate,
			Currency:  "EUR",
			Provider:  rates.PrivatBankProvider,
			Sale:      decimal.RequireFromString("29.5"),
			Purchase:  decimal.RequireFromString("29.5"),
			CreatedAt: time.Now(),
		},
	}
}

// fakeRates builds rows with random currencies for the integration tests.
func fakeRates(n int) []rates.StoredRate {
	rows := make([]rates.StoredRate, 0, n)

	for i := 0; i < n; i++ {
		rows = append(rows, rates.StoredRate{
			Date:      rateDate,
			Currency:  faker.Currency(),
			Provider:  rates.PrivatBankProvider,
			Sale:      decimal.NewFromFloat(rand.Float64() * 100).Round(4),
			Purchase:  decimal.NewFromFloat(rand.Float64() * 100).Round(4),
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Minute),
		})
	}

	return rows
}

func newUnitStorage(t *testing.T, generator storage.IDGenerator) (*storage.SQLStorage, sqlmock.Sqlmock) {
	db, m, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st, err := storage.NewSQLStorage(context.Background(), db, generator, "rates_store_test_unit", false)
	require.NoError(t, err)

	return st, m
}

func TestMysqlStorage_StoreUnit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Transaction_Not_Started", func(t *testing.T) {
		asserts := require.New(t)
		st, m := newUnitStorage(t, nil)

		m.ExpectBegin().WillReturnError(errors.New("error while starting transaction"))

		_, err := st.Store(ctx, storedRates())
		asserts.Error(err)
		asserts.Nil(m.ExpectationsWereMet())
		asserts.Equal("error while starting transaction", err.Error())
	})

	t.Run("Prepare_SQL_WithError", func(t *testing.T) {
		asserts := require.New(t)
		st, m := newUnitStorage(t, nil)

		m.ExpectBegin()
		m.ExpectPrepare(regexp.QuoteMeta(insertQuery)).
			WillReturnError(errors.New("cannot create prepare statement"))
		m.ExpectRollback()

		_, err := st.Store(ctx, storedRates())
		asserts.Nil(m.ExpectationsWereMet())
		asserts.Error(err)
		asserts.Equal("cannot create prepare statement", err.Error())
	})

	t.Run("Not_Enough_Bytes_In_Generator", func(t *testing.T) {
		asserts := require.New(t)
		idNullBytes := &IDGeneratorMock{}
		idLessBytes := &IDGeneratorMock{}

		idNullBytes.On("Generate").Return(nil)
		idLessBytes.On("Generate").Return(make([]byte, 10))

		for _, gen := range []storage.IDGenerator{idNullBytes, idLessBytes} {
			st, m := newUnitStorage(t, gen)

			m.ExpectBegin()
			m.ExpectPrepare(regexp.QuoteMeta(insertQuery))
			m.ExpectRollback()

			stored, err := st.Store(ctx, storedRates())
			asserts.Nil(stored)
			asserts.ErrorIs(err, storage.ErrNotEnoughBytesInGenerator)
			asserts.Nil(m.ExpectationsWereMet())
		}
	})

	t.Run("Exec_WithError", func(t *testing.T) {
		asserts := require.New(t)
		st, m := newUnitStorage(t, nil)

		m.ExpectBegin()
		m.ExpectPrepare(regexp.QuoteMeta(insertQuery)).
			ExpectExec().
			WillReturnError(errors.New("duplicate entry"))
		m.ExpectRollback()

		stored, err := st.Store(ctx, storedRates())
		asserts.Nil(stored)
		asserts.EqualError(err, "duplicate entry")
		asserts.Nil(m.ExpectationsWereMet())
	})

	t.Run("Insert_Many", func(t *testing.T) {
		asserts := require.New(t)
		st, m := newUnitStorage(t, nil)
		rows := storedRates()

		m.ExpectBegin()
		prepare := m.ExpectPrepare(regexp.QuoteMeta(insertQuery))
		prepare.ExpectExec().
			WithArgs(sqlmock.AnyArg(), "2024-03-03", "USD", "PrivatBank", "27.1", "26.8", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		prepare.ExpectExec().
			WithArgs(sqlmock.AnyArg(), "2024-03-03", "EUR", "PrivatBank", "29.5", "29.5", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		m.ExpectCommit()

		stored, err := st.Store(ctx, rows)

		asserts.NoError(err)
		asserts.Len(stored, 2)
		asserts.Nil(m.ExpectationsWereMet())

		for i, row := range stored {
			asserts.IsType(uuid.UUID{}, row.ID)
			asserts.Equal(rows[i].Currency, row.Currency)
		}
	})
}

func TestMysqlStorage_StoreFractionalSeconds(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	st, m := newUnitStorage(t, nil)
	first := time.Date(2024, time.March, 3, 10, 0, 0, 123456789, time.UTC)
	second := first.Add(250 * time.Millisecond)

	rows := storedRates()
	rows[0].CreatedAt = first
	rows[1].CreatedAt = second

	m.ExpectBegin()
	prepare := m.ExpectPrepare(regexp.QuoteMeta(insertQuery))
	prepare.ExpectExec().
		WithArgs(sqlmock.AnyArg(), "2024-03-03", "USD", "PrivatBank", "27.1", "26.8", "2024-03-03 10:00:00.123456").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prepare.ExpectExec().
		WithArgs(sqlmock.AnyArg(), "2024-03-03", "EUR", "PrivatBank", "29.5", "29.5", "2024-03-03 10:00:00.373456").
		WillReturnResult(sqlmock.NewResult(0, 1))
	m.ExpectCommit()

	_, err := st.Store(context.Background(), rows)

	asserts.NoError(err)
	asserts.Nil(m.ExpectationsWereMet())
}

func TestMysqlStorage_Migrate(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	st, m := newUnitStorage(t, nil)

	m.ExpectExec(`(?s)CREATE TABLE IF NOT EXISTS rates_store_test_unit\(.*created_at DATETIME\(6\) NOT NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	asserts.NoError(st.Migrate(context.Background()))
	asserts.Nil(m.ExpectationsWereMet())
}

func TestMysqlStorage_GetByDateUnit(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	st, m := newUnitStorage(t, nil)
	id := uuid.New()
	createdAt := time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC)

	m.ExpectQuery(regexp.QuoteMeta(selectQuery)).
		WithArgs("2024-03-03", "PrivatBank").
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "currency", "provider", "sale", "purchase", "created_at"}).
				AddRow(id[:], "USD", "PrivatBank", "27.10000000", "26.80000000", createdAt),
		)

	rows, err := st.GetByDate(context.Background(), rateDate, rates.PrivatBankProvider)

	asserts.NoError(err)
	asserts.Len(rows, 1)
	asserts.Equal(id, rows[0].ID)
	asserts.Equal("USD", rows[0].Currency)
	asserts.True(decimal.RequireFromString("27.1").Equal(rows[0].Sale))
	asserts.True(rows[0].Date.Equal(rateDate))
	asserts.Nil(m.ExpectationsWereMet())
}

func TestMysqlStorage_InvalidTableName(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	db, _, err := sqlmock.New()
	asserts.NoError(err)
	defer db.Close()

	_, err = storage.NewSQLStorage(context.Background(), db, nil, "rates; DROP TABLE users", false)

	asserts.ErrorIs(err, storage.ErrInvalidTableName)
}

func TestMysqlStorage_Integration(t *testing.T) {
	dsn := os.Getenv("EXCHANGE_RATES_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("EXCHANGE_RATES_TEST_MYSQL_DSN is not set")
	}

	t.Parallel()
	asserts := require.New(t)
	ctx := context.Background()

	st, err := storage.NewMySQLStorage(ctx, storage.MySQLConfig{
		BaseConfig:       storage.BaseConfig{Migrate: true},
		ConnectionString: dsn,
		TableName:        "rates_store_test_integration",
	})
	asserts.NoError(err)
	defer st.Close()
	defer st.Drop(ctx)

	rows := fakeRates(5)
	stored, err := st.Store(ctx, rows)
	asserts.NoError(err)
	asserts.Len(stored, len(rows))

	read, err := st.GetByDate(ctx, rateDate, rates.PrivatBankProvider)
	asserts.NoError(err)
	asserts.Len(read, len(rows))
}
