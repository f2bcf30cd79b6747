package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	rates "github.com/malusev998/exchange-rates"
)

// MySQLTimeFormat keeps microseconds for the DATETIME(6) created_at column.
const MySQLTimeFormat = "2006-01-02 15:04:05.000000"

var ErrNotEnoughBytesInGenerator = errors.New("id generator must return at least 16 bytes")

type (
	// IDGenerator produces the 16 raw bytes of a row id.
	IDGenerator interface {
		Generate() []byte
	}

	uuidGenerator struct{}

	// SQLStorage keeps rates in a MySQL table with binary UUID keys.
	SQLStorage struct {
		db          *sql.DB
		idGenerator IDGenerator
		tableName   string
	}
)

var _ rates.Storage = (*SQLStorage)(nil)

func (uuidGenerator) Generate() []byte {
	id := uuid.New()
	return id[:]
}

// NewMySQLStorage opens the connection described by config.
// Time parsing is always enabled on the DSN since rows are scanned into time.Time.
func NewMySQLStorage(ctx context.Context, config MySQLConfig) (*SQLStorage, error) {
	dsn, err := mysql.ParseDSN(config.ConnectionString)
	if err != nil {
		return nil, err
	}

	dsn.ParseTime = true

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	st, err := NewSQLStorage(ctx, db, config.IDGenerator, config.TableName, config.Migrate)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return st, nil
}

func NewSQLStorage(ctx context.Context, db *sql.DB, idGenerator IDGenerator, tableName string, migrate bool) (*SQLStorage, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	if idGenerator == nil {
		idGenerator = uuidGenerator{}
	}

	st := &SQLStorage{
		db:          db,
		idGenerator: idGenerator,
		tableName:   tableName,
	}

	if migrate {
		if err := st.Migrate(ctx); err != nil {
			return nil, err
		}
	}

	return st, nil
}

func (s *SQLStorage) newID() (uuid.UUID, error) {
	bytes := s.idGenerator.Generate()
	if len(bytes) < 16 {
		return uuid.Nil, ErrNotEnoughBytesInGenerator
	}

	return uuid.FromBytes(bytes[:16])
}

func (s *SQLStorage) Store(ctx context.Context, rows []rates.StoredRate) ([]rates.StoredRateWithID, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s(id, rate_date, currency, provider, sale, purchase, created_at) VALUES (?,?,?,?,?,?,?);",
		s.tableName,
	))
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	defer stmt.Close()

	stored := make([]rates.StoredRateWithID, 0, len(rows))

	for _, row := range withCreatedAt(rows) {
		id, err := s.newID()
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}

		_, err = stmt.ExecContext(
			ctx,
			id[:],
			row.Date.Format(dateFormat),
			row.Currency,
			string(row.Provider),
			row.Sale.String(),
			row.Purchase.String(),
			row.CreatedAt.UTC().Format(MySQLTimeFormat),
		)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}

		stored = append(stored, rates.StoredRateWithID{StoredRate: row, ID: id})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return stored, nil
}

// GetByDate returns the rows of one date, oldest insert first.
func (s *SQLStorage) GetByDate(ctx context.Context, date time.Time, provider rates.Provider) ([]rates.StoredRateWithID, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT id, currency, provider, sale, purchase, created_at FROM %s WHERE rate_date = ? AND provider = ? ORDER BY created_at, id;",
		s.tableName,
	), date.Format(dateFormat), string(provider))
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	result := make([]rates.StoredRateWithID, 0, 8)

	for rows.Next() {
		var (
			rawID          []byte
			currency       string
			rowProvider    string
			sale, purchase decimal.Decimal
			createdAt      time.Time
		)

		if err := rows.Scan(&rawID, &currency, &rowProvider, &sale, &purchase, &createdAt); err != nil {
			return nil, err
		}

		id, err := uuid.FromBytes(rawID)
		if err != nil {
			return nil, err
		}

		result = append(result, rates.StoredRateWithID{
			StoredRate: rates.StoredRate{
				Date:      date,
				Currency:  currency,
				Provider:  rates.Provider(rowProvider),
				Sale:      sale,
				Purchase:  purchase,
				CreatedAt: createdAt,
			},
			ID: id,
		})
	}

	return result, rows.Err()
}

func (s *SQLStorage) GetStorageProviderName() string {
	return string(MySQL)
}

func (s *SQLStorage) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s(
	id BINARY(16) PRIMARY KEY,
	rate_date DATE NOT NULL,
	currency VARCHAR(10) NOT NULL,
	provider VARCHAR(50) NOT NULL,
	sale DECIMAL(20, 8) NOT NULL,
	purchase DECIMAL(20, 8) NOT NULL,
	created_at DATETIME(6) NOT NULL,
	INDEX %s_date_provider(rate_date, provider)
);`, s.tableName, s.tableName))

	return err
}

func (s *SQLStorage) Drop(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", s.tableName))
	return err
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}
