package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	rates "github.com/malusev998/exchange-rates"
)

// PostgresStorage keeps rates in a PostgreSQL table with serial ids.
type PostgresStorage struct {
	pool      *pgxpool.Pool
	tableName string
}

var _ rates.Storage = (*PostgresStorage)(nil)

func NewPostgresStorage(ctx context.Context, config PostgresConfig) (*PostgresStorage, error) {
	if err := validateTableName(config.TableName); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, config.ConnectionString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	st := &PostgresStorage{pool: pool, tableName: config.TableName}

	if config.Migrate {
		if err := st.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return st, nil
}

func (s *PostgresStorage) Store(ctx context.Context, rows []rates.StoredRate) ([]rates.StoredRateWithID, error) {
	query := fmt.Sprintf(`
insert into %s (rate_date, currency, provider, sale, purchase, created_at)
values ($1::date, $2, $3, $4::numeric, $5::numeric, $6)
returning id;
`, s.tableName)

	rows = withCreatedAt(rows)
	batch := &pgx.Batch{}

	for _, row := range rows {
		batch.Queue(
			query,
			calendarDay(row.Date),
			row.Currency,
			string(row.Provider),
			row.Sale.String(),
			row.Purchase.String(),
			row.CreatedAt,
		)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	results := tx.SendBatch(ctx, batch)
	stored := make([]rates.StoredRateWithID, 0, len(rows))

	for _, row := range rows {
		var id int64

		if err := results.QueryRow().Scan(&id); err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("insert %s @%s: %w", row.Currency, row.Date.Format(dateFormat), err)
		}

		stored = append(stored, rates.StoredRateWithID{StoredRate: row, ID: id})
	}

	if err := results.Close(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return stored, nil
}

func (s *PostgresStorage) GetByDate(ctx context.Context, date time.Time, provider rates.Provider) ([]rates.StoredRateWithID, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
select id, currency, provider, sale::text, purchase::text, created_at
from %s
where rate_date = $1::date and provider = $2
order by created_at, id;
`, s.tableName), calendarDay(date), string(provider))
	if err != nil {
		return nil, fmt.Errorf("query rates: %w", err)
	}
	defer rows.Close()

	var result []rates.StoredRateWithID

	for rows.Next() {
		var (
			id                     int64
			currency, rowProvider  string
			saleText, purchaseText string
			createdAt              time.Time
		)

		if err := rows.Scan(&id, &currency, &rowProvider, &saleText, &purchaseText, &createdAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		sale, err := decimal.NewFromString(saleText)
		if err != nil {
			return nil, fmt.Errorf("bad sale from db %q: %w", saleText, err)
		}

		purchase, err := decimal.NewFromString(purchaseText)
		if err != nil {
			return nil, fmt.Errorf("bad purchase from db %q: %w", purchaseText, err)
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

func (s *PostgresStorage) GetStorageProviderName() string {
	return string(Postgres)
}

func (s *PostgresStorage) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(`
create table if not exists %s (
  id bigserial primary key,
  rate_date date not null,
  currency varchar(10) not null,
  provider varchar(50) not null,
  sale numeric(20, 8) not null,
  purchase numeric(20, 8) not null,
  created_at timestamptz not null
);`, s.tableName)); err != nil {
		return fmt.Errorf("create table %s: %w", s.tableName, err)
	}

	if _, err := s.pool.Exec(ctx, fmt.Sprintf(
		"create index if not exists %s_date_provider_idx on %s (rate_date, provider);",
		s.tableName, s.tableName,
	)); err != nil {
		return fmt.Errorf("create index on %s: %w", s.tableName, err)
	}

	return nil
}

func (s *PostgresStorage) Drop(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf("drop table if exists %s;", s.tableName))
	return err
}

func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}
