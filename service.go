package rates

import (
	"context"
	"time"
)

type Service interface {
	Collect(ctx context.Context, days int, additional []string) (Result, error)
	Save(ctx context.Context, result Result) (map[string][]StoredRateWithID, error)
	History(ctx context.Context, days int, additional []string) (Result, error)
}

type Storage interface {
	Store(ctx context.Context, rates []StoredRate) ([]StoredRateWithID, error)
	GetByDate(ctx context.Context, date time.Time, provider Provider) ([]StoredRateWithID, error)
	GetStorageProviderName() string
	Migrate(ctx context.Context) error
	Drop(ctx context.Context) error
	Close() error
}
