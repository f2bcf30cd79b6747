package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	rates "github.com/malusev998/exchange-rates"
)

type (
	Provider   string
	BaseConfig struct {
		Migrate bool
	}
	MySQLConfig struct {
		BaseConfig
		ConnectionString string
		TableName        string
		IDGenerator      IDGenerator
	}
	MongoDBConfig struct {
		BaseConfig
		ConnectionString string
		Database         string
		Collection       string
	}
	PostgresConfig struct {
		BaseConfig
		ConnectionString string
		TableName        string
	}
)

const (
	MySQL    Provider = "mysql"
	MongoDB  Provider = "mongodb"
	Postgres Provider = "postgres"
)

const dateFormat = "2006-01-02"

var (
	ErrStorageNotFound  = errors.New("storage is not found")
	ErrInvalidConfig    = errors.New("invalid storage config")
	ErrInvalidTableName = errors.New("table name must contain only letters, digits and underscores")
)

func ConvertToProvidersFromStringSlice(strings []string) ([]Provider, error) {
	providers := make([]Provider, 0, len(strings))

	for _, str := range strings {
		provider, err := ConvertToProviderFromString(str)
		if err != nil {
			return nil, err
		}

		providers = append(providers, provider)
	}

	return providers, nil
}

func ConvertToProviderFromString(str string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "mysql":
		return MySQL, nil
	case "mongodb", "mongo":
		return MongoDB, nil
	case "postgres", "postgresql":
		return Postgres, nil
	}

	return "", fmt.Errorf("value %s is not valid Provider", str)
}

// NewStorage connects to the storage described by config, which must match the provider.
func NewStorage(ctx context.Context, provider Provider, config interface{}) (rates.Storage, error) {
	switch provider {
	case MySQL:
		c, ok := config.(MySQLConfig)
		if !ok {
			return nil, fmt.Errorf("%w: expected MySQLConfig, got %T", ErrInvalidConfig, config)
		}

		st, err := NewMySQLStorage(ctx, c)
		if err != nil {
			return nil, err
		}

		return st, nil
	case MongoDB:
		c, ok := config.(MongoDBConfig)
		if !ok {
			return nil, fmt.Errorf("%w: expected MongoDBConfig, got %T", ErrInvalidConfig, config)
		}

		st, err := NewMongoStorage(ctx, c)
		if err != nil {
			return nil, err
		}

		return st, nil
	case Postgres:
		c, ok := config.(PostgresConfig)
		if !ok {
			return nil, fmt.Errorf("%w: expected PostgresConfig, got %T", ErrInvalidConfig, config)
		}

		st, err := NewPostgresStorage(ctx, c)
		if err != nil {
			return nil, err
		}

		return st, nil
	}

	return nil, ErrStorageNotFound
}

// validateTableName guards table names that are interpolated into SQL.
func validateTableName(name string) error {
	if name == "" {
		return ErrInvalidTableName
	}

	for _, r := range name {
		if r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return fmt.Errorf("%w: %q", ErrInvalidTableName, name)
		}
	}

	return nil
}

// calendarDay drops the clock and location of a date, keeping its calendar day.
func calendarDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}

// withCreatedAt copies rows, stamping the ones that were never stored before.
func withCreatedAt(rows []rates.StoredRate) []rates.StoredRate {
	now := time.Now()
	out := make([]rates.StoredRate, len(rows))

	for i, row := range rows {
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}

		out[i] = row
	}

	return out
}
