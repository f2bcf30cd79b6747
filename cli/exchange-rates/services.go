package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	rates "github.com/malusev998/exchange-rates"
	"github.com/malusev998/exchange-rates/cli/cmd"
	"github.com/malusev998/exchange-rates/fetchers"
	"github.com/malusev998/exchange-rates/services"
	"github.com/malusev998/exchange-rates/storage"
)

var ErrNoStorageConfigured = errors.New("no storage configured, set the storage key")

func closeStorages(storages []rates.Storage, logger *log.Logger) {
	for _, st := range storages {
		if err := st.Close(); err != nil {
			logger.Printf("Error while closing %s: %v", st.GetStorageProviderName(), err)
		}
	}
}

func createStorages(ctx context.Context, config *Config, logger *log.Logger) ([]rates.Storage, error) {
	storages := make([]rates.Storage, 0, len(config.Storage))

	for _, s := range config.Storage {
		c, ok := config.StorageConfig[s]
		if !ok {
			closeStorages(storages, logger)
			return nil, fmt.Errorf("storage %s does not exist", s)
		}

		st, err := storage.NewStorage(ctx, s, c)
		if err != nil {
			closeStorages(storages, logger)
			return nil, fmt.Errorf("connect to %s: %w", s, err)
		}

		storages = append(storages, st)
	}

	return storages, nil
}

func newService(ctx context.Context, options cmd.ServiceOptions) (rates.Service, func(), error) {
	config, err := getConfig()
	if err != nil {
		return nil, nil, err
	}

	fetcher, err := fetchers.NewCurrencyFetcher(config.Provider, config.Fetcher)
	if err != nil {
		return nil, nil, err
	}

	var storages []rates.Storage

	if options.WithStorage {
		if len(config.Storage) == 0 {
			return nil, nil, ErrNoStorageConfigured
		}

		storages, err = createStorages(ctx, config, options.Logger)
		if err != nil {
			return nil, nil, err
		}
	}

	if options.Debug {
		options.Logger.Printf("Provider %s, storages %v, currencies %v", config.Provider, config.Storage, config.Currencies)
	}

	service := services.Service{
		Fetcher:    fetcher,
		Storage:    storages,
		Currencies: config.Currencies,
		KeepEmpty:  options.KeepEmpty || config.KeepEmpty,
		Logger:     options.Logger,
	}

	return service, func() { closeStorages(storages, options.Logger) }, nil
}
