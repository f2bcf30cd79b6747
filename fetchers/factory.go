package fetchers

import (
	"errors"

	rates "github.com/malusev998/exchange-rates"
)

var ErrFetcherNotFound = errors.New("fetcher is not found")

type Config struct {
	URL  string
	HTTP HTTPConfig
}

func NewCurrencyFetcher(provider rates.Provider, config Config) (rates.Fetcher, error) {
	switch provider {
	case rates.PrivatBankProvider:
		f, err := NewPrivatBankFetcher(config.URL, config.HTTP)
		if err != nil {
			return nil, err
		}

		return f, nil
	case rates.NBUProvider:
		f, err := NewNBUFetcher(config.URL, config.HTTP)
		if err != nil {
			return nil, err
		}

		return f, nil
	}

	return nil, ErrFetcherNotFound
}
