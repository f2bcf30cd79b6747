package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	rates "github.com/malusev998/exchange-rates"
)

var ErrNoStorageProvided = errors.New("no storage provided")

// Service collects the rates of the last days from a single provider.
type Service struct {
	Fetcher    rates.Fetcher
	Storage    []rates.Storage
	Currencies []string
	// KeepEmpty emits dates without any matching currency as empty entries.
	KeepEmpty bool
	Logger    *log.Logger
	Now       func() time.Time
}

var _ rates.Service = Service{}

func (f Service) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}

	return f.Now()
}

func (f Service) logger() *log.Logger {
	if f.Logger == nil {
		return log.New(io.Discard, "", 0)
	}

	return f.Logger
}

func (f Service) provider() rates.Provider {
	if f.Fetcher == nil {
		return rates.EmptyProvider
	}

	return f.Fetcher.Provider()
}

func (f Service) currencySet(additional []string) rates.CurrencySet {
	defaults := f.Currencies
	if len(defaults) == 0 {
		defaults = rates.DefaultCurrencies
	}

	return rates.NewCurrencySet(defaults, additional...)
}

func (f Service) entry(entry rates.RateEntry) (rates.RateEntry, bool) {
	return entry, len(entry) > 0 || f.KeepEmpty
}

func validateDays(days int) error {
	if days > rates.MaxDays {
		return rates.ErrTooManyDays
	}

	if days < 1 {
		return rates.ErrTooFewDays
	}

	return nil
}

// Collect fetches every date concurrently and keeps the requested currencies.
// Dates answered with a non-200 status or an unreadable body are logged and left out,
// any other fetch error aborts the whole collection.
func (f Service) Collect(ctx context.Context, days int, additional []string) (rates.Result, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}

	currencies := f.currencySet(additional)
	dates := rates.DateRange(f.now(), days)

	return gather(ctx, dates, func(ctx context.Context, date time.Time) (rates.RateEntry, bool, error) {
		rows, err := f.Fetcher.Fetch(ctx, date)
		if err != nil {
			var statusErr *rates.StatusError

			switch {
			case errors.As(err, &statusErr):
				f.logger().Printf("Failed to fetch data for %s. Status code: %d", rates.FormatDate(date), statusErr.Code)
				return nil, false, nil
			case errors.Is(err, rates.ErrDecode):
				f.logger().Printf("Failed to fetch data for %s. %v", rates.FormatDate(date), err)
				return nil, false, nil
			}

			return nil, false, fmt.Errorf("fetch %s: %w", rates.FormatDate(date), err)
		}

		entry, ok := f.entry(currencies.Filter(rows))

		return entry, ok, nil
	})
}

func saveToStorage(
	ctx context.Context,
	wg *sync.WaitGroup,
	rows []rates.StoredRate,
	data map[string][]rates.StoredRateWithID,
	errs **multierror.Error,
	storage rates.Storage,
	mutex sync.Locker,
) {
	defer wg.Done()
	stored, err := storage.Store(ctx, rows)

	mutex.Lock()
	defer mutex.Unlock()

	if err != nil {
		*errs = multierror.Append(*errs, fmt.Errorf("%s: %w", storage.GetStorageProviderName(), err))
		return
	}

	data[storage.GetStorageProviderName()] = stored
}

// Save writes the result to every storage. Rows stored before a failure
// in another storage are still returned next to the aggregated error.
func (f Service) Save(ctx context.Context, result rates.Result) (map[string][]rates.StoredRateWithID, error) {
	if len(f.Storage) == 0 {
		return nil, ErrNoStorageProvided
	}

	var (
		wg    sync.WaitGroup
		mutex sync.Mutex
		errs  *multierror.Error
	)

	rows := result.StoredRates(f.provider(), f.now())
	data := make(map[string][]rates.StoredRateWithID, len(f.Storage))

	wg.Add(len(f.Storage))
	for _, storage := range f.Storage {
		go saveToStorage(ctx, &wg, rows, data, &errs, storage, &mutex)
	}

	wg.Wait()

	return data, errs.ErrorOrNil()
}

// History rebuilds a result from the rows kept in the first storage.
func (f Service) History(ctx context.Context, days int, additional []string) (rates.Result, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}

	if len(f.Storage) == 0 {
		return nil, ErrNoStorageProvided
	}

	storage := f.Storage[0]
	provider := f.provider()
	currencies := f.currencySet(additional)
	dates := rates.DateRange(f.now(), days)

	return gather(ctx, dates, func(ctx context.Context, date time.Time) (rates.RateEntry, bool, error) {
		rows, err := storage.GetByDate(ctx, date, provider)
		if err != nil {
			return nil, false, fmt.Errorf("%s: read %s: %w", storage.GetStorageProviderName(), rates.FormatDate(date), err)
		}

		entry, ok := f.entry(currencies.FilterStored(rows))

		return entry, ok, nil
	})
}
