package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	rates "github.com/malusev998/exchange-rates"
)

type dayFunc func(ctx context.Context, date time.Time) (rates.RateEntry, bool, error)

// gather calls fn for all dates at once and waits for every call to finish.
// Each call owns its slot, so the result keeps the order of dates
// whatever order the calls complete in. Dates for which fn reports false are skipped.
func gather(ctx context.Context, dates []time.Time, fn dayFunc) (rates.Result, error) {
	slots := make([]*rates.DayRates, len(dates))
	g, gctx := errgroup.WithContext(ctx)

	for i, date := range dates {
		i, date := i, date

		g.Go(func() error {
			entry, ok, err := fn(gctx, date)
			if err != nil {
				return err
			}

			if ok {
				slots[i] = &rates.DayRates{Date: date, Rates: entry}
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(rates.Result, 0, len(dates))

	for _, slot := range slots {
		if slot != nil {
			result = append(result, *slot)
		}
	}

	return result, nil
}
