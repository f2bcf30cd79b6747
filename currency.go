package rates

import (
	"context"
	"strings"
	"time"
)

type (
	Fetcher interface {
		Fetch(ctx context.Context, date time.Time) ([]ExchangeRate, error)
		Provider() Provider
	}

	// CurrencySet is the set of currency codes kept in a result.
	CurrencySet map[string]struct{}
)

// DefaultCurrencies are always part of the result.
var DefaultCurrencies = []string{"USD", "EUR"}

func NewCurrencySet(defaults []string, additional ...string) CurrencySet {
	set := make(CurrencySet, len(defaults)+len(additional))

	for _, code := range defaults {
		set.Add(code)
	}

	for _, code := range additional {
		set.Add(code)
	}

	return set
}

func (s CurrencySet) Add(code string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return
	}

	s[code] = struct{}{}
}

func (s CurrencySet) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

// Filter keeps the rows whose currency is in the set.
func (s CurrencySet) Filter(rows []ExchangeRate) RateEntry {
	entry := make(RateEntry)

	for _, row := range rows {
		if !s.Contains(row.Currency) {
			continue
		}

		entry[row.Currency] = Rate{Sale: row.SaleRateNB, Purchase: row.PurchaseRateNB}
	}

	return entry
}

// FilterStored is Filter for rows read back from a storage.
func (s CurrencySet) FilterStored(rows []StoredRateWithID) RateEntry {
	entry := make(RateEntry)

	for _, row := range rows {
		if !s.Contains(row.Currency) {
			continue
		}

		entry[row.Currency] = Rate{Sale: row.Sale, Purchase: row.Purchase}
	}

	return entry
}
