package rates

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Rate is the sale/purchase pair of one currency on one date.
	Rate struct {
		Sale     decimal.Decimal
		Purchase decimal.Decimal
	}

	// RateEntry maps a currency code to its rate.
	RateEntry map[string]Rate

	// DayRates holds the filtered rates of a single date.
	DayRates struct {
		Date  time.Time
		Rates RateEntry
	}

	// Result is ordered by the requested date sequence, most recent first.
	Result []DayRates

	// ExchangeRate is one row of a provider response.
	ExchangeRate struct {
		Currency       string
		SaleRateNB     decimal.Decimal
		PurchaseRateNB decimal.Decimal
	}

	StoredRate struct {
		Date      time.Time
		Currency  string
		Provider  Provider
		Sale      decimal.Decimal
		Purchase  decimal.Decimal
		CreatedAt time.Time
	}

	StoredRateWithID struct {
		StoredRate
		ID interface{}
	}
)

type jsonRate struct {
	Sale     json.Number `json:"sale"`
	Purchase json.Number `json:"purchase"`
}

func (r Rate) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonRate{
		Sale:     json.Number(r.Sale.String()),
		Purchase: json.Number(r.Purchase.String()),
	})
}

// MarshalJSON encodes the day as a single-key object keyed by its DD.MM.YYYY date.
func (d DayRates) MarshalJSON() ([]byte, error) {
	rates := d.Rates
	if rates == nil {
		rates = RateEntry{}
	}

	return json.Marshal(map[string]RateEntry{FormatDate(d.Date): rates})
}

// StoredRates flattens the result into rows ready for a storage backend.
func (r Result) StoredRates(provider Provider, createdAt time.Time) []StoredRate {
	rows := make([]StoredRate, 0, len(r)*2)

	for _, day := range r {
		codes := make([]string, 0, len(day.Rates))
		for code := range day.Rates {
			codes = append(codes, code)
		}

		sort.Strings(codes)

		for _, code := range codes {
			rate := day.Rates[code]
			rows = append(rows, StoredRate{
				Date:      day.Date,
				Currency:  code,
				Provider:  provider,
				Sale:      rate.Sale,
				Purchase:  rate.Purchase,
				CreatedAt: createdAt,
			})
		}
	}

	return rows
}
