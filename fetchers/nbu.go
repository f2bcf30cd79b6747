package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	rates "github.com/malusev998/exchange-rates"
)

const nbuDateLayout = "20060102"

type (
	nbuRate struct {
		R030         int             `json:"r030"`
		Text         string          `json:"txt"`
		Rate         decimal.Decimal `json:"rate"`
		Currency     string          `json:"cc"`
		ExchangeDate string          `json:"exchangedate"`
	}

	// NBUFetcher reads the official rates of the National Bank of Ukraine.
	// The NBU publishes a single rate, used as both sale and purchase.
	NBUFetcher struct {
		url    *url.URL
		getter httpGetter
	}
)

var _ rates.Fetcher = NBUFetcher{}

func NewNBUFetcher(rawURL string, config HTTPConfig) (NBUFetcher, error) {
	u, err := parseURL(rawURL, NBUURL)
	if err != nil {
		return NBUFetcher{}, err
	}

	return NBUFetcher{url: u, getter: newHTTPGetter(config)}, nil
}

func (f NBUFetcher) Provider() rates.Provider {
	return rates.NBUProvider
}

func (f NBUFetcher) Fetch(ctx context.Context, date time.Time) ([]rates.ExchangeRate, error) {
	u := *f.url
	u.RawQuery = "json&date=" + date.Format(nbuDateLayout)

	body, err := f.getter.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var data []nbuRate

	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", rates.ErrDecode, err)
	}

	rows := make([]rates.ExchangeRate, 0, len(data))

	for _, r := range data {
		rows = append(rows, rates.ExchangeRate{
			Currency:       r.Currency,
			SaleRateNB:     r.Rate,
			PurchaseRateNB: r.Rate,
		})
	}

	return rows, nil
}
