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

type (
	privatBankResponse struct {
		Date            string           `json:"date"`
		Bank            string           `json:"bank"`
		BaseCurrencyLit string           `json:"baseCurrencyLit"`
		ExchangeRate    []privatBankRate `json:"exchangeRate"`
	}

	privatBankRate struct {
		BaseCurrency   string          `json:"baseCurrency"`
		Currency       string          `json:"currency"`
		SaleRateNB     decimal.Decimal `json:"saleRateNB"`
		PurchaseRateNB decimal.Decimal `json:"purchaseRateNB"`
		SaleRate       decimal.Decimal `json:"saleRate"`
		PurchaseRate   decimal.Decimal `json:"purchaseRate"`
	}

	// PrivatBankFetcher reads the PrivatBank archive of National Bank rates.
	PrivatBankFetcher struct {
		url    *url.URL
		getter httpGetter
	}
)

var _ rates.Fetcher = PrivatBankFetcher{}

func NewPrivatBankFetcher(rawURL string, config HTTPConfig) (PrivatBankFetcher, error) {
	u, err := parseURL(rawURL, PrivatBankURL)
	if err != nil {
		return PrivatBankFetcher{}, err
	}

	return PrivatBankFetcher{url: u, getter: newHTTPGetter(config)}, nil
}

func (f PrivatBankFetcher) Provider() rates.Provider {
	return rates.PrivatBankProvider
}

func (f PrivatBankFetcher) Fetch(ctx context.Context, date time.Time) ([]rates.ExchangeRate, error) {
	u := *f.url
	u.RawQuery = "json&date=" + url.QueryEscape(rates.FormatDate(date))

	body, err := f.getter.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var data privatBankResponse

	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", rates.ErrDecode, err)
	}

	rows := make([]rates.ExchangeRate, 0, len(data.ExchangeRate))

	for _, r := range data.ExchangeRate {
		// the first row describes the base currency only
		if r.Currency == "" {
			continue
		}

		rows = append(rows, rates.ExchangeRate{
			Currency:       r.Currency,
			SaleRateNB:     r.SaleRateNB,
			PurchaseRateNB: r.PurchaseRateNB,
		})
	}

	return rows, nil
}
