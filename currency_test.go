package rates_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	rates "github.com/malusev998/exchange-rates"
)

func exchangeRows() []rates.ExchangeRate {
	return []rates.ExchangeRate{
		{Currency: "USD", SaleRateNB: decimal.RequireFromString("27.1"), PurchaseRateNB: decimal.RequireFromString("26.8")},
		{Currency: "EUR", SaleRateNB: decimal.RequireFromString("29.5"), PurchaseRateNB: decimal.RequireFromString("29.5")},
		{Currency: "JPY", SaleRateNB: decimal.RequireFromString("0.25"), PurchaseRateNB: decimal.RequireFromString("0.25")},
		{Currency: ""},
	}
}

func TestCurrencySet_Filter(t *testing.T) {
	t.Parallel()

	t.Run("DefaultsOnly", func(t *testing.T) {
		asserts := require.New(t)
		entry := rates.NewCurrencySet(rates.DefaultCurrencies).Filter(exchangeRows())

		asserts.Len(entry, 2)
		asserts.Contains(entry, "USD")
		asserts.Contains(entry, "EUR")
		asserts.NotContains(entry, "JPY")
		asserts.True(entry["USD"].Sale.Equal(decimal.RequireFromString("27.1")))
		asserts.True(entry["USD"].Purchase.Equal(decimal.RequireFromString("26.8")))
	})

	t.Run("AdditionalCurrency", func(t *testing.T) {
		asserts := require.New(t)
		entry := rates.NewCurrencySet(rates.DefaultCurrencies, "jpy").Filter(exchangeRows())

		asserts.Len(entry, 3)
		asserts.Contains(entry, "JPY")
	})

	t.Run("NoMatch", func(t *testing.T) {
		asserts := require.New(t)
		entry := rates.NewCurrencySet([]string{"GBP"}).Filter(exchangeRows())

		asserts.Empty(entry)
	})
}

func TestNewCurrencySet(t *testing.T) {
	asserts := require.New(t)
	set := rates.NewCurrencySet(rates.DefaultCurrencies, " gbp", "", "USD")

	asserts.Len(set, 3)
	asserts.True(set.Contains("GBP"))
	asserts.False(set.Contains(""))
}
