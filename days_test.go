package rates_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	rates "github.com/malusev998/exchange-rates"
)

func TestParseDays(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	values := []struct {
		value    string
		expected int
		err      error
	}{
		{"1", 1, nil},
		{"10", 10, nil},
		{" 3 ", 3, nil},
		{"11", 0, rates.ErrTooManyDays},
		{"100", 0, rates.ErrTooManyDays},
		{"0", 0, rates.ErrTooFewDays},
		{"-2", 0, rates.ErrTooFewDays},
		{"abc", 0, rates.ErrInvalidDays},
		{"", 0, rates.ErrInvalidDays},
		{"2.5", 0, rates.ErrInvalidDays},
	}

	for _, value := range values {
		days, err := rates.ParseDays(value.value)
		asserts.Equal(value.expected, days, value.value)
		asserts.True(errors.Is(err, value.err), value.value)
	}
}

func TestParseDays_Messages(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	_, err := rates.ParseDays("11")
	asserts.EqualError(err, "Please enter no more than 10 days.")
	asserts.True(rates.IsValidationError(err))

	_, err = rates.ParseDays("abc")
	asserts.EqualError(err, "Invalid input. Please enter a valid number of days.")
	asserts.True(rates.IsValidationError(err))

	asserts.False(rates.IsValidationError(rates.ErrDecode))
}

func TestDateRange(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	now := time.Date(2024, time.March, 2, 15, 4, 5, 0, time.UTC)

	for days := 1; days <= rates.MaxDays; days++ {
		dates := rates.DateRange(now, days)
		asserts.Len(dates, days)
		asserts.Equal("02.03.2024", rates.FormatDate(dates[0]))

		for i := 1; i < len(dates); i++ {
			asserts.Equal(dates[i-1].AddDate(0, 0, -1), dates[i])
		}
	}

	dates := rates.DateRange(now, 3)
	asserts.Equal("01.03.2024", rates.FormatDate(dates[1]))
	asserts.Equal("29.02.2024", rates.FormatDate(dates[2]))
	asserts.Empty(rates.DateRange(now, 0))
}
