package rates

import (
	"strconv"
	"strings"
	"time"
)

const (
	MaxDays    = 10
	DateLayout = "02.01.2006"
)

// ParseDays validates the user supplied number of days.
func ParseDays(value string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, ErrInvalidDays
	}

	if days > MaxDays {
		return 0, ErrTooManyDays
	}

	if days < 1 {
		return 0, ErrTooFewDays
	}

	return days, nil
}

// DateRange returns now and the preceding days-1 calendar days, most recent first.
func DateRange(now time.Time, days int) []time.Time {
	if days < 0 {
		days = 0
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dates := make([]time.Time, 0, days)

	for i := 0; i < days; i++ {
		dates = append(dates, today.AddDate(0, 0, -i))
	}

	return dates
}

func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}
