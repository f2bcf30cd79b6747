package rates

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDays = errors.New("Invalid input. Please enter a valid number of days.")
	ErrTooManyDays = fmt.Errorf("Please enter no more than %d days.", MaxDays)
	ErrTooFewDays  = errors.New("Please enter at least 1 day.")
	ErrDecode      = errors.New("response body cannot be decoded")
)

// StatusError is returned by fetchers when the API answers with anything but 200.
type StatusError struct {
	Code   int
	Status string
	Err    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status: %d, %s", e.Code, e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err comes from parsing the number of days.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDays) || errors.Is(err, ErrTooManyDays) || errors.Is(err, ErrTooFewDays)
}
