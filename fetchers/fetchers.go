package fetchers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"

	rates "github.com/malusev998/exchange-rates"
)

const (
	PrivatBankURL = "https://api.privatbank.ua/p24api/exchange_rates"
	NBUURL        = "https://bank.gov.ua/NBUStatService/v1/statdirectory/exchange"

	userAgent         = "exchange-rates/1.0"
	maxBodyBytes      = 1 << 20
	defaultRetryDelay = 500 * time.Millisecond
)

var (
	ErrClient  = errors.New("client error")
	ErrServer  = errors.New("server error")
	ErrUnknown = errors.New("unknown error")
)

type (
	// HTTPConfig tunes the outgoing requests. Zero values mean no timeout and no retries.
	HTTPConfig struct {
		Timeout    time.Duration
		Retries    uint64
		RetryDelay time.Duration
	}

	httpGetter struct {
		client     *http.Client
		retries    uint64
		retryDelay time.Duration
	}
)

func newHTTPGetter(config HTTPConfig) httpGetter {
	delay := config.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	return httpGetter{
		client:     &http.Client{Timeout: config.Timeout},
		retries:    config.Retries,
		retryDelay: delay,
	}
}

func handleHTTPStatusCodeError(res *http.Response) error {
	if res.StatusCode == http.StatusOK {
		return nil
	}

	statusErr := &rates.StatusError{Code: res.StatusCode, Status: res.Status}

	switch {
	case res.StatusCode >= http.StatusBadRequest && res.StatusCode < http.StatusInternalServerError:
		statusErr.Err = ErrClient
	case res.StatusCode >= http.StatusInternalServerError:
		statusErr.Err = ErrServer
	default:
		statusErr.Err = ErrUnknown
	}

	return statusErr
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *rates.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= http.StatusInternalServerError
	}

	return true
}

func (g httpGetter) get(ctx context.Context, u url.URL) ([]byte, error) {
	var body []byte

	backoff := retry.WithMaxRetries(g.retries, retry.NewConstant(g.retryDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		b, err := g.do(ctx, u)
		if err != nil {
			if isRetryable(err) {
				return retry.RetryableError(err)
			}

			return err
		}

		body = b

		return nil
	})

	return body, err
}

func (g httpGetter) do(ctx context.Context, u url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build HTTP request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	res, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("make HTTP request: %w", err)
	}

	defer func() { _ = res.Body.Close() }()

	if err := handleHTTPStatusCodeError(res); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}

func parseURL(rawURL, fallback string) (*url.URL, error) {
	if rawURL == "" {
		rawURL = fallback
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	return u, nil
}
