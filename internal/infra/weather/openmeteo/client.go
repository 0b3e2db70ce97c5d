package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"

	"github.com/yanqian/sunday/internal/domain/conditions"
)

const (
	defaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	sourceName     = "open-meteo"
)

// ErrCircuitOpen is returned while the breaker rejects upstream calls.
var ErrCircuitOpen = errors.New("open-meteo circuit breaker is open")

// Options tunes the upstream client.
type Options struct {
	BaseURL         string
	Timeout         time.Duration
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxFailures     uint32
	OpenTimeout     time.Duration
}

// Client fetches UV forecasts from Open-Meteo.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	opts       Options
	logger     *slog.Logger
	now        func() time.Time
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("open-meteo status=%d body=%s", e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

// NewClient builds an API client.
func NewClient(opts Options, logger *slog.Logger) *Client {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 200 * time.Millisecond
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	log := logger.With("component", "weather.openmeteo")
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        sourceName,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return !se.retryable()
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: opts.Timeout},
		breaker:    breaker,
		opts:       opts,
		logger:     log,
		now:        time.Now,
	}
}

var _ conditions.Provider = (*Client)(nil)

// Fetch retrieves today's and tomorrow's UV forecast for loc.
func (c *Client) Fetch(ctx context.Context, loc conditions.Location) (conditions.Forecast, error) {
	endpoint := c.baseURL + "?" + buildQuery(loc).Encode()
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return conditions.Forecast{}, err
	}
	var payload forecastResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return conditions.Forecast{}, fmt.Errorf("decode open-meteo response: %w", err)
	}
	forecast, err := normalize(payload)
	if err != nil {
		return conditions.Forecast{}, err
	}
	forecast.FetchedAt = c.now().UTC()
	return forecast, nil
}

func buildQuery(loc conditions.Location) url.Values {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', 4, 64))
	query.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', 4, 64))
	query.Set("hourly", "uv_index,cloud_cover")
	query.Set("daily", "uv_index_max,uv_index_clear_sky_max,sunrise,sunset")
	query.Set("timezone", "auto")
	query.Set("forecast_days", "2")
	if loc.ElevationMeters != nil {
		query.Set("elevation", strconv.FormatFloat(*loc.ElevationMeters, 'f', 0, 64))
	}
	return query
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.opts.InitialInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.opts.MaxRetries), ctx)

	var body []byte
	operation := func() error {
		out, err := c.breaker.Execute(func() ([]byte, error) {
			return c.do(ctx, endpoint)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			var se *statusError
			if errors.As(err, &se) && !se.retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		body = out
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("open-meteo request failed, retrying", "error", err, "wait", wait)
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, fmt.Errorf("open-meteo request: %w", err)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build open-meteo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &statusError{code: resp.StatusCode, body: string(payload)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read open-meteo response: %w", err)
	}
	return body, nil
}

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}
