package openmeteo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/sunday/internal/domain/conditions"
)

const samplePayload = `{
  "latitude": 46.56,
  "longitude": 7.98,
  "elevation": 1000,
  "timezone": "Europe/Zurich",
  "hourly": {
    "time": ["2024-07-01T11:00", "2024-07-01T12:00", "2024-07-01T13:00"],
    "uv_index": [3.0, 4.0, null],
    "cloud_cover": [10, 20, 30]
  },
  "daily": {
    "time": ["2024-07-01", "2024-07-02"],
    "uv_index_max": [7.5, 6.0],
    "uv_index_clear_sky_max": [8.0, 7.0],
    "sunrise": ["2024-07-01T05:40", "2024-07-02T05:41"],
    "sunset": ["2024-07-01T21:25", "2024-07-02T21:25"]
  }
}`

func TestClientFetchNormalizesForecast(t *testing.T) {
	var query atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, samplePayload)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, Options{})
	elevation := 1000.0
	forecast, err := client.Fetch(context.Background(), conditions.Location{Latitude: 46.5577, Longitude: 7.9806, ElevationMeters: &elevation})
	require.NoError(t, err)

	q := query.Load().(url.Values)
	require.Equal(t, []string{"uv_index,cloud_cover"}, q["hourly"])
	require.Equal(t, []string{"uv_index_max,uv_index_clear_sky_max,sunrise,sunset"}, q["daily"])
	require.Equal(t, []string{"auto"}, q["timezone"])
	require.Equal(t, []string{"2"}, q["forecast_days"])
	require.Equal(t, []string{"1000"}, q["elevation"])
	require.Equal(t, []string{"46.5577"}, q["latitude"])

	require.Equal(t, "open-meteo", forecast.Source)
	require.Equal(t, "Europe/Zurich", forecast.Timezone)
	require.Len(t, forecast.Hourly, 2)
	require.Equal(t, 4.0, forecast.Hourly[1].UVIndex)
	require.Equal(t, 20.0, forecast.Hourly[1].CloudCoverPercent)
	require.Len(t, forecast.Days, 2)
	require.Equal(t, 8.0, forecast.Days[0].ClearSkyMaxUV)
	require.Equal(t, 5, forecast.Days[0].Sunrise.Hour())
	require.False(t, forecast.FetchedAt.IsZero())

	zurich, err := time.LoadLocation("Europe/Zurich")
	require.NoError(t, err)
	got := conditions.Derive(forecast, time.Date(2024, 7, 1, 12, 30, 0, 0, zurich))
	require.InDelta(t, 4.4, got.UVIndex, 1e-9)
	require.InDelta(t, 8.25, got.MaxUVToday, 1e-9)
	require.Equal(t, 20, got.CloudCoverPercent)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, samplePayload)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, Options{MaxRetries: 2})
	_, err := client.Fetch(context.Background(), conditions.Location{Latitude: 1, Longitude: 2})
	require.NoError(t, err)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":true,"reason":"Latitude must be in range of -90 to 90°."}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, Options{MaxRetries: 3})
	_, err := client.Fetch(context.Background(), conditions.Location{Latitude: 1, Longitude: 2})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=400")
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.Equal(t, "closed", client.BreakerState())
}

func TestClientOpensBreaker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, Options{MaxFailures: 2, OpenTimeout: time.Minute})
	loc := conditions.Location{Latitude: 1, Longitude: 2}
	for i := 0; i < 2; i++ {
		_, err := client.Fetch(context.Background(), loc)
		require.Error(t, err)
	}
	_, err := client.Fetch(context.Background(), loc)
	require.True(t, errors.Is(err, ErrCircuitOpen))
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
	require.Equal(t, "open", client.BreakerState())
}

func TestNormalizeRejectsEmptyPayload(t *testing.T) {
	_, err := normalize(forecastResponse{})
	require.Error(t, err)
}

func newTestClient(baseURL string, opts Options) *Client {
	opts.BaseURL = baseURL
	opts.InitialInterval = time.Millisecond
	return NewClient(opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
}
