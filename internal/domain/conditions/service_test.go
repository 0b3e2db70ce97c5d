package conditions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/sunday/pkg/errors"
)

func TestDeriveCurrentHourAndAltitude(t *testing.T) {
	forecast := sampleForecast(t)
	now := mustParse(t, "2024-07-01T12:40:00+02:00")

	got := Derive(forecast, now)
	require.Equal(t, 4.0, got.RawUVIndex)
	require.InDelta(t, 1.2, got.UVMultiplier, 1e-12)
	require.Equal(t, 4.8, got.UVIndex)
	require.Equal(t, 30, got.CloudCoverPercent)
	require.Equal(t, "moderate", got.Category)
	require.Equal(t, 7.2, got.MaxUVToday)
	require.Equal(t, 6.0, got.MaxUVTomorrow)
	require.NotNil(t, got.Sunrise)
	require.NotNil(t, got.TomorrowSunset)
	require.False(t, got.VitaminDWinter)
	require.Len(t, got.Hourly, 3)
	require.Equal(t, 7.2, got.Hourly[2].UVIndex)
}

func TestDeriveWithoutCurrentSampleIsZero(t *testing.T) {
	forecast := sampleForecast(t)
	got := Derive(forecast, mustParse(t, "2024-07-01T22:00:00+02:00"))
	require.Zero(t, got.UVIndex)
	require.Equal(t, "low", got.Category)
}

func TestServiceCurrentUsesCache(t *testing.T) {
	provider := &stubProvider{forecast: sampleForecast(t)}
	cache := newMapCache()
	svc := newTestService(provider, cache, "2024-07-01T11:05:00+02:00")

	loc := Location{Latitude: 46.5, Longitude: 7.98}
	first, err := svc.Current(context.Background(), loc)
	require.NoError(t, err)
	second, err := svc.Current(context.Background(), loc)
	require.NoError(t, err)

	require.Equal(t, 1, provider.calls)
	require.Equal(t, first.UVIndex, second.UVIndex)
	require.Equal(t, 15*time.Minute, cache.lastTTL)

	_, err = svc.Refresh(context.Background(), loc)
	require.NoError(t, err)
	require.Equal(t, 2, provider.calls)
}

func TestServiceCurrentProviderFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("boom")}
	svc := newTestService(provider, newMapCache(), "2024-07-01T11:05:00+02:00")

	_, err := svc.Current(context.Background(), Location{Latitude: 1, Longitude: 2})
	require.True(t, apperrors.IsCode(err, apperrors.CodeUVDataError))
}

func TestServiceCurrentInvalidLocation(t *testing.T) {
	svc := newTestService(&stubProvider{}, newMapCache(), "2024-07-01T11:05:00+02:00")
	_, err := svc.Current(context.Background(), Location{Latitude: 91, Longitude: 0})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestLocationKey(t *testing.T) {
	elev := 1234.4
	require.Equal(t, "46.50:7.98", Location{Latitude: 46.5, Longitude: 7.9812}.Key())
	require.Equal(t, "46.50:7.98:1234", Location{Latitude: 46.5, Longitude: 7.9812, ElevationMeters: &elev}.Key())
}

func newTestService(provider Provider, cache Cache, now string) *service {
	ts, err := time.Parse(time.RFC3339, now)
	if err != nil {
		panic(err)
	}
	svc := NewService(Config{}, provider, cache, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
	svc.now = func() time.Time { return ts }
	return svc
}

func sampleForecast(t *testing.T) Forecast {
	t.Helper()
	return Forecast{
		Latitude:        46.5,
		Longitude:       7.98,
		ElevationMeters: 2000,
		Timezone:        "Europe/Zurich",
		Source:          "test",
		Hourly: []UVSample{
			{Time: mustParse(t, "2024-07-01T11:00:00+02:00"), UVIndex: 3, CloudCoverPercent: 10},
			{Time: mustParse(t, "2024-07-01T12:00:00+02:00"), UVIndex: 4, CloudCoverPercent: 30},
			{Time: mustParse(t, "2024-07-01T13:00:00+02:00"), UVIndex: 6, CloudCoverPercent: 55},
			{Time: mustParse(t, "2024-07-02T12:00:00+02:00"), UVIndex: 5, CloudCoverPercent: 0},
		},
		Days: []DailyForecast{
			{Date: "2024-07-01", MaxUV: 6, Sunrise: mustParse(t, "2024-07-01T05:40:00+02:00"), Sunset: mustParse(t, "2024-07-01T21:25:00+02:00")},
			{Date: "2024-07-02", MaxUV: 5, Sunrise: mustParse(t, "2024-07-02T05:41:00+02:00"), Sunset: mustParse(t, "2024-07-02T21:25:00+02:00")},
		},
		FetchedAt: mustParse(t, "2024-07-01T10:00:00Z"),
	}
}

type stubProvider struct {
	forecast Forecast
	err      error
	calls    int
}

func (s *stubProvider) Fetch(ctx context.Context, loc Location) (Forecast, error) {
	s.calls++
	if s.err != nil {
		return Forecast{}, s.err
	}
	return s.forecast, nil
}

type mapCache struct {
	mu      sync.Mutex
	items   map[string]Forecast
	lastTTL time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string]Forecast)}
}

func (m *mapCache) Get(_ context.Context, key string) (Forecast, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.items[key]
	return f, ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, f Forecast, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = f
	m.lastTTL = ttl
	return nil
}

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}
