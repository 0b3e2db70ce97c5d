package conditionscache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/sunday/internal/domain/conditions"
)

func TestMemoryCacheExpiresEntries(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	forecast := conditions.Forecast{Latitude: 47.37, Source: "open-meteo"}
	require.NoError(t, cache.Set(context.Background(), "47.37:8.54", forecast, 15*time.Minute))

	got, ok, err := cache.Get(context.Background(), "47.37:8.54")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, forecast, got)

	now = now.Add(15 * time.Minute)
	_, ok, err = cache.Get(context.Background(), "47.37:8.54")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryCacheWithoutTTLKeepsEntries(t *testing.T) {
	cache := NewMemoryCache()
	require.NoError(t, cache.Set(context.Background(), "k", conditions.Forecast{Source: "x"}, 0))
	_, ok, err := cache.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = cache.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, ok)
}
