package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/sunday/internal/domain/conditions"
)

func TestRunOnceRefreshesEveryTarget(t *testing.T) {
	refresher := &stubRefresher{fail: map[float64]bool{2: true}}
	targets := []Target{
		{Name: "a", Location: conditions.Location{Latitude: 1}},
		{Name: "b", Location: conditions.Location{Latitude: 2}},
		{Name: "c", Location: conditions.Location{Latitude: 3}},
	}
	s, err := New(true, "@every 15m", targets, refresher, testLogger())
	require.NoError(t, err)

	require.Equal(t, 1, s.RunOnce(context.Background()))
	require.Equal(t, []float64{1, 2, 3}, refresher.seen)
	require.Len(t, s.cron.Entries(), 1)
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	_, err := New(true, "every now and then", []Target{{Name: "a"}}, &stubRefresher{}, testLogger())
	require.Error(t, err)
}

func TestDisabledSchedulerIsInert(t *testing.T) {
	s, err := New(false, "not parsed", []Target{{Name: "a"}}, &stubRefresher{}, testLogger())
	require.NoError(t, err)
	s.Start()
	require.Empty(t, s.cron.Entries())
	require.NoError(t, s.Stop(context.Background()))
}

type stubRefresher struct {
	fail map[float64]bool
	seen []float64
}

func (s *stubRefresher) Refresh(_ context.Context, loc conditions.Location) (conditions.Conditions, error) {
	s.seen = append(s.seen, loc.Latitude)
	if s.fail[loc.Latitude] {
		return conditions.Conditions{}, errors.New("upstream down")
	}
	return conditions.Conditions{UVIndex: 5}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
