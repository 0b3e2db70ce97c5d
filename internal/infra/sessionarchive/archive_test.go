package sessionarchive

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/sunday/internal/domain/session"
)

func TestMemoryArchiveStoresJSONUnderDatedKey(t *testing.T) {
	archive := NewMemoryArchive()
	rec := session.Record{
		ID:        "s1",
		ProfileID: "p1",
		StartedAt: time.Date(2024, 7, 1, 23, 30, 0, 0, time.FixedZone("X", -2*60*60)),
		TotalIU:   512.5,
	}
	require.NoError(t, archive.Put(context.Background(), rec))

	data, ok := archive.Object("sessions/p1/2024-07-02/s1.json")
	require.True(t, ok)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, 512.5, decoded["totalIU"])
}

func TestSanitizeEndpoint(t *testing.T) {
	require.Equal(t, "minio.local:9000", sanitizeEndpoint("http://minio.local:9000/"))
	require.Equal(t, "acct.r2.cloudflarestorage.com", sanitizeEndpoint(" https://acct.r2.cloudflarestorage.com/bucket "))
	require.Equal(t, "s3.amazonaws.com", sanitizeEndpoint("s3.amazonaws.com"))
}

func TestBucketGateRetriesAfterFailure(t *testing.T) {
	calls := 0
	gate := &bucketGate{check: func(ctx context.Context) error {
		calls++
		if err := ctx.Err(); err != nil {
			return err
		}
		if calls == 2 {
			return errors.New("connection reset")
		}
		return nil
	}}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, gate.ensure(cancelled), context.Canceled)
	require.Error(t, gate.ensure(context.Background()))

	require.NoError(t, gate.ensure(context.Background()))
	require.NoError(t, gate.ensure(context.Background()))
	require.Equal(t, 3, calls)
}
