package sessionarchive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/sunday/internal/domain/session"
)

// S3Archive writes finished sessions to an S3 compatible bucket.
type S3Archive struct {
	client     *minio.Client
	bucketName string
	logger     *slog.Logger

	bucket *bucketGate
}

// NewS3Archive constructs the archive adapter.
func NewS3Archive(endpoint, accessKey, secretKey, bucket, region string, logger *slog.Logger) (*S3Archive, error) {
	cleanEndpoint := sanitizeEndpoint(endpoint)
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "http://")
	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	a := &S3Archive{client: client, bucketName: bucket, logger: logger.With("component", "sessionarchive.s3")}
	a.bucket = &bucketGate{check: a.createBucket}
	return a, nil
}

func (a *S3Archive) createBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucketName)
	if err == nil && exists {
		return nil
	}
	err = a.client.MakeBucket(ctx, a.bucketName, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

// bucketGate remembers a successful bucket check; failures are retried on the next call.
type bucketGate struct {
	mu    sync.Mutex
	ready bool
	check func(ctx context.Context) error
}

func (g *bucketGate) ensure(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ready {
		return nil
	}
	if err := g.check(ctx); err != nil {
		return err
	}
	g.ready = true
	return nil
}

// Put uploads the encoded record.
func (a *S3Archive) Put(ctx context.Context, rec session.Record) error {
	if err := a.bucket.ensure(ctx); err != nil {
		return fmt.Errorf("ensure bucket %s: %w", a.bucketName, err)
	}
	data, err := encode(rec)
	if err != nil {
		return err
	}
	key := ObjectKey(rec)
	info, err := a.client.PutObject(ctx, a.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: true,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	a.logger.Debug("session archived", "key", key, "etag", info.ETag, "size", info.Size)
	return nil
}

var _ session.Archive = (*S3Archive)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
