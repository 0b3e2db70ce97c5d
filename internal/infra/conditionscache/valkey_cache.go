package conditionscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/sunday/internal/domain/conditions"
)

// ValkeyCache persists forecasts using a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a new cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "sunday"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

func (c *ValkeyCache) Get(ctx context.Context, key string) (conditions.Forecast, bool, error) {
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(c.entryKey(key)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return conditions.Forecast{}, false, nil
		}
		return conditions.Forecast{}, false, err
	}
	var forecast conditions.Forecast
	if err := json.Unmarshal([]byte(payload), &forecast); err != nil {
		return conditions.Forecast{}, false, err
	}
	return forecast, true, nil
}

func (c *ValkeyCache) Set(ctx context.Context, key string, forecast conditions.Forecast, ttl time.Duration) error {
	payload, err := json.Marshal(forecast)
	if err != nil {
		return err
	}
	builder := c.client.B().Set().Key(c.entryKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) entryKey(key string) string {
	return c.prefix + ":forecast:" + key
}

var _ conditions.Cache = (*ValkeyCache)(nil)
