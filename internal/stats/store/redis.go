package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"smartsearch/internal/platform/redis"
	"smartsearch/pkg/statistics"
)

const snapshotKey = "smartsearch:statistics:snapshot"

// RedisSnapshots persists the last good statistics snapshot in Redis so a
// restarted instance serves real numbers before its first recomputation.
type RedisSnapshots struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshots creates a snapshot store. The TTL bounds how long a
// snapshot outlives the instance that wrote it.
func NewRedisSnapshots(client *redis.Client, ttl time.Duration) *RedisSnapshots {
	return &RedisSnapshots{client: client, ttl: ttl}
}

func (s *RedisSnapshots) Load(ctx context.Context) (*statistics.Statistics, error) {
	raw, err := s.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load statistics snapshot: %w", err)
	}
	var snap statistics.Statistics
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode statistics snapshot: %w", err)
	}
	return &snap, nil
}

func (s *RedisSnapshots) Save(ctx context.Context, snap *statistics.Statistics) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode statistics snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save statistics snapshot: %w", err)
	}
	return nil
}
