package assignment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sequencer hands out the per-department, per-day sequence numbers used in
// routing references.
type Sequencer interface {
	Next(ctx context.Context, department string, day time.Time) (int64, error)
}

// sequenceTTL keeps daily counter keys from accumulating; two days covers
// clock skew between instances around midnight.
const sequenceTTL = 48 * time.Hour

// RedisSequencer allocates sequence numbers with INCR so references stay
// unique across instances.
type RedisSequencer struct {
	client *redis.Client
}

func NewRedisSequencer(client *redis.Client) *RedisSequencer {
	return &RedisSequencer{client: client}
}

func (s *RedisSequencer) Next(ctx context.Context, department string, day time.Time) (int64, error) {
	key := fmt.Sprintf("routing:seq:%s:%s", department, day.Format("20060102"))
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment routing sequence %s: %w", key, err)
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, sequenceTTL).Err(); err != nil {
			return 0, fmt.Errorf("expire routing sequence %s: %w", key, err)
		}
	}
	return n, nil
}

// LocalSequencer is the single-instance fallback when Redis is not
// configured.
type LocalSequencer struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewLocalSequencer() *LocalSequencer {
	return &LocalSequencer{counts: make(map[string]int64)}
}

func (s *LocalSequencer) Next(_ context.Context, department string, day time.Time) (int64, error) {
	key := department + ":" + day.Format("20060102")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}
