//go:build integration

package assignment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sahaya/pkg/testutil/containers"
)

type RedisSequencerSuite struct {
	suite.Suite

	ctx       context.Context
	redis     *containers.RedisContainer
	sequencer *RedisSequencer
}

func TestRedisSequencerSuite(t *testing.T) {
	suite.Run(t, new(RedisSequencerSuite))
}

func (s *RedisSequencerSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.GetManager().GetRedis(s.T())
	s.sequencer = NewRedisSequencer(s.redis.Client)
}

func (s *RedisSequencerSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

// =============================================================================
// Sequence allocation
// =============================================================================

func (s *RedisSequencerSuite) TestAllocation() {
	day := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)

	s.Run("starts at one and counts up", func() {
		for want := int64(1); want <= 3; want++ {
			n, err := s.sequencer.Next(s.ctx, "PWD", day)
			s.Require().NoError(err)
			s.Equal(want, n)
		}
	})

	s.Run("counts independently per department and per day", func() {
		n, err := s.sequencer.Next(s.ctx, "RDO", day)
		s.Require().NoError(err)
		s.Equal(int64(1), n)

		n, err = s.sequencer.Next(s.ctx, "PWD", day.AddDate(0, 0, 1))
		s.Require().NoError(err)
		s.Equal(int64(1), n)
	})

	s.Run("sets a TTL on the day key", func() {
		_, err := s.sequencer.Next(s.ctx, "TSE", day)
		s.Require().NoError(err)

		ttl, err := s.redis.Client.TTL(s.ctx, "routing:seq:TSE:20260314").Result()
		s.Require().NoError(err)
		s.Greater(ttl, time.Duration(0))
		s.LessOrEqual(ttl, 48*time.Hour)
	})
}

// Concurrent allocations must never hand out duplicate numbers; routing
// references derived from them are unique across instances.
func (s *RedisSequencerSuite) TestConcurrentAllocations() {
	day := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)

	const workers = 25
	seen := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.sequencer.Next(s.ctx, "PWD", day)
			s.NoError(err)
			seen <- n
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int64]bool, workers)
	for n := range seen {
		s.False(unique[n], "sequence %d allocated twice", n)
		unique[n] = true
	}
	s.Len(unique, workers)
}
