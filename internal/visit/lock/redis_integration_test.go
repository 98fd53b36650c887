//go:build integration

package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"visitflow/internal/visit/lock"
	id "visitflow/pkg/domain"
	"visitflow/pkg/testutil/containers"
)

type RedisLockSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisLockSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLockSuite))
}

func (s *RedisLockSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisLockSuite) SetupTest() {
	s.redis.Reset(s.T())
}

// TestMutualExclusionAcrossLockers simulates two server replicas sharing Redis.
func (s *RedisLockSuite) TestMutualExclusionAcrossLockers() {
	a, err := lock.NewRedis(s.redis.Client, lock.WithRetryInterval(2*time.Millisecond))
	s.Require().NoError(err)
	b, err := lock.NewRedis(s.redis.Client, lock.WithRetryInterval(2*time.Millisecond))
	s.Require().NoError(err)

	visitor := id.NewVisitorID()
	var (
		wg      sync.WaitGroup
		inside  atomic.Int32
		overlap atomic.Bool
	)
	for i := 0; i < 20; i++ {
		locker := a
		if i%2 == 1 {
			locker = b
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), visitor)
			if err != nil {
				s.T().Errorf("lock: %v", err)
				return
			}
			defer unlock()
			if inside.Add(1) > 1 {
				overlap.Store(true)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()
	s.False(overlap.Load())
	s.Empty(s.redis.Keys(s.T(), "visitflow:lock:*"), "every lock is released")
}
