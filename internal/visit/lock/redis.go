package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	id "visitflow/pkg/domain"
	"visitflow/pkg/platform/sentinel"
)

const (
	defaultTTL           = 30 * time.Second
	defaultRetryInterval = 25 * time.Millisecond
	defaultKeyPrefix     = "visitflow:lock:visitor:"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the lease only while the key still holds our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Redis is a distributed per-visitor lock built on SET NX PX. While held, the lease is
// renewed every third of the TTL, so the TTL only bounds how long a crashed holder can
// block a visitor.
type Redis struct {
	client        redis.UniversalClient
	ttl           time.Duration
	retryInterval time.Duration
	keyPrefix     string
}

// RedisOption configures a Redis lock.
type RedisOption func(*Redis)

func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithRetryInterval(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.retryInterval = d
		}
	}
}

func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if prefix != "" {
			r.keyPrefix = prefix
		}
	}
}

func NewRedis(client redis.UniversalClient, opts ...RedisOption) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	r := &Redis{
		client:        client,
		ttl:           defaultTTL,
		retryInterval: defaultRetryInterval,
		keyPrefix:     defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Redis) key(visitorID id.VisitorID) string {
	return r.keyPrefix + visitorID.String()
}

func (r *Redis) Lock(ctx context.Context, visitorID id.VisitorID) (func(), error) {
	key := r.key(visitorID)
	token := uuid.NewString()

	ticker := time.NewTicker(r.retryInterval)
	defer ticker.Stop()
	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("acquire visitor lock: %w: %w", sentinel.ErrUnavailable, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	stopRenew := make(chan struct{})
	renewDone := make(chan struct{})
	go r.renew(key, token, stopRenew, renewDone)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stopRenew)
			<-renewDone
			// The caller's ctx may already be done; release on a fresh bounded context.
			releaseCtx, cancel := context.WithTimeout(context.Background(), r.ttl)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, r.client, []string{key}, token).Err()
		})
	}, nil
}

// renew keeps extending the lease until stop is closed or the key no longer holds token.
func (r *Redis) renew(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	interval := max(r.ttl/3, time.Millisecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		extended, err := renewScript.Run(ctx, r.client, []string{key}, token, r.ttl.Milliseconds()).Int64()
		cancel()
		if err == nil && extended == 0 {
			// Lease lost to expiry; nothing left to renew.
			return
		}
	}
}
