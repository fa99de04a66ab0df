// Package lock serialises toggles on the same (user, target) pair across
// instances with a redsync mutex.
package lock

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lock:"

type RedisLocker struct {
	rs    *redsync.Redsync
	ttl   time.Duration
	tries int
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		rs:    redsync.New(goredis.NewPool(client)),
		ttl:   ttl,
		tries: 32,
	}
}

// Lock blocks until key is held or ctx ends. The returned func releases it.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	m := l.rs.NewMutex(keyPrefix+key,
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(l.tries),
		redsync.WithRetryDelay(50*time.Millisecond),
	)
	if err := m.LockContext(ctx); err != nil {
		return nil, errors.Wrapf(err, "lock %s", key)
	}
	return func() {
		// the lock may already have expired; the ttl bounds the damage
		if ok, err := m.UnlockContext(context.WithoutCancel(ctx)); err != nil || !ok {
			hlog.CtxWarnf(ctx, "unlock %s: ok=%v err=%v", key, ok, err)
		}
	}, nil
}
