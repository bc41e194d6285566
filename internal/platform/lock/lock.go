// Package lock serializes mutations on a single document. The optimistic
// version check at the persistence layer is the correctness guarantee; the
// locker in front of it keeps concurrent writers from burning retries.
package lock

import (
	"context"
	"hash/fnv"
	"sync"
)

// Locker runs fn while holding an exclusive lock for key.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

const stripeCount = 64

type stripedLocker struct {
	stripes [stripeCount]sync.Mutex
}

// NewStriped returns an in-process locker that hashes keys onto a fixed set
// of mutexes. Used when no Redis is configured and in tests; only serializes
// within one process.
func NewStriped() Locker {
	return &stripedLocker{}
}

func (l *stripedLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	h := fnv.New32a()
	h.Write([]byte(key))
	mu := &l.stripes[h.Sum32()%stripeCount]

	mu.Lock()
	defer mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
