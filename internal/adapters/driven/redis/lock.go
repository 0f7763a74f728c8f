// Package redis provides the Redis-backed distributed lock that keeps
// knowledge base reloads single-flight across engine instances.
package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DistributedLock = (*Lock)(nil)

// Lock keys are namespaced so engine locks never collide with queue
// keys on a shared Redis.
const lockPrefix = "nyaya:lock:"

// release and extend are fenced on the holder token: a worker whose
// lease lapsed mid-reload cannot drop or stretch a lease another
// instance has since taken over.
var (
	fencedRelease = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

	fencedExtend = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0`)
)

// Lock is a SET NX lease with a TTL. The TTL bounds how long a crashed
// worker can hold up the next reload.
type Lock struct {
	client *redis.Client
	holder string
}

// NewLock creates a lock bound to this process. The holder token mixes
// hostname, pid, and random bytes so two workers on one host stay
// distinguishable.
func NewLock(client *redis.Client) *Lock {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	host, _ := os.Hostname()
	return &Lock{
		client: client,
		holder: fmt.Sprintf("%s:%d:%s", host, os.Getpid(), hex.EncodeToString(buf)),
	}
}

// Holder returns this instance's lease token.
func (l *Lock) Holder() string {
	return l.holder
}

// Acquire takes the named lease for ttl. Returns false without error
// when another instance already holds it; the caller is expected to
// skip the work, not wait.
func (l *Lock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockPrefix+name, l.holder, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	return ok, nil
}

// Release drops the named lease if this instance still holds it. Safe
// to call after expiry or takeover; the fence makes it a no-op then.
func (l *Lock) Release(ctx context.Context, name string) error {
	_, err := fencedRelease.Run(ctx, l.client, []string{lockPrefix + name}, l.holder).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}

// Extend pushes the lease TTL out for a reload running long. Errors if
// the lease is no longer this instance's to extend.
func (l *Lock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	res, err := fencedExtend.Run(ctx, l.client, []string{lockPrefix + name}, l.holder, ttl.Milliseconds()).Result()
	if err != nil {
		return fmt.Errorf("extend lock %s: %w", name, err)
	}
	if res.(int64) == 0 {
		return fmt.Errorf("lock %s not held by this instance", name)
	}
	return nil
}

// Ping checks if the Redis backend is healthy.
func (l *Lock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
