package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lease only when the caller still holds it,
// so an expired lease taken over by another runner is never removed.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// LeaseStore hands out exclusive job leases backed by Redis. A lease
// expires on its own after the TTL, so a crashed runner cannot block
// the job forever.
type LeaseStore struct {
	client *redis.Client
	prefix string
}

// NewLeaseStore creates a new LeaseStore.
func NewLeaseStore(client *redis.Client) *LeaseStore {
	return &LeaseStore{
		client: client,
		prefix: "lease:",
	}
}

// Acquire attempts to take the named lease for ttl, identifying the
// holder by owner. It returns false when another holder has the lease.
func (s *LeaseStore) Acquire(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.prefix+name, owner, ttl).Result()
}

// Release gives up the named lease if owner still holds it.
func (s *LeaseStore) Release(ctx context.Context, name, owner string) error {
	return releaseScript.Run(ctx, s.client, []string{s.prefix + name}, owner).Err()
}
