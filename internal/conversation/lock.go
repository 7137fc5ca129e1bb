package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when the caller still holds it, so a
// slow handler cannot release a lock that already expired and was re-taken.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// Lock serializes message handling per (tenant, phone). WhatsApp retries and
// double-taps otherwise interleave two handlers over the same conversation row.
type Lock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLock creates a conversation lock with the given hold TTL.
func NewLock(client *redis.Client, ttl time.Duration) *Lock {
	return &Lock{client: client, ttl: ttl}
}

// Acquire tries to take the per-conversation mutex. On success it returns a
// release func; when the lock is already held it returns ok=false and the
// caller is expected to drop the message.
func (l *Lock) Acquire(ctx context.Context, tenantID uuid.UUID, phone string) (func(), bool, error) {
	key := fmt.Sprintf("lock:conv:%s:%s", tenantID, phone)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("conversation: acquire lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// release runs on the way out of a handler; don't inherit its
		// possibly-cancelled context
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(rctx, l.client, []string{key}, token).Err()
	}
	return release, true, nil
}
