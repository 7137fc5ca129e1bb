package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	scheduleKey = "tasks:schedule"
	payloadKey  = "tasks:payload"
)

// claimScript pops due members from the schedule ZSET and collects their
// payloads from the HASH in one atomic step, so two pollers never claim the
// same task. A member whose payload is already gone is dropped without
// losing the rest of the batch.
var claimScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
local out = {}
for _, key in ipairs(due) do
  redis.call('ZREM', KEYS[1], key)
  local body = redis.call('HGET', KEYS[2], key)
  redis.call('HDEL', KEYS[2], key)
  if body then
    out[#out + 1] = body
  end
end
return out
`)

// RedisQueue stores tasks in a sorted set scored by fire time, with task
// bodies in a companion hash.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue creates a Redis-backed task queue.
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

func (q *RedisQueue) Enqueue(ctx context.Context, t Task) error {
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("tasks: marshal: %w", err)
	}
	pipe := q.client.TxPipeline()
	pipe.ZAdd(ctx, scheduleKey, redis.Z{Score: float64(t.FireAt.UnixMilli()), Member: t.Key})
	pipe.HSet(ctx, payloadKey, t.Key, body)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("tasks: enqueue %s: %w", t.Key, err)
	}
	return nil
}

func (q *RedisQueue) Remove(ctx context.Context, key string) error {
	pipe := q.client.TxPipeline()
	pipe.ZRem(ctx, scheduleKey, key)
	pipe.HDel(ctx, payloadKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("tasks: remove %s: %w", key, err)
	}
	return nil
}

func (q *RedisQueue) Claim(ctx context.Context, now time.Time, limit int) ([]Task, error) {
	res, err := claimScript.Run(ctx, q.client,
		[]string{scheduleKey, payloadKey},
		strconv.FormatInt(now.UnixMilli(), 10), strconv.Itoa(limit)).Result()
	if err != nil {
		return nil, fmt.Errorf("tasks: claim: %w", err)
	}

	raw, ok := res.([]interface{})
	if !ok {
		return nil, fmt.Errorf("tasks: claim: unexpected reply type %T", res)
	}
	var out []Task
	for _, item := range raw {
		body, ok := item.(string)
		if !ok {
			continue
		}
		var t Task
		if err := json.Unmarshal([]byte(body), &t); err != nil {
			return nil, fmt.Errorf("tasks: decode claimed task: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}
