// Package tasks provides a keyed delayed-task queue. Enqueueing with an
// existing key replaces the earlier task, which makes reminder re-arming on
// reschedule a plain upsert.
package tasks

import (
	"context"
	"encoding/json"
	"time"
)

// Task is a unit of deferred work identified by a stable key.
type Task struct {
	Key     string          `json:"key"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
	FireAt  time.Time       `json:"fire_at"`
}

// Queue is a delayed-task queue keyed by Task.Key.
type Queue interface {
	// Enqueue schedules the task, replacing any earlier task with the same key.
	Enqueue(ctx context.Context, t Task) error
	// Remove drops a pending task. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Claim atomically takes up to limit tasks whose fire time has passed.
	// A claimed task is gone from the queue; delivery is at-most-once.
	Claim(ctx context.Context, now time.Time, limit int) ([]Task, error)
}
