package tasks

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryQueue is an in-process Queue for tests and single-node dev runs.
type MemoryQueue struct {
	mu    sync.Mutex
	tasks map[string]Task
}

// NewMemoryQueue creates an empty in-memory task queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{tasks: make(map[string]Task)}
}

func (q *MemoryQueue) Enqueue(_ context.Context, t Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks[t.Key] = t
	return nil
}

func (q *MemoryQueue) Remove(_ context.Context, key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.tasks, key)
	return nil
}

func (q *MemoryQueue) Claim(_ context.Context, now time.Time, limit int) ([]Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []Task
	for _, t := range q.tasks {
		if !t.FireAt.After(now) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].FireAt.Before(due[j].FireAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	for _, t := range due {
		delete(q.tasks, t.Key)
	}
	return due, nil
}

// Pending reports how many tasks are still scheduled.
func (q *MemoryQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
