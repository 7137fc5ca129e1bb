// Package reminder arms and delivers the 24-hour and 2-hour appointment
// reminders.
package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mawidhq/clinic-bot/internal/tasks"
)

// TaskKind marks reminder tasks in the shared delayed-task queue.
const TaskKind = "appointment_reminder"

var leadTimes = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"2h":  2 * time.Hour,
}

// Payload is the task body for one reminder.
type Payload struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Kind          string    `json:"kind"` // "24h" or "2h"
}

func taskKey(appointmentID uuid.UUID, kind string) string {
	return fmt.Sprintf("%s-%s", appointmentID, kind)
}

// Scheduler enqueues keyed delayed reminder tasks. Keys are deterministic per
// (appointment, kind) so scheduling again after a reschedule replaces the
// earlier pair instead of duplicating it.
type Scheduler struct {
	queue tasks.Queue
	now   func() time.Time
}

// NewScheduler creates a reminder scheduler.
func NewScheduler(queue tasks.Queue) *Scheduler {
	return &Scheduler{queue: queue, now: time.Now}
}

// Schedule arms the 24h and 2h reminders for an appointment. Fire times
// already in the past are not armed; any previously queued task under the
// same key is withdrawn so a reschedule into the near future cannot leave a
// stale reminder behind.
func (s *Scheduler) Schedule(ctx context.Context, appointmentID uuid.UUID, at time.Time) error {
	now := s.now()
	for kind, lead := range leadTimes {
		key := taskKey(appointmentID, kind)
		fireAt := at.Add(-lead)
		if !fireAt.After(now) {
			if err := s.queue.Remove(ctx, key); err != nil {
				return fmt.Errorf("reminder: remove stale %s: %w", key, err)
			}
			continue
		}
		payload, err := json.Marshal(Payload{AppointmentID: appointmentID, Kind: kind})
		if err != nil {
			return fmt.Errorf("reminder: encode payload: %w", err)
		}
		err = s.queue.Enqueue(ctx, tasks.Task{
			Key:     key,
			Kind:    TaskKind,
			Payload: payload,
			FireAt:  fireAt,
		})
		if err != nil {
			return fmt.Errorf("reminder: enqueue %s: %w", key, err)
		}
	}
	return nil
}

// Cancel withdraws both reminder tasks for an appointment. Cancelling an
// appointment with no pending reminders is a no-op.
func (s *Scheduler) Cancel(ctx context.Context, appointmentID uuid.UUID) error {
	for kind := range leadTimes {
		if err := s.queue.Remove(ctx, taskKey(appointmentID, kind)); err != nil {
			return fmt.Errorf("reminder: cancel %s: %w", taskKey(appointmentID, kind), err)
		}
	}
	return nil
}
