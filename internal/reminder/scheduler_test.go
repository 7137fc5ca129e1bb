package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mawidhq/clinic-bot/internal/tasks"
)

func TestScheduleArmsBothReminders(t *testing.T) {
	q := tasks.NewMemoryQueue()
	s := NewScheduler(q)
	now := time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	apptID := uuid.New()
	at := now.Add(48 * time.Hour)
	require.NoError(t, s.Schedule(context.Background(), apptID, at))

	claimed, err := q.Claim(context.Background(), at, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 2)

	fireTimes := map[string]time.Time{}
	for _, task := range claimed {
		assert.Equal(t, TaskKind, task.Kind)
		fireTimes[task.Key] = task.FireAt
	}
	assert.Equal(t, at.Add(-24*time.Hour), fireTimes[apptID.String()+"-24h"])
	assert.Equal(t, at.Add(-2*time.Hour), fireTimes[apptID.String()+"-2h"])
}

func TestSchedulePastFireTimesSkipped(t *testing.T) {
	q := tasks.NewMemoryQueue()
	s := NewScheduler(q)
	now := time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	// appointment in 3 hours: the 24h mark has already passed
	apptID := uuid.New()
	require.NoError(t, s.Schedule(context.Background(), apptID, now.Add(3*time.Hour)))

	assert.Equal(t, 1, q.Pending())
	claimed, err := q.Claim(context.Background(), now.Add(3*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, apptID.String()+"-2h", claimed[0].Key)
}

func TestScheduleAgainReplacesAndDropsStale(t *testing.T) {
	q := tasks.NewMemoryQueue()
	s := NewScheduler(q)
	now := time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	apptID := uuid.New()
	require.NoError(t, s.Schedule(context.Background(), apptID, now.Add(48*time.Hour)))
	assert.Equal(t, 2, q.Pending())

	// rescheduled to 3 hours out: 24h task must vanish, 2h task must move
	require.NoError(t, s.Schedule(context.Background(), apptID, now.Add(3*time.Hour)))
	assert.Equal(t, 1, q.Pending())

	claimed, err := q.Claim(context.Background(), now.Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, apptID.String()+"-2h", claimed[0].Key)
	assert.Equal(t, now.Add(time.Hour), claimed[0].FireAt)
}

func TestCancelIsIdempotent(t *testing.T) {
	q := tasks.NewMemoryQueue()
	s := NewScheduler(q)
	now := time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	apptID := uuid.New()
	require.NoError(t, s.Schedule(context.Background(), apptID, now.Add(48*time.Hour)))
	require.NoError(t, s.Cancel(context.Background(), apptID))
	assert.Equal(t, 0, q.Pending())
	require.NoError(t, s.Cancel(context.Background(), apptID))
}
