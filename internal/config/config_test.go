package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "https://graph.facebook.com/v21.0", cfg.WhatsAppAPIBaseURL)
	assert.Equal(t, 10, cfg.ReminderWorkers)
	assert.Equal(t, 9, cfg.TrialSweepHour)
	assert.Equal(t, 5*time.Second, cfg.TaskPollInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("USE_MEMORY_QUEUE", "true")
	t.Setenv("REMINDER_WORKERS", "3")
	t.Setenv("TASK_POLL_INTERVAL", "250ms")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.UseMemoryQueue)
	assert.Equal(t, 3, cfg.ReminderWorkers)
	assert.Equal(t, 250*time.Millisecond, cfg.TaskPollInterval)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("REMINDER_WORKERS", "lots")
	t.Setenv("TASK_POLL_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, 10, cfg.ReminderWorkers)
	assert.Equal(t, 5*time.Second, cfg.TaskPollInterval)
}
