package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/tasktracker/internal/metrics"
	"github.com/gurkanbulca/tasktracker/internal/models"
	"github.com/gurkanbulca/tasktracker/internal/repository"
)

func TestMaintenance_RunOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser("alice")

	env.createTask(owner, "open one")
	env.createTask(owner, "open two")
	_, err := env.tasks.CreateTask(ctx, owner, TaskInput{
		Title:       Value("done"),
		Description: Value("d"),
		IsCompleted: Value(true),
	})
	require.NoError(t, err)

	blacklist := repository.NewTokenBlacklist(env.db)
	require.NoError(t, blacklist.Add(ctx, &models.BlacklistedToken{
		JTI:       "stale",
		UserID:    owner.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	m := NewMaintenance(env.auth, repository.NewTaskRepository(env.db))
	require.NoError(t, m.RunOnce(ctx))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Tasks.WithLabelValues(string(models.TaskStateOpen))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Tasks.WithLabelValues(string(models.TaskStateCompleted))))

	stale, err := blacklist.Contains(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, stale)
}

func TestMaintenance_RunStopsWithContext(t *testing.T) {
	env := newTestEnv(t)
	m := NewMaintenance(env.auth, repository.NewTaskRepository(env.db))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, time.Hour)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("maintenance loop did not stop")
	}
}
