package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/bornholm/go-x/slogx"

	"github.com/gurkanbulca/tasktracker/internal/metrics"
	"github.com/gurkanbulca/tasktracker/internal/models"
)

// TaskCounter reports task totals per mutability state.
type TaskCounter interface {
	CountByState(ctx context.Context) (map[models.TaskState]int, error)
}

// Maintenance runs the periodic housekeeping: flushing expired blacklist
// entries and refreshing the task gauges.
type Maintenance struct {
	auth  *AuthService
	tasks TaskCounter
}

func NewMaintenance(auth *AuthService, tasks TaskCounter) *Maintenance {
	return &Maintenance{auth: auth, tasks: tasks}
}

// RunOnce performs a single housekeeping pass.
func (m *Maintenance) RunOnce(ctx context.Context) error {
	flushed, err := m.auth.FlushExpiredTokens(ctx)
	if err != nil {
		return err
	}

	counts, err := m.tasks.CountByState(ctx)
	if err != nil {
		return err
	}
	for state, total := range counts {
		metrics.Tasks.WithLabelValues(string(state)).Set(float64(total))
	}

	slog.DebugContext(ctx, "maintenance completed", slog.Int64("flushed_tokens", flushed))

	return nil
}

// Run repeats RunOnce every interval until ctx is done.
func (m *Maintenance) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "starting background maintenance", slog.Duration("interval", interval))

	for {
		if err := m.RunOnce(ctx); err != nil {
			slog.ErrorContext(ctx, "maintenance failed", slogx.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
