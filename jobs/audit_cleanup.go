package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/mesa-hq/mesa/internal/jobs"
)

// AuditPruner deletes audit entries past a cutoff.
type AuditPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// KeyCleaner prunes stale idempotency keys.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// AuditCleanupJob prunes audit entries and idempotency keys on a schedule.
type AuditCleanupJob struct {
	Audit     AuditPruner
	Keys      KeyCleaner
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	Retention time.Duration
	clock     func() time.Time
}

// NewAuditCleanupJob wires dependencies for the cleanup handler.
func NewAuditCleanupJob(pruner AuditPruner, keys KeyCleaner, logger *slog.Logger, metrics *jobmetrics.Metrics, retention time.Duration) *AuditCleanupJob {
	return &AuditCleanupJob{
		Audit:     pruner,
		Keys:      keys,
		Logger:    logger,
		Metrics:   metrics,
		Retention: retention,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes audit cleanup tasks.
func (j *AuditCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Audit == nil {
		return errors.New("audit cleanup: handler not configured")
	}
	var payload AuditCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	retention := payload.Retention
	if retention <= 0 {
		retention = j.Retention
	}
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}

	tracker := j.Metrics.Track(TaskAuditCleanup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	cutoff := j.clock().Add(-retention)
	deleted, err := j.Audit.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		resultErr = err
		return err
	}
	if j.Keys != nil {
		if err := j.Keys.Cleanup(ctx, retention); err != nil {
			j.Logger.Warn("idempotency key cleanup failed", slog.Any("error", err))
		}
	}
	j.Logger.Info("audit cleanup done",
		slog.Time("cutoff", cutoff),
		slog.Int64("deleted", deleted))
	return nil
}
