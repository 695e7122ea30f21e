package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditCleanup prunes audit entries past the retention window.
	TaskAuditCleanup = "audit:cleanup"
	// TaskReservationReminders notifies guests of upcoming reservations.
	TaskReservationReminders = "reservations:reminders"
	// TaskMenuWarmup rebuilds public menu caches ahead of traffic.
	TaskMenuWarmup = "menu:warmup"
)

// AuditCleanupPayload bounds a cleanup run.
type AuditCleanupPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewAuditCleanupTask constructs an audit cleanup task.
func NewAuditCleanupTask(payload AuditCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditCleanup, data), nil
}

// ReservationRemindersPayload selects the look-ahead window for reminders.
type ReservationRemindersPayload struct {
	LookAhead time.Duration `json:"look_ahead"`
}

// NewReservationRemindersTask constructs a reminder scan task.
func NewReservationRemindersTask(payload ReservationRemindersPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReservationReminders, data), nil
}

// MenuWarmupPayload optionally narrows warmup to specific slugs.
type MenuWarmupPayload struct {
	Slugs []string `json:"slugs,omitempty"`
}

// NewMenuWarmupTask constructs a cache warmup task.
func NewMenuWarmupTask(payload MenuWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMenuWarmup, data), nil
}
