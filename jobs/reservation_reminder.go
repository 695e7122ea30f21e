package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/mesa-hq/mesa/internal/jobs"
	"github.com/mesa-hq/mesa/internal/reservations"
)

// UpcomingLister returns reservations starting within a window across all restaurants.
type UpcomingLister interface {
	Upcoming(ctx context.Context, from, to time.Time) ([]reservations.Reservation, error)
}

// ReservationReminderJob finds reservations starting soon and emits a reminder
// for each. Delivery is a structured log line; a notification channel can hang
// off the same loop later.
type ReservationReminderJob struct {
	Store     UpcomingLister
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	LookAhead time.Duration
	clock     func() time.Time
}

// NewReservationReminderJob wires dependencies for the reminder handler.
func NewReservationReminderJob(store UpcomingLister, logger *slog.Logger, metrics *jobmetrics.Metrics, lookAhead time.Duration) *ReservationReminderJob {
	return &ReservationReminderJob{
		Store:     store,
		Logger:    logger,
		Metrics:   metrics,
		LookAhead: lookAhead,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes reservation reminder tasks.
func (j *ReservationReminderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("reservation reminders: handler not configured")
	}
	var payload ReservationRemindersPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	lookAhead := payload.LookAhead
	if lookAhead <= 0 {
		lookAhead = j.LookAhead
	}
	if lookAhead <= 0 {
		lookAhead = 2 * time.Hour
	}

	tracker := j.Metrics.Track(TaskReservationReminders)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	from := j.clock()
	to := from.Add(lookAhead)
	upcoming, err := j.Store.Upcoming(ctx, from, to)
	if err != nil {
		resultErr = err
		return err
	}
	for _, res := range upcoming {
		j.Logger.Info("reservation reminder",
			slog.String("reservation_id", res.ID.String()),
			slog.String("restaurant_id", res.RestaurantID.String()),
			slog.String("guest", res.GuestName),
			slog.Int("party_size", res.PartySize),
			slog.Time("starts_at", res.StartsAt))
	}
	j.Logger.Info("reservation reminders done",
		slog.Time("from", from),
		slog.Time("to", to),
		slog.Int("count", len(upcoming)))
	return nil
}
