package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/mesa-hq/mesa/internal/jobs"
)

// SlugLister returns the slugs of active restaurants.
type SlugLister interface {
	ListActiveSlugs(ctx context.Context) ([]string, error)
}

// MenuWarmer rebuilds the cached public menu for a slug.
type MenuWarmer interface {
	Warm(ctx context.Context, slug string) error
}

// MenuWarmupJob pre-builds public menu caches so the first guest request
// after an invalidation does not pay for the rebuild.
type MenuWarmupJob struct {
	Restaurants SlugLister
	Menus       MenuWarmer
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
}

// NewMenuWarmupJob wires dependencies for the warmup handler.
func NewMenuWarmupJob(restaurants SlugLister, menus MenuWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *MenuWarmupJob {
	return &MenuWarmupJob{
		Restaurants: restaurants,
		Menus:       menus,
		Logger:      logger,
		Metrics:     metrics,
	}
}

// Handle processes menu warmup tasks. An empty payload warms every active
// restaurant; a payload with slugs narrows the run.
func (j *MenuWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Menus == nil {
		return errors.New("menu warmup: handler not configured")
	}
	var payload MenuWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskMenuWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	slugs := payload.Slugs
	if len(slugs) == 0 {
		var err error
		slugs, err = j.Restaurants.ListActiveSlugs(ctx)
		if err != nil {
			resultErr = err
			return err
		}
	}

	warmed := 0
	for _, slug := range slugs {
		if err := j.Menus.Warm(ctx, slug); err != nil {
			j.Logger.Warn("menu warmup failed for slug",
				slog.String("slug", slug),
				slog.Any("error", err))
			continue
		}
		warmed++
	}
	j.Logger.Info("menu warmup done",
		slog.Int("requested", len(slugs)),
		slog.Int("warmed", warmed))
	return nil
}
