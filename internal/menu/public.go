package menu

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/mesa-hq/mesa/internal/restaurant"
)

const publicCachePrefix = "publicmenu:"

// SlugResolver maps between restaurant slugs and ids for the public surface.
type SlugResolver interface {
	GetBySlug(ctx context.Context, slug string) (restaurant.Restaurant, error)
	Get(ctx context.Context, id uuid.UUID) (restaurant.Restaurant, error)
}

// PublicService serves the unauthenticated menu by restaurant slug. Responses
// are cached in Redis; concurrent misses for the same slug collapse into a
// single database build.
type PublicService struct {
	restaurants SlugResolver
	store       Store
	rdb         *redis.Client
	ttl         time.Duration
	logger      *slog.Logger
	group       singleflight.Group
}

// NewPublicService constructs a PublicService. rdb may be nil, in which case
// every request builds from the database.
func NewPublicService(restaurants SlugResolver, store Store, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *PublicService {
	return &PublicService{restaurants: restaurants, store: store, rdb: rdb, ttl: ttl, logger: logger}
}

// MenuBySlug returns the public menu for slug, serving from cache when
// possible. Cache failures degrade to a database build, never to an error.
func (s *PublicService) MenuBySlug(ctx context.Context, slug string) (PublicMenu, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, publicCachePrefix+slug).Bytes()
		if err == nil {
			var cached PublicMenu
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return cached, nil
			}
			// Unreadable payload: drop it and rebuild.
			s.rdb.Del(ctx, publicCachePrefix+slug)
		} else if err != redis.Nil {
			s.logger.Warn("public menu cache read failed", "slug", slug, "error", err)
		}
	}

	v, err, _ := s.group.Do(slug, func() (any, error) {
		return s.build(ctx, slug)
	})
	if err != nil {
		return PublicMenu{}, err
	}
	return v.(PublicMenu), nil
}

// Warm rebuilds and caches the menu for slug. Used by the cache warmup job.
func (s *PublicService) Warm(ctx context.Context, slug string) error {
	_, err := s.build(ctx, slug)
	return err
}

// Invalidate drops the cached menu for a restaurant after a menu mutation.
func (s *PublicService) Invalidate(ctx context.Context, restaurantID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	rest, err := s.restaurants.Get(ctx, restaurantID)
	if err != nil {
		s.logger.Warn("public menu invalidation skipped", "restaurant_id", restaurantID, "error", err)
		return
	}
	if err := s.rdb.Del(ctx, publicCachePrefix+rest.Slug).Err(); err != nil {
		s.logger.Warn("public menu cache delete failed", "slug", rest.Slug, "error", err)
	}
}

func (s *PublicService) build(ctx context.Context, slug string) (PublicMenu, error) {
	rest, err := s.restaurants.GetBySlug(ctx, slug)
	if err != nil {
		return PublicMenu{}, err
	}

	categories, err := s.store.ListCategories(ctx, rest.ID)
	if err != nil {
		return PublicMenu{}, err
	}
	items, err := s.store.ListItems(ctx, rest.ID)
	if err != nil {
		return PublicMenu{}, err
	}

	byCategory := make(map[uuid.UUID][]PublicItem, len(categories))
	var uncategorized []PublicItem
	for _, item := range items {
		if !item.IsAvailable {
			continue
		}
		pub := PublicItem{Name: item.Name, Description: item.Description, PriceCents: item.PriceCents}
		if item.CategoryID == nil {
			uncategorized = append(uncategorized, pub)
			continue
		}
		byCategory[*item.CategoryID] = append(byCategory[*item.CategoryID], pub)
	}

	menu := PublicMenu{
		RestaurantName: rest.Name,
		Currency:       rest.Currency,
		GeneratedAt:    time.Now().UTC(),
	}
	for _, cat := range categories {
		section := PublicSection{Name: cat.Name, Items: byCategory[cat.ID]}
		if len(section.Items) == 0 {
			continue
		}
		menu.Sections = append(menu.Sections, section)
	}
	if len(uncategorized) > 0 {
		menu.Sections = append(menu.Sections, PublicSection{Name: "Menu", Items: uncategorized})
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(menu); err == nil {
			if err := s.rdb.Set(ctx, publicCachePrefix+slug, raw, s.ttl).Err(); err != nil {
				s.logger.Warn("public menu cache write failed", "slug", slug, "error", err)
			}
		}
	}
	return menu, nil
}
