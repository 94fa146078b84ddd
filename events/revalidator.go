package events

import (
	"context"
	"time"

	"prompt-cms/cache"
	"prompt-cms/logger"

	"github.com/google/uuid"
)

type Publisher interface {
	Publish(ctx context.Context, event ContentEvent) error
}

// Revalidator marks views stale after a content change: the cache entries
// are invalidated first, then the change is published and pushed to
// connected browsers. Failures are logged and never fail the mutation.
type Revalidator struct {
	cache     cache.ViewCache
	publisher Publisher
	hub       *Hub
	now       func() time.Time
}

func NewRevalidator(viewCache cache.ViewCache, publisher Publisher, hub *Hub) *Revalidator {
	return &Revalidator{
		cache:     viewCache,
		publisher: publisher,
		hub:       hub,
		now:       time.Now,
	}
}

func (r *Revalidator) Revalidate(ctx context.Context, paths ...string) {
	if len(paths) == 0 {
		return
	}

	event := ContentEvent{
		ID:    uuid.NewString(),
		Paths: dedupe(paths),
		At:    r.now().UTC(),
	}

	if r.cache != nil {
		if err := r.cache.Invalidate(ctx, event.Paths...); err != nil {
			logger.Log.Errorw("failed to invalidate cached views", "paths", event.Paths, "error", err)
		}
	}

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, event); err != nil {
			logger.Log.Errorw("failed to publish content event", "event_id", event.ID, "error", err)
		}
	}

	if r.hub != nil {
		r.hub.Broadcast(event)
	}

	logger.Log.Debugw("views revalidated", "event_id", event.ID, "paths", event.Paths)
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
