package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prompt-cms/cache"
	"prompt-cms/logger"
	"prompt-cms/models"

	"gorm.io/gorm"
)

// Revalidator is told which rendered views a mutation made stale.
type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string)
}

type noopRevalidator struct{}

func (noopRevalidator) Revalidate(context.Context, ...string) {}

// Paths of cached views.
const (
	PathAdmin           = "/admin"
	PathAdminPrompts    = "/admin/prompts"
	PathAdminCategories = "/admin/categories"
	PathAdminTags       = "/admin/tags"
	PathPublic          = "/public"
)

func PromptPath(id string) string {
	return "/prompt/" + id
}

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

func defaultClock() time.Time {
	return time.Now().UTC()
}

// nextTimestamp returns a write timestamp strictly after prev.
func nextTimestamp(clock Clock, prev time.Time) time.Time {
	now := clock().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func storeError(op string, err error) error {
	return models.NewStoreError(op, err)
}

// recoverInternal turns a panic inside a workflow into the generic internal
// error. Use it deferred with a named error result.
func recoverInternal(op string, err *error) {
	if r := recover(); r != nil {
		logger.Log.Errorw("workflow panicked", "op", op, "panic", fmt.Sprint(r))
		*err = models.ErrInternal
	}
}

// promptPaths lists the views a prompt write makes stale. Category and tag
// listings carry prompt counts, so they go stale too.
func promptPaths(ids ...string) []string {
	paths := []string{PathAdminPrompts, PathAdmin, PathPublic, PathAdminCategories, PathAdminTags}
	for _, id := range ids {
		paths = append(paths, PromptPath(id))
	}
	return paths
}

// cachedView serves key under path from the view cache, loading and
// storing it on a miss. Cache failures are logged and the loader result is
// returned regardless. The value is stored under the version seen before
// loading, so an invalidation that lands mid-load keeps it out of the cache.
func cachedView[T any](ctx context.Context, views cache.ViewCache, path, key string, load func() (T, error)) (T, error) {
	var value T
	var version cache.Version
	store := views != nil
	if views != nil {
		v, hit, err := views.Get(ctx, path, key, &value)
		if err != nil {
			logger.Log.Warnw("view cache read failed", "path", path, "key", key, "error", err)
			store = false
		} else if hit {
			return value, nil
		}
		version = v
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if store {
		if err := views.Set(ctx, path, key, version, value); err != nil {
			logger.Log.Warnw("view cache write failed", "path", path, "key", key, "error", err)
		}
	}
	return value, nil
}

func filterKey(f models.PromptFilter) string {
	visibility := "all"
	if f.IsPublic != nil {
		visibility = fmt.Sprint(*f.IsPublic)
	}
	return fmt.Sprintf("search=%s&category=%s&tag=%s&public=%s&page=%d&limit=%d",
		f.Search, f.Category, f.Tag, visibility, f.Page, f.Limit)
}

func toPage(prompts []models.Prompt, total int64, f models.PromptFilter) models.PromptPage {
	items := make([]models.PromptView, 0, len(prompts))
	for i := range prompts {
		items = append(items, prompts[i].View())
	}
	return models.PromptPage{Items: items, Total: total, Page: f.Page, Limit: f.Limit}
}
