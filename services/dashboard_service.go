package services

import (
	"context"

	"prompt-cms/cache"
	"prompt-cms/models"
	"prompt-cms/repositories"

	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	Stats(ctx context.Context, actor *models.Principal) (*models.DashboardStats, error)
}

type dashboardService struct {
	prompts    repositories.PromptRepository
	categories repositories.CategoryRepository
	tags       repositories.TagRepository
	policy     *AccessPolicy
	views      cache.ViewCache
}

func NewDashboardService(
	prompts repositories.PromptRepository,
	categories repositories.CategoryRepository,
	tags repositories.TagRepository,
	policy *AccessPolicy,
	views cache.ViewCache,
) DashboardService {
	return &dashboardService{
		prompts:    prompts,
		categories: categories,
		tags:       tags,
		policy:     policy,
		views:      views,
	}
}

// Stats counts prompts, categories and tags concurrently.
func (s *dashboardService) Stats(ctx context.Context, actor *models.Principal) (*models.DashboardStats, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	stats, err := cachedView(ctx, s.views, PathAdmin, "stats", func() (models.DashboardStats, error) {
		var stats models.DashboardStats
		public := true

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			stats.TotalPrompts, err = s.prompts.Count(gctx, nil)
			return err
		})
		g.Go(func() (err error) {
			stats.PublicPrompts, err = s.prompts.Count(gctx, &public)
			return err
		})
		g.Go(func() (err error) {
			stats.Categories, err = s.categories.Count(gctx)
			return err
		})
		g.Go(func() (err error) {
			stats.Tags, err = s.tags.Count(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return models.DashboardStats{}, storeError("Failed to load dashboard stats", err)
		}

		stats.PrivatePrompts = stats.TotalPrompts - stats.PublicPrompts
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
