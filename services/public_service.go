package services

import (
	"context"
	"strings"

	"prompt-cms/cache"
	"prompt-cms/models"
	"prompt-cms/repositories"
)

// PublicService serves the anonymous read views. Only prompts flagged
// public are ever visible through it.
type PublicService interface {
	ListPublished(ctx context.Context, filter models.PromptFilter) (*models.PromptPage, error)
	GetPublished(ctx context.Context, id string) (*models.PromptView, error)
	Categories(ctx context.Context) ([]models.LabelUsage, error)
	Tags(ctx context.Context) ([]models.LabelUsage, error)
}

type publicService struct {
	prompts    repositories.PromptRepository
	categories repositories.CategoryRepository
	tags       repositories.TagRepository
	views      cache.ViewCache
}

func NewPublicService(
	prompts repositories.PromptRepository,
	categories repositories.CategoryRepository,
	tags repositories.TagRepository,
	views cache.ViewCache,
) PublicService {
	return &publicService{
		prompts:    prompts,
		categories: categories,
		tags:       tags,
		views:      views,
	}
}

func (s *publicService) ListPublished(ctx context.Context, filter models.PromptFilter) (*models.PromptPage, error) {
	public := true
	filter.IsPublic = &public
	filter.Normalize()

	page, err := cachedView(ctx, s.views, PathPublic, filterKey(filter), func() (models.PromptPage, error) {
		prompts, total, err := s.prompts.List(ctx, filter)
		if err != nil {
			return models.PromptPage{}, storeError("Failed to list prompts", err)
		}
		return toPage(prompts, total, filter), nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetPublished returns a public prompt. Private prompts are reported as
// not found so their existence is not revealed.
func (s *publicService) GetPublished(ctx context.Context, id string) (*models.PromptView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, models.NewNotFoundError("Prompt not found")
	}

	view, err := cachedView(ctx, s.views, PromptPath(id), "view", func() (models.PromptView, error) {
		prompt, err := s.prompts.GetByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return models.PromptView{}, models.NewNotFoundError("Prompt not found")
			}
			return models.PromptView{}, storeError("Failed to load prompt", err)
		}
		if !prompt.IsPublic {
			return models.PromptView{}, models.NewNotFoundError("Prompt not found")
		}
		return prompt.View(), nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Categories lists the categories used by at least one public prompt.
func (s *publicService) Categories(ctx context.Context) ([]models.LabelUsage, error) {
	return cachedView(ctx, s.views, PathPublic, "categories", func() ([]models.LabelUsage, error) {
		usage, err := s.categories.Usage(ctx, true)
		if err != nil {
			return nil, storeError("Failed to list categories", err)
		}
		return usedOnly(usage), nil
	})
}

func (s *publicService) Tags(ctx context.Context) ([]models.LabelUsage, error) {
	return cachedView(ctx, s.views, PathPublic, "tags", func() ([]models.LabelUsage, error) {
		usage, err := s.tags.Usage(ctx, true)
		if err != nil {
			return nil, storeError("Failed to list tags", err)
		}
		return usedOnly(usage), nil
	})
}

func usedOnly(usage []models.LabelUsage) []models.LabelUsage {
	out := make([]models.LabelUsage, 0, len(usage))
	for _, u := range usage {
		if u.Count > 0 {
			out = append(out, u)
		}
	}
	return out
}
