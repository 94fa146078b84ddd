package services

import (
	"context"
	"strings"

	"prompt-cms/cache"
	"prompt-cms/logger"
	"prompt-cms/models"
	"prompt-cms/repositories"
	"prompt-cms/validation"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, actor *models.Principal, req models.CategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, actor *models.Principal, oldName string, req models.CategoryRenameRequest) (*models.MutationResult, error)
	DeleteCategory(ctx context.Context, actor *models.Principal, name string) (*models.MutationResult, error)
	ListCategories(ctx context.Context, actor *models.Principal) ([]models.LabelUsage, error)
}

type categoryService struct {
	categories  repositories.CategoryRepository
	links       repositories.LinkRepository
	policy      *AccessPolicy
	validate    *validation.Validator
	revalidator Revalidator
	views       cache.ViewCache
	now         Clock
}

func NewCategoryService(
	categories repositories.CategoryRepository,
	links repositories.LinkRepository,
	policy *AccessPolicy,
	validate *validation.Validator,
	revalidator Revalidator,
	views cache.ViewCache,
) CategoryService {
	if revalidator == nil {
		revalidator = noopRevalidator{}
	}
	return &categoryService{
		categories:  categories,
		links:       links,
		policy:      policy,
		validate:    validate,
		revalidator: revalidator,
		views:       views,
		now:         defaultClock,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, actor *models.Principal, req models.CategoryRequest) (category *models.Category, err error) {
	defer recoverInternal("create category", &err)

	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	req.Name = validation.NormalizeName(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		return nil, models.NewValidationError("Category name is required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	_, err = s.categories.GetByName(ctx, req.Name)
	if err == nil {
		return nil, models.NewConflictError("Category already exists")
	}
	if !isNotFound(err) {
		return nil, storeError("Failed to look up category", err)
	}

	category = &models.Category{Name: req.Name, Description: req.Description}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, storeError("Failed to create category", err)
	}

	logger.Log.Infow("category created", "category", category.Name)
	s.revalidator.Revalidate(ctx, categoryPaths(nil)...)
	return category, nil
}

// UpdateCategory renames the category in place. Links reference the
// category by id, so every linked prompt follows the rename.
func (s *categoryService) UpdateCategory(ctx context.Context, actor *models.Principal, oldName string, req models.CategoryRenameRequest) (result *models.MutationResult, err error) {
	defer recoverInternal("update category", &err)

	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	oldName = strings.TrimSpace(oldName)
	if oldName == "" || strings.TrimSpace(req.NewName) == "" {
		return nil, models.NewValidationError("Both old and new category names are required")
	}
	newName, err := s.validate.CategoryName(req.NewName)
	if err != nil {
		return nil, err
	}
	if newName == oldName {
		return nil, models.NewValidationError("New category name must be different")
	}

	category, err := s.categories.GetByName(ctx, oldName)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Category not found")
		}
		return nil, storeError("Failed to look up category", err)
	}

	_, err = s.categories.GetByName(ctx, newName)
	if err == nil {
		return nil, models.NewConflictError("A category with this name already exists")
	}
	if !isNotFound(err) {
		return nil, storeError("Failed to look up category", err)
	}

	links, err := s.links.LinksByCategory(ctx, category.ID)
	if err != nil {
		return nil, storeError("Failed to count category relationships", err)
	}

	fields := map[string]interface{}{
		"name":       newName,
		"updated_at": nextTimestamp(s.now, category.UpdatedAt),
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}

	err = newSaga("update category").step("rename category", func(ctx context.Context) error {
		if err := s.categories.Update(ctx, category.ID, fields); err != nil {
			return storeError("Failed to update category", err)
		}
		return nil
	}, func(ctx context.Context) error {
		return s.categories.Update(ctx, category.ID, map[string]interface{}{
			"name":        category.Name,
			"description": category.Description,
			"updated_at":  category.UpdatedAt,
		})
	}).run(ctx)
	if err != nil {
		return nil, err
	}

	logger.Log.Infow("category renamed", "from", oldName, "to", newName, "prompts", len(links))
	s.revalidator.Revalidate(ctx, categoryPaths(links)...)
	return &models.MutationResult{Updated: int64(len(links)), Category: newName}, nil
}

// DeleteCategory removes the category and its links. Prompts are kept.
func (s *categoryService) DeleteCategory(ctx context.Context, actor *models.Principal, name string) (result *models.MutationResult, err error) {
	defer recoverInternal("delete category", &err)

	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Category name is required")
	}

	category, err := s.categories.GetByName(ctx, name)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Category not found")
		}
		return nil, storeError("Failed to look up category", err)
	}

	links, err := s.links.LinksByCategory(ctx, category.ID)
	if err != nil {
		return nil, storeError("Failed to count category relationships", err)
	}

	err = newSaga("delete category").
		step("delete category links", func(ctx context.Context) error {
			if _, err := s.links.DeleteByCategory(ctx, category.ID); err != nil {
				return storeError("Failed to delete category relationships", err)
			}
			return nil
		}, func(ctx context.Context) error {
			return s.links.RestoreCategoryLinks(ctx, links)
		}).
		step("delete category", func(ctx context.Context) error {
			if err := s.categories.Delete(ctx, category.ID); err != nil {
				return storeError("Failed to delete category", err)
			}
			return nil
		}, func(ctx context.Context) error {
			return s.categories.Restore(ctx, category)
		}).
		run(ctx)
	if err != nil {
		return nil, err
	}

	logger.Log.Infow("category deleted", "category", name, "prompts", len(links))
	s.revalidator.Revalidate(ctx, categoryPaths(links)...)
	return &models.MutationResult{Updated: int64(len(links)), Category: name}, nil
}

func (s *categoryService) ListCategories(ctx context.Context, actor *models.Principal) ([]models.LabelUsage, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return cachedView(ctx, s.views, PathAdminCategories, "usage", func() ([]models.LabelUsage, error) {
		usage, err := s.categories.Usage(ctx, false)
		if err != nil {
			return nil, storeError("Failed to list categories", err)
		}
		return usage, nil
	})
}

// categoryPaths lists the views a category change makes stale, including
// the detail view of every linked prompt.
func categoryPaths(links []models.PromptCategory) []string {
	paths := []string{PathAdminCategories, PathAdminPrompts, PathAdmin, PathPublic}
	for _, l := range links {
		paths = append(paths, PromptPath(l.PromptID))
	}
	return paths
}
