package services

import (
	"context"
	"time"

	"prompt-cms/cache"
	"prompt-cms/logger"
	"prompt-cms/models"
	"prompt-cms/repositories"
	"prompt-cms/validation"
)

type PromptService interface {
	CreatePrompt(ctx context.Context, actor *models.Principal, req models.PromptRequest) (*models.Prompt, error)
	UpdatePrompt(ctx context.Context, actor *models.Principal, id string, req models.PromptRequest) (*models.Prompt, error)
	DeletePrompt(ctx context.Context, actor *models.Principal, id string) error
	BulkUpdatePrompts(ctx context.Context, actor *models.Principal, req models.BulkUpdateRequest) (*models.MutationResult, error)
	BulkDeletePrompts(ctx context.Context, actor *models.Principal, req models.BulkDeleteRequest) (*models.MutationResult, error)
	GetPrompt(ctx context.Context, actor *models.Principal, id string) (*models.Prompt, error)
	ListPrompts(ctx context.Context, actor *models.Principal, filter models.PromptFilter) (*models.PromptPage, error)
}

type promptService struct {
	prompts     repositories.PromptRepository
	categories  repositories.CategoryRepository
	tags        repositories.TagRepository
	links       repositories.LinkRepository
	policy      *AccessPolicy
	validate    *validation.Validator
	revalidator Revalidator
	views       cache.ViewCache
	now         Clock
}

func NewPromptService(
	prompts repositories.PromptRepository,
	categories repositories.CategoryRepository,
	tags repositories.TagRepository,
	links repositories.LinkRepository,
	policy *AccessPolicy,
	validate *validation.Validator,
	revalidator Revalidator,
	views cache.ViewCache,
) PromptService {
	if revalidator == nil {
		revalidator = noopRevalidator{}
	}
	return &promptService{
		prompts:     prompts,
		categories:  categories,
		tags:        tags,
		links:       links,
		policy:      policy,
		validate:    validate,
		revalidator: revalidator,
		views:       views,
		now:         defaultClock,
	}
}

// promptInput is a validated PromptRequest.
type promptInput struct {
	req      models.PromptRequest
	category string
	tags     []string
}

// validatePrompt checks every field before the store is touched.
func (s *promptService) validatePrompt(req models.PromptRequest) (*promptInput, error) {
	req.Trim()

	if req.Title == "" || req.Content == "" {
		fields := map[string]string{}
		if req.Title == "" {
			fields["title"] = "title is a required field"
		}
		if req.Content == "" {
			fields["content"] = "content is a required field"
		}
		return nil, models.ErrorValidation{Message: "Title and content are required", Fields: fields}
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	in := &promptInput{req: req}
	if req.Category != "" {
		name, err := s.validate.CategoryName(req.Category)
		if err != nil {
			return nil, err
		}
		in.category = name
	}

	tags, err := s.validate.Tags(req.Tags)
	if err != nil {
		return nil, err
	}
	in.tags = tags

	return in, nil
}

func (s *promptService) findOrCreateCategory(ctx context.Context, name string) (*models.Category, bool, error) {
	category, err := s.categories.GetByName(ctx, name)
	if err == nil {
		return category, false, nil
	}
	if !isNotFound(err) {
		return nil, false, storeError("Failed to look up category", err)
	}

	category = &models.Category{Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		// a concurrent request may have created it first
		if existing, gerr := s.categories.GetByName(ctx, name); gerr == nil {
			return existing, false, nil
		}
		return nil, false, storeError("Failed to create category", err)
	}
	return category, true, nil
}

func (s *promptService) findOrCreateTag(ctx context.Context, name string) (*models.Tag, bool, error) {
	tag, err := s.tags.GetByName(ctx, name)
	if err == nil {
		return tag, false, nil
	}
	if !isNotFound(err) {
		return nil, false, storeError("Failed to look up tag", err)
	}

	tag = &models.Tag{Name: name}
	if err := s.tags.Create(ctx, tag); err != nil {
		if existing, gerr := s.tags.GetByName(ctx, name); gerr == nil {
			return existing, false, nil
		}
		return nil, false, storeError("Failed to create tag", err)
	}
	return tag, true, nil
}

// linkSteps appends find-or-create and link steps for the input's category
// and tags. The linked rows are collected on prompt as they succeed.
func (s *promptService) linkSteps(sg *saga, prompt *models.Prompt, in *promptInput) {
	if in.category != "" {
		var category *models.Category
		var created bool
		sg.step("resolve category", func(ctx context.Context) error {
			c, made, err := s.findOrCreateCategory(ctx, in.category)
			if err != nil {
				return err
			}
			category, created = c, made
			return nil
		}, func(ctx context.Context) error {
			if !created {
				return nil
			}
			return s.categories.Delete(ctx, category.ID)
		})
		sg.step("link category", func(ctx context.Context) error {
			if err := s.links.AddCategory(ctx, prompt.ID, category.ID); err != nil {
				return storeError("Failed to link category", err)
			}
			prompt.Categories = append(prompt.Categories, *category)
			return nil
		}, func(ctx context.Context) error {
			return s.links.RemoveCategory(ctx, prompt.ID, category.ID)
		})
	}

	for _, name := range in.tags {
		name := name
		var tag *models.Tag
		var created bool
		sg.step("resolve tag "+name, func(ctx context.Context) error {
			t, made, err := s.findOrCreateTag(ctx, name)
			if err != nil {
				return err
			}
			tag, created = t, made
			return nil
		}, func(ctx context.Context) error {
			if !created {
				return nil
			}
			return s.tags.Delete(ctx, tag.ID)
		})
		sg.step("link tag "+name, func(ctx context.Context) error {
			if err := s.links.AddTag(ctx, prompt.ID, tag.ID); err != nil {
				return storeError("Failed to link tag", err)
			}
			prompt.Tags = append(prompt.Tags, *tag)
			return nil
		}, func(ctx context.Context) error {
			return s.links.RemoveTag(ctx, prompt.ID, tag.ID)
		})
	}
}

func (s *promptService) CreatePrompt(ctx context.Context, actor *models.Principal, req models.PromptRequest) (prompt *models.Prompt, err error) {
	defer recoverInternal("create prompt", &err)

	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	in, err := s.validatePrompt(req)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	prompt = &models.Prompt{
		Title:       in.req.Title,
		Content:     in.req.Content,
		Description: in.req.Description,
		Notes:       in.req.Notes,
		IsPublic:    in.req.Public(),
		Author:      actor.Email,
		AuthorName:  actor.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	sg := newSaga("create prompt").step("insert prompt", func(ctx context.Context) error {
		if err := s.prompts.Create(ctx, prompt); err != nil {
			return storeError("Failed to create prompt", err)
		}
		return nil
	}, func(ctx context.Context) error {
		return s.prompts.Delete(ctx, prompt.ID)
	})
	s.linkSteps(sg, prompt, in)

	if err := sg.run(ctx); err != nil {
		return nil, err
	}

	logger.Log.Infow("prompt created", "prompt_id", prompt.ID, "categories", len(prompt.Categories), "tags", len(prompt.Tags))
	s.revalidator.Revalidate(ctx, promptPaths()...)
	return prompt, nil
}

// UpdatePrompt rewrites the prompt row and replaces all of its links with
// the ones named in req.
func (s *promptService) UpdatePrompt(ctx context.Context, actor *models.Principal, id string, req models.PromptRequest) (prompt *models.Prompt, err error) {
	defer recoverInternal("update prompt", &err)

	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	in, err := s.validatePrompt(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.prompts.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Prompt not found")
		}
		return nil, storeError("Failed to load prompt", err)
	}

	oldCategoryLinks, err := s.links.CategoryLinks(ctx, []string{id})
	if err != nil {
		return nil, storeError("Failed to load category relationships", err)
	}
	oldTagLinks, err := s.links.TagLinks(ctx, []string{id})
	if err != nil {
		return nil, storeError("Failed to load tag relationships", err)
	}

	updated := *existing
	updated.Title = in.req.Title
	updated.Content = in.req.Content
	updated.Description = in.req.Description
	updated.Notes = in.req.Notes
	updated.IsPublic = in.req.Public()
	updated.UpdatedAt = nextTimestamp(s.now, existing.UpdatedAt)
	updated.Categories = nil
	updated.Tags = nil

	sg := newSaga("update prompt").
		step("update prompt", func(ctx context.Context) error {
			err := s.prompts.Update(ctx, id, map[string]interface{}{
				"title":       updated.Title,
				"content":     updated.Content,
				"description": updated.Description,
				"notes":       updated.Notes,
				"is_public":   updated.IsPublic,
				"updated_at":  updated.UpdatedAt,
			})
			if err != nil {
				return storeError("Failed to update prompt", err)
			}
			return nil
		}, func(ctx context.Context) error {
			return s.prompts.Update(ctx, id, map[string]interface{}{
				"title":       existing.Title,
				"content":     existing.Content,
				"description": existing.Description,
				"notes":       existing.Notes,
				"is_public":   existing.IsPublic,
				"updated_at":  existing.UpdatedAt,
			})
		}).
		step("clear category links", func(ctx context.Context) error {
			if _, err := s.links.DeleteCategoryLinks(ctx, []string{id}); err != nil {
				return storeError("Failed to delete category relationships", err)
			}
			return nil
		}, func(ctx context.Context) error {
			return s.links.RestoreCategoryLinks(ctx, oldCategoryLinks)
		}).
		step("clear tag links", func(ctx context.Context) error {
			if _, err := s.links.DeleteTagLinks(ctx, []string{id}); err != nil {
				return storeError("Failed to delete tag relationships", err)
			}
			return nil
		}, func(ctx context.Context) error {
			return s.links.RestoreTagLinks(ctx, oldTagLinks)
		})
	s.linkSteps(sg, &updated, in)

	if err := sg.run(ctx); err != nil {
		return nil, err
	}

	logger.Log.Infow("prompt updated", "prompt_id", id)
	s.revalidator.Revalidate(ctx, promptPaths(id)...)
	return &updated, nil
}

// DeletePrompt removes category links, then tag links, then the row.
func (s *promptService) DeletePrompt(ctx context.Context, actor *models.Principal, id string) (err error) {
	defer recoverInternal("delete prompt", &err)

	if err := s.policy.RequireAdmin(actor); err != nil {
		return err
	}

	existing, err := s.prompts.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return models.NewNotFoundError("Prompt not found")
		}
		return storeError("Failed to load prompt", err)
	}

	if err := s.deletePrompts(ctx, "delete prompt", []models.Prompt{*existing}); err != nil {
		return err
	}

	logger.Log.Infow("prompt deleted", "prompt_id", id)
	s.revalidator.Revalidate(ctx, promptPaths(id)...)
	return nil
}

// deletePrompts runs the link-then-row delete for a snapshot of prompts.
func (s *promptService) deletePrompts(ctx context.Context, name string, snapshot []models.Prompt) error {
	ids := make([]string, 0, len(snapshot))
	for _, p := range snapshot {
		ids = append(ids, p.ID)
	}

	categoryLinks, err := s.links.CategoryLinks(ctx, ids)
	if err != nil {
		return storeError("Failed to load category relationships", err)
	}
	tagLinks, err := s.links.TagLinks(ctx, ids)
	if err != nil {
		return storeError("Failed to load tag relationships", err)
	}

	return newSaga(name).
		step("delete category links", func(ctx context.Context) error {
			if _, err := s.links.DeleteCategoryLinks(ctx, ids); err != nil {
				return storeError("Failed to delete category relationships", err)
			}
			return nil
		}, func(ctx context.Context) error {
			return s.links.RestoreCategoryLinks(ctx, categoryLinks)
		}).
		step("delete tag links", func(ctx context.Context) error {
			if _, err := s.links.DeleteTagLinks(ctx, ids); err != nil {
				return storeError("Failed to delete tag relationships", err)
			}
			return nil
		}, func(ctx context.Context) error {
			return s.links.RestoreTagLinks(ctx, tagLinks)
		}).
		step("delete prompts", func(ctx context.Context) error {
			var err error
			if len(ids) == 1 {
				err = s.prompts.Delete(ctx, ids[0])
			} else {
				_, err = s.prompts.DeleteMany(ctx, ids)
			}
			if err != nil {
				return storeError("Failed to delete prompt", err)
			}
			return nil
		}, func(ctx context.Context) error {
			return s.prompts.Restore(ctx, snapshot)
		}).
		run(ctx)
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// BulkUpdatePrompts applies the same partial update to every id in one
// statement.
func (s *promptService) BulkUpdatePrompts(ctx context.Context, actor *models.Principal, req models.BulkUpdateRequest) (result *models.MutationResult, err error) {
	defer recoverInternal("bulk update prompts", &err)

	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	req.IDs = uniqueIDs(req.IDs)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	fields := req.Fields()
	if len(fields) == 0 {
		return nil, models.NewValidationError("No fields to update")
	}

	snapshot, err := s.prompts.GetByIDs(ctx, req.IDs)
	if err != nil {
		return nil, storeError("Failed to load prompts", err)
	}
	if len(snapshot) == 0 {
		return nil, models.NewNotFoundError("No prompts found")
	}

	var latest models.Prompt
	for _, p := range snapshot {
		if p.UpdatedAt.After(latest.UpdatedAt) {
			latest = p
		}
	}
	fields["updated_at"] = nextTimestamp(s.now, latest.UpdatedAt)

	var affected int64
	err = newSaga("bulk update prompts").step("update prompts", func(ctx context.Context) error {
		n, err := s.prompts.BulkUpdate(ctx, req.IDs, fields)
		if err != nil {
			return storeError("Failed to update prompts", err)
		}
		affected = n
		return nil
	}, func(ctx context.Context) error {
		for _, p := range snapshot {
			old := map[string]interface{}{"updated_at": p.UpdatedAt}
			for key := range fields {
				switch key {
				case "is_public":
					old[key] = p.IsPublic
				case "description":
					old[key] = p.Description
				case "notes":
					old[key] = p.Notes
				}
			}
			if err := s.prompts.Update(ctx, p.ID, old); err != nil {
				return err
			}
		}
		return nil
	}).run(ctx)
	if err != nil {
		return nil, err
	}

	logger.Log.Infow("prompts bulk updated", "count", affected)
	s.revalidator.Revalidate(ctx, promptPaths(req.IDs...)...)
	return &models.MutationResult{Updated: affected}, nil
}

func (s *promptService) BulkDeletePrompts(ctx context.Context, actor *models.Principal, req models.BulkDeleteRequest) (result *models.MutationResult, err error) {
	defer recoverInternal("bulk delete prompts", &err)

	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	req.IDs = uniqueIDs(req.IDs)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	snapshot, err := s.prompts.GetByIDs(ctx, req.IDs)
	if err != nil {
		return nil, storeError("Failed to load prompts", err)
	}
	if len(snapshot) == 0 {
		return &models.MutationResult{}, nil
	}

	if err := s.deletePrompts(ctx, "bulk delete prompts", snapshot); err != nil {
		return nil, err
	}

	logger.Log.Infow("prompts bulk deleted", "count", len(snapshot))
	s.revalidator.Revalidate(ctx, promptPaths(req.IDs...)...)
	return &models.MutationResult{Deleted: int64(len(snapshot))}, nil
}

func (s *promptService) GetPrompt(ctx context.Context, actor *models.Principal, id string) (*models.Prompt, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	prompt, err := s.prompts.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Prompt not found")
		}
		return nil, storeError("Failed to load prompt", err)
	}
	return prompt, nil
}

// ListPrompts is the admin listing: every prompt, public or not, unless
// the filter narrows visibility.
func (s *promptService) ListPrompts(ctx context.Context, actor *models.Principal, filter models.PromptFilter) (*models.PromptPage, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	filter.Normalize()
	page, err := cachedView(ctx, s.views, PathAdminPrompts, filterKey(filter), func() (models.PromptPage, error) {
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
