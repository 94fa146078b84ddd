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

type TagService interface {
	CreateTag(ctx context.Context, actor *models.Principal, req models.TagRequest) (*models.Tag, error)
	UpdateTag(ctx context.Context, actor *models.Principal, oldName string, req models.TagUpdateRequest) (*models.MutationResult, error)
	DeleteTag(ctx context.Context, actor *models.Principal, name string) (*models.MutationResult, error)
	ListTags(ctx context.Context, actor *models.Principal) ([]models.LabelUsage, error)
}

type tagService struct {
	tags        repositories.TagRepository
	links       repositories.LinkRepository
	policy      *AccessPolicy
	validate    *validation.Validator
	revalidator Revalidator
	views       cache.ViewCache
	now         Clock
}

func NewTagService(
	tags repositories.TagRepository,
	links repositories.LinkRepository,
	policy *AccessPolicy,
	validate *validation.Validator,
	revalidator Revalidator,
	views cache.ViewCache,
) TagService {
	if revalidator == nil {
		revalidator = noopRevalidator{}
	}
	return &tagService{
		tags:        tags,
		links:       links,
		policy:      policy,
		validate:    validate,
		revalidator: revalidator,
		views:       views,
		now:         defaultClock,
	}
}

func (s *tagService) CreateTag(ctx context.Context, actor *models.Principal, req models.TagRequest) (tag *models.Tag, err error) {
	defer recoverInternal("create tag", &err)

	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	req.Name = validation.NormalizeName(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		return nil, models.NewValidationError("Tag name is required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	// Check if tag already exists
	_, err = s.tags.GetByName(ctx, req.Name)
	if err == nil {
		return nil, models.NewConflictError("Tag already exists")
	}
	if !isNotFound(err) {
		return nil, storeError("Failed to look up tag", err)
	}

	tag = &models.Tag{Name: req.Name, Description: req.Description}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, storeError("Failed to create tag", err)
	}

	logger.Log.Infow("tag created", "tag", tag.Name)
	s.revalidator.Revalidate(ctx, tagPaths(nil)...)
	return tag, nil
}

// UpdateTag renames a tag and sets its description. When the normalized
// new name equals the old one only the description changes.
func (s *tagService) UpdateTag(ctx context.Context, actor *models.Principal, oldName string, req models.TagUpdateRequest) (result *models.MutationResult, err error) {
	defer recoverInternal("update tag", &err)

	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	oldName = strings.TrimSpace(oldName)
	if oldName == "" || strings.TrimSpace(req.NewName) == "" {
		return nil, models.NewValidationError("Both old and new tag names are required")
	}
	newName, err := s.validate.TagName(req.NewName)
	if err != nil {
		return nil, err
	}
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	if newName != oldName {
		_, err = s.tags.GetByName(ctx, newName)
		if err == nil {
			return nil, models.NewConflictError("A tag with this name already exists")
		}
		if !isNotFound(err) {
			return nil, storeError("Failed to look up tag", err)
		}
	}

	tag, err := s.tags.GetByName(ctx, oldName)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Tag not found")
		}
		return nil, storeError("Failed to look up tag", err)
	}

	// only a rename touches the prompt detail views
	var links []models.PromptTag
	var linked int64
	if newName == oldName {
		linked, err = s.links.CountByTag(ctx, tag.ID)
	} else {
		links, err = s.links.LinksByTag(ctx, tag.ID)
		linked = int64(len(links))
	}
	if err != nil {
		return nil, storeError("Failed to count tag relationships", err)
	}

	fields := map[string]interface{}{
		"description": req.Description,
		"updated_at":  nextTimestamp(s.now, tag.UpdatedAt),
	}
	if newName != oldName {
		fields["name"] = newName
	}

	err = newSaga("update tag").step("update tag", func(ctx context.Context) error {
		if err := s.tags.Update(ctx, tag.ID, fields); err != nil {
			return storeError("Failed to update tag", err)
		}
		return nil
	}, func(ctx context.Context) error {
		return s.tags.Update(ctx, tag.ID, map[string]interface{}{
			"name":        tag.Name,
			"description": tag.Description,
			"updated_at":  tag.UpdatedAt,
		})
	}).run(ctx)
	if err != nil {
		return nil, err
	}

	if newName == oldName {
		logger.Log.Infow("tag description updated", "tag", oldName)
	} else {
		logger.Log.Infow("tag renamed", "from", oldName, "to", newName, "prompts", linked)
	}
	s.revalidator.Revalidate(ctx, tagPaths(links)...)
	return &models.MutationResult{Updated: linked, Tag: newName}, nil
}

// DeleteTag removes the tag from every prompt and then the tag itself.
func (s *tagService) DeleteTag(ctx context.Context, actor *models.Principal, name string) (result *models.MutationResult, err error) {
	defer recoverInternal("delete tag", &err)

	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Tag name is required")
	}

	tag, err := s.tags.GetByName(ctx, name)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Tag not found")
		}
		return nil, storeError("Failed to look up tag", err)
	}

	links, err := s.links.LinksByTag(ctx, tag.ID)
	if err != nil {
		return nil, storeError("Failed to count tag relationships", err)
	}

	err = newSaga("delete tag").
		step("delete tag links", func(ctx context.Context) error {
			if _, err := s.links.DeleteByTag(ctx, tag.ID); err != nil {
				return storeError("Failed to delete tag relationships", err)
			}
			return nil
		}, func(ctx context.Context) error {
			return s.links.RestoreTagLinks(ctx, links)
		}).
		step("delete tag", func(ctx context.Context) error {
			if err := s.tags.Delete(ctx, tag.ID); err != nil {
				return storeError("Failed to delete tag", err)
			}
			return nil
		}, func(ctx context.Context) error {
			return s.tags.Restore(ctx, tag)
		}).
		run(ctx)
	if err != nil {
		return nil, err
	}

	logger.Log.Infow("tag deleted", "tag", name, "prompts", len(links))
	s.revalidator.Revalidate(ctx, tagPaths(links)...)
	return &models.MutationResult{Updated: int64(len(links)), Tag: name}, nil
}

func (s *tagService) ListTags(ctx context.Context, actor *models.Principal) ([]models.LabelUsage, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return cachedView(ctx, s.views, PathAdminTags, "usage", func() ([]models.LabelUsage, error) {
		usage, err := s.tags.Usage(ctx, false)
		if err != nil {
			return nil, storeError("Failed to list tags", err)
		}
		return usage, nil
	})
}

func tagPaths(links []models.PromptTag) []string {
	paths := []string{PathAdminTags, PathAdminPrompts, PathAdmin, PathPublic}
	for _, l := range links {
		paths = append(paths, PromptPath(l.PromptID))
	}
	return paths
}
