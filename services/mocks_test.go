package services

import (
	"context"

	"prompt-cms/models"
	"prompt-cms/repositories"

	"github.com/stretchr/testify/mock"
)

// Each mock embeds the real repository and intercepts only the methods a
// test sets expectations on. A nil embedded repository makes any other call
// panic, which the workflows surface as an internal error.

type mockPromptRepo struct {
	repositories.PromptRepository
	mock.Mock
	intercept map[string]bool
}

func (m *mockPromptRepo) Create(ctx context.Context, prompt *models.Prompt) error {
	if m.intercept["Create"] {
		return m.Called(ctx, prompt).Error(0)
	}
	return m.PromptRepository.Create(ctx, prompt)
}

func (m *mockPromptRepo) Delete(ctx context.Context, id string) error {
	if m.intercept["Delete"] {
		return m.Called(ctx, id).Error(0)
	}
	return m.PromptRepository.Delete(ctx, id)
}

func (m *mockPromptRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if m.intercept["DeleteMany"] {
		args := m.Called(ctx, ids)
		return int64(args.Int(0)), args.Error(1)
	}
	return m.PromptRepository.DeleteMany(ctx, ids)
}

func (m *mockPromptRepo) BulkUpdate(ctx context.Context, ids []string, fields map[string]interface{}) (int64, error) {
	if m.intercept["BulkUpdate"] {
		args := m.Called(ctx, ids, fields)
		return int64(args.Int(0)), args.Error(1)
	}
	return m.PromptRepository.BulkUpdate(ctx, ids, fields)
}

type mockCategoryRepo struct {
	repositories.CategoryRepository
	mock.Mock
	intercept map[string]bool
}

func (m *mockCategoryRepo) GetByName(ctx context.Context, name string) (*models.Category, error) {
	if m.intercept["GetByName"] {
		args := m.Called(ctx, name)
		c, _ := args.Get(0).(*models.Category)
		return c, args.Error(1)
	}
	return m.CategoryRepository.GetByName(ctx, name)
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	if m.intercept["Create"] {
		return m.Called(ctx, category).Error(0)
	}
	return m.CategoryRepository.Create(ctx, category)
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id string) error {
	if m.intercept["Delete"] {
		return m.Called(ctx, id).Error(0)
	}
	return m.CategoryRepository.Delete(ctx, id)
}

type mockTagRepo struct {
	repositories.TagRepository
	mock.Mock
	intercept map[string]bool
}

func (m *mockTagRepo) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	if m.intercept["GetByName"] {
		args := m.Called(ctx, name)
		t, _ := args.Get(0).(*models.Tag)
		return t, args.Error(1)
	}
	return m.TagRepository.GetByName(ctx, name)
}

func (m *mockTagRepo) Create(ctx context.Context, tag *models.Tag) error {
	if m.intercept["Create"] {
		return m.Called(ctx, tag).Error(0)
	}
	return m.TagRepository.Create(ctx, tag)
}

func (m *mockTagRepo) Delete(ctx context.Context, id string) error {
	if m.intercept["Delete"] {
		return m.Called(ctx, id).Error(0)
	}
	return m.TagRepository.Delete(ctx, id)
}

type mockLinkRepo struct {
	repositories.LinkRepository
	mock.Mock
	intercept map[string]bool
}

func (m *mockLinkRepo) AddTag(ctx context.Context, promptID, tagID string) error {
	if m.intercept["AddTag"] {
		return m.Called(ctx, promptID, tagID).Error(0)
	}
	return m.LinkRepository.AddTag(ctx, promptID, tagID)
}

func (m *mockLinkRepo) DeleteTagLinks(ctx context.Context, promptIDs []string) (int64, error) {
	if m.intercept["DeleteTagLinks"] {
		args := m.Called(ctx, promptIDs)
		return int64(args.Int(0)), args.Error(1)
	}
	return m.LinkRepository.DeleteTagLinks(ctx, promptIDs)
}

func (m *mockLinkRepo) LinksByTag(ctx context.Context, tagID string) ([]models.PromptTag, error) {
	if m.intercept["LinksByTag"] {
		args := m.Called(ctx, tagID)
		links, _ := args.Get(0).([]models.PromptTag)
		return links, args.Error(1)
	}
	return m.LinkRepository.LinksByTag(ctx, tagID)
}

func intercept(methods ...string) map[string]bool {
	out := make(map[string]bool, len(methods))
	for _, m := range methods {
		out[m] = true
	}
	return out
}
