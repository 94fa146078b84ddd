package services

import (
	"context"
	"errors"
	"testing"

	"prompt-cms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.categoryService().CreateCategory(ctx, admin, models.CategoryRequest{Name: "  Writing   Tools! ", Description: " helpers "})
	require.NoError(t, err)
	assert.Equal(t, "writing-tools", c.Name)
	assert.Equal(t, "helpers", c.Description)
	assert.Contains(t, f.revalidator.last(), PathAdminCategories)

	_, err = f.categoryService().CreateCategory(ctx, admin, models.CategoryRequest{Name: "WRITING tools"})
	var conflict models.ErrorConflict
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Category already exists", conflict.Message)
	assert.Equal(t, int64(1), f.count(t, &models.Category{}))
}

func TestCreateCategoryRejectsBlankWithoutStore(t *testing.T) {
	categories := &mockCategoryRepo{intercept: intercept("GetByName", "Create")}
	svc := NewCategoryService(categories, nil, NewAccessPolicy([]string{adminEmail}, nil), newFixture(t).validate, nil, nil)

	for _, name := range []string{"", "   ", "!!!", "-"} {
		_, err := svc.CreateCategory(context.Background(), admin, models.CategoryRequest{Name: name})
		assert.EqualError(t, err, "Category name is required", "name %q", name)
	}
	categories.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
	categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateCategoryRenamesAcrossPrompts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createPrompt(t, "A", "drafts", "", true)
	b := f.createPrompt(t, "B", "drafts", "", false)
	other := f.createPrompt(t, "Other", "misc", "", true)

	res, err := f.categoryService().UpdateCategory(ctx, admin, "drafts", models.CategoryRenameRequest{NewName: "Final Drafts"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Updated)
	assert.Equal(t, "final-drafts", res.Category)

	assert.Equal(t, []string{"final-drafts"}, f.reload(t, a.ID).CategoryNames())
	assert.Equal(t, []string{"final-drafts"}, f.reload(t, b.ID).CategoryNames())
	assert.Equal(t, []string{"misc"}, f.reload(t, other.ID).CategoryNames())

	paths := f.revalidator.last()
	assert.Contains(t, paths, PromptPath(a.ID))
	assert.Contains(t, paths, PromptPath(b.ID))
	assert.NotContains(t, paths, PromptPath(other.ID))
}

func TestUpdateCategoryDescription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createPrompt(t, "A", "drafts", "", true)

	desc := "work in progress"
	_, err := f.categoryService().UpdateCategory(ctx, admin, "drafts", models.CategoryRenameRequest{NewName: "wip", Description: &desc})
	require.NoError(t, err)

	c, err := f.categories.GetByName(ctx, "wip")
	require.NoError(t, err)
	assert.Equal(t, "work in progress", c.Description)
}

func TestUpdateCategoryErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createPrompt(t, "A", "drafts", "", true)
	f.createPrompt(t, "B", "final", "", true)
	svc := f.categoryService()

	_, err := svc.UpdateCategory(ctx, admin, "", models.CategoryRenameRequest{NewName: "x"})
	assert.EqualError(t, err, "Both old and new category names are required")

	_, err = svc.UpdateCategory(ctx, admin, "drafts", models.CategoryRenameRequest{NewName: "Drafts"})
	assert.EqualError(t, err, "New category name must be different")

	_, err = svc.UpdateCategory(ctx, admin, "missing", models.CategoryRenameRequest{NewName: "other"})
	var notFound models.ErrorNotFound
	assert.True(t, errors.As(err, &notFound))
	assert.EqualError(t, err, "Category not found")

	_, err = svc.UpdateCategory(ctx, admin, "drafts", models.CategoryRenameRequest{NewName: "final"})
	var conflict models.ErrorConflict
	assert.True(t, errors.As(err, &conflict))
	assert.EqualError(t, err, "A category with this name already exists")
}

func TestDeleteCategoryKeepsPrompts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createPrompt(t, "A", "drafts", "alpha", true)
	b := f.createPrompt(t, "B", "drafts", "", true)

	res, err := f.categoryService().DeleteCategory(ctx, admin, "drafts")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Updated)

	assert.Equal(t, int64(2), f.count(t, &models.Prompt{}))
	assert.Zero(t, f.count(t, &models.Category{}))
	assert.Zero(t, f.count(t, &models.PromptCategory{}))
	assert.Empty(t, f.reload(t, a.ID).CategoryNames())
	assert.Equal(t, []string{"alpha"}, f.reload(t, a.ID).TagNames())
	assert.Contains(t, f.revalidator.last(), PromptPath(b.ID))

	_, err = f.categoryService().DeleteCategory(ctx, admin, "drafts")
	assert.EqualError(t, err, "Category not found")
}

func TestDeleteCategoryRestoresLinksOnFailure(t *testing.T) {
	f := newFixture(t)
	a := f.createPrompt(t, "A", "drafts", "", true)

	categories := &mockCategoryRepo{CategoryRepository: f.categories, intercept: intercept("Delete")}
	categories.On("Delete", mock.Anything, mock.Anything).Return(errors.New("foreign key violation"))
	svc := NewCategoryService(categories, f.links, f.policy, f.validate, nil, nil)

	_, err := svc.DeleteCategory(context.Background(), admin, "drafts")
	var storeErr models.ErrorStore
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "Failed to delete category", storeErr.Op)

	assert.Equal(t, []string{"drafts"}, f.reload(t, a.ID).CategoryNames())
}

func TestListCategoriesCountsPrompts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createPrompt(t, "A", "drafts", "", false)
	f.createPrompt(t, "B", "drafts", "", true)
	_, err := f.categoryService().CreateCategory(ctx, admin, models.CategoryRequest{Name: "empty"})
	require.NoError(t, err)

	usage, err := f.categoryService().ListCategories(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []models.LabelUsage{
		{Name: "drafts", Count: 2},
		{Name: "empty", Count: 0},
	}, usage)
}
