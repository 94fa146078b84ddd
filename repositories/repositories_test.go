package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"prompt-cms/config"
	"prompt-cms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	prompts    PromptRepository
	categories CategoryRepository
	tags       TagRepository
	links      LinkRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := config.OpenTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &fixture{
		db:         db,
		prompts:    NewPromptRepository(db),
		categories: NewCategoryRepository(db),
		tags:       NewTagRepository(db),
		links:      NewLinkRepository(db),
	}
}

func (f *fixture) prompt(t *testing.T, title string, public bool, created time.Time) *models.Prompt {
	t.Helper()
	p := &models.Prompt{
		Title:     title,
		Content:   "content of " + title,
		IsPublic:  public,
		Author:    "owner@example.com",
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, f.prompts.Create(context.Background(), p))
	return p
}

func (f *fixture) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	require.NoError(t, f.categories.Create(context.Background(), c))
	return c
}

func (f *fixture) tag(t *testing.T, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name}
	require.NoError(t, f.tags.Create(context.Background(), tag))
	return tag
}

func TestPromptRepository_GetByIDPreloadsLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.prompt(t, "Summarize", true, time.Now())
	c := f.category(t, "writing-tools")
	ai := f.tag(t, "ai-helpers")
	prod := f.tag(t, "productivity")

	require.NoError(t, f.links.AddCategory(ctx, p.ID, c.ID))
	require.NoError(t, f.links.AddTag(ctx, p.ID, prod.ID))
	require.NoError(t, f.links.AddTag(ctx, p.ID, ai.ID))
	// linking twice is a no-op
	require.NoError(t, f.links.AddTag(ctx, p.ID, ai.ID))

	got, err := f.prompts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"writing-tools"}, got.CategoryNames())
	assert.Equal(t, []string{"ai-helpers", "productivity"}, got.TagNames())

	count, err := f.links.CountByTag(ctx, ai.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = f.prompts.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestPromptRepository_SearchMatchesWildcardsLiterally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	percent := f.prompt(t, "Discount 100% off", true, base)
	f.prompt(t, "Discount 1000 off", true, base.Add(time.Minute))
	underscore := f.prompt(t, "snake_case names", true, base.Add(2*time.Minute))
	f.prompt(t, "snakeXcase names", true, base.Add(3*time.Minute))
	backslash := f.prompt(t, `Path C:\temp`, true, base.Add(4*time.Minute))

	cases := map[string]string{
		"100%":   percent.ID,
		"e_c":    underscore.ID,
		`:\temp`: backslash.ID,
	}
	for search, want := range cases {
		found, total, err := f.prompts.List(ctx, models.PromptFilter{Search: search})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total, search)
		require.Len(t, found, 1, search)
		assert.Equal(t, want, found[0].ID, search)
	}
}

func TestPromptRepository_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	email := f.prompt(t, "Email Writer", true, base)
	code := f.prompt(t, "Code Reviewer", true, base.Add(time.Hour))
	secret := f.prompt(t, "Secret Draft", false, base.Add(2*time.Hour))

	writing := f.category(t, "writing")
	dev := f.tag(t, "dev")
	require.NoError(t, f.links.AddCategory(ctx, email.ID, writing.ID))
	require.NoError(t, f.links.AddCategory(ctx, secret.ID, writing.ID))
	require.NoError(t, f.links.AddTag(ctx, code.ID, dev.ID))

	public := true

	all, total, err := f.prompts.List(ctx, models.PromptFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, secret.ID, all[0].ID, "newest first")

	published, total, err := f.prompts.List(ctx, models.PromptFilter{IsPublic: &public})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, code.ID, published[0].ID)

	found, _, err := f.prompts.List(ctx, models.PromptFilter{IsPublic: &public, Search: "WRITER"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, email.ID, found[0].ID)

	found, _, err = f.prompts.List(ctx, models.PromptFilter{Search: "content of code"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, code.ID, found[0].ID)

	byCategory, total, err := f.prompts.List(ctx, models.PromptFilter{IsPublic: &public, Category: "writing"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, email.ID, byCategory[0].ID)
	assert.Equal(t, []string{"writing"}, byCategory[0].CategoryNames())

	byTag, _, err := f.prompts.List(ctx, models.PromptFilter{Tag: "dev"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, code.ID, byTag[0].ID)

	page, total, err := f.prompts.List(ctx, models.PromptFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, email.ID, page[0].ID)

	none, total, err := f.prompts.List(ctx, models.PromptFilter{Tag: "missing"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}

func TestPromptRepository_UpdateDeleteRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.prompt(t, "Old", false, time.Now())
	later := p.UpdatedAt.Add(time.Minute)

	require.NoError(t, f.prompts.Update(ctx, p.ID, map[string]interface{}{"title": "New", "updated_at": later}))
	got, err := f.prompts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.True(t, got.UpdatedAt.After(p.UpdatedAt))

	err = f.prompts.Update(ctx, "missing", map[string]interface{}{"title": "x"})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	require.NoError(t, f.prompts.Delete(ctx, p.ID))
	assert.True(t, errors.Is(f.prompts.Delete(ctx, p.ID), gorm.ErrRecordNotFound))

	require.NoError(t, f.prompts.Restore(ctx, []models.Prompt{*got}))
	restored, err := f.prompts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", restored.Title)
}

func TestPromptRepository_BulkAndCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.prompt(t, "A", false, time.Now())
	b := f.prompt(t, "B", false, time.Now())
	f.prompt(t, "C", true, time.Now())

	n, err := f.prompts.BulkUpdate(ctx, []string{a.ID, b.ID}, map[string]interface{}{"is_public": true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	public, private := true, false
	count, err := f.prompts.Count(ctx, &public)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	count, err = f.prompts.Count(ctx, &private)
	require.NoError(t, err)
	assert.Zero(t, count)

	n, err = f.prompts.DeleteMany(ctx, []string{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	count, err = f.prompts.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLinkRepository_DeleteAndRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.prompt(t, "One", true, time.Now())
	p2 := f.prompt(t, "Two", true, time.Now())
	tag := f.tag(t, "shared")
	require.NoError(t, f.links.AddTag(ctx, p1.ID, tag.ID))
	require.NoError(t, f.links.AddTag(ctx, p2.ID, tag.ID))

	saved, err := f.links.LinksByTag(ctx, tag.ID)
	require.NoError(t, err)
	require.Len(t, saved, 2)

	n, err := f.links.DeleteByTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, f.links.RestoreTagLinks(ctx, saved))
	count, err := f.links.CountByTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	n, err = f.links.DeleteTagLinks(ctx, []string{p1.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	links, err := f.links.TagLinks(ctx, []string{p1.ID, p2.ID})
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, p2.ID, links[0].PromptID)

	require.NoError(t, f.links.RemoveTag(ctx, p2.ID, tag.ID))
	count, err = f.links.CountByTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCategoryRepository_Usage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pub := f.prompt(t, "Public", true, time.Now())
	priv := f.prompt(t, "Private", false, time.Now())
	writing := f.category(t, "writing")
	f.category(t, "unused")
	secret := f.category(t, "secret")

	require.NoError(t, f.links.AddCategory(ctx, pub.ID, writing.ID))
	require.NoError(t, f.links.AddCategory(ctx, priv.ID, writing.ID))
	require.NoError(t, f.links.AddCategory(ctx, priv.ID, secret.ID))

	public, err := f.categories.Usage(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []models.LabelUsage{{Name: "writing", Count: 1}}, public)

	all, err := f.categories.Usage(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []models.LabelUsage{
		{Name: "secret", Count: 1},
		{Name: "unused", Count: 0},
		{Name: "writing", Count: 2},
	}, all)
}

func TestCategoryAndTagRepository_UniqueNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.category(t, "dup")
	assert.Error(t, f.categories.Create(ctx, &models.Category{Name: "dup"}))

	f.tag(t, "dup")
	assert.Error(t, f.tags.Create(ctx, &models.Tag{Name: "dup"}))

	_, err := f.tags.GetByName(ctx, "nope")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	tags, err := f.tags.GetByNames(ctx, []string{"dup", "nope"})
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestProfileRepository_UpsertIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewProfileRepository(f.db)

	created, err := repo.Upsert(ctx, &models.Profile{UserID: "u1", DisplayName: "First"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Upsert(ctx, &models.Profile{UserID: "u1", DisplayName: "Second"})
	require.NoError(t, err)
	assert.False(t, created)

	p, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "First", p.DisplayName)

	require.NoError(t, repo.Update(ctx, "u1", map[string]interface{}{"display_name": "Renamed"}))
	p, err = repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.DisplayName)

	assert.True(t, errors.Is(repo.Update(ctx, "u2", map[string]interface{}{"display_name": "x"}), gorm.ErrRecordNotFound))
}

func TestUserRepository_Confirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewUserRepository(f.db)

	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@example.com", Password: "hash"}))
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Confirm(ctx, "a@example.com", at))
	require.NoError(t, repo.Confirm(ctx, "a@example.com", at.Add(time.Hour)))

	u, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, u.ConfirmedAt)
	assert.True(t, u.ConfirmedAt.Equal(at))

	assert.Error(t, repo.Confirm(ctx, "missing@example.com", at))
}
