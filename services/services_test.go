package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"prompt-cms/cache"
	"prompt-cms/config"
	"prompt-cms/models"
	"prompt-cms/repositories"
	"prompt-cms/validation"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	adminEmail  = "admin@example.com"
	editorEmail = "editor@example.com"
)

var (
	admin    = &models.Principal{UserID: "u-admin", Email: adminEmail, Name: "Admin"}
	stranger = &models.Principal{UserID: "u-stranger", Email: "someone@example.com", Name: "someone"}
)

// recordingRevalidator remembers every path it was told about and
// invalidates the attached view cache like the real fan-out does.
type recordingRevalidator struct {
	mu    sync.Mutex
	calls [][]string
	views cache.ViewCache
}

func (r *recordingRevalidator) Revalidate(ctx context.Context, paths ...string) {
	r.mu.Lock()
	r.calls = append(r.calls, paths)
	r.mu.Unlock()
	if r.views != nil {
		_ = r.views.Invalidate(ctx, paths...)
	}
}

func (r *recordingRevalidator) last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func (r *recordingRevalidator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type fixture struct {
	db          *gorm.DB
	prompts     repositories.PromptRepository
	categories  repositories.CategoryRepository
	tags        repositories.TagRepository
	links       repositories.LinkRepository
	users       repositories.UserRepository
	profiles    repositories.ProfileRepository
	policy      *AccessPolicy
	validate    *validation.Validator
	views       *cache.MemoryViewCache
	revalidator *recordingRevalidator
	clock       *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
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

	views := cache.NewMemoryViewCache(time.Minute)
	return &fixture{
		db:          db,
		prompts:     repositories.NewPromptRepository(db),
		categories:  repositories.NewCategoryRepository(db),
		tags:        repositories.NewTagRepository(db),
		links:       repositories.NewLinkRepository(db),
		users:       repositories.NewUserRepository(db),
		profiles:    repositories.NewProfileRepository(db),
		policy:      NewAccessPolicy([]string{adminEmail}, []string{editorEmail}),
		validate:    validation.New(),
		views:       views,
		revalidator: &recordingRevalidator{views: views},
		clock:       &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
}

func (f *fixture) promptService() *promptService {
	s := NewPromptService(f.prompts, f.categories, f.tags, f.links, f.policy, f.validate, f.revalidator, f.views).(*promptService)
	s.now = f.clock.Now
	return s
}

func (f *fixture) categoryService() *categoryService {
	s := NewCategoryService(f.categories, f.links, f.policy, f.validate, f.revalidator, f.views).(*categoryService)
	s.now = f.clock.Now
	return s
}

func (f *fixture) tagService() *tagService {
	s := NewTagService(f.tags, f.links, f.policy, f.validate, f.revalidator, f.views).(*tagService)
	s.now = f.clock.Now
	return s
}

func (f *fixture) publicService() PublicService {
	return NewPublicService(f.prompts, f.categories, f.tags, f.views)
}

func (f *fixture) createPrompt(t *testing.T, title, category, tags string, public bool) *models.Prompt {
	t.Helper()
	isPublic := models.FormBool("false")
	if public {
		isPublic = "true"
	}
	p, err := f.promptService().CreatePrompt(context.Background(), admin, models.PromptRequest{
		Title:    title,
		Content:  "content of " + title,
		Category: category,
		Tags:     tags,
		IsPublic: isPublic,
	})
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	return p
}

func (f *fixture) reload(t *testing.T, id string) *models.Prompt {
	t.Helper()
	p, err := f.prompts.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
