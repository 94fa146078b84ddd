package repositories

import (
	"context"
	"strings"

	"prompt-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PromptRepository interface {
	Create(ctx context.Context, prompt *models.Prompt) error
	GetByID(ctx context.Context, id string) (*models.Prompt, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Prompt, error)
	List(ctx context.Context, filter models.PromptFilter) ([]models.Prompt, int64, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	BulkUpdate(ctx context.Context, ids []string, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	Restore(ctx context.Context, prompts []models.Prompt) error
	Count(ctx context.Context, isPublic *bool) (int64, error)
}

type promptRepository struct {
	db *gorm.DB
}

func NewPromptRepository(db *gorm.DB) PromptRepository {
	return &promptRepository{db: db}
}

func orderByName(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".name ASC")
	}
}

func (r *promptRepository) withLinks(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Categories", orderByName("categories")).
		Preload("Tags", orderByName("tags"))
}

// Create inserts the prompt row only. Links are written separately.
func (r *promptRepository) Create(ctx context.Context, prompt *models.Prompt) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(prompt).Error
}

func (r *promptRepository) GetByID(ctx context.Context, id string) (*models.Prompt, error) {
	var prompt models.Prompt
	err := r.withLinks(ctx).Where("id = ?", id).First(&prompt).Error
	return &prompt, err
}

func (r *promptRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Prompt, error) {
	var prompts []models.Prompt
	if len(ids) == 0 {
		return prompts, nil
	}
	err := r.withLinks(ctx).Where("id IN ?", ids).Order("created_at DESC").Find(&prompts).Error
	return prompts, err
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func applyPromptFilter(query *gorm.DB, filter models.PromptFilter) *gorm.DB {
	if filter.IsPublic != nil {
		query = query.Where("prompts.is_public = ?", *filter.IsPublic)
	}

	if filter.Search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%"
		query = query.Where(
			`(LOWER(prompts.title) LIKE ? ESCAPE '\' OR LOWER(prompts.content) LIKE ? ESCAPE '\' OR LOWER(COALESCE(prompts.description, '')) LIKE ? ESCAPE '\')`,
			like, like, like,
		)
	}

	if filter.Category != "" {
		query = query.Where(`EXISTS (
			SELECT 1 FROM prompt_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.prompt_id = prompts.id AND c.name = ?)`, filter.Category)
	}

	if filter.Tag != "" {
		query = query.Where(`EXISTS (
			SELECT 1 FROM prompt_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE pt.prompt_id = prompts.id AND t.name = ?)`, filter.Tag)
	}

	return query
}

// List returns one page of prompts matching filter, newest first, along
// with the total number of matches.
func (r *promptRepository) List(ctx context.Context, filter models.PromptFilter) ([]models.Prompt, int64, error) {
	var prompts []models.Prompt
	var total int64

	filter.Normalize()

	query := applyPromptFilter(r.db.WithContext(ctx).Model(&models.Prompt{}), filter)
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return prompts, 0, nil
	}

	err := query.
		Preload("Categories", orderByName("categories")).
		Preload("Tags", orderByName("tags")).
		Order("prompts.created_at DESC").
		Order("prompts.id ASC").
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&prompts).Error

	return prompts, total, err
}

func (r *promptRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Prompt{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *promptRepository) BulkUpdate(ctx context.Context, ids []string, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Prompt{}).Where("id IN ?", ids).Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *promptRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Prompt{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *promptRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Prompt{})
	return result.RowsAffected, result.Error
}

// Restore re-inserts previously deleted rows with their original ids and
// timestamps.
func (r *promptRepository) Restore(ctx context.Context, prompts []models.Prompt) error {
	if len(prompts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&prompts).Error
}

func (r *promptRepository) Count(ctx context.Context, isPublic *bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Prompt{})
	if isPublic != nil {
		query = query.Where("is_public = ?", *isPublic)
	}
	err := query.Count(&count).Error
	return count, err
}
