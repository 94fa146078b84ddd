package repositories

import (
	"context"

	"prompt-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LinkRepository manages the prompt_categories and prompt_tags join rows.
type LinkRepository interface {
	AddCategory(ctx context.Context, promptID, categoryID string) error
	AddTag(ctx context.Context, promptID, tagID string) error
	RemoveCategory(ctx context.Context, promptID, categoryID string) error
	RemoveTag(ctx context.Context, promptID, tagID string) error

	CategoryLinks(ctx context.Context, promptIDs []string) ([]models.PromptCategory, error)
	TagLinks(ctx context.Context, promptIDs []string) ([]models.PromptTag, error)
	DeleteCategoryLinks(ctx context.Context, promptIDs []string) (int64, error)
	DeleteTagLinks(ctx context.Context, promptIDs []string) (int64, error)

	LinksByCategory(ctx context.Context, categoryID string) ([]models.PromptCategory, error)
	LinksByTag(ctx context.Context, tagID string) ([]models.PromptTag, error)
	CountByTag(ctx context.Context, tagID string) (int64, error)
	DeleteByCategory(ctx context.Context, categoryID string) (int64, error)
	DeleteByTag(ctx context.Context, tagID string) (int64, error)

	RestoreCategoryLinks(ctx context.Context, links []models.PromptCategory) error
	RestoreTagLinks(ctx context.Context, links []models.PromptTag) error
}

type linkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) insertIgnore(ctx context.Context, value interface{}) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(value).Error
}

// AddCategory links the pair. Linking an already linked pair is a no-op.
func (r *linkRepository) AddCategory(ctx context.Context, promptID, categoryID string) error {
	return r.insertIgnore(ctx, &models.PromptCategory{PromptID: promptID, CategoryID: categoryID})
}

func (r *linkRepository) AddTag(ctx context.Context, promptID, tagID string) error {
	return r.insertIgnore(ctx, &models.PromptTag{PromptID: promptID, TagID: tagID})
}

func (r *linkRepository) RemoveCategory(ctx context.Context, promptID, categoryID string) error {
	return r.db.WithContext(ctx).
		Where("prompt_id = ? AND category_id = ?", promptID, categoryID).
		Delete(&models.PromptCategory{}).Error
}

func (r *linkRepository) RemoveTag(ctx context.Context, promptID, tagID string) error {
	return r.db.WithContext(ctx).
		Where("prompt_id = ? AND tag_id = ?", promptID, tagID).
		Delete(&models.PromptTag{}).Error
}

func (r *linkRepository) CategoryLinks(ctx context.Context, promptIDs []string) ([]models.PromptCategory, error) {
	var links []models.PromptCategory
	err := r.db.WithContext(ctx).Where("prompt_id IN ?", promptIDs).Order("created_at ASC").Find(&links).Error
	return links, err
}

func (r *linkRepository) TagLinks(ctx context.Context, promptIDs []string) ([]models.PromptTag, error) {
	var links []models.PromptTag
	err := r.db.WithContext(ctx).Where("prompt_id IN ?", promptIDs).Order("created_at ASC").Find(&links).Error
	return links, err
}

func (r *linkRepository) DeleteCategoryLinks(ctx context.Context, promptIDs []string) (int64, error) {
	result := r.db.WithContext(ctx).Where("prompt_id IN ?", promptIDs).Delete(&models.PromptCategory{})
	return result.RowsAffected, result.Error
}

func (r *linkRepository) DeleteTagLinks(ctx context.Context, promptIDs []string) (int64, error) {
	result := r.db.WithContext(ctx).Where("prompt_id IN ?", promptIDs).Delete(&models.PromptTag{})
	return result.RowsAffected, result.Error
}

func (r *linkRepository) LinksByCategory(ctx context.Context, categoryID string) ([]models.PromptCategory, error) {
	var links []models.PromptCategory
	err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Find(&links).Error
	return links, err
}

func (r *linkRepository) LinksByTag(ctx context.Context, tagID string) ([]models.PromptTag, error) {
	var links []models.PromptTag
	err := r.db.WithContext(ctx).Where("tag_id = ?", tagID).Find(&links).Error
	return links, err
}

func (r *linkRepository) CountByTag(ctx context.Context, tagID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PromptTag{}).Where("tag_id = ?", tagID).Count(&count).Error
	return count, err
}

func (r *linkRepository) DeleteByCategory(ctx context.Context, categoryID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Delete(&models.PromptCategory{})
	return result.RowsAffected, result.Error
}

func (r *linkRepository) DeleteByTag(ctx context.Context, tagID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("tag_id = ?", tagID).Delete(&models.PromptTag{})
	return result.RowsAffected, result.Error
}

func (r *linkRepository) RestoreCategoryLinks(ctx context.Context, links []models.PromptCategory) error {
	if len(links) == 0 {
		return nil
	}
	return r.insertIgnore(ctx, &links)
}

func (r *linkRepository) RestoreTagLinks(ctx context.Context, links []models.PromptTag) error {
	if len(links) == 0 {
		return nil
	}
	return r.insertIgnore(ctx, &links)
}
