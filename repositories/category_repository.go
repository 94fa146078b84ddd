package repositories

import (
	"context"

	"prompt-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByName(ctx context.Context, name string) (*models.Category, error)
	GetAll(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, category *models.Category) error
	Count(ctx context.Context) (int64, error)
	Usage(ctx context.Context, publicOnly bool) ([]models.LabelUsage, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error
	return &category, err
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *categoryRepository) Restore(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(category).Error
}

func (r *categoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Count(&count).Error
	return count, err
}

// Usage lists categories with the number of linked prompts. With
// publicOnly set, only public prompts are counted and unused categories
// are left out.
func (r *categoryRepository) Usage(ctx context.Context, publicOnly bool) ([]models.LabelUsage, error) {
	var usage []models.LabelUsage

	query := r.db.WithContext(ctx).
		Table("categories").
		Select("categories.name, categories.description, COUNT(p.id) AS count").
		Joins("LEFT JOIN prompt_categories pc ON pc.category_id = categories.id")

	if publicOnly {
		query = query.Joins("JOIN prompts p ON p.id = pc.prompt_id AND p.is_public = ?", true)
	} else {
		query = query.Joins("LEFT JOIN prompts p ON p.id = pc.prompt_id")
	}

	err := query.
		Group("categories.id, categories.name, categories.description").
		Order("categories.name ASC").
		Scan(&usage).Error
	return usage, err
}
