package repositories

import (
	"context"

	"prompt-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	GetByNames(ctx context.Context, names []string) ([]models.Tag, error)
	GetAll(ctx context.Context) ([]models.Tag, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, tag *models.Tag) error
	Count(ctx context.Context) (int64, error)
	Usage(ctx context.Context, publicOnly bool) ([]models.LabelUsage, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	return &tag, err
}

func (r *tagRepository) GetByNames(ctx context.Context, names []string) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&tags).Error
	return tags, err
}

func (r *tagRepository) GetAll(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *tagRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Tag{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *tagRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Tag{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *tagRepository) Restore(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(tag).Error
}

func (r *tagRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tag{}).Count(&count).Error
	return count, err
}

// Usage lists tags with the number of linked prompts, the same way
// categoryRepository.Usage does.
func (r *tagRepository) Usage(ctx context.Context, publicOnly bool) ([]models.LabelUsage, error) {
	var usage []models.LabelUsage

	query := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.name, tags.description, COUNT(p.id) AS count").
		Joins("LEFT JOIN prompt_tags pt ON pt.tag_id = tags.id")

	if publicOnly {
		query = query.Joins("JOIN prompts p ON p.id = pt.prompt_id AND p.is_public = ?", true)
	} else {
		query = query.Joins("LEFT JOIN prompts p ON p.id = pt.prompt_id")
	}

	err := query.
		Group("tags.id, tags.name, tags.description").
		Order("tags.name ASC").
		Scan(&usage).Error
	return usage, err
}
