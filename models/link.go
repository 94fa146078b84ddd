package models

import "time"

// PromptCategory links one prompt to one category. The composite key
// rules out duplicate pairs.
type PromptCategory struct {
	PromptID   string    `json:"prompt_id" gorm:"type:uuid;primaryKey"`
	CategoryID string    `json:"category_id" gorm:"type:uuid;primaryKey;index"`
	CreatedAt  time.Time `json:"created_at"`
}

func (PromptCategory) TableName() string {
	return "prompt_categories"
}

type PromptTag struct {
	PromptID  string    `json:"prompt_id" gorm:"type:uuid;primaryKey"`
	TagID     string    `json:"tag_id" gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (PromptTag) TableName() string {
	return "prompt_tags"
}
