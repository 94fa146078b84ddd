package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Prompt struct {
	ID          string     `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string     `json:"title" gorm:"not null"`
	Content     string     `json:"content" gorm:"type:text;not null"`
	Description string     `json:"description" gorm:"type:text"`
	Notes       string     `json:"notes" gorm:"type:text"`
	IsPublic    bool       `json:"is_public" gorm:"not null;index"`
	Author      string     `json:"author" gorm:"not null"`
	AuthorName  string     `json:"author_name"`
	Categories  []Category `json:"categories" gorm:"many2many:prompt_categories;"`
	Tags        []Tag      `json:"tags" gorm:"many2many:prompt_tags;"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p *Prompt) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// CategoryNames returns the linked category names in stored order.
func (p *Prompt) CategoryNames() []string {
	names := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		names = append(names, c.Name)
	}
	return names
}

func (p *Prompt) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}

// View flattens the prompt and its links into the shape served to clients.
func (p *Prompt) View() PromptView {
	return PromptView{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		Description: p.Description,
		Notes:       p.Notes,
		IsPublic:    p.IsPublic,
		Author:      p.Author,
		AuthorName:  p.AuthorName,
		Categories:  p.CategoryNames(),
		Tags:        p.TagNames(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type PromptView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Description string    `json:"description,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	IsPublic    bool      `json:"is_public"`
	Author      string    `json:"author"`
	AuthorName  string    `json:"author_name,omitempty"`
	Categories  []string  `json:"categories"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
