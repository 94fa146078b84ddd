package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PromptRequest follows the admin form contract: tags arrive as one
// comma-separated string and is_public as "true"/"false".
type PromptRequest struct {
	Title       string   `json:"title" form:"title" validate:"required,max=200,nospecial"`
	Content     string   `json:"content" form:"content" validate:"required,max=10000,nospecial"`
	Description string   `json:"description" form:"description" validate:"max=500"`
	Category    string   `json:"category" form:"category"`
	Tags        string   `json:"tags" form:"tags"`
	Notes       string   `json:"notes" form:"notes" validate:"max=2000"`
	IsPublic    FormBool `json:"is_public" form:"is_public"`
}

// Trim strips surrounding whitespace from every free-text field.
func (r *PromptRequest) Trim() {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r PromptRequest) Public() bool {
	return ParseFormBool(string(r.IsPublic))
}

// FormBool is a checkbox value. JSON clients may send it as a boolean or
// as a string.
type FormBool string

func (b *FormBool) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case bool:
		*b = FormBool(strconv.FormatBool(v))
	case string:
		*b = FormBool(v)
	case nil:
		*b = ""
	default:
		return fmt.Errorf("is_public: unsupported value %s", data)
	}
	return nil
}

// ParseFormBool accepts the values an HTML form or JSON client sends for a
// checked box.
func ParseFormBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

type BulkUpdateRequest struct {
	IDs         []string `json:"ids" form:"ids" validate:"required,min=1,dive,required"`
	IsPublic    *bool    `json:"is_public" form:"is_public"`
	Description *string  `json:"description" form:"description" validate:"omitempty,max=500"`
	Notes       *string  `json:"notes" form:"notes" validate:"omitempty,max=2000"`
}

// Fields returns the column updates carried by the request.
func (r BulkUpdateRequest) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if r.IsPublic != nil {
		fields["is_public"] = *r.IsPublic
	}
	if r.Description != nil {
		fields["description"] = strings.TrimSpace(*r.Description)
	}
	if r.Notes != nil {
		fields["notes"] = strings.TrimSpace(*r.Notes)
	}
	return fields
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids" form:"ids" validate:"required,min=1,dive,required"`
}

type CategoryRequest struct {
	Name        string `json:"name" form:"name" validate:"required,min=2,max=50,tagname"`
	Description string `json:"description" form:"description" validate:"max=500"`
}

type CategoryRenameRequest struct {
	NewName     string  `json:"new_name" form:"new_name"`
	Description *string `json:"description" form:"description" validate:"omitempty,max=500"`
}

type TagRequest struct {
	Name        string `json:"name" form:"name" validate:"required,min=2,max=30,tagname"`
	Description string `json:"description" form:"description" validate:"max=500"`
}

type TagUpdateRequest struct {
	NewName     string `json:"new_name" form:"new_name"`
	Description string `json:"description" form:"description" validate:"max=500"`
}

type SignUpRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
	FullName string `json:"full_name" form:"full_name" validate:"max=100"`
}

type SignInRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type SignUpStatus string

const (
	SignUpPending   SignUpStatus = "pending"
	SignUpConfirmed SignUpStatus = "confirmed"
)

type SignUpResult struct {
	Status  SignUpStatus  `json:"status"`
	Message string        `json:"message"`
	Session *AuthResponse `json:"session,omitempty"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type ProfileUpdateRequest struct {
	DisplayName string `json:"display_name" form:"display_name" validate:"max=100"`
	AvatarURL   string `json:"avatar_url" form:"avatar_url" validate:"omitempty,url,max=500"`
}

// PromptFilter narrows prompt listings. Every field is applied in SQL.
type PromptFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Tag      string `form:"tag"`
	IsPublic *bool  `form:"-"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

func (f *PromptFilter) Normalize() {
	f.Search = strings.TrimSpace(f.Search)
	f.Category = strings.TrimSpace(f.Category)
	f.Tag = strings.TrimSpace(f.Tag)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
}

func (f PromptFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type PromptPage struct {
	Items []PromptView `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// MutationResult reports how many rows a rename or delete touched.
type MutationResult struct {
	Updated  int64  `json:"updated"`
	Deleted  int64  `json:"deleted,omitempty"`
	Category string `json:"category,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

type DashboardStats struct {
	TotalPrompts   int64 `json:"total_prompts"`
	PublicPrompts  int64 `json:"public_prompts"`
	PrivatePrompts int64 `json:"private_prompts"`
	Categories     int64 `json:"categories"`
	Tags           int64 `json:"tags"`
}

// LabelUsage is a category or tag name with the number of linked prompts.
type LabelUsage struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Count       int64  `json:"count"`
}
