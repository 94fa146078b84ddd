package services

import (
	"context"
	"strings"

	"prompt-cms/logger"
	"prompt-cms/models"
	"prompt-cms/repositories"
	"prompt-cms/validation"
)

type ProfileService interface {
	Ensure(ctx context.Context, user *models.User) (*models.Profile, error)
	Get(ctx context.Context, actor *models.Principal) (*models.Profile, error)
	Update(ctx context.Context, actor *models.Principal, req models.ProfileUpdateRequest) (*models.Profile, error)
}

type profileService struct {
	profiles repositories.ProfileRepository
	validate *validation.Validator
}

func NewProfileService(profiles repositories.ProfileRepository, validate *validation.Validator) ProfileService {
	return &profileService{profiles: profiles, validate: validate}
}

// Ensure creates the user's profile on first sign-in and leaves an existing
// one untouched. Calling it repeatedly is safe.
func (s *profileService) Ensure(ctx context.Context, user *models.User) (*models.Profile, error) {
	created, err := s.profiles.Upsert(ctx, &models.Profile{
		UserID:      user.ID,
		DisplayName: user.DisplayName(),
		AvatarURL:   user.AvatarURL(),
	})
	if err != nil {
		return nil, storeError("Failed to create profile", err)
	}
	if created {
		logger.Log.Infow("profile created", "user_id", user.ID)
	}

	profile, err := s.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, storeError("Failed to load profile", err)
	}
	return profile, nil
}

func (s *profileService) Get(ctx context.Context, actor *models.Principal) (*models.Profile, error) {
	if actor == nil {
		return nil, errSignInRequired
	}
	profile, err := s.profiles.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Profile not found")
		}
		return nil, storeError("Failed to load profile", err)
	}
	return profile, nil
}

func (s *profileService) Update(ctx context.Context, actor *models.Principal, req models.ProfileUpdateRequest) (*models.Profile, error) {
	if actor == nil {
		return nil, errSignInRequired
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.AvatarURL = strings.TrimSpace(req.AvatarURL)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	err := s.profiles.Update(ctx, actor.UserID, map[string]interface{}{
		"display_name": req.DisplayName,
		"avatar_url":   req.AvatarURL,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Profile not found")
		}
		return nil, storeError("Failed to update profile", err)
	}
	return s.Get(ctx, actor)
}
