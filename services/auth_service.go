package services

import (
	"context"
	"strings"

	"prompt-cms/cache"
	"prompt-cms/logger"
	"prompt-cms/models"
	"prompt-cms/repositories"
	"prompt-cms/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

const (
	msgSignUpRestricted = "Account creation is restricted. This email address is not authorized to create an account."
	msgSignUpPending    = "Please check your email to confirm your account before signing in."
	msgSignUpConfirmed  = "Account created successfully. Redirecting to dashboard..."
)

var (
	errSignInRequired     = models.ErrorUnauthorized{Message: "Sign in required"}
	errInvalidCredentials = models.ErrorUnauthorized{Message: "Invalid login credentials"}

	// ErrEmailNotAllowed is returned for a valid session whose email has
	// left the allow-list. The session should be ended.
	ErrEmailNotAllowed = models.ErrorUnauthorized{Message: "This email address is not authorized"}

	ErrEmailNotConfirmed = models.ErrorUnauthorized{Message: "Email not confirmed"}
	ErrSessionExpired    = models.ErrorUnauthorized{Message: "Session expired"}
)

// AuthService is the identity provider: accounts, sessions and the
// allow-list check applied on every request.
type AuthService interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.SignUpResult, error)
	SignIn(ctx context.Context, req models.SignInRequest) (*models.AuthResponse, error)
	SignOut(ctx context.Context, principal *models.Principal) error
	CurrentUser(ctx context.Context, token string) (*models.Principal, error)
	ConfirmUser(ctx context.Context, email string) error
}

type authService struct {
	users               repositories.UserRepository
	profiles            ProfileService
	policy              *AccessPolicy
	tokens              *TokenIssuer
	revocations         cache.Revocations
	validate            *validation.Validator
	requireConfirmation bool
	now                 Clock
}

func NewAuthService(
	users repositories.UserRepository,
	profiles ProfileService,
	policy *AccessPolicy,
	tokens *TokenIssuer,
	revocations cache.Revocations,
	validate *validation.Validator,
	requireConfirmation bool,
) AuthService {
	return &authService{
		users:               users,
		profiles:            profiles,
		policy:              policy,
		tokens:              tokens,
		revocations:         revocations,
		validate:            validate,
		requireConfirmation: requireConfirmation,
		now:                 defaultClock,
	}
}

func (s *authService) SignUp(ctx context.Context, req models.SignUpRequest) (result *models.SignUpResult, err error) {
	defer recoverInternal("sign up", &err)

	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	if !s.policy.CanSignUp(req.Email) {
		logger.Log.Warnw("sign up rejected", "email", req.Email)
		return nil, models.ErrorUnauthorized{Message: msgSignUpRestricted}
	}

	// Check if user already exists
	_, err = s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, models.NewConflictError("An account with this email already exists")
	}
	if !isNotFound(err) {
		return nil, storeError("Failed to look up account", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    req.Email,
		Password: string(hashed),
		Metadata: datatypes.JSONMap{},
	}
	if req.FullName != "" {
		user.Metadata["full_name"] = req.FullName
	}
	if !s.requireConfirmation {
		at := s.now()
		user.ConfirmedAt = &at
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError("Failed to create account", err)
	}

	if !user.Confirmed() {
		logger.Log.Infow("account created, confirmation pending", "user_id", user.ID)
		return &models.SignUpResult{Status: models.SignUpPending, Message: msgSignUpPending}, nil
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	logger.Log.Infow("account created", "user_id", user.ID)
	return &models.SignUpResult{Status: models.SignUpConfirmed, Message: msgSignUpConfirmed, Session: session}, nil
}

func (s *authService) SignIn(ctx context.Context, req models.SignInRequest) (resp *models.AuthResponse, err error) {
	defer recoverInternal("sign in", &err)

	req.Email = normalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	if !s.policy.CanSignIn(req.Email) {
		return nil, ErrEmailNotAllowed
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, storeError("Failed to look up account", err)
	}

	// Check password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	if !user.Confirmed() {
		return nil, ErrEmailNotConfirmed
	}

	return s.startSession(ctx, user)
}

// startSession issues a token and makes sure the user has a profile.
func (s *authService) startSession(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	token, principal, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	if _, err := s.profiles.Ensure(ctx, user); err != nil {
		return nil, err
	}

	logger.Log.Infow("session started", "user_id", user.ID, "admin", s.policy.IsAdmin(user.Email))
	return &models.AuthResponse{Token: token, ExpiresAt: principal.ExpiresAt, User: *user}, nil
}

// SignOut revokes the session token until it would have expired anyway.
func (s *authService) SignOut(ctx context.Context, principal *models.Principal) error {
	if principal == nil || principal.TokenID == "" {
		return nil
	}
	ttl := principal.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revocations.Revoke(ctx, principal.TokenID, ttl); err != nil {
		return storeError("Failed to sign out", err)
	}
	logger.Log.Infow("session ended", "user_id", principal.UserID)
	return nil
}

// CurrentUser resolves a session token. When the email is no longer
// allow-listed the principal is returned together with ErrEmailNotAllowed.
func (s *authService) CurrentUser(ctx context.Context, token string) (*models.Principal, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errSignInRequired
	}

	principal, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrSessionExpired
	}

	revoked, err := s.revocations.IsRevoked(ctx, principal.TokenID)
	if err != nil {
		return nil, storeError("Failed to check session", err)
	}
	if revoked {
		return nil, ErrSessionExpired
	}

	if !s.policy.CanSignIn(principal.Email) {
		return principal, ErrEmailNotAllowed
	}
	return principal, nil
}

// ConfirmUser marks a pending account as confirmed.
func (s *authService) ConfirmUser(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return models.NewValidationError("Email is required")
	}
	err := s.users.Confirm(ctx, email, s.now())
	if err != nil {
		if isNotFound(err) {
			return models.NewNotFoundError("Account not found")
		}
		return storeError("Failed to confirm account", err)
	}
	logger.Log.Infow("account confirmed", "email", email)
	return nil
}
