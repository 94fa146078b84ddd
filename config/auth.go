package config

import (
	"errors"
	"strings"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-this-in-production"

type AuthConfig struct {
	JWTSecret           string        `yaml:"jwt_secret"`
	TokenTTL            time.Duration `yaml:"token_ttl"`
	AdminEmails         []string      `yaml:"admin_emails"`
	AllowedSignupEmails []string      `yaml:"allowed_signup_emails"`
	RequireConfirmation bool          `yaml:"require_confirmation"`
	CookieName          string        `yaml:"cookie_name"`
	CookieSecure        bool          `yaml:"cookie_secure"`
}

func defaultAuth() AuthConfig {
	return AuthConfig{
		JWTSecret:           defaultJWTSecret,
		TokenTTL:            24 * time.Hour,
		RequireConfirmation: true,
		CookieName:          "session",
	}
}

func (a AuthConfig) Secret() []byte {
	return []byte(a.JWTSecret)
}

// SignupEmails is the sign-up allow-list. Admins may always sign up.
func (a AuthConfig) SignupEmails() []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range [][]string{a.AdminEmails, a.AllowedSignupEmails} {
		for _, email := range list {
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" || seen[email] {
				continue
			}
			seen[email] = true
			out = append(out, email)
		}
	}
	return out
}

func (a AuthConfig) validate(production bool) []error {
	var errs []error
	if len(a.AdminEmails) == 0 {
		errs = append(errs, errors.New("at least one admin email is required"))
	}
	if a.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	if a.JWTSecret == "" || (production && a.JWTSecret == defaultJWTSecret) {
		errs = append(errs, errors.New("jwt secret must be set"))
	}
	return errs
}
