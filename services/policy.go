package services

import (
	"strings"

	"prompt-cms/models"
)

// AccessPolicy decides who may administer content and who may create an
// account. Emails are compared case-insensitively.
type AccessPolicy struct {
	admins  map[string]bool
	signups map[string]bool
}

func NewAccessPolicy(adminEmails, signupEmails []string) *AccessPolicy {
	p := &AccessPolicy{
		admins:  make(map[string]bool),
		signups: make(map[string]bool),
	}
	for _, email := range adminEmails {
		if email = normalizeEmail(email); email != "" {
			p.admins[email] = true
			p.signups[email] = true
		}
	}
	for _, email := range signupEmails {
		if email = normalizeEmail(email); email != "" {
			p.signups[email] = true
		}
	}
	return p
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *AccessPolicy) IsAdmin(email string) bool {
	return p.admins[normalizeEmail(email)]
}

func (p *AccessPolicy) CanSignUp(email string) bool {
	return p.signups[normalizeEmail(email)]
}

// CanSignIn reports whether the email may hold a session at all. Accounts
// removed from the allow-list lose access on their next request.
func (p *AccessPolicy) CanSignIn(email string) bool {
	return p.CanSignUp(email)
}

var errAdminRequired = models.ErrorUnauthorized{Message: "Admin access required"}

// RequireAdmin fails unless actor is an authenticated admin.
func (p *AccessPolicy) RequireAdmin(actor *models.Principal) error {
	if actor == nil || !p.IsAdmin(actor.Email) {
		return errAdminRequired
	}
	return nil
}
