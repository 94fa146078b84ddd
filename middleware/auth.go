package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"prompt-cms/helper"
	"prompt-cms/logger"
	"prompt-cms/models"
	"prompt-cms/services"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Sign-in redirect targets.
const (
	SignInPath              = "/signin"
	SignInUnauthorizedEmail = SignInPath + "?error=unauthorized_email"
	SignInAdminDenied       = SignInPath + "?error=admin_access_denied"
)

var HTTPHelper = &helper.HTTPHelper{}

// SessionCookie describes the cookie that carries the session token.
type SessionCookie struct {
	Name   string
	Secure bool
}

func (s SessionCookie) Set(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, token, maxAge, "/", "", s.Secure, true)
}

func (s SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
}

func (s SessionCookie) token(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	token, _ := c.Cookie(s.Name)
	return token
}

// Authenticate resolves the session token into a principal. Requests with
// no or an expired session continue anonymously. A session whose email has
// been removed from the allow-list is ended and sent to the sign-in page.
func Authenticate(auth services.AuthService, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.token(c)
		if token == "" {
			c.Next()
			return
		}

		principal, err := auth.CurrentUser(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(principalKey, principal)
		case errors.Is(err, services.ErrEmailNotAllowed):
			logger.Log.Warnw("ending session for email outside allow-list", "email", principal.Email)
			if serr := auth.SignOut(c.Request.Context(), principal); serr != nil {
				logger.Log.Errorw("sign out failed", "error", serr)
			}
			cookie.Clear(c)
			if isAPI(c) {
				HTTPHelper.SendUnauthorizedError(c, err.Error(), HTTPHelper.EmptyJsonMap())
				c.Abort()
				return
			}
			c.Redirect(http.StatusFound, SignInUnauthorizedEmail)
			c.Abort()
			return
		default:
			var unauthorized models.ErrorUnauthorized
			if !errors.As(err, &unauthorized) {
				logger.Log.Errorw("session lookup failed", "error", err)
			}
			cookie.Clear(c)
		}

		c.Next()
	}
}

// CurrentPrincipal returns the signed-in caller or nil.
func CurrentPrincipal(c *gin.Context) *models.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	principal, _ := v.(*models.Principal)
	return principal
}

// RequireUser sends anonymous callers to the sign-in page, or answers 401
// on the JSON API.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentPrincipal(c) == nil {
			deny(c, "Sign in required", SignInPath)
			return
		}
		c.Next()
	}
}

// RequireAdmin lets only principals the policy names as admins through.
func RequireAdmin(policy *services.AccessPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := CurrentPrincipal(c)
		if principal == nil {
			deny(c, "Sign in required", SignInPath)
			return
		}
		if err := policy.RequireAdmin(principal); err != nil {
			logger.Log.Warnw("admin access denied", "email", principal.Email, "path", c.Request.URL.Path)
			deny(c, err.Error(), SignInAdminDenied)
			return
		}
		c.Next()
	}
}

func deny(c *gin.Context, message, redirect string) {
	if isAPI(c) {
		HTTPHelper.SendUnauthorizedError(c, message, HTTPHelper.EmptyJsonMap())
	} else {
		c.Redirect(http.StatusFound, redirect)
	}
	c.Abort()
}

func isAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}
