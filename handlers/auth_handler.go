package handlers

import (
	"prompt-cms/helper"
	"prompt-cms/middleware"
	"prompt-cms/models"
	"prompt-cms/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService    services.AuthService
	profileService services.ProfileService
	cookie         middleware.SessionCookie
	Helper         *helper.HTTPHelper
}

func NewAuthHandler(authService services.AuthService, profileService services.ProfileService, cookie middleware.SessionCookie, h *helper.HTTPHelper) *AuthHandler {
	return &AuthHandler{authService: authService, profileService: profileService, cookie: cookie, Helper: h}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBindError(c, err)
		return
	}

	result, err := h.authService.SignUp(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	if result.Session != nil {
		h.cookie.Set(c, result.Session.Token, result.Session.ExpiresAt)
	}
	h.Helper.SendSuccess(c, result.Message, result)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBindError(c, err)
		return
	}

	response, err := h.authService.SignIn(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.cookie.Set(c, response.Token, response.ExpiresAt)
	h.Helper.SendSuccess(c, "Login success", response)
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.authService.SignOut(c.Request.Context(), middleware.CurrentPrincipal(c)); err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}
	h.cookie.Clear(c)
	h.Helper.SendSuccess(c, "Signed out", h.Helper.EmptyJsonMap())
}

func (h *AuthHandler) Me(c *gin.Context) {
	h.Helper.SendSuccess(c, "Success", middleware.CurrentPrincipal(c))
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.Get(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Profile loaded", profile)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBindError(c, err)
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Profile updated", profile)
}
