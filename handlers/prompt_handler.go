package handlers

import (
	"prompt-cms/helper"
	"prompt-cms/middleware"
	"prompt-cms/models"
	"prompt-cms/services"

	"github.com/gin-gonic/gin"
)

type PromptHandler struct {
	promptService services.PromptService
	Helper        *helper.HTTPHelper
}

func NewPromptHandler(promptService services.PromptService, h *helper.HTTPHelper) *PromptHandler {
	return &PromptHandler{promptService: promptService, Helper: h}
}

func (h *PromptHandler) CreatePrompt(c *gin.Context) {
	var req models.PromptRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBindError(c, err)
		return
	}

	prompt, err := h.promptService.CreatePrompt(c.Request.Context(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendCreated(c, "Prompt created successfully", prompt.View())
}

func (h *PromptHandler) GetPrompts(c *gin.Context) {
	var filter models.PromptFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query", err.Error())
		return
	}
	if v := c.Query("is_public"); v != "" {
		public := models.ParseFormBool(v)
		filter.IsPublic = &public
	}

	page, err := h.promptService.ListPrompts(c.Request.Context(), middleware.CurrentPrincipal(c), filter)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", gin.H{
		"items":  page.Items,
		"paging": h.Helper.GeneratePaging(c, page.Limit, page.Page, int(page.Total)),
	})
}

func (h *PromptHandler) GetPrompt(c *gin.Context) {
	prompt, err := h.promptService.GetPrompt(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"))
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", prompt.View())
}

func (h *PromptHandler) UpdatePrompt(c *gin.Context) {
	var req models.PromptRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBindError(c, err)
		return
	}

	prompt, err := h.promptService.UpdatePrompt(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"), req)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Prompt updated successfully", prompt.View())
}

func (h *PromptHandler) DeletePrompt(c *gin.Context) {
	if err := h.promptService.DeletePrompt(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id")); err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Prompt deleted successfully", h.Helper.EmptyJsonMap())
}

func (h *PromptHandler) BulkUpdatePrompts(c *gin.Context) {
	var req models.BulkUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBindError(c, err)
		return
	}

	result, err := h.promptService.BulkUpdatePrompts(c.Request.Context(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Prompts updated successfully", result)
}

func (h *PromptHandler) BulkDeletePrompts(c *gin.Context) {
	var req models.BulkDeleteRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBindError(c, err)
		return
	}

	result, err := h.promptService.BulkDeletePrompts(c.Request.Context(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Prompts deleted successfully", result)
}
