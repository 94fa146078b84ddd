package handlers

import (
	"prompt-cms/helper"
	"prompt-cms/models"
	"prompt-cms/services"

	"github.com/gin-gonic/gin"
)

type PublicHandler struct {
	publicService services.PublicService
	Helper        *helper.HTTPHelper
}

func NewPublicHandler(publicService services.PublicService, h *helper.HTTPHelper) *PublicHandler {
	return &PublicHandler{publicService: publicService, Helper: h}
}

func (h *PublicHandler) GetPublicPrompts(c *gin.Context) {
	var filter models.PromptFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query", err.Error())
		return
	}

	page, err := h.publicService.ListPublished(c.Request.Context(), filter)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", gin.H{
		"items":  page.Items,
		"paging": h.Helper.GeneratePaging(c, page.Limit, page.Page, int(page.Total)),
	})
}

func (h *PublicHandler) GetPublicPrompt(c *gin.Context) {
	prompt, err := h.publicService.GetPublished(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", prompt)
}

func (h *PublicHandler) GetPublicCategories(c *gin.Context) {
	categories, err := h.publicService.Categories(c.Request.Context())
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", categories)
}

func (h *PublicHandler) GetPublicTags(c *gin.Context) {
	tags, err := h.publicService.Tags(c.Request.Context())
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", tags)
}
