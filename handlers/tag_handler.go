package handlers

import (
	"prompt-cms/helper"
	"prompt-cms/middleware"
	"prompt-cms/models"
	"prompt-cms/services"

	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	tagService services.TagService
	Helper     *helper.HTTPHelper
}

func NewTagHandler(tagService services.TagService, h *helper.HTTPHelper) *TagHandler {
	return &TagHandler{tagService: tagService, Helper: h}
}

func (h *TagHandler) CreateTag(c *gin.Context) {
	var req models.TagRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBindError(c, err)
		return
	}

	tag, err := h.tagService.CreateTag(c.Request.Context(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendCreated(c, "Tag created successfully", tag)
}

func (h *TagHandler) GetTags(c *gin.Context) {
	tags, err := h.tagService.ListTags(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", tags)
}

func (h *TagHandler) UpdateTag(c *gin.Context) {
	var req models.TagUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBindError(c, err)
		return
	}

	result, err := h.tagService.UpdateTag(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("name"), req)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Tag updated successfully", result)
}

func (h *TagHandler) DeleteTag(c *gin.Context) {
	result, err := h.tagService.DeleteTag(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("name"))
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Tag deleted successfully", result)
}
