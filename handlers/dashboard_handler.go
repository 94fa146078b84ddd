package handlers

import (
	"net/http"

	"prompt-cms/helper"
	"prompt-cms/logger"
	"prompt-cms/middleware"
	"prompt-cms/repositories"
	"prompt-cms/services"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
	Helper           *helper.HTTPHelper
}

func NewDashboardHandler(dashboardService services.DashboardService, h *helper.HTTPHelper) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, Helper: h}
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", stats)
}

// Health reports whether the database answers.
func Health(health repositories.HealthRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := health.Ping(c.Request.Context()); err != nil {
			logger.Log.Errorw("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
