package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/pkg/response"
)

type dashboardService interface {
	Stats(ctx context.Context) (*models.DashboardStats, bool, error)
}

// DashboardHandler exposes the summary counters.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Stats godoc
// @Summary Dashboard counters
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Header 200 {string} X-Cache "HIT or MISS"
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, hit, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if hit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	response.OK(c, stats)
}
