package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hall-booking-api/internal/middleware"
	"github.com/noah-isme/hall-booking-api/internal/models"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
	"github.com/noah-isme/hall-booking-api/pkg/response"
)

type dashboardService interface {
	Stats(ctx context.Context, actor models.Actor) (*models.DashboardStats, bool, error)
}

type metricsSnapshotter interface {
	Snapshot() models.SystemMetrics
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
	metrics metricsSnapshotter
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, metrics metricsSnapshotter) *DashboardHandler {
	return &DashboardHandler{service: service, metrics: metrics}
}

// Stats godoc
// @Summary Dashboard counters scoped to the caller
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	stats, cacheHit, err := h.service.Stats(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ResponseMeta(c))
}

// System godoc
// @Summary In-process request, cache and event counters
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/system [get]
func (h *DashboardHandler) System(c *gin.Context) {
	if h.metrics == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "metrics disabled"))
		return
	}
	response.OK(c, h.metrics.Snapshot())
}
