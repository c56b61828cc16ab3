package handler

import (
	"net/http"
	"time"

	"riderpro/internal/core/logger"
	"riderpro/internal/features/analytics/ports"
	trackinghandler "riderpro/internal/features/tracking/handler"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AnalyticsHandler handles HTTP requests for fleet dashboard rollups.
type AnalyticsHandler struct {
	aggregator ports.AnalyticsProvider
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(aggregator ports.AnalyticsProvider) *AnalyticsHandler {
	return &AnalyticsHandler{aggregator: aggregator}
}

// GetDaily godoc
// @Summary Daily fleet rollups
// @Description Per-day distance, time, fuel and shipment stats. Defaults to the trailing 30 days.
// @Tags analytics
// @Produce json
// @Param rider_id query string false "Restrict to one rider"
// @Param from query string false "Range start, RFC3339 or YYYY-MM-DD"
// @Param to query string false "Range end, RFC3339 or YYYY-MM-DD"
// @Success 200 {array} domain.DailyAggregate
// @Failure 400 {object} handler.ErrorResponse
// @Router /v1/analytics/daily [get]
func (h *AnalyticsHandler) GetDaily(c *fiber.Ctx) error {
	from, to, err := trackinghandler.ParseDateRange(c.Query("from"), c.Query("to"), time.Now().UTC())
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(trackinghandler.ErrorResponse{
			Message: err.Error(),
		})
	}

	aggs, err := h.aggregator.Daily(c.Context(), c.Query("rider_id"), from, to)
	if err != nil {
		logger.Get().Error("failed to aggregate daily stats", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(trackinghandler.ErrorResponse{
			Message: "failed to aggregate daily stats",
		})
	}
	return c.JSON(aggs)
}
