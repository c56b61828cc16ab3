package handler

import (
	"net/http"

	"riderpro/internal/core/logger"
	"riderpro/internal/features/sync/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SyncHandler exposes reconciliation state to operators.
type SyncHandler struct {
	reconciler ports.StatsProvider
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(reconciler ports.StatsProvider) *SyncHandler {
	return &SyncHandler{reconciler: reconciler}
}

// GetStats godoc
// @Summary Sync reconciliation statistics
// @Description Counts pending, synced and abandoned records. Abandoned records need manual follow-up.
// @Tags sync
// @Produce json
// @Success 200 {object} domain.Stats
// @Failure 500 {object} map[string]string
// @Router /v1/sync/stats [get]
func (h *SyncHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.reconciler.Stats(c.Context())
	if err != nil {
		logger.Get().Error("failed to load sync stats", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
	return c.JSON(stats)
}
