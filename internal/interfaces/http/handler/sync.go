package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopbot/backend/internal/application/catalog"
	"github.com/shopbot/backend/internal/interfaces/http/dto"
)

// SyncHandler triggers catalog reconciliation on demand
type SyncHandler struct {
	BaseHandler
	syncService *catalog.SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *catalog.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// Run performs a reconciliation and waits for its result. A run that failed
// while loading local state is still reported with status FAILED.
// @ID           runCatalogSync
// @Summary      Run catalog reconciliation
// @Tags         sync
// @Produce      json
// @Success      200 {object} dto.Response{data=catalog.SyncResult}
// @Failure      401 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/sync [post]
func (h *SyncHandler) Run(c *gin.Context) {
	result, err := h.syncService.Run(c.Request.Context())
	if errors.Is(err, catalog.ErrSyncInProgress) {
		h.Error(c, dto.ErrCodeSyncInProgress, "A catalog sync is already running")
		return
	}
	if result == nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Last returns the result of the most recent run
// @ID           getLastCatalogSync
// @Summary      Get the last reconciliation result
// @Tags         sync
// @Produce      json
// @Success      200 {object} dto.Response{data=catalog.SyncResult}
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/sync [get]
func (h *SyncHandler) Last(c *gin.Context) {
	result := h.syncService.LastResult()
	if result == nil {
		h.Error(c, dto.ErrCodeNotFound, "No sync has completed yet")
		return
	}
	h.Success(c, result)
}
