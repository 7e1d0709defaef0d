// internal/handlers/sync.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/hargapangan/pangan-backend/internal/i18n"
	"github.com/hargapangan/pangan-backend/internal/models"
	"github.com/hargapangan/pangan-backend/internal/services"
	"github.com/hargapangan/pangan-backend/internal/utils"
)

type SyncHandler struct {
	syncService  *services.SyncService
	auditService *services.AuditService
}

func NewSyncHandler(syncService *services.SyncService, auditService *services.AuditService) *SyncHandler {
	return &SyncHandler{
		syncService:  syncService,
		auditService: auditService,
	}
}

// POST /sync (officer or admin)
func (h *SyncHandler) Trigger(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	result, err := h.syncService.RunCycle(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSyncAlreadyRunning):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyPriceSyncRunning))
		case errors.Is(err, services.ErrUpstreamUnavailable):
			utils.ServiceUnavailableResponse(c, "")
		default:
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyPriceSyncFailed))
		}
		return
	}

	h.auditService.Record(&userID, models.AuditActionSyncTrigger, "price_sync", nil, nil,
		map[string]interface{}{
			"saved":   result.TotalSaved,
			"skipped": result.TotalSkipped,
			"purged":  result.PurgedOverrides,
		}, requestMeta(c))

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPriceSyncStarted),
		"result":  result,
	})
}

// GET /sync/status (officer or admin)
func (h *SyncHandler) Status(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"status": h.syncService.Status(),
	})
}
