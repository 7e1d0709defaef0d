// internal/handlers/audit.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hargapangan/pangan-backend/internal/services"
	"github.com/hargapangan/pangan-backend/internal/utils"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// GET /admin/audit-logs (admin)
func (h *AuditHandler) List(c *gin.Context) {
	params := services.AuditListParams{
		PaginationParams: utils.GetPaginationParams(c),
		Action:           c.Query("action"),
		ResourceType:     c.Query("resource_type"),
	}

	if userStr := c.Query("user_id"); userStr != "" {
		userID, err := uuid.Parse(userStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid user ID", nil)
			return
		}
		params.UserID = &userID
	}

	logs, total, err := h.auditService.List(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, params.PaginationParams))
}
