// internal/handlers/override.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hargapangan/pangan-backend/internal/i18n"
	"github.com/hargapangan/pangan-backend/internal/models"
	"github.com/hargapangan/pangan-backend/internal/services"
	"github.com/hargapangan/pangan-backend/internal/utils"
)

type OverrideHandler struct {
	overrideService *services.OverrideService
	authService     *services.AuthService
}

func NewOverrideHandler(overrideService *services.OverrideService, authService *services.AuthService) *OverrideHandler {
	return &OverrideHandler{
		overrideService: overrideService,
		authService:     authService,
	}
}

func (h *OverrideHandler) actor(c *gin.Context) (*models.User, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return nil, false
	}
	user, err := h.authService.GetProfile(userID)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return nil, false
	}
	return user, true
}

// POST /overrides
func (h *OverrideHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	requester, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.CreateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	override, err := h.overrideService.Create(&req, requester, requestMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCommodityNotFound):
			utils.NotFoundResponse(c, "commodity")
		case errors.Is(err, services.ErrNoCurrentPrice):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPriceNoCurrent), nil)
		case errors.Is(err, services.ErrValidationFailed):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	messageKey := i18n.KeyOverrideCreated
	if override.Status == models.OverrideStatusPending {
		messageKey = i18n.KeyOverridePending
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, messageKey),
		"override": override,
	})
}

// GET /overrides
func (h *OverrideHandler) List(c *gin.Context) {
	params := services.OverrideListParams{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.OverrideStatus(statusStr)
		params.Status = &status
	}
	if requesterStr := c.Query("requester_id"); requesterStr != "" {
		requesterID, err := uuid.Parse(requesterStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid requester ID", nil)
			return
		}
		params.RequesterID = &requesterID
	}

	overrides, total, err := h.overrideService.List(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(overrides, total, params.PaginationParams))
}

// GET /overrides/:id
func (h *OverrideHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid override ID", nil)
		return
	}

	override, err := h.overrideService.Get(id)
	if err != nil {
		utils.NotFoundResponse(c, "override")
		return
	}

	utils.SuccessResponse(c, gin.H{"override": override})
}

// POST /overrides/:id/decision (officer or admin)
func (h *OverrideHandler) Decide(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	approver, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid override ID", nil)
		return
	}

	var req struct {
		Decision string `json:"decision" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	override, err := h.overrideService.Decide(id, req.Decision, approver, requestMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDecision):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyOverrideInvalidDecision), nil)
		case errors.Is(err, services.ErrAlreadyProcessed):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyOverrideAlreadyProcessed))
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	messageKey := i18n.KeyOverrideRejected
	if override.Status == models.OverrideStatusApproved {
		messageKey = i18n.KeyOverrideApproved
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, messageKey),
		"override": override,
	})
}

// DELETE /overrides/:id (officer or admin)
func (h *OverrideHandler) Delete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid override ID", nil)
		return
	}

	if err := h.overrideService.Delete(id, actor, requestMeta(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundResponse(c, "override")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOverrideDeleted),
	})
}
