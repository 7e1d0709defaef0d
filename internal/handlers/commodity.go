// internal/handlers/commodity.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hargapangan/pangan-backend/internal/i18n"
	"github.com/hargapangan/pangan-backend/internal/services"
	"github.com/hargapangan/pangan-backend/internal/utils"
)

type CommodityHandler struct {
	commodityService *services.CommodityService
}

func NewCommodityHandler(commodityService *services.CommodityService) *CommodityHandler {
	return &CommodityHandler{
		commodityService: commodityService,
	}
}

// GET /commodities
func (h *CommodityHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	includeInactive := c.Query("include_inactive") == "true"

	commodities, total, err := h.commodityService.List(params, includeInactive)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(commodities, total, params))
}

// GET /commodities/:id
func (h *CommodityHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid commodity ID", nil)
		return
	}

	commodity, err := h.commodityService.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrCommodityNotFound) {
			utils.NotFoundResponse(c, "commodity")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"commodity": commodity})
}

// POST /commodities (admin)
func (h *CommodityHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateCommodityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	commodity, err := h.commodityService.Create(&req)
	if err != nil {
		if errors.Is(err, services.ErrValidationFailed) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyCommodityCreated),
		"commodity": commodity,
	})
}

// PUT /commodities/:id (admin)
func (h *CommodityHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid commodity ID", nil)
		return
	}

	var req services.UpdateCommodityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	commodity, err := h.commodityService.Update(id, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCommodityNotFound):
			utils.NotFoundResponse(c, "commodity")
		case errors.Is(err, services.ErrValidationFailed):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyCommodityUpdated),
		"commodity": commodity,
	})
}

// DELETE /commodities/:id (admin)
func (h *CommodityHandler) Deactivate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid commodity ID", nil)
		return
	}

	if err := h.commodityService.Deactivate(id); err != nil {
		if errors.Is(err, services.ErrCommodityNotFound) {
			utils.NotFoundResponse(c, "commodity")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCommodityDeactivated),
	})
}

// GET /commodities/custom
func (h *CommodityHandler) ListCustom(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	commodities, total, err := h.commodityService.ListCustom(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(commodities, total, params))
}

// POST /commodities/custom
func (h *CommodityHandler) CreateCustom(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateCustomCommodityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	commodity, err := h.commodityService.CreateCustom(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrValidationFailed) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyCommodityCreated),
		"commodity": commodity,
	})
}

// GET /commodities/custom/:id
func (h *CommodityHandler) GetCustom(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid commodity ID", nil)
		return
	}

	commodity, err := h.commodityService.GetCustom(id)
	if err != nil {
		if errors.Is(err, services.ErrCommodityNotFound) {
			utils.NotFoundResponse(c, "commodity")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"commodity": commodity})
}
