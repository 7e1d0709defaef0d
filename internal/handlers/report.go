// internal/handlers/report.go
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

type ReportHandler struct {
	reportService  *services.ReportService
	importService  *services.ImportService
	storageService *services.StorageService
	authService    *services.AuthService
	auditService   *services.AuditService
}

func NewReportHandler(
	reportService *services.ReportService,
	importService *services.ImportService,
	storageService *services.StorageService,
	authService *services.AuthService,
	auditService *services.AuditService,
) *ReportHandler {
	return &ReportHandler{
		reportService:  reportService,
		importService:  importService,
		storageService: storageService,
		authService:    authService,
		auditService:   auditService,
	}
}

func (h *ReportHandler) actor(c *gin.Context) (*models.User, bool) {
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

// POST /reports
func (h *ReportHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	report, err := h.reportService.Create(userID, &req)
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

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReportCreated),
		"report":  report,
	})
}

// GET /reports
func (h *ReportHandler) List(c *gin.Context) {
	params := services.ReportListParams{
		PaginationParams: utils.GetPaginationParams(c),
		MarketName:       c.Query("market_name"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.ReportStatus(statusStr)
		params.Status = &status
	}
	if reporterStr := c.Query("reporter_id"); reporterStr != "" {
		reporterID, err := uuid.Parse(reporterStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid reporter ID", nil)
			return
		}
		params.ReporterID = &reporterID
	}

	reports, total, err := h.reportService.List(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(reports, total, params.PaginationParams))
}

// GET /reports/:id
func (h *ReportHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid report ID", nil)
		return
	}

	report, err := h.reportService.Get(id)
	if err != nil {
		utils.NotFoundResponse(c, "report")
		return
	}

	utils.SuccessResponse(c, gin.H{"report": report})
}

// PUT /reports/:id
func (h *ReportHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid report ID", nil)
		return
	}

	var req services.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	report, err := h.reportService.Update(id, actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.NotFoundResponse(c, "report")
		case errors.Is(err, services.ErrValidationFailed):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.ForbiddenResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReportUpdated),
		"report":  report,
	})
}

// DELETE /reports/:id
func (h *ReportHandler) Delete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid report ID", nil)
		return
	}

	if err := h.reportService.Delete(id, actor, requestMeta(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundResponse(c, "report")
			return
		}
		utils.ForbiddenResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReportDeleted),
	})
}

// POST /reports/:id/verify (officer or admin)
func (h *ReportHandler) Verify(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid report ID", nil)
		return
	}

	var req struct {
		Approve bool `json:"approve"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	report, err := h.reportService.Verify(id, actor, req.Approve, requestMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.NotFoundResponse(c, "report")
		case errors.Is(err, services.ErrAlreadyProcessed):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyOverrideAlreadyProcessed))
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReportVerified),
		"report":  report,
	})
}

// POST /reports/:id/images
func (h *ReportHandler) UploadImage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid report ID", nil)
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "image"), nil)
		return
	}
	defer file.Close()

	options := h.storageService.GetDefaultUploadOptions("report_images")
	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}

	report, err := h.reportService.AddImage(id, actor, result.Key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundResponse(c, "report")
			return
		}
		utils.ForbiddenResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFileUploadSuccess),
		"upload":  result,
		"report":  report,
	})
}

// DELETE /reports/:id/images
func (h *ReportHandler) RemoveImage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid report ID", nil)
		return
	}

	var req struct {
		Key string `json:"key" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Key == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "key"), nil)
		return
	}

	report, err := h.reportService.RemoveImage(id, actor, req.Key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundResponse(c, "report")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"report": report})
}

// POST /reports/import (officer or admin)
func (h *ReportHandler) Import(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyImportFileNeeded), nil)
		return
	}
	defer file.Close()

	result, err := h.importService.ImportReports(file, actor)
	if err != nil {
		if errors.Is(err, services.ErrValidationFailed) {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyImportBadHeader), err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	h.auditService.Record(&actor.ID, models.AuditActionImport, "market_price_report", nil, nil,
		map[string]interface{}{
			"imported": result.Imported,
			"failed":   result.Failed,
		}, requestMeta(c))

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyImportCompleted, result.Imported, result.Failed),
		"result":  result,
	})
}
