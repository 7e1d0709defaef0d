// internal/handlers/price.go
package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hargapangan/pangan-backend/internal/i18n"
	"github.com/hargapangan/pangan-backend/internal/models"
	"github.com/hargapangan/pangan-backend/internal/services"
	"github.com/hargapangan/pangan-backend/internal/utils"
)

type PriceHandler struct {
	priceService *services.PriceService
}

func NewPriceHandler(priceService *services.PriceService) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
	}
}

const dateLayout = "2006-01-02"

func parseDateQuery(c *gin.Context, name string, fallback time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, name), nil)
		return time.Time{}, false
	}
	return parsed, true
}

func parseLevelQuery(c *gin.Context) (models.PriceLevel, bool) {
	level := models.PriceLevel(c.DefaultQuery("level", string(models.PriceLevelRetail)))
	if !level.Valid() {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "level"), nil)
		return "", false
	}
	return level, true
}

// GET /prices/compare
func (h *PriceHandler) CompareDay(c *gin.Context) {
	date, ok := parseDateQuery(c, "date", time.Now())
	if !ok {
		return
	}

	level, ok := parseLevelQuery(c)
	if !ok {
		return
	}

	comparisons, err := h.priceService.CompareDay(c.Request.Context(), date, level)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"date":        models.DateOnly(date).Format(dateLayout),
		"level":       level,
		"comparisons": comparisons,
	})
}

// GET /prices/:id/series
func (h *PriceHandler) DayOverDay(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	commodityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid commodity ID", nil)
		return
	}

	to, ok := parseDateQuery(c, "to", time.Now())
	if !ok {
		return
	}
	from, ok := parseDateQuery(c, "from", to.AddDate(0, 0, -30))
	if !ok {
		return
	}
	if from.After(to) {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPriceInvalidWindow), nil)
		return
	}

	level, ok := parseLevelQuery(c)
	if !ok {
		return
	}

	series, err := h.priceService.DayOverDay(commodityID, level, from, to)
	if err != nil {
		if errors.Is(err, services.ErrCommodityNotFound) {
			utils.NotFoundResponse(c, "commodity")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"series": series})
}

// GET /prices/top-movers
func (h *PriceHandler) TopMovers(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	end, ok := parseDateQuery(c, "end", time.Now())
	if !ok {
		return
	}
	start, ok := parseDateQuery(c, "start", end.AddDate(0, 0, -7))
	if !ok {
		return
	}
	if start.After(end) {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPriceInvalidWindow), nil)
		return
	}

	level, ok := parseLevelQuery(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	movers, err := h.priceService.TopMovers(level, start, end, limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"start":  models.DateOnly(start).Format(dateLayout),
		"end":    models.DateOnly(end).Format(dateLayout),
		"level":  level,
		"movers": movers,
	})
}

// GET /prices/:id/history
func (h *PriceHandler) History(c *gin.Context) {
	commodityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid commodity ID", nil)
		return
	}

	params := utils.GetPaginationParams(c)

	history, total, err := h.priceService.History(commodityID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(history, total, params))
}
