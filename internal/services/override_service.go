// internal/services/override_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hargapangan/pangan-backend/internal/models"
	"github.com/hargapangan/pangan-backend/internal/utils"
)

// A pending correction request lapses this long after creation.
const overrideRequestTTL = 24 * time.Hour

// A correction larger than this (percent of the original price) needs a
// non-self approver, unless the requester holds an elevated role.
const autoApproveDeltaPct = 50.0

type OverrideService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewOverrideService(db *gorm.DB, audit *AuditService) *OverrideService {
	return &OverrideService{db: db, audit: audit}
}

type CreateOverrideRequest struct {
	CommodityID    uuid.UUID         `json:"commodity_id" validate:"required"`
	Date           time.Time         `json:"date" validate:"required"`
	Level          models.PriceLevel `json:"level,omitempty"`
	RequestedPrice decimal.Decimal   `json:"requested_price" validate:"required"`
	Reason         string            `json:"reason" validate:"required,min=5"`
	EvidencePath   string            `json:"evidence_path,omitempty"`
}

// Create records a correction request against the current price for the
// commodity/date. Small corrections (or any correction from an elevated
// role) apply immediately; large ones wait for approval.
func (o *OverrideService) Create(req *CreateOverrideRequest, requester *models.User, meta RequestMeta) (*models.PriceOverride, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if req.RequestedPrice.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: requested price must be positive", ErrValidationFailed)
	}

	level := req.Level
	if level == "" {
		level = models.PriceLevelRetail
	}

	var commodity models.Commodity
	if err := o.db.First(&commodity, "id = ?", req.CommodityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommodityNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	date := models.DateOnly(req.Date)
	var pricePoint models.PricePoint
	err := o.db.Where(
		"commodity_id = ? AND date = ? AND region_id IS NULL AND level = ?",
		commodity.ID, date, level,
	).First(&pricePoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoCurrentPrice
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	override := &models.PriceOverride{
		PricePointID:   pricePoint.ID,
		OriginalPrice:  pricePoint.Price,
		OriginalSource: pricePoint.Source,
		RequestedPrice: req.RequestedPrice,
		Reason:         req.Reason,
		EvidencePath:   req.EvidencePath,
		RequesterID:    requester.ID,
		Status:         models.OverrideStatusPending,
		ExpiresAt:      time.Now().Add(overrideRequestTTL),
	}

	autoApprove := override.DeltaPct() <= autoApproveDeltaPct || requester.Role.IsElevated()

	err = o.db.Transaction(func(tx *gorm.DB) error {
		if autoApprove {
			override.Status = models.OverrideStatusApproved
			override.ApproverID = &requester.ID
		}

		if err := tx.Create(override).Error; err != nil {
			return fmt.Errorf("failed to create override: %w", err)
		}

		if autoApprove {
			if err := o.apply(tx, override, &pricePoint); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	o.audit.Record(&requester.ID, models.AuditActionOverrideCreate, "price_override", &override.ID,
		map[string]interface{}{"price": override.OriginalPrice.String(), "source": string(override.OriginalSource)},
		map[string]interface{}{
			"requested_price": override.RequestedPrice.String(),
			"status":          string(override.Status),
			"reason":          override.Reason,
		}, meta)

	return override, nil
}

// apply pushes an approved override into the ledger row.
func (o *OverrideService) apply(tx *gorm.DB, override *models.PriceOverride, pricePoint *models.PricePoint) error {
	oldPrice := pricePoint.Price

	updates := map[string]interface{}{
		"price":         override.RequestedPrice,
		"source":        models.PriceSourceManual,
		"is_overridden": true,
	}
	if err := tx.Model(pricePoint).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to apply override: %w", err)
	}

	history := models.PriceHistory{
		PricePointID: pricePoint.ID,
		CommodityID:  pricePoint.CommodityID,
		OldPrice:     oldPrice,
		NewPrice:     override.RequestedPrice,
		ChangePct:    relativeChangePct(oldPrice, override.RequestedPrice),
		Reason:       override.Reason,
		Source:       models.PriceSourceManual,
	}
	if err := tx.Create(&history).Error; err != nil {
		return fmt.Errorf("failed to write price history: %w", err)
	}

	return nil
}

// Decide approves or rejects a pending override. Expired pending requests
// can no longer be approved and are closed as rejected.
func (o *OverrideService) Decide(overrideID uuid.UUID, decision string, approver *models.User, meta RequestMeta) (*models.PriceOverride, error) {
	if decision != "approve" && decision != "reject" {
		return nil, ErrInvalidDecision
	}

	var override models.PriceOverride
	if err := o.db.Preload("PricePoint").First(&override, "id = ?", overrideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("override not found: %w", err)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if override.Status != models.OverrideStatusPending {
		return nil, ErrAlreadyProcessed
	}

	if override.Expired(time.Now()) && decision == "approve" {
		if err := o.db.Model(&override).Updates(map[string]interface{}{
			"status":      models.OverrideStatusRejected,
			"approver_id": approver.ID,
		}).Error; err != nil {
			return nil, fmt.Errorf("failed to close expired override: %w", err)
		}
		o.audit.Record(&approver.ID, models.AuditActionOverrideDecide, "price_override", &override.ID,
			map[string]interface{}{"status": string(models.OverrideStatusPending)},
			map[string]interface{}{"status": string(models.OverrideStatusRejected), "decision": "expired"}, meta)
		return nil, ErrAlreadyProcessed
	}

	previousStatus := override.Status

	err := o.db.Transaction(func(tx *gorm.DB) error {
		status := models.OverrideStatusRejected
		if decision == "approve" {
			status = models.OverrideStatusApproved
		}

		if err := tx.Model(&override).Updates(map[string]interface{}{
			"status":      status,
			"approver_id": approver.ID,
		}).Error; err != nil {
			return fmt.Errorf("failed to update override: %w", err)
		}
		override.Status = status
		override.ApproverID = &approver.ID

		if status == models.OverrideStatusApproved {
			return o.apply(tx, &override, &override.PricePoint)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.audit.Record(&approver.ID, models.AuditActionOverrideDecide, "price_override", &override.ID,
		map[string]interface{}{"status": string(previousStatus)},
		map[string]interface{}{"status": string(override.Status), "decision": decision}, meta)

	return &override, nil
}

// Delete removes an override. An applied override is first reverted so the
// ledger row returns to its exact pre-override price and source.
func (o *OverrideService) Delete(overrideID uuid.UUID, actor *models.User, meta RequestMeta) error {
	var override models.PriceOverride
	if err := o.db.Preload("PricePoint").First(&override, "id = ?", overrideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("override not found: %w", err)
		}
		return fmt.Errorf("database error: %w", err)
	}

	snapshot := map[string]interface{}{
		"status":          string(override.Status),
		"original_price":  override.OriginalPrice.String(),
		"requested_price": override.RequestedPrice.String(),
		"reason":          override.Reason,
	}

	err := o.db.Transaction(func(tx *gorm.DB) error {
		if override.Status == models.OverrideStatusApproved {
			updates := map[string]interface{}{
				"price":         override.OriginalPrice,
				"source":        override.OriginalSource,
				"is_overridden": false,
			}
			if err := tx.Model(&override.PricePoint).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to revert price point: %w", err)
			}
		}

		if err := tx.Unscoped().Delete(&override).Error; err != nil {
			return fmt.Errorf("failed to delete override: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	o.audit.Record(&actor.ID, models.AuditActionOverrideDelete, "price_override", &override.ID,
		snapshot, nil, meta)

	return nil
}

func (o *OverrideService) Get(overrideID uuid.UUID) (*models.PriceOverride, error) {
	var override models.PriceOverride
	if err := o.db.Preload("PricePoint").Preload("PricePoint.Commodity").Preload("Requester").
		First(&override, "id = ?", overrideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("override not found: %w", err)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &override, nil
}

type OverrideListParams struct {
	utils.PaginationParams
	Status      *models.OverrideStatus
	RequesterID *uuid.UUID
}

func (o *OverrideService) List(params OverrideListParams) ([]models.PriceOverride, int64, error) {
	query := o.db.Model(&models.PriceOverride{}).
		Preload("PricePoint").Preload("PricePoint.Commodity").Preload("Requester")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.RequesterID != nil {
		query = query.Where("requester_id = ?", *params.RequesterID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count overrides: %w", err)
	}

	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "status", "expires_at"})
	query = utils.ApplyPagination(query, params.PaginationParams)

	var overrides []models.PriceOverride
	if err := query.Find(&overrides).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch overrides: %w", err)
	}

	return overrides, total, nil
}
