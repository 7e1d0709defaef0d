// internal/services/commodity_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hargapangan/pangan-backend/internal/models"
	"github.com/hargapangan/pangan-backend/internal/panelharga"
	"github.com/hargapangan/pangan-backend/internal/utils"
)

type CommodityService struct {
	db *gorm.DB
}

func NewCommodityService(db *gorm.DB) *CommodityService {
	return &CommodityService{db: db}
}

// categoryKeywords drives the name classifier, checked in order. The table
// is load-bearing for downstream consumers ("ikan" deliberately lands in
// daging); do not "fix" entries without coordinating a data migration.
var categoryKeywords = []struct {
	keyword  string
	category models.CommodityCategory
}{
	{"beras", models.CategoryBeras},
	{"bawang", models.CategoryBumbu},
	{"cabai", models.CategoryBumbu},
	{"cabe", models.CategoryBumbu},
	{"daging", models.CategoryDaging},
	{"ayam", models.CategoryDaging},
	{"telur", models.CategoryDaging},
	{"ikan", models.CategoryDaging},
	{"jagung", models.CategorySayuran},
	{"kedelai", models.CategorySayuran},
}

// ClassifyCategory derives a category from the commodity name. Only used at
// creation time; categories never change automatically afterwards.
func ClassifyCategory(name string) models.CommodityCategory {
	lower := strings.ToLower(name)
	for _, entry := range categoryKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.category
		}
	}
	return models.CategoryLainnya
}

// Resolve finds or creates the local commodity for an external snapshot.
// On re-sighting, mutable display fields (name, unit, icon) are refreshed
// when the upstream values changed.
func (s *CommodityService) Resolve(snapshot *panelharga.Snapshot) (*models.Commodity, error) {
	if snapshot.ID == 0 || snapshot.Name == "" {
		return nil, fmt.Errorf("%w: snapshot missing id or name", ErrValidationFailed)
	}

	var commodity models.Commodity
	err := s.db.Where("external_id = ?", snapshot.ID).First(&commodity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		externalID := snapshot.ID
		commodity = models.Commodity{
			ExternalID: &externalID,
			Name:       snapshot.Name,
			Unit:       snapshot.Unit,
			Category:   ClassifyCategory(snapshot.Name),
			IconURL:    snapshot.IconURL,
			IsActive:   true,
		}
		if err := s.db.Create(&commodity).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a find-or-create race; the row exists now.
				if err := s.db.Where("external_id = ?", snapshot.ID).First(&commodity).Error; err != nil {
					return nil, fmt.Errorf("failed to re-fetch commodity: %w", err)
				}
				return &commodity, nil
			}
			return nil, fmt.Errorf("failed to create commodity: %w", err)
		}
		return &commodity, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if snapshot.Name != commodity.Name {
		updates["name"] = snapshot.Name
	}
	if snapshot.Unit != "" && snapshot.Unit != commodity.Unit {
		updates["unit"] = snapshot.Unit
	}
	if snapshot.IconURL != "" && snapshot.IconURL != commodity.IconURL {
		updates["icon_url"] = snapshot.IconURL
	}

	if len(updates) > 0 {
		if err := s.db.Model(&commodity).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to refresh commodity: %w", err)
		}
	}

	return &commodity, nil
}

type CreateCommodityRequest struct {
	Name     string                   `json:"name" validate:"required,min=2,max=255"`
	Unit     string                   `json:"unit" validate:"required,max=50"`
	Category models.CommodityCategory `json:"category,omitempty"`
	IconURL  string                   `json:"icon_url,omitempty" validate:"omitempty,url"`
}

type UpdateCommodityRequest struct {
	Name     string                   `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Unit     string                   `json:"unit,omitempty" validate:"omitempty,max=50"`
	Category models.CommodityCategory `json:"category,omitempty"`
	IconURL  string                   `json:"icon_url,omitempty" validate:"omitempty,url"`
	IsActive *bool                    `json:"is_active,omitempty"`
}

func (s *CommodityService) Create(req *CreateCommodityRequest) (*models.Commodity, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	category := req.Category
	if category == "" {
		category = ClassifyCategory(req.Name)
	}

	commodity := &models.Commodity{
		Name:     req.Name,
		Unit:     req.Unit,
		Category: category,
		IconURL:  req.IconURL,
		IsActive: true,
	}

	if err := s.db.Create(commodity).Error; err != nil {
		return nil, fmt.Errorf("failed to create commodity: %w", err)
	}

	return commodity, nil
}

func (s *CommodityService) Get(id uuid.UUID) (*models.Commodity, error) {
	var commodity models.Commodity
	if err := s.db.First(&commodity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommodityNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &commodity, nil
}

func (s *CommodityService) List(params utils.PaginationParams, includeInactive bool) ([]models.Commodity, int64, error) {
	query := s.db.Model(&models.Commodity{})

	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count commodities: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "category"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var commodities []models.Commodity
	if err := query.Find(&commodities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch commodities: %w", err)
	}

	return commodities, total, nil
}

func (s *CommodityService) Update(id uuid.UUID, req *UpdateCommodityRequest) (*models.Commodity, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	commodity, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Unit != "" {
		updates["unit"] = req.Unit
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.IconURL != "" {
		updates["icon_url"] = req.IconURL
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(commodity).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update commodity: %w", err)
		}
	}

	return commodity, nil
}

// Deactivate retires a commodity. Rows are never hard-deleted: the ledger
// keeps referencing them.
func (s *CommodityService) Deactivate(id uuid.UUID) error {
	commodity, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := s.db.Model(commodity).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to deactivate commodity: %w", err)
	}

	return nil
}

type CreateCustomCommodityRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
	Unit string `json:"unit" validate:"required,max=50"`
}

func (s *CommodityService) CreateCustom(creatorID uuid.UUID, req *CreateCustomCommodityRequest) (*models.CustomCommodity, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	custom := &models.CustomCommodity{
		Name:      req.Name,
		Unit:      req.Unit,
		CreatedBy: creatorID,
	}

	if err := s.db.Create(custom).Error; err != nil {
		return nil, fmt.Errorf("failed to create custom commodity: %w", err)
	}

	return custom, nil
}

func (s *CommodityService) GetCustom(id uuid.UUID) (*models.CustomCommodity, error) {
	var custom models.CustomCommodity
	if err := s.db.First(&custom, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommodityNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &custom, nil
}

func (s *CommodityService) ListCustom(params utils.PaginationParams) ([]models.CustomCommodity, int64, error) {
	query := s.db.Model(&models.CustomCommodity{})

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count custom commodities: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "name"})
	query = utils.ApplyPagination(query, params)

	var customs []models.CustomCommodity
	if err := query.Find(&customs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch custom commodities: %w", err)
	}

	return customs, total, nil
}
