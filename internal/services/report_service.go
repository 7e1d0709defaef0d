// internal/services/report_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hargapangan/pangan-backend/internal/models"
	"github.com/hargapangan/pangan-backend/internal/utils"
)

type ReportService struct {
	db      *gorm.DB
	storage *StorageService
	audit   *AuditService
}

func NewReportService(db *gorm.DB, storage *StorageService, audit *AuditService) *ReportService {
	return &ReportService{db: db, storage: storage, audit: audit}
}

type CreateReportRequest struct {
	MarketName      string                 `json:"market_name" validate:"required,min=2,max=255"`
	Location        string                 `json:"location,omitempty" validate:"omitempty,max=255"`
	RegionID        *uuid.UUID             `json:"region_id,omitempty"`
	CommoditySource models.CommoditySource `json:"commodity_source" validate:"required"`
	CommodityID     uuid.UUID              `json:"commodity_id" validate:"required"`
	Price           decimal.Decimal        `json:"price" validate:"required"`
	ReportDate      time.Time              `json:"report_date" validate:"required"`
	QualityGrade    string                 `json:"quality_grade,omitempty" validate:"omitempty,max=20"`
	Notes           string                 `json:"notes,omitempty"`
}

type UpdateReportRequest struct {
	MarketName   string           `json:"market_name,omitempty" validate:"omitempty,min=2,max=255"`
	Location     string           `json:"location,omitempty" validate:"omitempty,max=255"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	QualityGrade string           `json:"quality_grade,omitempty" validate:"omitempty,max=20"`
	Notes        string           `json:"notes,omitempty"`
}

// Create stores a market observation. The commodity reference is resolved
// through the registry named by the source tag; the two variants never mix.
func (s *ReportService) Create(reporterID uuid.UUID, req *CreateReportRequest) (*models.MarketPriceReport, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if req.Price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidationFailed)
	}

	report := &models.MarketPriceReport{
		MarketName:      req.MarketName,
		Location:        req.Location,
		RegionID:        req.RegionID,
		CommoditySource: req.CommoditySource,
		Price:           req.Price,
		ReportDate:      models.DateOnly(req.ReportDate),
		QualityGrade:    req.QualityGrade,
		Notes:           req.Notes,
		ReporterID:      reporterID,
		Status:          models.ReportStatusPending,
	}

	switch req.CommoditySource {
	case models.CommoditySourceNational:
		var commodity models.Commodity
		if err := s.db.First(&commodity, "id = ?", req.CommodityID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCommodityNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		report.NationalCommodityID = &commodity.ID
	case models.CommoditySourceCustom:
		var custom models.CustomCommodity
		if err := s.db.First(&custom, "id = ?", req.CommodityID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCommodityNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		report.CustomCommodityID = &custom.ID
	default:
		return nil, fmt.Errorf("%w: unknown commodity source %q", ErrValidationFailed, req.CommoditySource)
	}

	if err := s.db.Create(report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	return report, nil
}

func (s *ReportService) Get(id uuid.UUID) (*models.MarketPriceReport, error) {
	var report models.MarketPriceReport
	if err := s.db.Preload("Reporter").Preload("NationalCommodity").Preload("CustomCommodity").
		First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("report not found: %w", err)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &report, nil
}

type ReportListParams struct {
	utils.PaginationParams
	ReporterID *uuid.UUID
	Status     *models.ReportStatus
	MarketName string
}

func (s *ReportService) List(params ReportListParams) ([]models.MarketPriceReport, int64, error) {
	query := s.db.Model(&models.MarketPriceReport{}).
		Preload("Reporter").Preload("NationalCommodity").Preload("CustomCommodity")

	if params.ReporterID != nil {
		query = query.Where("reporter_id = ?", *params.ReporterID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.MarketName != "" {
		query = query.Where("LOWER(market_name) LIKE ?", "%"+strings.ToLower(params.MarketName)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "report_date", "market_name", "status"})
	query = utils.ApplyPagination(query, params.PaginationParams)

	var reports []models.MarketPriceReport
	if err := query.Find(&reports).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reports: %w", err)
	}

	return reports, total, nil
}

// Update edits a report in place. Only the reporter or an admin may edit.
func (s *ReportService) Update(id uuid.UUID, actor *models.User, req *UpdateReportRequest) (*models.MarketPriceReport, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	report, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if report.ReporterID != actor.ID && actor.Role != models.UserRoleAdmin {
		return nil, errors.New("unauthorized to update this report")
	}

	updates := make(map[string]interface{})
	if req.MarketName != "" {
		updates["market_name"] = req.MarketName
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.Price != nil && req.Price.GreaterThan(decimal.Zero) {
		updates["price"] = *req.Price
	}
	if req.QualityGrade != "" {
		updates["quality_grade"] = req.QualityGrade
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(report).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update report: %w", err)
		}
	}

	return report, nil
}

// AddImage attaches an uploaded evidence image. The first image becomes the
// primary; later ones append to the ordered extras.
func (s *ReportService) AddImage(id uuid.UUID, actor *models.User, imagePath string) (*models.MarketPriceReport, error) {
	report, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if report.ReporterID != actor.ID && actor.Role != models.UserRoleAdmin {
		return nil, errors.New("unauthorized to modify this report")
	}

	if report.PrimaryImage == "" {
		err = s.db.Model(report).Update("primary_image", imagePath).Error
	} else {
		err = s.db.Model(report).Update("images", append(report.Images, imagePath)).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to attach image: %w", err)
	}

	return s.Get(id)
}

// RemoveImage detaches an image and deletes the stored file.
func (s *ReportService) RemoveImage(id uuid.UUID, actor *models.User, imagePath string) (*models.MarketPriceReport, error) {
	report, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if report.ReporterID != actor.ID && actor.Role != models.UserRoleAdmin {
		return nil, errors.New("unauthorized to modify this report")
	}

	updates := make(map[string]interface{})
	if report.PrimaryImage == imagePath {
		updates["primary_image"] = ""
	} else {
		kept := report.Images[:0]
		found := false
		for _, img := range report.Images {
			if img == imagePath {
				found = true
				continue
			}
			kept = append(kept, img)
		}
		if !found {
			return nil, fmt.Errorf("image not attached to report")
		}
		updates["images"] = kept
	}

	if err := s.db.Model(report).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to detach image: %w", err)
	}

	if s.storage != nil {
		if err := s.storage.DeleteFile(imagePath); err != nil {
			return nil, fmt.Errorf("failed to delete image file: %w", err)
		}
	}

	return s.Get(id)
}

// Delete removes a report together with its image files.
func (s *ReportService) Delete(id uuid.UUID, actor *models.User, meta RequestMeta) error {
	report, err := s.Get(id)
	if err != nil {
		return err
	}

	if report.ReporterID != actor.ID && actor.Role != models.UserRoleAdmin {
		return errors.New("unauthorized to delete this report")
	}

	snapshot := map[string]interface{}{
		"market_name": report.MarketName,
		"price":       report.Price.String(),
		"report_date": report.ReportDate.Format("2006-01-02"),
		"status":      string(report.Status),
	}

	if err := s.db.Delete(report).Error; err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	if s.storage != nil {
		for _, img := range report.AllImages() {
			if err := s.storage.DeleteFile(img); err != nil {
				return fmt.Errorf("failed to delete image file: %w", err)
			}
		}
	}

	s.audit.Record(&actor.ID, models.AuditActionReportDelete, "market_price_report", &report.ID, snapshot, nil, meta)

	return nil
}

// Verify moves a pending report to verified or rejected.
func (s *ReportService) Verify(id uuid.UUID, verifier *models.User, approve bool, meta RequestMeta) (*models.MarketPriceReport, error) {
	report, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if report.Status != models.ReportStatusPending {
		return nil, ErrAlreadyProcessed
	}

	status := models.ReportStatusRejected
	if approve {
		status = models.ReportStatusVerified
	}

	if err := s.db.Model(report).Updates(map[string]interface{}{
		"status":      status,
		"verified_by": verifier.ID,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to verify report: %w", err)
	}
	report.Status = status

	s.audit.Record(&verifier.ID, models.AuditActionReportVerify, "market_price_report", &report.ID,
		map[string]interface{}{"status": string(models.ReportStatusPending)},
		map[string]interface{}{"status": string(status)}, meta)

	return report, nil
}
