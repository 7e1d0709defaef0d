// internal/services/import_service.go
package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hargapangan/pangan-backend/internal/models"
)

// Expected CSV header. Column order is fixed; unit and notes may be empty.
var importColumns = []string{"market_name", "commodity", "price", "date", "unit", "notes"}

const maxImportErrors = 10

type ImportService struct {
	db *gorm.DB
}

func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{db: db}
}

// ImportResult summarizes one bulk import: per-row failures accumulate and
// never abort the batch.
type ImportResult struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"` // first 10 only
}

// ImportReports reads market price reports from CSV. Commodity names are
// matched against the national registry first, then the custom registry; an
// unknown name becomes a new custom commodity owned by the importer.
func (s *ImportService) ImportReports(r io.Reader, importer *models.User) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read CSV header: %v", ErrValidationFailed, err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	line := 1

	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Failed++
			result.addError(line, err.Error())
			continue
		}

		if err := s.importRow(record, importer); err != nil {
			result.Failed++
			result.addError(line, err.Error())
			continue
		}
		result.Imported++
	}

	return result, nil
}

func (r *ImportResult) addError(line int, msg string) {
	if len(r.Errors) < maxImportErrors {
		r.Errors = append(r.Errors, fmt.Sprintf("line %d: %s", line, msg))
	}
}

func validateHeader(header []string) error {
	if len(header) != len(importColumns) {
		return fmt.Errorf("%w: expected %d columns, got %d", ErrValidationFailed, len(importColumns), len(header))
	}
	for i, col := range importColumns {
		if strings.TrimSpace(strings.ToLower(header[i])) != col {
			return fmt.Errorf("%w: column %d must be %q", ErrValidationFailed, i+1, col)
		}
	}
	return nil
}

func (s *ImportService) importRow(record []string, importer *models.User) error {
	if len(record) != len(importColumns) {
		return fmt.Errorf("expected %d fields, got %d", len(importColumns), len(record))
	}

	marketName := strings.TrimSpace(record[0])
	commodityName := strings.TrimSpace(record[1])
	if marketName == "" || commodityName == "" {
		return errors.New("market_name and commodity are required")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return fmt.Errorf("invalid price %q", record[2])
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("price must be positive, got %s", price)
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(record[3]))
	if err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD", record[3])
	}

	unit := strings.TrimSpace(record[4])
	notes := strings.TrimSpace(record[5])

	report := models.MarketPriceReport{
		MarketName: marketName,
		Price:      price,
		ReportDate: models.DateOnly(date),
		Notes:      notes,
		ReporterID: importer.ID,
		Status:     models.ReportStatusPending,
	}

	var national models.Commodity
	err = s.db.Where("LOWER(name) = ?", strings.ToLower(commodityName)).First(&national).Error
	switch {
	case err == nil:
		report.CommoditySource = models.CommoditySourceNational
		report.NationalCommodityID = &national.ID
	case errors.Is(err, gorm.ErrRecordNotFound):
		custom, err := s.findOrCreateCustom(commodityName, unit, importer)
		if err != nil {
			return err
		}
		report.CommoditySource = models.CommoditySourceCustom
		report.CustomCommodityID = &custom.ID
	default:
		return fmt.Errorf("commodity lookup failed: %v", err)
	}

	if err := s.db.Create(&report).Error; err != nil {
		return fmt.Errorf("failed to store report: %v", err)
	}

	return nil
}

func (s *ImportService) findOrCreateCustom(name, unit string, importer *models.User) (*models.CustomCommodity, error) {
	var custom models.CustomCommodity
	err := s.db.Where("LOWER(name) = ?", strings.ToLower(name)).First(&custom).Error
	if err == nil {
		return &custom, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("custom commodity lookup failed: %v", err)
	}

	custom = models.CustomCommodity{
		Name:      name,
		Unit:      unit,
		CreatedBy: importer.ID,
	}
	if err := s.db.Create(&custom).Error; err != nil {
		return nil, fmt.Errorf("failed to create custom commodity: %v", err)
	}
	return &custom, nil
}
