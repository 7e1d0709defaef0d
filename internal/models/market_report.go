// internal/models/market_report.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// MarketPriceReport is a user-submitted price observation from a physical
// market. The commodity reference is a tagged union: exactly one of
// NationalCommodityID / CustomCommodityID is set, selected by
// CommoditySource.
type MarketPriceReport struct {
	BaseModel
	MarketName          string          `json:"market_name" gorm:"size:255;not null;index"`
	Location            string          `json:"location" gorm:"size:255"`
	RegionID            *uuid.UUID      `json:"region_id" gorm:"type:uuid;index"`
	CommoditySource     CommoditySource `json:"commodity_source" gorm:"type:varchar(10);not null;index"`
	NationalCommodityID *uuid.UUID      `json:"national_commodity_id" gorm:"type:uuid;index"`
	CustomCommodityID   *uuid.UUID      `json:"custom_commodity_id" gorm:"type:uuid;index"`
	Price               decimal.Decimal `json:"price" gorm:"type:decimal(15,2);not null"`
	ReportDate          time.Time       `json:"report_date" gorm:"type:date;not null;index"`
	QualityGrade        string          `json:"quality_grade,omitempty" gorm:"size:20"`
	Notes               string          `json:"notes,omitempty" gorm:"type:text"`
	PrimaryImage        string          `json:"primary_image,omitempty" gorm:"size:512"`
	Images              pq.StringArray  `json:"images,omitempty" gorm:"type:text[]"`
	ReporterID          uuid.UUID       `json:"reporter_id" gorm:"type:uuid;not null;index"`
	Status              ReportStatus    `json:"status" gorm:"type:varchar(10);not null;default:'pending';index"`
	VerifiedBy          *uuid.UUID      `json:"verified_by" gorm:"type:uuid"`

	// Relationships
	Reporter          User             `json:"reporter,omitempty" gorm:"foreignKey:ReporterID"`
	NationalCommodity *Commodity       `json:"national_commodity,omitempty" gorm:"foreignKey:NationalCommodityID"`
	CustomCommodity   *CustomCommodity `json:"custom_commodity,omitempty" gorm:"foreignKey:CustomCommodityID"`
	Region            *Region          `json:"region,omitempty" gorm:"foreignKey:RegionID"`
}

// AllImages returns the primary image followed by the ordered extras.
func (r *MarketPriceReport) AllImages() []string {
	var images []string
	if r.PrimaryImage != "" {
		images = append(images, r.PrimaryImage)
	}
	return append(images, r.Images...)
}
