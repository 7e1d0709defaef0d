// internal/models/commodity.go
package models

import (
	"github.com/google/uuid"
)

// Commodity is the national registry entry for a food commodity tracked by
// the price panel. Rows are created the first time an external id is seen
// and are never hard-deleted; retirement flips is_active.
type Commodity struct {
	BaseModel
	ExternalID *int64            `json:"external_id" gorm:"uniqueIndex;index"`
	Name       string            `json:"name" gorm:"size:255;not null"`
	Unit       string            `json:"unit" gorm:"size:50"`
	Category   CommodityCategory `json:"category" gorm:"type:varchar(20);not null;default:'lainnya';index"`
	IconURL    string            `json:"icon_url" gorm:"size:512"`
	IsActive   bool              `json:"is_active" gorm:"default:true;index"`

	// Relationships
	PricePoints []PricePoint `json:"price_points,omitempty" gorm:"foreignKey:CommodityID"`
}

// CustomCommodity is the user-defined registry for commodities that do not
// exist in the national panel (local produce, market-specific goods).
type CustomCommodity struct {
	BaseModel
	Name      string    `json:"name" gorm:"size:255;not null;index"`
	Unit      string    `json:"unit" gorm:"size:50"`
	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null;index"`

	Creator User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

type Region struct {
	BaseModel
	ProvinceID int    `json:"province_id" gorm:"not null;index"`
	CityID     int    `json:"city_id" gorm:"not null;index"`
	Name       string `json:"name" gorm:"size:255;not null"`
}
