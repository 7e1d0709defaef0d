// internal/models/price.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricePoint is one ledger row: the price of a commodity on a calendar
// date, at a region and supply-chain level, from one source. At most one
// api-sourced row exists per (commodity, date, region, level); a row with
// IsOverridden set carries a manual correction and is never overwritten by
// the sync engine while it stands.
type PricePoint struct {
	BaseModel
	CommodityID  uuid.UUID       `json:"commodity_id" gorm:"type:uuid;not null;index:idx_price_points_lookup"`
	RegionID     *uuid.UUID      `json:"region_id" gorm:"type:uuid;index"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(15,2);not null"`
	Date         time.Time       `json:"date" gorm:"type:date;not null;index:idx_price_points_lookup"`
	Source       PriceSource     `json:"source" gorm:"type:varchar(10);not null;default:'api';index"`
	IsOverridden bool            `json:"is_overridden" gorm:"default:false;index"`
	Level        PriceLevel      `json:"level" gorm:"type:varchar(10);not null;default:'retail'"`

	// Relationships
	Commodity Commodity `json:"commodity,omitempty" gorm:"foreignKey:CommodityID"`
	Region    *Region   `json:"region,omitempty" gorm:"foreignKey:RegionID"`
}

// PriceHistory is an append-only trail of ledger mutations, written
// whenever reconciliation or an override changes a stored price.
type PriceHistory struct {
	BaseModel
	PricePointID uuid.UUID       `json:"price_point_id" gorm:"type:uuid;not null;index"`
	CommodityID  uuid.UUID       `json:"commodity_id" gorm:"type:uuid;not null;index"`
	OldPrice     decimal.Decimal `json:"old_price" gorm:"type:decimal(15,2)"`
	NewPrice     decimal.Decimal `json:"new_price" gorm:"type:decimal(15,2);not null"`
	ChangePct    float64         `json:"change_pct"`
	Reason       string          `json:"reason" gorm:"size:255"`
	Source       PriceSource     `json:"source" gorm:"type:varchar(10);not null"`
}
