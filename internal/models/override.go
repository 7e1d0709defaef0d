// internal/models/override.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceOverride is a manually submitted price correction against an
// existing ledger row. The original price and source are snapshotted at
// creation so a deletion can revert the ledger exactly.
type PriceOverride struct {
	BaseModel
	PricePointID   uuid.UUID       `json:"price_point_id" gorm:"type:uuid;not null;index"`
	OriginalPrice  decimal.Decimal `json:"original_price" gorm:"type:decimal(15,2);not null"`
	OriginalSource PriceSource     `json:"original_source" gorm:"type:varchar(10);not null"`
	RequestedPrice decimal.Decimal `json:"requested_price" gorm:"type:decimal(15,2);not null"`
	Reason         string          `json:"reason" gorm:"type:text;not null"`
	EvidencePath   string          `json:"evidence_path,omitempty" gorm:"size:512"`
	RequesterID    uuid.UUID       `json:"requester_id" gorm:"type:uuid;not null;index"`
	ApproverID     *uuid.UUID      `json:"approver_id" gorm:"type:uuid"`
	Status         OverrideStatus  `json:"status" gorm:"type:varchar(10);not null;default:'pending';index"`
	ExpiresAt      time.Time       `json:"expires_at" gorm:"not null"`

	// Relationships
	PricePoint PricePoint `json:"price_point,omitempty" gorm:"foreignKey:PricePointID"`
	Requester  User       `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	Approver   *User      `json:"approver,omitempty" gorm:"foreignKey:ApproverID"`
}

// DeltaPct is the relative size of the requested correction, in percent of
// the original price. Corrections above 50% need a non-self approver unless
// the requester holds an elevated role.
func (o *PriceOverride) DeltaPct() float64 {
	if o.OriginalPrice.IsZero() {
		return 0
	}
	delta := o.RequestedPrice.Sub(o.OriginalPrice).Abs()
	pct, _ := delta.Div(o.OriginalPrice).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

func (o *PriceOverride) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
