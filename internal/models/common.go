// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// DateOnly truncates a timestamp to its calendar date (UTC midnight).
// Price rows are keyed by calendar date, never by time of day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleOfficer UserRole = "officer"
	UserRoleUser    UserRole = "user"
)

// Elevated roles may apply price overrides without a second approver.
func (r UserRole) IsElevated() bool {
	return r == UserRoleAdmin || r == UserRoleOfficer
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type CommodityCategory string

const (
	CategoryBeras   CommodityCategory = "beras"
	CategoryBumbu   CommodityCategory = "bumbu"
	CategoryDaging  CommodityCategory = "daging"
	CategorySayuran CommodityCategory = "sayuran"
	CategoryLainnya CommodityCategory = "lainnya"
)

type PriceSource string

const (
	PriceSourceAPI    PriceSource = "api"
	PriceSourceManual PriceSource = "manual"
)

// PriceLevel is the supply-chain stage a price is quoted at.
type PriceLevel string

const (
	PriceLevelProducer  PriceLevel = "producer"
	PriceLevelWholesale PriceLevel = "wholesale"
	PriceLevelRetail    PriceLevel = "retail"
	PriceLevelConsumer  PriceLevel = "consumer"
)

// LevelID maps a price level to the upstream API's level_harga_id.
func (l PriceLevel) LevelID() int {
	switch l {
	case PriceLevelProducer:
		return 1
	case PriceLevelWholesale:
		return 2
	case PriceLevelRetail:
		return 3
	case PriceLevelConsumer:
		return 4
	}
	return 0
}

func (l PriceLevel) Valid() bool {
	return l.LevelID() != 0
}

// AllPriceLevels lists every level the sync pipeline covers per cycle.
func AllPriceLevels() []PriceLevel {
	return []PriceLevel{PriceLevelProducer, PriceLevelWholesale, PriceLevelRetail, PriceLevelConsumer}
}

type OverrideStatus string

const (
	OverrideStatusPending  OverrideStatus = "pending"
	OverrideStatusApproved OverrideStatus = "approved"
	OverrideStatusRejected OverrideStatus = "rejected"
)

// CommoditySource tags which registry a market report's commodity
// reference lives in: the national registry synced from the price API,
// or the user-defined custom registry.
type CommoditySource string

const (
	CommoditySourceNational CommoditySource = "national"
	CommoditySourceCustom   CommoditySource = "custom"
)

type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusVerified ReportStatus = "verified"
	ReportStatusRejected ReportStatus = "rejected"
)
