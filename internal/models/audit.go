// internal/models/audit.go
package models

import (
	"github.com/google/uuid"
)

// AuditLog is append-only. Rows are never updated or deleted.
type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	OldValues    JSONB      `json:"old_values" gorm:"type:jsonb"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Audit action tags
const (
	AuditActionLogin          = "LOGIN"
	AuditActionLoginFailed    = "LOGIN_FAILED"
	AuditActionOverrideCreate = "CREATE_OVERRIDE"
	AuditActionOverrideDecide = "DECIDE_OVERRIDE"
	AuditActionOverrideDelete = "DELETE_OVERRIDE"
	AuditActionReportVerify   = "VERIFY_REPORT"
	AuditActionReportDelete   = "DELETE_REPORT"
	AuditActionSyncTrigger    = "TRIGGER_SYNC"
	AuditActionImport         = "IMPORT_REPORTS"
)
