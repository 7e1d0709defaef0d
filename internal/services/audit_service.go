// internal/services/audit_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/hargapangan/pangan-backend/internal/models"
	"github.com/hargapangan/pangan-backend/internal/utils"
)

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// RequestMeta carries caller metadata handlers extract from the request.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// Record appends one audit entry. Failures are logged, never propagated:
// auditing must not fail the operation being audited.
func (s *AuditService) Record(userID *uuid.UUID, action, resourceType string, resourceID *uuid.UUID, oldValues, newValues map[string]interface{}, meta RequestMeta) {
	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    models.JSONB(oldValues),
		NewValues:    models.JSONB(newValues),
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":        action,
			"resource_type": resourceType,
		}).Error("Failed to write audit log entry")
	}
}

type AuditListParams struct {
	utils.PaginationParams
	UserID       *uuid.UUID
	Action       string
	ResourceType string
}

func (s *AuditService) List(params AuditListParams) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{}).Preload("User")

	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Action != "" {
		query = query.Where("action = ?", params.Action)
	}
	if params.ResourceType != "" {
		query = query.Where("resource_type = ?", params.ResourceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "action"})
	query = utils.ApplyPagination(query, params.PaginationParams)

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	return logs, total, nil
}
