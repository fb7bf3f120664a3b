package services

import (
	"context"

	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/repository"
	"github.com/careerpoint/institute-api/pkg/logger"
)

// AuditService records state mutations. Failures are logged and swallowed;
// an audit write never fails the operation it describes.
type AuditService struct {
	repos *repository.Repositories
}

// NewAuditService creates a new audit service
func NewAuditService(repos *repository.Repositories) *AuditService {
	return &AuditService{repos: repos}
}

// Record writes an audit log entry
func (s *AuditService) Record(ctx context.Context, userID *uint, action, entityType string, entityID uint, details string) {
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		entry.IPAddress = ip
	}
	if err := s.repos.AuditLog.Create(ctx, entry); err != nil {
		logger.Error("failed to write audit log",
			"action", action,
			"entity_type", entityType,
			"entity_id", entityID,
			"error", err)
	}
}

// List returns audit entries, newest first, optionally filtered by entity
func (s *AuditService) List(ctx context.Context, entityType string, entityID uint, query repository.ListQuery) ([]models.AuditLog, int64, error) {
	return s.repos.AuditLog.List(ctx, entityType, entityID, query)
}

type contextKey string

// ContextKeyClientIP carries the request origin IP into services
const ContextKeyClientIP contextKey = "client_ip"
