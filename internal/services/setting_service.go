package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/repository"
)

// SettingService manages institute configuration
type SettingService struct {
	repos *repository.Repositories
	audit *AuditService
}

// NewSettingService creates a new setting service
func NewSettingService(repos *repository.Repositories, audit *AuditService) *SettingService {
	return &SettingService{repos: repos, audit: audit}
}

// GetAll returns every setting as a key/value map
func (s *SettingService) GetAll(ctx context.Context) (map[string]string, error) {
	return s.repos.Setting.GetAll(ctx)
}

// Get returns one setting value, empty when unset
func (s *SettingService) Get(ctx context.Context, key string) (string, error) {
	value, err := s.repos.Setting.Get(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return value, err
}

// Set upserts a batch of settings
func (s *SettingService) Set(ctx context.Context, actorID *uint, values map[string]string) error {
	if len(values) == 0 {
		return ValidationError("no settings provided")
	}
	for key, value := range values {
		if key == "" {
			return ValidationError("setting key cannot be empty")
		}
		if err := s.repos.Setting.Set(ctx, key, value); err != nil {
			return err
		}
	}
	s.audit.Record(ctx, actorID, models.AuditActionUpdate, "setting", 0, "institute settings updated")
	return nil
}

// DefaultAdmissionFee reads the configured default admission fee, zero
// when unset or unparseable.
func (s *SettingService) DefaultAdmissionFee(ctx context.Context) decimal.Decimal {
	raw, err := s.Get(ctx, models.SettingDefaultAdmissionFee)
	if err != nil || raw == "" {
		return decimal.Zero
	}
	fee, err := decimal.NewFromString(raw)
	if err != nil || fee.IsNegative() {
		return decimal.Zero
	}
	return fee
}

// InstituteProfile returns the identity fields receipts and statements
// print in their header.
func (s *SettingService) InstituteProfile(ctx context.Context) (name, address, phone, email string) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return "", "", "", ""
	}
	return all[models.SettingInstituteName],
		all[models.SettingInstituteAddress],
		all[models.SettingInstitutePhone],
		all[models.SettingInstituteEmail]
}
