package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/repository"
)

// CreateCourseInput carries the fields for a new course
type CreateCourseInput struct {
	Name           string
	Code           string
	Description    string
	DurationMonths int
	Fee            decimal.Decimal
	AdmissionFee   decimal.Decimal
}

// UpdateCourseInput carries the editable course fields
type UpdateCourseInput struct {
	Name           *string
	Code           *string
	Description    *string
	DurationMonths *int
	Fee            *decimal.Decimal
	AdmissionFee   *decimal.Decimal
	IsActive       *bool
}

// CourseService manages the course catalogue
type CourseService struct {
	repos *repository.Repositories
	audit *AuditService
}

// NewCourseService creates a new course service
func NewCourseService(repos *repository.Repositories, audit *AuditService) *CourseService {
	return &CourseService{repos: repos, audit: audit}
}

// Create adds a course to the catalogue
func (s *CourseService) Create(ctx context.Context, actorID *uint, input CreateCourseInput) (*models.Course, error) {
	if input.Name == "" {
		return nil, ValidationError("course name is required")
	}
	if input.Fee.IsNegative() || input.AdmissionFee.IsNegative() {
		return nil, ValidationError("fees cannot be negative")
	}
	if input.DurationMonths < 0 {
		return nil, ValidationError("duration cannot be negative")
	}

	if _, err := s.repos.Course.FindByName(ctx, input.Name); err == nil {
		return nil, ConflictError("course %q already exists", input.Name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	course := &models.Course{
		Name:           input.Name,
		Code:           input.Code,
		Description:    input.Description,
		DurationMonths: input.DurationMonths,
		Fee:            input.Fee,
		AdmissionFee:   input.AdmissionFee,
		IsActive:       true,
	}
	if err := s.repos.Course.Create(ctx, course); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, models.AuditActionCreate, "course", course.ID,
		fmt.Sprintf("course %q added", course.Name))
	return course, nil
}

// Get returns a course
func (s *CourseService) Get(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repos.Course.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return course, nil
}

// List returns courses matching the query
func (s *CourseService) List(ctx context.Context, query repository.ListQuery, activeOnly bool) ([]models.Course, int64, error) {
	return s.repos.Course.List(ctx, query, activeOnly)
}

// ListTrash returns soft-deleted courses
func (s *CourseService) ListTrash(ctx context.Context, query repository.ListQuery) ([]models.Course, int64, error) {
	return s.repos.Course.ListDeleted(ctx, query)
}

// Update edits a course. Fee changes only affect future enrollments;
// existing ones keep the figures they were created with.
func (s *CourseService) Update(ctx context.Context, actorID *uint, id uint, input UpdateCourseInput) (*models.Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.Deleted() {
		return nil, ValidationError("course %q is deleted", course.Name)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ValidationError("course name is required")
		}
		course.Name = *input.Name
	}
	if input.Code != nil {
		course.Code = *input.Code
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.DurationMonths != nil {
		if *input.DurationMonths < 0 {
			return nil, ValidationError("duration cannot be negative")
		}
		course.DurationMonths = *input.DurationMonths
	}
	if input.Fee != nil {
		if input.Fee.IsNegative() {
			return nil, ValidationError("fees cannot be negative")
		}
		course.Fee = *input.Fee
	}
	if input.AdmissionFee != nil {
		if input.AdmissionFee.IsNegative() {
			return nil, ValidationError("fees cannot be negative")
		}
		course.AdmissionFee = *input.AdmissionFee
	}
	if input.IsActive != nil {
		course.IsActive = *input.IsActive
	}

	if err := s.repos.Course.Update(ctx, course); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID, models.AuditActionUpdate, "course", course.ID,
		fmt.Sprintf("course %q updated", course.Name))
	return course, nil
}

// Delete soft-deletes a course. A course with active enrollments cannot go.
func (s *CourseService) Delete(ctx context.Context, actorID *uint, id uint) error {
	course, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if course.Deleted() {
		return nil
	}

	active, err := s.repos.Course.CountActiveEnrollments(ctx, course.ID)
	if err != nil {
		return err
	}
	if active > 0 {
		return ConflictError("course %q has %d active enrollments", course.Name, active)
	}

	course.MarkDeleted()
	if err := s.repos.Course.Update(ctx, course); err != nil {
		return err
	}
	s.audit.Record(ctx, actorID, models.AuditActionDelete, "course", course.ID,
		fmt.Sprintf("course %q moved to trash", course.Name))
	return nil
}

// Restore brings a soft-deleted course back
func (s *CourseService) Restore(ctx context.Context, actorID *uint, id uint) (*models.Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !course.Deleted() {
		return course, nil
	}
	course.Restore()
	if err := s.repos.Course.Update(ctx, course); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID, models.AuditActionRestore, "course", course.ID,
		fmt.Sprintf("course %q restored", course.Name))
	return course, nil
}
