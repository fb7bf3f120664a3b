package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/repository"
)

// CreateEnquiryInput carries the fields for a new enquiry
type CreateEnquiryInput struct {
	FullName       string
	Phone          string
	Email          *string
	CourseID       *uint
	ReferralSource string
	Message        string
	FollowUpDate   *time.Time
}

// UpdateEnquiryInput carries the editable enquiry fields
type UpdateEnquiryInput struct {
	FullName       *string
	Phone          *string
	Email          *string
	CourseID       *uint
	ReferralSource *string
	Message        *string
	Status         *string
	FollowUpDate   *time.Time
}

// EnquiryService manages prospective-student leads
type EnquiryService struct {
	repos    *repository.Repositories
	students *StudentService
	audit    *AuditService
	notifier *NotificationService
}

// NewEnquiryService creates a new enquiry service
func NewEnquiryService(repos *repository.Repositories, students *StudentService, audit *AuditService, notifier *NotificationService) *EnquiryService {
	return &EnquiryService{repos: repos, students: students, audit: audit, notifier: notifier}
}

// Create records a new enquiry and tells the admins about it
func (s *EnquiryService) Create(ctx context.Context, actorID *uint, input CreateEnquiryInput) (*models.Enquiry, error) {
	if input.FullName == "" {
		return nil, ValidationError("full name is required")
	}
	if input.Phone == "" {
		return nil, ValidationError("phone is required")
	}
	if input.CourseID != nil {
		if _, err := s.repos.Course.FindByID(ctx, *input.CourseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("course: %w", ErrNotFound)
			}
			return nil, err
		}
	}

	enquiry := &models.Enquiry{
		FullName:       input.FullName,
		Phone:          input.Phone,
		Email:          input.Email,
		CourseID:       input.CourseID,
		ReferralSource: input.ReferralSource,
		Message:        input.Message,
		Status:         models.EnquiryStatusNew,
		FollowUpDate:   input.FollowUpDate,
	}
	if err := s.repos.Enquiry.Create(ctx, enquiry); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, models.AuditActionCreate, "enquiry", enquiry.ID,
		fmt.Sprintf("enquiry from %s (%s)", enquiry.FullName, enquiry.Phone))
	s.notifier.NotifyAdmins(ctx, "New enquiry",
		fmt.Sprintf("%s enquired about admission (%s)", enquiry.FullName, enquiry.Phone),
		models.NotificationTypeNewEnquiry)
	return enquiry, nil
}

// Get returns an enquiry
func (s *EnquiryService) Get(ctx context.Context, id uint) (*models.Enquiry, error) {
	enquiry, err := s.repos.Enquiry.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return enquiry, nil
}

// List returns enquiries matching the query and optional status filter
func (s *EnquiryService) List(ctx context.Context, query repository.ListQuery, status string) ([]models.Enquiry, int64, error) {
	return s.repos.Enquiry.List(ctx, query, status)
}

// ListTrash returns soft-deleted enquiries
func (s *EnquiryService) ListTrash(ctx context.Context, query repository.ListQuery) ([]models.Enquiry, int64, error) {
	return s.repos.Enquiry.ListDeleted(ctx, query)
}

// Update edits an enquiry. A converted enquiry is frozen.
func (s *EnquiryService) Update(ctx context.Context, actorID *uint, id uint, input UpdateEnquiryInput) (*models.Enquiry, error) {
	enquiry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if enquiry.Deleted() {
		return nil, ValidationError("enquiry is deleted")
	}
	if enquiry.IsConverted() {
		return nil, ConflictError("enquiry has already been converted")
	}

	if input.FullName != nil {
		if *input.FullName == "" {
			return nil, ValidationError("full name is required")
		}
		enquiry.FullName = *input.FullName
	}
	if input.Phone != nil {
		enquiry.Phone = *input.Phone
	}
	if input.Email != nil {
		enquiry.Email = input.Email
	}
	if input.CourseID != nil {
		enquiry.CourseID = input.CourseID
	}
	if input.ReferralSource != nil {
		enquiry.ReferralSource = *input.ReferralSource
	}
	if input.Message != nil {
		enquiry.Message = *input.Message
	}
	if input.Status != nil {
		switch *input.Status {
		case models.EnquiryStatusNew, models.EnquiryStatusFollowUp, models.EnquiryStatusClosed:
			enquiry.Status = *input.Status
		case models.EnquiryStatusConverted:
			return nil, ValidationError("use the convert operation to convert an enquiry")
		default:
			return nil, ValidationError("unknown enquiry status %q", *input.Status)
		}
	}
	if input.FollowUpDate != nil {
		enquiry.FollowUpDate = input.FollowUpDate
	}

	if err := s.repos.Enquiry.Update(ctx, enquiry); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID, models.AuditActionUpdate, "enquiry", enquiry.ID, "enquiry updated")
	return enquiry, nil
}

// Convert turns an enquiry into an admitted student, carrying the contact
// details over and stamping the enquiry with the resulting student.
func (s *EnquiryService) Convert(ctx context.Context, actorID *uint, id uint) (*models.Enquiry, *models.Student, error) {
	enquiry, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if enquiry.Deleted() {
		return nil, nil, ValidationError("enquiry is deleted")
	}
	if enquiry.IsConverted() {
		return nil, nil, ConflictError("enquiry has already been converted")
	}

	first, last := splitName(enquiry.FullName)
	student, err := s.students.Create(ctx, actorID, CreateStudentInput{
		FirstName:      first,
		LastName:       last,
		Email:          enquiry.Email,
		Phone:          enquiry.Phone,
		ReferralSource: enquiry.ReferralSource,
	})
	if err != nil {
		return nil, nil, err
	}

	enquiry.Status = models.EnquiryStatusConverted
	enquiry.ConvertedID = &student.ID
	if err := s.repos.Enquiry.Update(ctx, enquiry); err != nil {
		return nil, nil, err
	}

	s.audit.Record(ctx, actorID, models.AuditActionUpdate, "enquiry", enquiry.ID,
		fmt.Sprintf("converted to student %d", student.StudentID))
	return enquiry, student, nil
}

// ResolveReference looks up the student an enquirer named as their
// reference, by registration number or by name, together with that
// student's enrollments.
func (s *EnquiryService) ResolveReference(ctx context.Context, ref string) (*models.Student, []models.Enrollment, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil, ValidationError("reference is required")
	}

	var student *models.Student
	if num, err := strconv.ParseInt(ref, 10, 64); err == nil {
		found, err := s.repos.Student.FindByStudentID(ctx, num)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrNotFound
			}
			return nil, nil, err
		}
		student = found
	} else {
		matches, _, err := s.repos.Student.List(ctx, repository.ListQuery{Page: 1, PerPage: 1, Search: ref})
		if err != nil {
			return nil, nil, err
		}
		if len(matches) == 0 {
			return nil, nil, ErrNotFound
		}
		student = &matches[0]
	}

	enrollments, err := s.repos.Enrollment.ListByStudent(ctx, student.ID, false)
	if err != nil {
		return nil, nil, err
	}
	return student, enrollments, nil
}

// Delete soft-deletes an enquiry
func (s *EnquiryService) Delete(ctx context.Context, actorID *uint, id uint) error {
	enquiry, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if enquiry.Deleted() {
		return nil
	}
	enquiry.MarkDeleted()
	if err := s.repos.Enquiry.Update(ctx, enquiry); err != nil {
		return err
	}
	s.audit.Record(ctx, actorID, models.AuditActionDelete, "enquiry", enquiry.ID,
		fmt.Sprintf("enquiry from %s moved to trash", enquiry.FullName))
	return nil
}

// Restore brings a soft-deleted enquiry back
func (s *EnquiryService) Restore(ctx context.Context, actorID *uint, id uint) (*models.Enquiry, error) {
	enquiry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !enquiry.Deleted() {
		return enquiry, nil
	}
	enquiry.Restore()
	if err := s.repos.Enquiry.Update(ctx, enquiry); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID, models.AuditActionRestore, "enquiry", enquiry.ID,
		fmt.Sprintf("enquiry from %s restored", enquiry.FullName))
	return enquiry, nil
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return full, ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
