package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/repository"
	"github.com/careerpoint/institute-api/pkg/logger"
)

// Student id sequence seed. The first admitted student gets 25010001.
const studentIDSeed = 25010001

// CreateStudentInput carries the fields for a new student
type CreateStudentInput struct {
	FirstName      string
	LastName       string
	Email          *string
	Phone          string
	AltPhone       string
	DateOfBirth    *time.Time
	Gender         string
	Address        string
	City           string
	State          string
	Pincode        string
	GuardianName   string
	GuardianPhone  string
	Qualification  string
	ReferralSource string
	ReferredByID   *uint
	ReferredByName string
	AdmissionDate  time.Time
}

// UpdateStudentInput carries the editable student fields. Pointers
// distinguish "leave alone" from "clear".
type UpdateStudentInput struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Phone          *string
	AltPhone       *string
	DateOfBirth    *time.Time
	Gender         *string
	Address        *string
	City           *string
	State          *string
	Pincode        *string
	GuardianName   *string
	GuardianPhone  *string
	Qualification  *string
	ReferralSource *string
	ReferredByID   *uint
	ReferredByName *string
}

// StudentService manages student records
type StudentService struct {
	repos *repository.Repositories
	audit *AuditService
}

// NewStudentService creates a new student service
func NewStudentService(repos *repository.Repositories, audit *AuditService) *StudentService {
	return &StudentService{repos: repos, audit: audit}
}

// Create admits a student, allocating the numeric student id from its
// sequence in the same transaction that persists the record.
func (s *StudentService) Create(ctx context.Context, actorID *uint, input CreateStudentInput) (*models.Student, error) {
	if input.FirstName == "" {
		return nil, ValidationError("first name is required")
	}
	if input.Phone == "" {
		return nil, ValidationError("phone is required")
	}

	admissionDate := input.AdmissionDate
	if admissionDate.IsZero() {
		admissionDate = time.Now()
	}
	if input.ReferredByID != nil {
		if _, err := s.repos.Student.FindByID(ctx, *input.ReferredByID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("referring student: %w", ErrNotFound)
			}
			return nil, err
		}
	}

	student := &models.Student{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		Phone:          input.Phone,
		AltPhone:       input.AltPhone,
		DateOfBirth:    input.DateOfBirth,
		Gender:         input.Gender,
		Address:        input.Address,
		City:           input.City,
		State:          input.State,
		Pincode:        input.Pincode,
		GuardianName:   input.GuardianName,
		GuardianPhone:  input.GuardianPhone,
		Qualification:  input.Qualification,
		ReferralSource: input.ReferralSource,
		ReferredByID:   input.ReferredByID,
		ReferredByName: input.ReferredByName,
		AdmissionDate:  admissionDate,
	}

	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		seq, err := tx.Sequence.Next(ctx, models.SequenceStudentID, studentIDSeed)
		if err != nil {
			return err
		}
		student.StudentID = seq
		return tx.Student.Create(ctx, student)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, models.AuditActionCreate, "student", student.ID,
		fmt.Sprintf("admitted %s as %d", student.FullName(), student.StudentID))
	logger.Info("student admitted", "student_id", student.StudentID, "name", student.FullName())
	return student, nil
}

// Get returns a student with their active enrollments
func (s *StudentService) Get(ctx context.Context, id uint) (*models.Student, error) {
	student, err := s.repos.Student.FindByIDWithEnrollments(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return student, nil
}

// List returns active students matching the query
func (s *StudentService) List(ctx context.Context, query repository.ListQuery) ([]models.Student, int64, error) {
	return s.repos.Student.List(ctx, query)
}

// ListTrash returns soft-deleted students
func (s *StudentService) ListTrash(ctx context.Context, query repository.ListQuery) ([]models.Student, int64, error) {
	return s.repos.Student.ListDeleted(ctx, query)
}

// Update edits a student's own details. The numeric id and admission date
// never change, and enrollments keep the snapshot taken when they were
// created.
func (s *StudentService) Update(ctx context.Context, actorID *uint, id uint, input UpdateStudentInput) (*models.Student, error) {
	student, err := s.repos.Student.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if student.Deleted() {
		return nil, ValidationError("student %d is deleted", student.StudentID)
	}

	if input.FirstName != nil {
		if *input.FirstName == "" {
			return nil, ValidationError("first name is required")
		}
		student.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		student.LastName = *input.LastName
	}
	if input.Email != nil {
		student.Email = input.Email
	}
	if input.Phone != nil {
		if *input.Phone == "" {
			return nil, ValidationError("phone is required")
		}
		student.Phone = *input.Phone
	}
	if input.AltPhone != nil {
		student.AltPhone = *input.AltPhone
	}
	if input.DateOfBirth != nil {
		student.DateOfBirth = input.DateOfBirth
	}
	if input.Gender != nil {
		student.Gender = *input.Gender
	}
	if input.Address != nil {
		student.Address = *input.Address
	}
	if input.City != nil {
		student.City = *input.City
	}
	if input.State != nil {
		student.State = *input.State
	}
	if input.Pincode != nil {
		student.Pincode = *input.Pincode
	}
	if input.GuardianName != nil {
		student.GuardianName = *input.GuardianName
	}
	if input.GuardianPhone != nil {
		student.GuardianPhone = *input.GuardianPhone
	}
	if input.Qualification != nil {
		student.Qualification = *input.Qualification
	}
	if input.ReferralSource != nil {
		student.ReferralSource = *input.ReferralSource
	}
	if input.ReferredByID != nil {
		if _, err := s.repos.Student.FindByID(ctx, *input.ReferredByID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("referring student: %w", ErrNotFound)
			}
			return nil, err
		}
		student.ReferredByID = input.ReferredByID
	}
	if input.ReferredByName != nil {
		student.ReferredByName = *input.ReferredByName
	}

	if err := s.repos.Student.Update(ctx, student); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID, models.AuditActionUpdate, "student", student.ID, "student details updated")
	return student, nil
}

// SetPhoto stores the processed photo path on the student record
func (s *StudentService) SetPhoto(ctx context.Context, actorID *uint, id uint, photoPath string) (*models.Student, error) {
	student, err := s.repos.Student.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	student.PhotoPath = photoPath
	if err := s.repos.Student.Update(ctx, student); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID, models.AuditActionUpdate, "student", student.ID, "photo updated")
	return student, nil
}

// Delete soft-deletes a student and every enrollment they still have
func (s *StudentService) Delete(ctx context.Context, actorID *uint, id uint) error {
	student, err := s.repos.Student.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if student.Deleted() {
		return nil
	}

	enrollments, err := s.repos.Enrollment.ListByStudent(ctx, student.ID, false)
	if err != nil {
		return err
	}
	for i := range enrollments {
		enrollments[i].MarkDeleted()
		if err := s.repos.Enrollment.Update(ctx, &enrollments[i]); err != nil {
			return err
		}
	}

	student.MarkDeleted()
	if err := s.repos.Student.Update(ctx, student); err != nil {
		return err
	}

	s.audit.Record(ctx, actorID, models.AuditActionDelete, "student", student.ID,
		fmt.Sprintf("student %d moved to trash with %d enrollments", student.StudentID, len(enrollments)))
	return nil
}

// Restore brings a soft-deleted student and their trashed enrollments back
func (s *StudentService) Restore(ctx context.Context, actorID *uint, id uint) (*models.Student, error) {
	student, err := s.repos.Student.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !student.Deleted() {
		return student, nil
	}

	student.Restore()
	if err := s.repos.Student.Update(ctx, student); err != nil {
		return nil, err
	}

	enrollments, err := s.repos.Enrollment.ListByStudent(ctx, student.ID, true)
	if err != nil {
		return nil, err
	}
	for i := range enrollments {
		if enrollments[i].Deleted() {
			enrollments[i].Restore()
			if err := s.repos.Enrollment.Update(ctx, &enrollments[i]); err != nil {
				return nil, err
			}
		}
	}

	s.audit.Record(ctx, actorID, models.AuditActionRestore, "student", student.ID,
		fmt.Sprintf("student %d restored", student.StudentID))
	return student, nil
}
