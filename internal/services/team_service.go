package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/repository"
)

// Employee code sequence seed and format
const (
	employeeCodeSeed   = 1
	employeeCodeFormat = "CP-0724-%02d"
)

// CreateTeamInput carries the fields for a new team member
type CreateTeamInput struct {
	FullName    string
	Designation string
	Phone       string
	Email       *string
	JoiningDate time.Time
	Salary      decimal.Decimal
}

// UpdateTeamInput carries the editable team member fields
type UpdateTeamInput struct {
	FullName    *string
	Designation *string
	Phone       *string
	Email       *string
	Salary      *decimal.Decimal
	IsActive    *bool
}

// TeamService manages institute staff records
type TeamService struct {
	repos *repository.Repositories
	audit *AuditService
}

// NewTeamService creates a new team service
func NewTeamService(repos *repository.Repositories, audit *AuditService) *TeamService {
	return &TeamService{repos: repos, audit: audit}
}

// Create adds a team member, allocating the employee code from its
// sequence in the same transaction that persists the record.
func (s *TeamService) Create(ctx context.Context, actorID *uint, input CreateTeamInput) (*models.Team, error) {
	if input.FullName == "" {
		return nil, ValidationError("full name is required")
	}
	if input.Designation == "" {
		return nil, ValidationError("designation is required")
	}
	if input.Phone == "" {
		return nil, ValidationError("phone is required")
	}
	if input.Salary.IsNegative() {
		return nil, ValidationError("salary cannot be negative")
	}

	joiningDate := input.JoiningDate
	if joiningDate.IsZero() {
		joiningDate = time.Now()
	}

	member := &models.Team{
		FullName:    input.FullName,
		Designation: input.Designation,
		Phone:       input.Phone,
		Email:       input.Email,
		JoiningDate: joiningDate,
		Salary:      input.Salary,
		IsActive:    true,
	}

	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		seq, err := tx.Sequence.Next(ctx, models.SequenceEmployeeCode, employeeCodeSeed)
		if err != nil {
			return err
		}
		member.EmployeeCode = fmt.Sprintf(employeeCodeFormat, seq)
		return tx.Team.Create(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, models.AuditActionCreate, "team", member.ID,
		fmt.Sprintf("%s joined as %s (%s)", member.FullName, member.Designation, member.EmployeeCode))
	return member, nil
}

// Get returns a team member
func (s *TeamService) Get(ctx context.Context, id uint) (*models.Team, error) {
	member, err := s.repos.Team.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return member, nil
}

// List returns team members matching the query
func (s *TeamService) List(ctx context.Context, query repository.ListQuery) ([]models.Team, int64, error) {
	return s.repos.Team.List(ctx, query)
}

// ListTrash returns soft-deleted team members
func (s *TeamService) ListTrash(ctx context.Context, query repository.ListQuery) ([]models.Team, int64, error) {
	return s.repos.Team.ListDeleted(ctx, query)
}

// Update edits a team member. The employee code never changes.
func (s *TeamService) Update(ctx context.Context, actorID *uint, id uint, input UpdateTeamInput) (*models.Team, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if member.Deleted() {
		return nil, ValidationError("team member %s is deleted", member.EmployeeCode)
	}

	if input.FullName != nil {
		if *input.FullName == "" {
			return nil, ValidationError("full name is required")
		}
		member.FullName = *input.FullName
	}
	if input.Designation != nil {
		member.Designation = *input.Designation
	}
	if input.Phone != nil {
		member.Phone = *input.Phone
	}
	if input.Email != nil {
		member.Email = input.Email
	}
	if input.Salary != nil {
		if input.Salary.IsNegative() {
			return nil, ValidationError("salary cannot be negative")
		}
		member.Salary = *input.Salary
	}
	if input.IsActive != nil {
		member.IsActive = *input.IsActive
	}

	if err := s.repos.Team.Update(ctx, member); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID, models.AuditActionUpdate, "team", member.ID,
		fmt.Sprintf("team member %s updated", member.EmployeeCode))
	return member, nil
}

// SetPhoto stores the processed photo path on the team member record
func (s *TeamService) SetPhoto(ctx context.Context, actorID *uint, id uint, photoPath string) (*models.Team, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	member.PhotoPath = photoPath
	if err := s.repos.Team.Update(ctx, member); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID, models.AuditActionUpdate, "team", member.ID, "photo updated")
	return member, nil
}

// Delete soft-deletes a team member
func (s *TeamService) Delete(ctx context.Context, actorID *uint, id uint) error {
	member, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if member.Deleted() {
		return nil
	}
	member.MarkDeleted()
	if err := s.repos.Team.Update(ctx, member); err != nil {
		return err
	}
	s.audit.Record(ctx, actorID, models.AuditActionDelete, "team", member.ID,
		fmt.Sprintf("team member %s moved to trash", member.EmployeeCode))
	return nil
}

// Restore brings a soft-deleted team member back
func (s *TeamService) Restore(ctx context.Context, actorID *uint, id uint) (*models.Team, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !member.Deleted() {
		return member, nil
	}
	member.Restore()
	if err := s.repos.Team.Update(ctx, member); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID, models.AuditActionRestore, "team", member.ID,
		fmt.Sprintf("team member %s restored", member.EmployeeCode))
	return member, nil
}
