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

// CreateExpenseInput carries the fields for a new expense
type CreateExpenseInput struct {
	Title       string
	Category    string
	Amount      decimal.Decimal
	ExpenseDate time.Time
	PaymentMode string
	Notes       string
}

// UpdateExpenseInput carries the editable expense fields
type UpdateExpenseInput struct {
	Title       *string
	Category    *string
	Amount      *decimal.Decimal
	ExpenseDate *time.Time
	PaymentMode *string
	Notes       *string
}

// ExpenseService manages institute expenses
type ExpenseService struct {
	repos *repository.Repositories
	audit *AuditService
}

// NewExpenseService creates a new expense service
func NewExpenseService(repos *repository.Repositories, audit *AuditService) *ExpenseService {
	return &ExpenseService{repos: repos, audit: audit}
}

// Create records an expense
func (s *ExpenseService) Create(ctx context.Context, actorID *uint, input CreateExpenseInput) (*models.Expense, error) {
	if input.Title == "" {
		return nil, ValidationError("title is required")
	}
	if input.Category == "" {
		return nil, ValidationError("category is required")
	}
	if !input.Amount.IsPositive() {
		return nil, ValidationError("amount must be positive")
	}
	if input.PaymentMode != "" && !models.ValidPaymentMode(input.PaymentMode) {
		return nil, ValidationError("unknown payment mode %q", input.PaymentMode)
	}

	expenseDate := input.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = time.Now()
	}
	mode := input.PaymentMode
	if mode == "" {
		mode = models.PaymentModeCash
	}

	expense := &models.Expense{
		Title:        input.Title,
		Category:     input.Category,
		Amount:       input.Amount.Round(2),
		ExpenseDate:  expenseDate,
		PaymentMode:  mode,
		Notes:        input.Notes,
		RecordedByID: actorID,
	}
	if err := s.repos.Expense.Create(ctx, expense); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, models.AuditActionCreate, "expense", expense.ID,
		fmt.Sprintf("expense %q of %s recorded", expense.Title, expense.Amount.StringFixed(2)))
	return expense, nil
}

// Get returns an expense
func (s *ExpenseService) Get(ctx context.Context, id uint) (*models.Expense, error) {
	expense, err := s.repos.Expense.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return expense, nil
}

// List returns expenses matching the query and optional filters
func (s *ExpenseService) List(ctx context.Context, query repository.ListQuery, category string, from, to *time.Time) ([]models.Expense, int64, error) {
	return s.repos.Expense.List(ctx, query, category, from, to)
}

// ListTrash returns soft-deleted expenses
func (s *ExpenseService) ListTrash(ctx context.Context, query repository.ListQuery) ([]models.Expense, int64, error) {
	return s.repos.Expense.ListDeleted(ctx, query)
}

// Update edits an expense
func (s *ExpenseService) Update(ctx context.Context, actorID *uint, id uint, input UpdateExpenseInput) (*models.Expense, error) {
	expense, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense.Deleted() {
		return nil, ValidationError("expense is deleted")
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ValidationError("title is required")
		}
		expense.Title = *input.Title
	}
	if input.Category != nil {
		expense.Category = *input.Category
	}
	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, ValidationError("amount must be positive")
		}
		expense.Amount = input.Amount.Round(2)
	}
	if input.ExpenseDate != nil {
		expense.ExpenseDate = *input.ExpenseDate
	}
	if input.PaymentMode != nil {
		if !models.ValidPaymentMode(*input.PaymentMode) {
			return nil, ValidationError("unknown payment mode %q", *input.PaymentMode)
		}
		expense.PaymentMode = *input.PaymentMode
	}
	if input.Notes != nil {
		expense.Notes = *input.Notes
	}

	if err := s.repos.Expense.Update(ctx, expense); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID, models.AuditActionUpdate, "expense", expense.ID, "expense updated")
	return expense, nil
}

// Delete soft-deletes an expense
func (s *ExpenseService) Delete(ctx context.Context, actorID *uint, id uint) error {
	expense, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if expense.Deleted() {
		return nil
	}
	expense.MarkDeleted()
	if err := s.repos.Expense.Update(ctx, expense); err != nil {
		return err
	}
	s.audit.Record(ctx, actorID, models.AuditActionDelete, "expense", expense.ID,
		fmt.Sprintf("expense %q moved to trash", expense.Title))
	return nil
}

// Restore brings a soft-deleted expense back
func (s *ExpenseService) Restore(ctx context.Context, actorID *uint, id uint) (*models.Expense, error) {
	expense, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !expense.Deleted() {
		return expense, nil
	}
	expense.Restore()
	if err := s.repos.Expense.Update(ctx, expense); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID, models.AuditActionRestore, "expense", expense.ID,
		fmt.Sprintf("expense %q restored", expense.Title))
	return expense, nil
}
