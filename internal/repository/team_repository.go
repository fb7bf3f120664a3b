package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/careerpoint/institute-api/internal/models"
)

// TeamRepository handles team member data access
type TeamRepository interface {
	Create(ctx context.Context, member *models.Team) error
	FindByID(ctx context.Context, id uint) (*models.Team, error)
	Update(ctx context.Context, member *models.Team) error
	List(ctx context.Context, query ListQuery) ([]models.Team, int64, error)
	ListDeleted(ctx context.Context, query ListQuery) ([]models.Team, int64, error)
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(ctx context.Context, member *models.Team) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *teamRepository) FindByID(ctx context.Context, id uint) (*models.Team, error) {
	var member models.Team
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *teamRepository) Update(ctx context.Context, member *models.Team) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *teamRepository) List(ctx context.Context, query ListQuery) ([]models.Team, int64, error) {
	var members []models.Team
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Team{}).Where("is_deleted = ?", false)
	if query.Search != "" {
		like := "%" + query.Search + "%"
		db = db.Where("full_name ILIKE ? OR employee_code ILIKE ? OR designation ILIKE ?", like, like, like)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order := query.Order(map[string]bool{
		"full_name":    true,
		"joining_date": true,
		"created_at":   true,
	}, "joining_date asc")
	err := db.Order(order).Offset(query.Offset()).Limit(query.PerPage).Find(&members).Error
	return members, total, err
}

func (r *teamRepository) ListDeleted(ctx context.Context, query ListQuery) ([]models.Team, int64, error) {
	var members []models.Team
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Team{}).Where("is_deleted = ?", true)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("deleted_at desc").Offset(query.Offset()).Limit(query.PerPage).Find(&members).Error
	return members, total, err
}

// ExpenseRepository handles expense data access
type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	FindByID(ctx context.Context, id uint) (*models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) error
	List(ctx context.Context, query ListQuery, category string, from, to *time.Time) ([]models.Expense, int64, error)
	ListDeleted(ctx context.Context, query ListQuery) ([]models.Expense, int64, error)
	SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepository) FindByID(ctx context.Context, id uint) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).Preload("RecordedBy").First(&expense, id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *expenseRepository) List(ctx context.Context, query ListQuery, category string, from, to *time.Time) ([]models.Expense, int64, error) {
	var expenses []models.Expense
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Expense{}).Where("is_deleted = ?", false)
	if category != "" {
		db = db.Where("category = ?", category)
	}
	if from != nil {
		db = db.Where("expense_date >= ?", *from)
	}
	if to != nil {
		db = db.Where("expense_date < ?", *to)
	}
	if query.Search != "" {
		like := "%" + query.Search + "%"
		db = db.Where("title ILIKE ?", like)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order := query.Order(map[string]bool{
		"expense_date": true,
		"amount":       true,
		"created_at":   true,
	}, "expense_date desc")
	err := db.Preload("RecordedBy").Order(order).Offset(query.Offset()).Limit(query.PerPage).Find(&expenses).Error
	return expenses, total, err
}

func (r *expenseRepository) ListDeleted(ctx context.Context, query ListQuery) ([]models.Expense, int64, error) {
	var expenses []models.Expense
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Expense{}).Where("is_deleted = ?", true)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("deleted_at desc").Offset(query.Offset()).Limit(query.PerPage).Find(&expenses).Error
	return expenses, total, err
}

func (r *expenseRepository) SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var raw string
	err := r.db.WithContext(ctx).Model(&models.Expense{}).
		Where("is_deleted = ? AND expense_date >= ? AND expense_date < ?", false, from, to).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

// EnquiryRepository handles enquiry data access
type EnquiryRepository interface {
	Create(ctx context.Context, enquiry *models.Enquiry) error
	FindByID(ctx context.Context, id uint) (*models.Enquiry, error)
	Update(ctx context.Context, enquiry *models.Enquiry) error
	List(ctx context.Context, query ListQuery, status string) ([]models.Enquiry, int64, error)
	ListDeleted(ctx context.Context, query ListQuery) ([]models.Enquiry, int64, error)
	ListDueFollowUps(ctx context.Context, asOf time.Time) ([]models.Enquiry, error)
}

type enquiryRepository struct {
	db *gorm.DB
}

// NewEnquiryRepository creates a new enquiry repository
func NewEnquiryRepository(db *gorm.DB) EnquiryRepository {
	return &enquiryRepository{db: db}
}

func (r *enquiryRepository) Create(ctx context.Context, enquiry *models.Enquiry) error {
	return r.db.WithContext(ctx).Create(enquiry).Error
}

func (r *enquiryRepository) FindByID(ctx context.Context, id uint) (*models.Enquiry, error) {
	var enquiry models.Enquiry
	if err := r.db.WithContext(ctx).Preload("Course").First(&enquiry, id).Error; err != nil {
		return nil, err
	}
	return &enquiry, nil
}

func (r *enquiryRepository) Update(ctx context.Context, enquiry *models.Enquiry) error {
	return r.db.WithContext(ctx).Save(enquiry).Error
}

func (r *enquiryRepository) List(ctx context.Context, query ListQuery, status string) ([]models.Enquiry, int64, error) {
	var enquiries []models.Enquiry
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Enquiry{}).Where("is_deleted = ?", false)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if query.Search != "" {
		like := "%" + query.Search + "%"
		db = db.Where("full_name ILIKE ? OR phone ILIKE ?", like, like)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order := query.Order(map[string]bool{
		"full_name":      true,
		"follow_up_date": true,
		"created_at":     true,
	}, "created_at desc")
	err := db.Preload("Course").Order(order).Offset(query.Offset()).Limit(query.PerPage).Find(&enquiries).Error
	return enquiries, total, err
}

func (r *enquiryRepository) ListDeleted(ctx context.Context, query ListQuery) ([]models.Enquiry, int64, error) {
	var enquiries []models.Enquiry
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Enquiry{}).Where("is_deleted = ?", true)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("deleted_at desc").Offset(query.Offset()).Limit(query.PerPage).Find(&enquiries).Error
	return enquiries, total, err
}

func (r *enquiryRepository) ListDueFollowUps(ctx context.Context, asOf time.Time) ([]models.Enquiry, error) {
	var enquiries []models.Enquiry
	err := r.db.WithContext(ctx).
		Where("is_deleted = ? AND status IN ? AND follow_up_date IS NOT NULL AND follow_up_date <= ?",
			false, []string{models.EnquiryStatusNew, models.EnquiryStatusFollowUp}, asOf).
		Order("follow_up_date asc").
		Find(&enquiries).Error
	return enquiries, err
}
