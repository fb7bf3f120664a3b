package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/careerpoint/institute-api/internal/models"
)

// EnrollmentFilter narrows enrollment listings
type EnrollmentFilter struct {
	StudentRefID  uint
	CourseID      uint
	PaymentStatus string
	Status        string
}

// EnrollmentRepository handles enrollment data access
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id uint) (*models.Enrollment, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Enrollment, error)
	Update(ctx context.Context, enrollment *models.Enrollment) error
	List(ctx context.Context, query ListQuery, filter EnrollmentFilter) ([]models.Enrollment, int64, error)
	ListDeleted(ctx context.Context, query ListQuery) ([]models.Enrollment, int64, error)
	ListByStudent(ctx context.Context, studentRefID uint, includeDeleted bool) ([]models.Enrollment, error)
	CountActiveByStudent(ctx context.Context, studentRefID uint) (int64, error)
	ExistsActive(ctx context.Context, studentRefID, courseID uint) (bool, error)
	ListOutstanding(ctx context.Context) ([]models.Enrollment, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]models.Enrollment, error)
	CountByPaymentStatus(ctx context.Context, status string) (int64, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) FindByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date asc, id asc")
		}).
		Preload("Payments.ReceivedBy").
		First(&enrollment, id).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("transaction_id = ?", transactionID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Save(enrollment).Error
}

func (r *enrollmentRepository) List(ctx context.Context, query ListQuery, filter EnrollmentFilter) ([]models.Enrollment, int64, error) {
	var enrollments []models.Enrollment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("is_deleted = ?", false)
	if filter.StudentRefID != 0 {
		db = db.Where("student_ref_id = ?", filter.StudentRefID)
	}
	if filter.CourseID != 0 {
		db = db.Where("course_id = ?", filter.CourseID)
	}
	if filter.PaymentStatus != "" {
		db = db.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if query.Search != "" {
		like := "%" + query.Search + "%"
		db = db.Where("transaction_id ILIKE ? OR snapshot_name ILIKE ? OR snapshot_phone ILIKE ?", like, like, like)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order := query.Order(map[string]bool{
		"enrollment_date":  true,
		"final_amount":     true,
		"amount_remaining": true,
		"created_at":       true,
	}, "created_at desc")
	err := db.Preload("Course").Order(order).Offset(query.Offset()).Limit(query.PerPage).Find(&enrollments).Error
	return enrollments, total, err
}

func (r *enrollmentRepository) ListDeleted(ctx context.Context, query ListQuery) ([]models.Enrollment, int64, error) {
	var enrollments []models.Enrollment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Enrollment{}).Where("is_deleted = ?", true)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("Course").Order("deleted_at desc").
		Offset(query.Offset()).Limit(query.PerPage).Find(&enrollments).Error
	return enrollments, total, err
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentRefID uint, includeDeleted bool) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	db := r.db.WithContext(ctx).Where("student_ref_id = ?", studentRefID)
	if !includeDeleted {
		db = db.Where("is_deleted = ?", false)
	}
	err := db.Preload("Course").Order("created_at desc").Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) CountActiveByStudent(ctx context.Context, studentRefID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("student_ref_id = ? AND is_deleted = ?", studentRefID, false).
		Count(&count).Error
	return count, err
}

func (r *enrollmentRepository) ExistsActive(ctx context.Context, studentRefID, courseID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("student_ref_id = ? AND course_id = ? AND is_deleted = ?", studentRefID, courseID, false).
		Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepository) ListOutstanding(ctx context.Context) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Where("is_deleted = ? AND status = ? AND amount_remaining > 0", false, models.EnrollmentStatusActive).
		Preload("Course").
		Order("enrollment_date asc").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Where("is_deleted = ? AND status = ? AND amount_remaining > 0 AND due_date < ?",
			false, models.EnrollmentStatusActive, asOf).
		Preload("Course").
		Order("due_date asc").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) CountByPaymentStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("is_deleted = ? AND payment_status = ?", false, status).
		Count(&count).Error
	return count, err
}

// PaymentRepository handles payment data access. Payments are append-only.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	ListByEnrollment(ctx context.Context, enrollmentID uint) ([]models.Payment, error)
	CountByEnrollment(ctx context.Context, enrollmentID uint) (int64, error)
	SumByCategory(ctx context.Context, enrollmentID uint, category string) (decimal.Decimal, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error)
	SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	MonthlyTotals(ctx context.Context, year int) ([]MonthlyTotal, error)
}

// MonthlyTotal is one month's collected revenue
type MonthlyTotal struct {
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Enrollment").
		Preload("Enrollment.Course").
		Preload("ReceivedBy").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) ListByEnrollment(ctx context.Context, enrollmentID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("payment_date asc, id asc").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) CountByEnrollment(ctx context.Context, enrollmentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("enrollment_id = ?", enrollmentID).
		Count(&count).Error
	return count, err
}

func (r *paymentRepository) SumByCategory(ctx context.Context, enrollmentID uint, category string) (decimal.Decimal, error) {
	var raw string
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("enrollment_id = ? AND category = ?", enrollmentID, category).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

func (r *paymentRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("payment_date >= ? AND payment_date < ?", from, to).
		Preload("Enrollment").
		Preload("Enrollment.Course").
		Order("payment_date asc, id asc").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var raw string
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("payment_date >= ? AND payment_date < ?", from, to).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

func (r *paymentRepository) MonthlyTotals(ctx context.Context, year int) ([]MonthlyTotal, error) {
	var rows []MonthlyTotal
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("EXTRACT(MONTH FROM payment_date)::int AS month, COALESCE(SUM(amount), 0) AS total").
		Where("EXTRACT(YEAR FROM payment_date) = ?", year).
		Group("month").
		Order("month").
		Scan(&rows).Error
	return rows, err
}
