package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/careerpoint/institute-api/internal/models"
)

// StudentRepository handles student data access. Soft-deleted students are
// excluded from normal listings and only surface through ListDeleted.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id uint) (*models.Student, error)
	FindByIDWithEnrollments(ctx context.Context, id uint) (*models.Student, error)
	FindByStudentID(ctx context.Context, studentID int64) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	List(ctx context.Context, query ListQuery) ([]models.Student, int64, error)
	ListDeleted(ctx context.Context, query ListQuery) ([]models.Student, int64, error)
	Count(ctx context.Context) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) FindByID(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) FindByIDWithEnrollments(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Preload("Enrollments", "is_deleted = ?", false).
		Preload("Enrollments.Course").
		First(&student, id).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) FindByStudentID(ctx context.Context, studentID int64) (*models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepository) List(ctx context.Context, query ListQuery) ([]models.Student, int64, error) {
	return r.list(ctx, query, false)
}

func (r *studentRepository) ListDeleted(ctx context.Context, query ListQuery) ([]models.Student, int64, error) {
	return r.list(ctx, query, true)
}

func (r *studentRepository) list(ctx context.Context, query ListQuery, deleted bool) ([]models.Student, int64, error) {
	var students []models.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Student{}).Where("is_deleted = ?", deleted)
	if query.Search != "" {
		like := "%" + query.Search + "%"
		db = db.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR phone ILIKE ? OR CAST(student_id AS TEXT) ILIKE ?",
			like, like, like, like,
		)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order := query.Order(map[string]bool{
		"first_name":     true,
		"student_id":     true,
		"admission_date": true,
		"created_at":     true,
	}, "created_at desc")
	err := db.Order(order).Offset(query.Offset()).Limit(query.PerPage).Find(&students).Error
	return students, total, err
}

func (r *studentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("is_deleted = ?", false).
		Count(&count).Error
	return count, err
}
