package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/careerpoint/institute-api/internal/models"
)

// CourseRepository handles course data access
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id uint) (*models.Course, error)
	FindByName(ctx context.Context, name string) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	List(ctx context.Context, query ListQuery, activeOnly bool) ([]models.Course, int64, error)
	ListDeleted(ctx context.Context, query ListQuery) ([]models.Course, int64, error)
	CountActiveEnrollments(ctx context.Context, courseID uint) (int64, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) FindByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindByName(ctx context.Context, name string) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepository) List(ctx context.Context, query ListQuery, activeOnly bool) ([]models.Course, int64, error) {
	var courses []models.Course
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Course{}).Where("is_deleted = ?", false)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	if query.Search != "" {
		like := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR code ILIKE ?", like, like)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order := query.Order(map[string]bool{
		"name":       true,
		"fee":        true,
		"created_at": true,
	}, "name asc")
	err := db.Order(order).Offset(query.Offset()).Limit(query.PerPage).Find(&courses).Error
	return courses, total, err
}

func (r *courseRepository) ListDeleted(ctx context.Context, query ListQuery) ([]models.Course, int64, error) {
	var courses []models.Course
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Course{}).Where("is_deleted = ?", true)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("deleted_at desc").Offset(query.Offset()).Limit(query.PerPage).Find(&courses).Error
	return courses, total, err
}

func (r *courseRepository) CountActiveEnrollments(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("course_id = ? AND is_deleted = ? AND status = ?", courseID, false, models.EnrollmentStatusActive).
		Count(&count).Error
	return count, err
}

// SettingRepository handles institute settings data access
type SettingRepository interface {
	Get(ctx context.Context, key string) (string, error)
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, key string) (string, error) {
	var setting models.Setting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (r *settingRepository) GetAll(ctx context.Context) (map[string]string, error) {
	var settings []models.Setting
	if err := r.db.WithContext(ctx).Find(&settings).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}
	return out, nil
}

func (r *settingRepository) Set(ctx context.Context, key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
}

// SequenceRepository allocates values from named counters. Next must be
// called inside a transaction shared with the row that consumes the value;
// the row lock serialises concurrent allocations.
type SequenceRepository interface {
	Next(ctx context.Context, name string, seed int64) (int64, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context, name string, seed int64) (int64, error) {
	var seq models.Sequence
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = models.Sequence{Name: name, Value: seed}
		if err := r.db.WithContext(ctx).Create(&seq).Error; err != nil {
			return 0, err
		}
		return seq.Value, nil
	}
	if err != nil {
		return 0, err
	}
	seq.Value++
	if err := r.db.WithContext(ctx).Save(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}
