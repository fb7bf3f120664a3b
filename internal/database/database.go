package database

import (
	"fmt"
	"os"
	"time"

	pkgLogger "github.com/careerpoint/institute-api/pkg/logger"

	"github.com/careerpoint/institute-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL string, slowQueryThreshold time.Duration) (*gorm.DB, error) {
	// Configure GORM logger
	logLevel := logger.Silent
	if os.Getenv("ENVIRONMENT") != "production" {
		logLevel = logger.Info
	}

	gormLogger := pkgLogger.NewGormLogger(logLevel, slowQueryThreshold)

	// Open database connection
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true, // Improve performance
		PrepareStmt:            true, // Cache prepared statements
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate applies the schema for all models
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Notification{},
		&models.Setting{},
		&models.Sequence{},
		&models.Course{},
		&models.Student{},
		&models.Enrollment{},
		&models.Payment{},
		&models.Team{},
		&models.Expense{},
		&models.Enquiry{},
		&models.AuditLog{},
	)
	if err != nil {
		return err
	}

	// A student holds at most one live enrollment per course; trashed
	// rows stay out of the constraint so a re-enrollment after delete
	// remains possible.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_enrollments_active_student_course
		ON enrollments (student_ref_id, course_id) WHERE is_deleted = false`).Error
}
