package services

import (
	"github.com/careerpoint/institute-api/internal/config"
	"github.com/careerpoint/institute-api/internal/repository"
	"github.com/careerpoint/institute-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	Audit        *AuditService
	Notification *NotificationService
	Student      *StudentService
	Course       *CourseService
	Enrollment   *EnrollmentService
	Team         *TeamService
	Expense      *ExpenseService
	Enquiry      *EnquiryService
	Setting      *SettingService
	Report       *ReportService
	Receipt      *ReceiptService
	Image        *ImageService
}

// NewServices wires every service over the shared repositories
func NewServices(repos *repository.Repositories, cfg *config.Config, store storage.Storage) *Services {
	audit := NewAuditService(repos)
	notifier := NewNotificationService(repos)
	settings := NewSettingService(repos, audit)
	students := NewStudentService(repos, audit)

	return &Services{
		Auth:         NewAuthService(repos, audit, cfg.JWTSecret, cfg.JWTExpirationHours),
		Audit:        audit,
		Notification: notifier,
		Student:      students,
		Course:       NewCourseService(repos, audit),
		Enrollment:   NewEnrollmentService(repos, settings, audit, notifier),
		Team:         NewTeamService(repos, audit),
		Expense:      NewExpenseService(repos, audit),
		Enquiry:      NewEnquiryService(repos, students, audit, notifier),
		Setting:      settings,
		Report:       NewReportService(repos),
		Receipt:      NewReceiptService(settings),
		Image:        NewImageService(store),
	}
}
