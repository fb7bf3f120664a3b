package repository

import (
	"strings"

	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	db           *gorm.DB
	User         UserRepository
	RefreshToken RefreshTokenRepository
	Notification NotificationRepository
	AuditLog     AuditLogRepository
	Student      StudentRepository
	Course       CourseRepository
	Setting      SettingRepository
	Sequence     SequenceRepository
	Enrollment   EnrollmentRepository
	Payment      PaymentRepository
	Team         TeamRepository
	Expense      ExpenseRepository
	Enquiry      EnquiryRepository
}

// NewRepositories creates a new Repositories instance with all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		User:         NewUserRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		Notification: NewNotificationRepository(db),
		AuditLog:     NewAuditLogRepository(db),
		Student:      NewStudentRepository(db),
		Course:       NewCourseRepository(db),
		Setting:      NewSettingRepository(db),
		Sequence:     NewSequenceRepository(db),
		Enrollment:   NewEnrollmentRepository(db),
		Payment:      NewPaymentRepository(db),
		Team:         NewTeamRepository(db),
		Expense:      NewExpenseRepository(db),
		Enquiry:      NewEnquiryRepository(db),
	}
}

// Transaction runs fn with a Repositories bound to a single database
// transaction. Used where a sequence allocation and the row that consumes
// the value must commit together.
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// ListQuery carries pagination, search and sorting parameters for list
// endpoints.
type ListQuery struct {
	Page     int
	PerPage  int
	Search   string
	SortBy   string
	SortDesc bool
}

// NewListQuery normalises raw query values into a usable ListQuery.
func NewListQuery(page, perPage int, search, sortBy, sortDir string) ListQuery {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return ListQuery{
		Page:     page,
		PerPage:  perPage,
		Search:   strings.TrimSpace(search),
		SortBy:   sortBy,
		SortDesc: strings.EqualFold(sortDir, "desc"),
	}
}

// Offset returns the row offset for the current page
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// Order returns an ORDER BY clause, falling back when SortBy is not in the
// allowed set.
func (q ListQuery) Order(allowed map[string]bool, fallback string) string {
	col := q.SortBy
	if col == "" || !allowed[col] {
		col = fallback
	}
	dir := "asc"
	if q.SortDesc {
		dir = "desc"
	}
	return col + " " + dir
}
