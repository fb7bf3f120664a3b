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
	"github.com/careerpoint/institute-api/internal/statemachine"
	"github.com/careerpoint/institute-api/pkg/logger"
)

// Sequence seeds and identifier formats
const (
	transactionIDSeed   = 1
	transactionIDFormat = "E%04d"
	certificateSeed     = 1
	certificateFormat   = "CP-CN-%03d"
)

// Grace period before an enrollment's dues count as overdue
const defaultDuePeriodDays = 30

// CreateEnrollmentInput carries the fields for a new enrollment
type CreateEnrollmentInput struct {
	StudentRefID      uint
	CourseID          uint
	EnrollmentDate    time.Time
	DueDate           time.Time
	BatchTime         string
	Notes             string
	AdmissionFee      *decimal.Decimal
	CourseFee         *decimal.Decimal
	Discount          decimal.Decimal
	PaymentType       string
	TotalInstallments int
	CourseDuration    int
}

// UpdateEnrollmentInput carries the editable enrollment fields. Fee terms
// are fixed at creation; only the schedule and plan split can change.
type UpdateEnrollmentInput struct {
	BatchTime         *string
	Notes             *string
	DueDate           *time.Time
	PaymentType       *string
	TotalInstallments *int
	CourseDuration    *int
}

// AddPaymentInput carries the fields for recording a payment
type AddPaymentInput struct {
	Category    string
	Amount      decimal.Decimal
	PaymentDate time.Time
	PaymentMode string
	Reference   string
	Notes       string
}

// EnrollmentService manages enrollments, their payments and the derived
// settlement state.
type EnrollmentService struct {
	repos    *repository.Repositories
	settings *SettingService
	audit    *AuditService
	notifier *NotificationService
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(repos *repository.Repositories, settings *SettingService, audit *AuditService, notifier *NotificationService) *EnrollmentService {
	return &EnrollmentService{repos: repos, settings: settings, audit: audit, notifier: notifier}
}

// Create enrolls a student in a course. The transaction id is allocated
// from its sequence in the same database transaction that persists the
// row, and the student's identity is snapshotted onto the enrollment.
func (s *EnrollmentService) Create(ctx context.Context, actorID *uint, input CreateEnrollmentInput) (*models.Enrollment, error) {
	if !models.ValidPaymentType(input.PaymentType) {
		return nil, ValidationError("unknown payment type %q", input.PaymentType)
	}
	if input.Discount.IsNegative() {
		return nil, ValidationError("discount cannot be negative")
	}
	if input.AdmissionFee != nil && input.AdmissionFee.IsNegative() {
		return nil, ValidationError("admission fee cannot be negative")
	}
	if input.CourseFee != nil && input.CourseFee.IsNegative() {
		return nil, ValidationError("course fee cannot be negative")
	}

	student, err := s.repos.Student.FindByID(ctx, input.StudentRefID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("student: %w", ErrNotFound)
		}
		return nil, err
	}
	if student.Deleted() {
		return nil, ValidationError("student %d is deleted", student.StudentID)
	}

	course, err := s.repos.Course.FindByID(ctx, input.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course: %w", ErrNotFound)
		}
		return nil, err
	}
	if course.Deleted() || !course.IsActive {
		return nil, ValidationError("course %q is not open for enrollment", course.Name)
	}

	enrolled, err := s.repos.Enrollment.ExistsActive(ctx, student.ID, course.ID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, ConflictError("student %d is already enrolled in %s", student.StudentID, course.Name)
	}

	admissionFee := s.resolveAdmissionFee(ctx, input.AdmissionFee, course)
	courseFee := course.Fee
	if input.CourseFee != nil {
		courseFee = *input.CourseFee
	}
	courseDuration := input.CourseDuration
	if courseDuration == 0 {
		courseDuration = course.DurationMonths
	}
	enrollmentDate := input.EnrollmentDate
	if enrollmentDate.IsZero() {
		enrollmentDate = time.Now()
	}
	dueDate := input.DueDate
	if dueDate.IsZero() {
		dueDate = defaultDueDate(enrollmentDate)
	}

	enrollment := &models.Enrollment{
		StudentRefID:      student.ID,
		CourseID:          course.ID,
		Snapshot:          snapshotStudent(student),
		EnrollmentDate:    enrollmentDate,
		DueDate:           dueDate,
		BatchTime:         input.BatchTime,
		Notes:             input.Notes,
		AdmissionFee:      admissionFee,
		CourseFee:         courseFee,
		Discount:          input.Discount,
		PaymentType:       input.PaymentType,
		TotalInstallments: input.TotalInstallments,
		CourseDuration:    courseDuration,
		Status:            models.EnrollmentStatusActive,
	}

	settled := ComputeSettlement(enrollment, decimal.Zero, decimal.Zero)
	applySettlement(enrollment, settled)

	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		seq, err := tx.Sequence.Next(ctx, models.SequenceTransactionID, transactionIDSeed)
		if err != nil {
			return err
		}
		enrollment.TransactionID = fmt.Sprintf(transactionIDFormat, seq)
		return tx.Enrollment.Create(ctx, enrollment)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, models.AuditActionCreate, "enrollment", enrollment.ID,
		fmt.Sprintf("enrolled %s in %s (%s)", enrollment.Snapshot.Name, course.Name, enrollment.TransactionID))
	logger.Info("enrollment created",
		"transaction_id", enrollment.TransactionID,
		"student_id", student.StudentID,
		"course", course.Name)

	enrollment.Course = *course
	return enrollment, nil
}

// resolveAdmissionFee picks the admission fee for a new enrollment:
// the caller's explicit fee, else the course's own fee, else the
// institute-wide default from settings.
func (s *EnrollmentService) resolveAdmissionFee(ctx context.Context, explicit *decimal.Decimal, course *models.Course) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	if !course.AdmissionFee.IsZero() {
		return course.AdmissionFee
	}
	return s.settings.DefaultAdmissionFee(ctx)
}

func defaultDueDate(enrollmentDate time.Time) time.Time {
	return enrollmentDate.AddDate(0, 0, defaultDuePeriodDays)
}

func snapshotStudent(student *models.Student) models.StudentSnapshot {
	email := ""
	if student.Email != nil {
		email = *student.Email
	}
	return models.StudentSnapshot{
		Name:           student.FullName(),
		Phone:          student.Phone,
		Email:          email,
		Address:        student.Address,
		City:           student.City,
		State:          student.State,
		Pincode:        student.Pincode,
		GuardianName:   student.GuardianName,
		GuardianPhone:  student.GuardianPhone,
		ReferralSource: student.ReferralSource,
	}
}

// Get returns an enrollment with its course and payment history
func (s *EnrollmentService) Get(ctx context.Context, id uint) (*models.Enrollment, error) {
	enrollment, err := s.repos.Enrollment.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return enrollment, nil
}

// GetByTransactionID returns an enrollment by its public identifier
func (s *EnrollmentService) GetByTransactionID(ctx context.Context, transactionID string) (*models.Enrollment, error) {
	enrollment, err := s.repos.Enrollment.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return enrollment, nil
}

// List returns enrollments matching the query and filter
func (s *EnrollmentService) List(ctx context.Context, query repository.ListQuery, filter repository.EnrollmentFilter) ([]models.Enrollment, int64, error) {
	return s.repos.Enrollment.List(ctx, query, filter)
}

// ListTrash returns soft-deleted enrollments
func (s *EnrollmentService) ListTrash(ctx context.Context, query repository.ListQuery) ([]models.Enrollment, int64, error) {
	return s.repos.Enrollment.ListDeleted(ctx, query)
}

// ListByStudent returns a student's active enrollments
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentRefID uint) ([]models.Enrollment, error) {
	if _, err := s.repos.Student.FindByID(ctx, studentRefID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.repos.Enrollment.ListByStudent(ctx, studentRefID, false)
}

// Update changes the editable enrollment fields and recomputes the
// settlement, since a plan change moves the next amount due.
func (s *EnrollmentService) Update(ctx context.Context, actorID *uint, id uint, input UpdateEnrollmentInput) (*models.Enrollment, error) {
	enrollment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.Deleted() {
		return nil, ValidationError("enrollment %s is deleted", enrollment.TransactionID)
	}

	if input.BatchTime != nil {
		enrollment.BatchTime = *input.BatchTime
	}
	if input.Notes != nil {
		enrollment.Notes = *input.Notes
	}
	if input.DueDate != nil {
		enrollment.DueDate = *input.DueDate
	}
	if input.PaymentType != nil {
		if !models.ValidPaymentType(*input.PaymentType) {
			return nil, ValidationError("unknown payment type %q", *input.PaymentType)
		}
		enrollment.PaymentType = *input.PaymentType
	}
	if input.TotalInstallments != nil {
		enrollment.TotalInstallments = *input.TotalInstallments
	}
	if input.CourseDuration != nil {
		enrollment.CourseDuration = *input.CourseDuration
	}

	if err := s.recompute(ctx, enrollment); err != nil {
		return nil, err
	}
	if err := s.repos.Enrollment.Update(ctx, enrollment); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, models.AuditActionUpdate, "enrollment", enrollment.ID, "enrollment terms updated")
	return enrollment, nil
}

// AddPayment records a payment against an enrollment and recomputes its
// settlement. The first payment on an enrollment is dated to the
// enrollment date regardless of the submitted date; admission money
// collected at the counter belongs to admission day.
func (s *EnrollmentService) AddPayment(ctx context.Context, actorID *uint, enrollmentID uint, input AddPaymentInput) (*models.Payment, error) {
	enrollment, err := s.Get(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Deleted() {
		return nil, ValidationError("enrollment %s is deleted", enrollment.TransactionID)
	}
	if input.PaymentMode != "" && !models.ValidPaymentMode(input.PaymentMode) {
		return nil, ValidationError("unknown payment mode %q", input.PaymentMode)
	}

	admissionPaid, err := s.repos.Payment.SumByCategory(ctx, enrollment.ID, models.PaymentCategoryAdmission)
	if err != nil {
		return nil, err
	}
	coursePaid, err := s.repos.Payment.SumByCategory(ctx, enrollment.ID, models.PaymentCategoryCourse)
	if err != nil {
		return nil, err
	}

	// validate the amount exactly as it will be stored; a sub-cent value
	// must not slip through as a zero payment
	amount := input.Amount.Round(2)
	if err := ValidatePayment(enrollment, input.Category, amount, admissionPaid, coursePaid); err != nil {
		return nil, err
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	count, err := s.repos.Payment.CountByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		paymentDate = enrollment.EnrollmentDate
	}

	mode := input.PaymentMode
	if mode == "" {
		mode = models.PaymentModeCash
	}

	payment := &models.Payment{
		EnrollmentID: enrollment.ID,
		Category:     input.Category,
		Amount:       amount,
		PaymentDate:  paymentDate,
		PaymentMode:  mode,
		Reference:    input.Reference,
		Notes:        input.Notes,
		Status:       models.PaymentStatusPaid,
		ReceivedByID: actorID,
	}
	if err := s.repos.Payment.Create(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.Recompute(ctx, enrollment); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, models.AuditActionPayment, "enrollment", enrollment.ID,
		fmt.Sprintf("received %s towards %s on %s", payment.Amount.StringFixed(2), payment.Category, enrollment.TransactionID))
	s.notifier.NotifyAdmins(ctx,
		"Payment received",
		fmt.Sprintf("%s paid %s (%s) on %s", enrollment.Snapshot.Name, payment.Amount.StringFixed(2), payment.Category, enrollment.TransactionID),
		models.NotificationTypePaymentRecorded)
	logger.Info("payment recorded",
		"transaction_id", enrollment.TransactionID,
		"category", payment.Category,
		"amount", payment.Amount.StringFixed(2),
		"payment_status", enrollment.PaymentStatus)

	return payment, nil
}

// Recompute re-derives the settlement columns from payment history and
// persists them.
func (s *EnrollmentService) Recompute(ctx context.Context, enrollment *models.Enrollment) error {
	if err := s.recompute(ctx, enrollment); err != nil {
		return err
	}
	return s.repos.Enrollment.Update(ctx, enrollment)
}

func (s *EnrollmentService) recompute(ctx context.Context, enrollment *models.Enrollment) error {
	admissionPaid, err := s.repos.Payment.SumByCategory(ctx, enrollment.ID, models.PaymentCategoryAdmission)
	if err != nil {
		return err
	}
	coursePaid, err := s.repos.Payment.SumByCategory(ctx, enrollment.ID, models.PaymentCategoryCourse)
	if err != nil {
		return err
	}

	settled := ComputeSettlement(enrollment, admissionPaid, coursePaid)
	if settled.Status != enrollment.PaymentStatus {
		machine := statemachine.NewPaymentStatusFSM(enrollment.PaymentStatus)
		if err := machine.TransitionTo(ctx, settled.Status); err != nil {
			return err
		}
	}
	applySettlement(enrollment, settled)
	return nil
}

func applySettlement(enrollment *models.Enrollment, s Settlement) {
	enrollment.FinalAmount = s.FinalAmount
	enrollment.AmountPaid = s.AmountPaid
	enrollment.AmountRemaining = s.AmountRemaining
	enrollment.AmountDue = s.AmountDue
	enrollment.PaymentStatus = s.Status
}

// Delete soft-deletes an enrollment. When it was the student's last
// active enrollment the student record goes with it.
func (s *EnrollmentService) Delete(ctx context.Context, actorID *uint, id uint) error {
	enrollment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if enrollment.Deleted() {
		return nil
	}

	enrollment.MarkDeleted()
	if err := s.repos.Enrollment.Update(ctx, enrollment); err != nil {
		return err
	}

	remaining, err := s.repos.Enrollment.CountActiveByStudent(ctx, enrollment.StudentRefID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		student, err := s.repos.Student.FindByID(ctx, enrollment.StudentRefID)
		if err != nil {
			return err
		}
		if !student.Deleted() {
			student.MarkDeleted()
			if err := s.repos.Student.Update(ctx, student); err != nil {
				return err
			}
			s.audit.Record(ctx, actorID, models.AuditActionDelete, "student", student.ID,
				fmt.Sprintf("student %d removed with last enrollment", student.StudentID))
		}
	}

	s.audit.Record(ctx, actorID, models.AuditActionDelete, "enrollment", enrollment.ID,
		fmt.Sprintf("enrollment %s moved to trash", enrollment.TransactionID))
	return nil
}

// Restore brings a soft-deleted enrollment back. The owning student is
// restored along with it, whatever got them into the trash.
func (s *EnrollmentService) Restore(ctx context.Context, actorID *uint, id uint) (*models.Enrollment, error) {
	enrollment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !enrollment.Deleted() {
		return enrollment, nil
	}

	enrollment.Restore()
	if err := s.repos.Enrollment.Update(ctx, enrollment); err != nil {
		return nil, err
	}

	student, err := s.repos.Student.FindByID(ctx, enrollment.StudentRefID)
	if err != nil {
		return nil, err
	}
	if student.Deleted() {
		student.Restore()
		if err := s.repos.Student.Update(ctx, student); err != nil {
			return nil, err
		}
		s.audit.Record(ctx, actorID, models.AuditActionRestore, "student", student.ID,
			fmt.Sprintf("student %d restored with enrollment", student.StudentID))
	}

	s.audit.Record(ctx, actorID, models.AuditActionRestore, "enrollment", enrollment.ID,
		fmt.Sprintf("enrollment %s restored", enrollment.TransactionID))
	return enrollment, nil
}

// Complete marks the enrollment finished and assigns its certificate
// number if one has not been issued yet.
func (s *EnrollmentService) Complete(ctx context.Context, actorID *uint, id uint) (*models.Enrollment, error) {
	enrollment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.Deleted() {
		return nil, ValidationError("enrollment %s is deleted", enrollment.TransactionID)
	}
	if enrollment.IsCompleted() {
		return enrollment, nil
	}

	now := time.Now()
	enrollment.Status = models.EnrollmentStatusCompleted
	enrollment.CompletionDate = &now

	if err := s.ensureCertificateNumber(ctx, enrollment); err != nil {
		return nil, err
	}
	if err := s.repos.Enrollment.Update(ctx, enrollment); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, models.AuditActionComplete, "enrollment", enrollment.ID,
		fmt.Sprintf("course completed, certificate %s", *enrollment.CertificateNumber))
	return enrollment, nil
}

// Certificate returns the enrollment with a certificate number assigned,
// allocating one lazily on first view.
func (s *EnrollmentService) Certificate(ctx context.Context, id uint) (*models.Enrollment, error) {
	enrollment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.Deleted() {
		return nil, ValidationError("enrollment %s is deleted", enrollment.TransactionID)
	}
	if enrollment.CertificateNumber == nil {
		if err := s.ensureCertificateNumber(ctx, enrollment); err != nil {
			return nil, err
		}
		if err := s.repos.Enrollment.Update(ctx, enrollment); err != nil {
			return nil, err
		}
	}
	return enrollment, nil
}

func (s *EnrollmentService) ensureCertificateNumber(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.CertificateNumber != nil {
		return nil
	}
	return s.repos.Transaction(func(tx *repository.Repositories) error {
		seq, err := tx.Sequence.Next(ctx, models.SequenceCertificateNumber, certificateSeed)
		if err != nil {
			return err
		}
		number := fmt.Sprintf(certificateFormat, seq)
		enrollment.CertificateNumber = &number
		return nil
	})
}
