package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment type constants
const (
	PaymentTypeOneTime     = "one_time"
	PaymentTypeInstallment = "installment"
	PaymentTypeMonthly     = "monthly"
)

// Payment status constants
const (
	PaymentStatusDue     = "due"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// Enrollment status constants
const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusDropped   = "dropped"
)

// ValidPaymentType reports whether t is a recognised payment plan.
func ValidPaymentType(t string) bool {
	switch t {
	case PaymentTypeOneTime, PaymentTypeInstallment, PaymentTypeMonthly:
		return true
	}
	return false
}

// StudentSnapshot captures the student's identity at enrollment time.
// Later edits to the student record do not rewrite history on the
// enrollment; receipts and exports read these fields.
type StudentSnapshot struct {
	Name           string `gorm:"column:snapshot_name" json:"name"`
	Phone          string `gorm:"column:snapshot_phone" json:"phone"`
	Email          string `gorm:"column:snapshot_email" json:"email"`
	Address        string `gorm:"column:snapshot_address" json:"address"`
	City           string `gorm:"column:snapshot_city" json:"city"`
	State          string `gorm:"column:snapshot_state" json:"state"`
	Pincode        string `gorm:"column:snapshot_pincode" json:"pincode"`
	GuardianName   string `gorm:"column:snapshot_guardian_name" json:"guardian_name"`
	GuardianPhone  string `gorm:"column:snapshot_guardian_phone" json:"guardian_phone"`
	ReferralSource string `gorm:"column:snapshot_referral_source" json:"referral_source"`
}

// Enrollment ties a student to a course with its own fee terms. All money
// columns are numeric(12,2); the settlement engine recomputes the derived
// columns (FinalAmount, AmountPaid, AmountRemaining, AmountDue,
// PaymentStatus) after every payment mutation.
type Enrollment struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	TransactionID string `gorm:"uniqueIndex;not null" json:"transaction_id"`
	StudentRefID  uint   `gorm:"not null;index" json:"student_ref_id"`
	CourseID      uint   `gorm:"not null;index" json:"course_id"`

	Snapshot StudentSnapshot `gorm:"embedded" json:"snapshot"`

	EnrollmentDate time.Time `gorm:"not null" json:"enrollment_date"`
	DueDate        time.Time `gorm:"not null;index" json:"due_date"`
	BatchTime      string    `json:"batch_time"`
	Notes          string    `json:"notes"`

	// Fee terms, fixed at creation
	AdmissionFee      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"admission_fee"`
	CourseFee         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"course_fee"`
	Discount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	PaymentType       string          `gorm:"not null;default:'one_time'" json:"payment_type"`
	TotalInstallments int             `gorm:"default:0" json:"total_installments"`
	CourseDuration    int             `gorm:"default:0" json:"course_duration"`

	// Derived by the settlement engine
	FinalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"final_amount"`
	AmountPaid      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount_paid"`
	AmountRemaining decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount_remaining"`
	AmountDue       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount_due"`
	PaymentStatus   string          `gorm:"not null;default:'due';index" json:"payment_status"`

	Status            string     `gorm:"not null;default:'active';index" json:"status"`
	CompletionDate    *time.Time `json:"completion_date"`
	CertificateNumber *string    `gorm:"uniqueIndex" json:"certificate_number"`

	SoftDelete
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Student  Student   `gorm:"foreignKey:StudentRefID" json:"-"`
	Course   Course    `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Payments []Payment `gorm:"foreignKey:EnrollmentID" json:"payments,omitempty"`
}

// TableName specifies the table name for Enrollment
func (Enrollment) TableName() string {
	return "enrollments"
}

// IsSettled returns true when nothing remains to be collected.
func (e *Enrollment) IsSettled() bool {
	return e.AmountRemaining.IsZero()
}

// IsCompleted returns true when the course has been marked complete.
func (e *Enrollment) IsCompleted() bool {
	return e.Status == EnrollmentStatusCompleted
}

// IsOverdue returns true when money remains outstanding past the due date.
func (e *Enrollment) IsOverdue(asOf time.Time) bool {
	return !e.AmountRemaining.IsZero() && e.DueDate.Before(asOf)
}

// DiscountedCourseFee returns max(course_fee - discount, 0).
func (e *Enrollment) DiscountedCourseFee() decimal.Decimal {
	d := e.CourseFee.Sub(e.Discount)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// EnrollmentResponse is the JSON response format for enrollments
type EnrollmentResponse struct {
	ID                uint            `json:"id"`
	TransactionID     string          `json:"transaction_id"`
	StudentRefID      uint            `json:"student_ref_id"`
	CourseID          uint            `json:"course_id"`
	CourseName        string          `json:"course_name,omitempty"`
	StudentName       string          `json:"student_name"`
	StudentPhone      string          `json:"student_phone"`
	EnrollmentDate    time.Time       `json:"enrollment_date"`
	DueDate           time.Time       `json:"due_date"`
	BatchTime         string          `json:"batch_time,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	AdmissionFee      decimal.Decimal `json:"admission_fee"`
	CourseFee         decimal.Decimal `json:"course_fee"`
	Discount          decimal.Decimal `json:"discount"`
	PaymentType       string          `json:"payment_type"`
	TotalInstallments int             `json:"total_installments"`
	CourseDuration    int             `json:"course_duration"`
	FinalAmount       decimal.Decimal `json:"final_amount"`
	AmountPaid        decimal.Decimal `json:"amount_paid"`
	AmountRemaining   decimal.Decimal `json:"amount_remaining"`
	AmountDue         decimal.Decimal `json:"amount_due"`
	PaymentStatus     string          `json:"payment_status"`
	Status            string          `json:"status"`
	CompletionDate    *time.Time      `json:"completion_date"`
	CertificateNumber *string         `json:"certificate_number"`
	IsDeleted         bool            `json:"is_deleted"`
	DeletedAt         *time.Time      `json:"deleted_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`

	Payments []PaymentResponse `json:"payments,omitempty"`
}

// ToResponse converts Enrollment to EnrollmentResponse
func (e *Enrollment) ToResponse() EnrollmentResponse {
	resp := EnrollmentResponse{
		ID:                e.ID,
		TransactionID:     e.TransactionID,
		StudentRefID:      e.StudentRefID,
		CourseID:          e.CourseID,
		StudentName:       e.Snapshot.Name,
		StudentPhone:      e.Snapshot.Phone,
		EnrollmentDate:    e.EnrollmentDate,
		DueDate:           e.DueDate,
		BatchTime:         e.BatchTime,
		Notes:             e.Notes,
		AdmissionFee:      e.AdmissionFee,
		CourseFee:         e.CourseFee,
		Discount:          e.Discount,
		PaymentType:       e.PaymentType,
		TotalInstallments: e.TotalInstallments,
		CourseDuration:    e.CourseDuration,
		FinalAmount:       e.FinalAmount,
		AmountPaid:        e.AmountPaid,
		AmountRemaining:   e.AmountRemaining,
		AmountDue:         e.AmountDue,
		PaymentStatus:     e.PaymentStatus,
		Status:            e.Status,
		CompletionDate:    e.CompletionDate,
		CertificateNumber: e.CertificateNumber,
		IsDeleted:         e.IsDeleted,
		DeletedAt:         e.DeletedAt,
		CreatedAt:         e.CreatedAt,
	}
	if e.Course.ID != 0 {
		resp.CourseName = e.Course.Name
	}
	for i := range e.Payments {
		resp.Payments = append(resp.Payments, e.Payments[i].ToResponse())
	}
	return resp
}
