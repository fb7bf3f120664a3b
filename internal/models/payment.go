package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment category constants. Every payment row is tagged with the fee
// bucket it settles against.
const (
	PaymentCategoryAdmission = "Admission Fee"
	PaymentCategoryCourse    = "Course Fee"
)

// ValidPaymentCategory reports whether category is a recognised fee bucket.
func ValidPaymentCategory(category string) bool {
	return category == PaymentCategoryAdmission || category == PaymentCategoryCourse
}

// Payment is a single received amount against an enrollment. Rows are
// immutable once recorded; corrections happen by recording the right
// figures on a fresh enrollment, never by editing history.
type Payment struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	EnrollmentID uint            `gorm:"not null;index" json:"enrollment_id"`
	Category     string          `gorm:"not null;index" json:"category"`
	Amount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentDate  time.Time       `gorm:"not null;index" json:"payment_date"`
	PaymentMode  string          `gorm:"not null;default:'cash'" json:"payment_mode"`
	Reference    string          `json:"reference"`
	Notes        string          `json:"notes"`
	Status       string          `gorm:"not null;default:'paid'" json:"status"`
	ReceivedByID *uint           `json:"received_by_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Associations
	Enrollment Enrollment `gorm:"foreignKey:EnrollmentID" json:"-"`
	ReceivedBy *User      `gorm:"foreignKey:ReceivedByID" json:"-"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID           uint            `json:"id"`
	EnrollmentID uint            `json:"enrollment_id"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	PaymentDate  time.Time       `json:"payment_date"`
	PaymentMode  string          `json:"payment_mode"`
	Reference    string          `json:"reference,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Status       string          `json:"status"`
	ReceivedBy   string          `json:"received_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:           p.ID,
		EnrollmentID: p.EnrollmentID,
		Category:     p.Category,
		Amount:       p.Amount,
		PaymentDate:  p.PaymentDate,
		PaymentMode:  p.PaymentMode,
		Reference:    p.Reference,
		Notes:        p.Notes,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
	}
	if p.ReceivedBy != nil {
		resp.ReceivedBy = p.ReceivedBy.FullName
	}
	return resp
}
