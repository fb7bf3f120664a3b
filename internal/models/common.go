package models

import (
	"time"
)

// SoftDelete marks a record inactive instead of removing it. Entities that
// support the trash/restore flow embed it (Student, Enrollment, Course,
// Team, Expense, Enquiry).
type SoftDelete struct {
	IsDeleted bool       `gorm:"default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// MarkDeleted flags the record as deleted and stamps the deletion time.
func (s *SoftDelete) MarkDeleted() {
	now := time.Now()
	s.IsDeleted = true
	s.DeletedAt = &now
}

// Restore clears the deletion flag and timestamp.
func (s *SoftDelete) Restore() {
	s.IsDeleted = false
	s.DeletedAt = nil
}

// Deleted reports whether the record is soft-deleted.
func (s *SoftDelete) Deleted() bool {
	return s.IsDeleted
}

// Sequence is a named monotonic counter. Identifier assignment (student id,
// transaction id, certificate number, employee code) increments the row
// under a SELECT ... FOR UPDATE lock so concurrent creations never reuse a
// value.
type Sequence struct {
	Name      string    `gorm:"primaryKey;size:50" json:"name"`
	Value     int64     `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Sequence
func (Sequence) TableName() string {
	return "sequences"
}

// Sequence names
const (
	SequenceStudentID         = "student_id"
	SequenceTransactionID     = "transaction_id"
	SequenceCertificateNumber = "certificate_number"
	SequenceEmployeeCode      = "employee_code"
)

// Notification represents an admin notification
type Notification struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;index" json:"user_id"`
	Title            string     `gorm:"not null" json:"title"`
	Message          string     `gorm:"not null" json:"message"`
	NotificationType *string    `gorm:"index" json:"notification_type"`
	ReadAt           *time.Time `gorm:"index" json:"read_at"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Associations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// Notification type constants
const (
	NotificationTypeOverdueDues     = "overdue_dues"
	NotificationTypePaymentRecorded = "payment_recorded"
	NotificationTypeNewEnquiry      = "new_enquiry"
	NotificationTypeSystem          = "system"
)

// IsRead returns true if notification has been read
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// MarkAsRead marks the notification as read
func (n *Notification) MarkAsRead() {
	now := time.Now()
	n.ReadAt = &now
}

// NotificationResponse is the JSON response format
type NotificationResponse struct {
	ID               uint       `json:"id"`
	Title            string     `json:"title"`
	Message          string     `json:"message"`
	NotificationType *string    `json:"notification_type"`
	Read             bool       `json:"read"`
	ReadAt           *time.Time `json:"read_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ToResponse converts Notification to NotificationResponse
func (n *Notification) ToResponse() NotificationResponse {
	return NotificationResponse{
		ID:               n.ID,
		Title:            n.Title,
		Message:          n.Message,
		NotificationType: n.NotificationType,
		Read:             n.IsRead(),
		ReadAt:           n.ReadAt,
		CreatedAt:        n.CreatedAt,
	}
}

// RefreshToken represents a JWT refresh token
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Associations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for RefreshToken
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsExpired returns true if the refresh token has expired
func (r *RefreshToken) IsExpired() bool {
	if r.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*r.ExpiresAt)
}

// Referral source constants shared by Student and Enquiry
const (
	ReferralSourceInstagram = "instagram"
	ReferralSourceFacebook  = "facebook"
	ReferralSourceFriend    = "friend"
	ReferralSourceRelative  = "relative"
	ReferralSourceNewspaper = "newspaper"
	ReferralSourceOther     = "other"
)

// Payment mode constants
const (
	PaymentModeCash         = "cash"
	PaymentModeCard         = "card"
	PaymentModeUPI          = "upi"
	PaymentModeBankTransfer = "bank_transfer"
	PaymentModeOnline       = "online"
)

// ValidPaymentMode reports whether mode is one of the accepted modes.
func ValidPaymentMode(mode string) bool {
	switch mode {
	case PaymentModeCash, PaymentModeCard, PaymentModeUPI, PaymentModeBankTransfer, PaymentModeOnline:
		return true
	}
	return false
}
