package models

import (
	"time"
)

// Enquiry status constants
const (
	EnquiryStatusNew       = "new"
	EnquiryStatusFollowUp  = "follow_up"
	EnquiryStatusConverted = "converted"
	EnquiryStatusClosed    = "closed"
)

// Enquiry is a prospective-student lead. Converting one creates a Student
// and stamps the enquiry with the student it became.
type Enquiry struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	FullName       string     `gorm:"not null" json:"full_name"`
	Phone          string     `gorm:"not null;index" json:"phone"`
	Email          *string    `json:"email"`
	CourseID       *uint      `gorm:"index" json:"course_id"`
	ReferralSource string     `json:"referral_source"`
	Message        string     `json:"message"`
	Status         string     `gorm:"not null;default:'new';index" json:"status"`
	FollowUpDate   *time.Time `gorm:"index" json:"follow_up_date"`
	ConvertedID    *uint      `json:"converted_student_id"`
	SoftDelete
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Course           *Course  `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	ConvertedStudent *Student `gorm:"foreignKey:ConvertedID" json:"-"`
}

// TableName specifies the table name for Enquiry
func (Enquiry) TableName() string {
	return "enquiries"
}

// IsConverted returns true once the enquiry has become a student.
func (e *Enquiry) IsConverted() bool {
	return e.Status == EnquiryStatusConverted && e.ConvertedID != nil
}

// EnquiryResponse is the JSON response format for enquiries
type EnquiryResponse struct {
	ID             uint       `json:"id"`
	FullName       string     `json:"full_name"`
	Phone          string     `json:"phone"`
	Email          *string    `json:"email"`
	CourseID       *uint      `json:"course_id"`
	CourseName     string     `json:"course_name,omitempty"`
	ReferralSource string     `json:"referral_source"`
	Message        string     `json:"message,omitempty"`
	Status         string     `json:"status"`
	FollowUpDate   *time.Time `json:"follow_up_date"`
	ConvertedID    *uint      `json:"converted_student_id"`
	IsDeleted      bool       `json:"is_deleted"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToResponse converts Enquiry to EnquiryResponse
func (e *Enquiry) ToResponse() EnquiryResponse {
	resp := EnquiryResponse{
		ID:             e.ID,
		FullName:       e.FullName,
		Phone:          e.Phone,
		Email:          e.Email,
		CourseID:       e.CourseID,
		ReferralSource: e.ReferralSource,
		Message:        e.Message,
		Status:         e.Status,
		FollowUpDate:   e.FollowUpDate,
		ConvertedID:    e.ConvertedID,
		IsDeleted:      e.IsDeleted,
		CreatedAt:      e.CreatedAt,
	}
	if e.Course != nil {
		resp.CourseName = e.Course.Name
	}
	return resp
}
