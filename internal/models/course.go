package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Course represents an offered course. Fee and duration values on the
// course are defaults only; each enrollment snapshots its own figures.
type Course struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"not null;uniqueIndex" json:"name"`
	Code           string          `gorm:"index" json:"code"`
	Description    string          `json:"description"`
	DurationMonths int             `gorm:"not null;default:0" json:"duration_months"`
	Fee            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"fee"`
	AdmissionFee   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"admission_fee"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	SoftDelete
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Course
func (Course) TableName() string {
	return "courses"
}

// CourseResponse is the JSON response format for courses
type CourseResponse struct {
	ID             uint            `json:"id"`
	Name           string          `json:"name"`
	Code           string          `json:"code"`
	Description    string          `json:"description"`
	DurationMonths int             `json:"duration_months"`
	Fee            decimal.Decimal `json:"fee"`
	AdmissionFee   decimal.Decimal `json:"admission_fee"`
	IsActive       bool            `json:"is_active"`
	IsDeleted      bool            `json:"is_deleted"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToResponse converts Course to CourseResponse
func (c *Course) ToResponse() CourseResponse {
	return CourseResponse{
		ID:             c.ID,
		Name:           c.Name,
		Code:           c.Code,
		Description:    c.Description,
		DurationMonths: c.DurationMonths,
		Fee:            c.Fee,
		AdmissionFee:   c.AdmissionFee,
		IsActive:       c.IsActive,
		IsDeleted:      c.IsDeleted,
		CreatedAt:      c.CreatedAt,
	}
}

// Setting is a key/value institute configuration row. Values the fee
// engine and receipts read (institute name, address, default admission
// fee) live here.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;not null;size:100" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Setting
func (Setting) TableName() string {
	return "settings"
}

// Setting key constants
const (
	SettingInstituteName       = "institute_name"
	SettingInstituteAddress    = "institute_address"
	SettingInstitutePhone      = "institute_phone"
	SettingInstituteEmail      = "institute_email"
	SettingDefaultAdmissionFee = "default_admission_fee"
	SettingReceiptFooter       = "receipt_footer"
)
