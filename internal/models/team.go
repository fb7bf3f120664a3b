package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Team represents an institute staff/faculty member. EmployeeCode is
// assigned from the employee_code sequence at creation.
type Team struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	EmployeeCode string          `gorm:"uniqueIndex;not null" json:"employee_code"`
	FullName     string          `gorm:"not null" json:"full_name"`
	Designation  string          `gorm:"not null" json:"designation"`
	Phone        string          `gorm:"not null" json:"phone"`
	Email        *string         `json:"email"`
	JoiningDate  time.Time       `gorm:"not null" json:"joining_date"`
	Salary       decimal.Decimal `gorm:"type:numeric(12,2)" json:"salary"`
	PhotoPath    string          `json:"photo_path"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	SoftDelete
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Team
func (Team) TableName() string {
	return "team_members"
}

// TeamResponse is the JSON response format for team members
type TeamResponse struct {
	ID           uint            `json:"id"`
	EmployeeCode string          `json:"employee_code"`
	FullName     string          `json:"full_name"`
	Designation  string          `json:"designation"`
	Phone        string          `json:"phone"`
	Email        *string         `json:"email"`
	JoiningDate  time.Time       `json:"joining_date"`
	Salary       decimal.Decimal `json:"salary"`
	PhotoPath    string          `json:"photo_path,omitempty"`
	IsActive     bool            `json:"is_active"`
	IsDeleted    bool            `json:"is_deleted"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToResponse converts Team to TeamResponse
func (t *Team) ToResponse() TeamResponse {
	return TeamResponse{
		ID:           t.ID,
		EmployeeCode: t.EmployeeCode,
		FullName:     t.FullName,
		Designation:  t.Designation,
		Phone:        t.Phone,
		Email:        t.Email,
		JoiningDate:  t.JoiningDate,
		Salary:       t.Salary,
		PhotoPath:    t.PhotoPath,
		IsActive:     t.IsActive,
		IsDeleted:    t.IsDeleted,
		CreatedAt:    t.CreatedAt,
	}
}
