package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense category constants
const (
	ExpenseCategoryRent        = "rent"
	ExpenseCategorySalary      = "salary"
	ExpenseCategoryUtilities   = "utilities"
	ExpenseCategoryMarketing   = "marketing"
	ExpenseCategoryMaintenance = "maintenance"
	ExpenseCategoryStationery  = "stationery"
	ExpenseCategoryOther       = "other"
)

// Expense is an institute outgoing; feeds the monthly net-revenue report.
type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"not null" json:"title"`
	Category    string          `gorm:"not null;index" json:"category"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	ExpenseDate time.Time       `gorm:"not null;index" json:"expense_date"`
	PaymentMode string          `gorm:"not null;default:'cash'" json:"payment_mode"`
	Notes       string          `json:"notes"`
	RecordedByID *uint          `json:"recorded_by_id"`
	SoftDelete
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	RecordedBy *User `gorm:"foreignKey:RecordedByID" json:"-"`
}

// TableName specifies the table name for Expense
func (Expense) TableName() string {
	return "expenses"
}

// ExpenseResponse is the JSON response format for expenses
type ExpenseResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expense_date"`
	PaymentMode string          `json:"payment_mode"`
	Notes       string          `json:"notes,omitempty"`
	RecordedBy  string          `json:"recorded_by,omitempty"`
	IsDeleted   bool            `json:"is_deleted"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToResponse converts Expense to ExpenseResponse
func (e *Expense) ToResponse() ExpenseResponse {
	resp := ExpenseResponse{
		ID:          e.ID,
		Title:       e.Title,
		Category:    e.Category,
		Amount:      e.Amount,
		ExpenseDate: e.ExpenseDate,
		PaymentMode: e.PaymentMode,
		Notes:       e.Notes,
		IsDeleted:   e.IsDeleted,
		CreatedAt:   e.CreatedAt,
	}
	if e.RecordedBy != nil {
		resp.RecordedBy = e.RecordedBy.FullName
	}
	return resp
}
