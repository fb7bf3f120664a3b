package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/careerpoint/institute-api/internal/middleware"
	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/services"
)

type createExpenseRequest struct {
	Title       string          `json:"title" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	ExpenseDate *Date           `json:"expense_date"`
	PaymentMode string          `json:"payment_mode"`
	Notes       string          `json:"notes"`
}

type updateExpenseRequest struct {
	Title       *string          `json:"title"`
	Category    *string          `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
	ExpenseDate *Date            `json:"expense_date"`
	PaymentMode *string          `json:"payment_mode"`
	Notes       *string          `json:"notes"`
}

// CreateExpense records an expense
func (h *Handlers) CreateExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateExpenseInput{
		Title:       req.Title,
		Category:    req.Category,
		Amount:      req.Amount,
		PaymentMode: req.PaymentMode,
		Notes:       req.Notes,
	}
	if req.ExpenseDate != nil && !req.ExpenseDate.IsZero() {
		input.ExpenseDate = req.ExpenseDate.Time
	}

	expense, err := h.services.Expense.Create(c.Request.Context(), middleware.CurrentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": expense.ToResponse()})
}

// ListExpenses returns expenses with optional category and date filters
func (h *Handlers) ListExpenses(c *gin.Context) {
	query := listQuery(c)

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			from = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			end := t.AddDate(0, 0, 1)
			to = &end
		}
	}

	expenses, total, err := h.services.Expense.List(c.Request.Context(), query, c.Query("category"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		out = append(out, expenses[i].ToResponse())
	}
	respondList(c, out, total, query)
}

// ListExpenseTrash returns soft-deleted expenses
func (h *Handlers) ListExpenseTrash(c *gin.Context) {
	query := listQuery(c)
	expenses, total, err := h.services.Expense.ListTrash(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		out = append(out, expenses[i].ToResponse())
	}
	respondList(c, out, total, query)
}

// GetExpense returns one expense
func (h *Handlers) GetExpense(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	expense, err := h.services.Expense.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": expense.ToResponse()})
}

// UpdateExpense edits an expense
func (h *Handlers) UpdateExpense(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.UpdateExpenseInput{
		Title:       req.Title,
		Category:    req.Category,
		Amount:      req.Amount,
		PaymentMode: req.PaymentMode,
		Notes:       req.Notes,
	}
	if req.ExpenseDate != nil {
		input.ExpenseDate = req.ExpenseDate.TimePtr()
	}

	expense, err := h.services.Expense.Update(c.Request.Context(), middleware.CurrentUserID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": expense.ToResponse()})
}

// DeleteExpense soft-deletes an expense
func (h *Handlers) DeleteExpense(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.services.Expense.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "expense moved to trash"})
}

// RestoreExpense brings a soft-deleted expense back
func (h *Handlers) RestoreExpense(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	expense, err := h.services.Expense.Restore(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": expense.ToResponse()})
}
