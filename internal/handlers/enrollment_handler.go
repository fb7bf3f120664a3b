package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/careerpoint/institute-api/internal/middleware"
	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/repository"
	"github.com/careerpoint/institute-api/internal/services"
)

type createEnrollmentRequest struct {
	StudentRefID      uint             `json:"student_ref_id" binding:"required"`
	CourseID          uint             `json:"course_id" binding:"required"`
	EnrollmentDate    *Date            `json:"enrollment_date"`
	DueDate           *Date            `json:"due_date"`
	BatchTime         string           `json:"batch_time"`
	Notes             string           `json:"notes"`
	AdmissionFee      *decimal.Decimal `json:"admission_fee"`
	CourseFee         *decimal.Decimal `json:"course_fee"`
	Discount          decimal.Decimal  `json:"discount"`
	PaymentType       string           `json:"payment_type" binding:"required,oneof=one_time installment monthly"`
	TotalInstallments int              `json:"total_installments" binding:"omitempty,min=0"`
	CourseDuration    int              `json:"course_duration" binding:"omitempty,min=0"`
}

type updateEnrollmentRequest struct {
	BatchTime         *string `json:"batch_time"`
	Notes             *string `json:"notes"`
	DueDate           *Date   `json:"due_date"`
	PaymentType       *string `json:"payment_type" binding:"omitempty,oneof=one_time installment monthly"`
	TotalInstallments *int    `json:"total_installments" binding:"omitempty,min=0"`
	CourseDuration    *int    `json:"course_duration" binding:"omitempty,min=0"`
}

type addPaymentRequest struct {
	Category    string          `json:"category" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate *Date           `json:"payment_date"`
	PaymentMode string          `json:"payment_mode"`
	Reference   string          `json:"reference"`
	Notes       string          `json:"notes"`
}

// CreateEnrollment godoc
// @Summary Enroll a student in a course
// @Tags enrollments
// @Accept json
// @Produce json
// @Param body body createEnrollmentRequest true "enrollment"
// @Success 201 {object} models.EnrollmentResponse
// @Router /api/v1/enrollments [post]
func (h *Handlers) CreateEnrollment(c *gin.Context) {
	var req createEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateEnrollmentInput{
		StudentRefID:      req.StudentRefID,
		CourseID:          req.CourseID,
		BatchTime:         req.BatchTime,
		Notes:             req.Notes,
		AdmissionFee:      req.AdmissionFee,
		CourseFee:         req.CourseFee,
		Discount:          req.Discount,
		PaymentType:       req.PaymentType,
		TotalInstallments: req.TotalInstallments,
		CourseDuration:    req.CourseDuration,
	}
	if req.EnrollmentDate != nil && !req.EnrollmentDate.IsZero() {
		input.EnrollmentDate = req.EnrollmentDate.Time
	}
	if req.DueDate != nil && !req.DueDate.IsZero() {
		input.DueDate = req.DueDate.Time
	}

	enrollment, err := h.services.Enrollment.Create(c.Request.Context(), middleware.CurrentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": enrollment.ToResponse()})
}

// ListEnrollments returns enrollments with filters
func (h *Handlers) ListEnrollments(c *gin.Context) {
	query := listQuery(c)
	filter := repository.EnrollmentFilter{
		PaymentStatus: c.Query("payment_status"),
		Status:        c.Query("status"),
	}
	if studentID, ok := uintQuery(c, "student_id"); ok {
		filter.StudentRefID = studentID
	}
	if courseID, ok := uintQuery(c, "course_id"); ok {
		filter.CourseID = courseID
	}

	enrollments, total, err := h.services.Enrollment.List(c.Request.Context(), query, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		out = append(out, enrollments[i].ToResponse())
	}
	respondList(c, out, total, query)
}

// ListEnrollmentTrash returns soft-deleted enrollments
func (h *Handlers) ListEnrollmentTrash(c *gin.Context) {
	query := listQuery(c)
	enrollments, total, err := h.services.Enrollment.ListTrash(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		out = append(out, enrollments[i].ToResponse())
	}
	respondList(c, out, total, query)
}

// GetEnrollment returns one enrollment with course and payment history
func (h *Handlers) GetEnrollment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	enrollment, err := h.services.Enrollment.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": enrollment.ToResponse()})
}

// UpdateEnrollment edits the schedule and plan split
func (h *Handlers) UpdateEnrollment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.UpdateEnrollmentInput{
		BatchTime:         req.BatchTime,
		Notes:             req.Notes,
		PaymentType:       req.PaymentType,
		TotalInstallments: req.TotalInstallments,
		CourseDuration:    req.CourseDuration,
	}
	if req.DueDate != nil && !req.DueDate.IsZero() {
		input.DueDate = req.DueDate.TimePtr()
	}
	enrollment, err := h.services.Enrollment.Update(c.Request.Context(), middleware.CurrentUserID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": enrollment.ToResponse()})
}

// AddPayment godoc
// @Summary Record a payment against an enrollment
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path int true "enrollment id"
// @Param body body addPaymentRequest true "payment"
// @Success 201 {object} models.PaymentResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/enrollments/{id}/payments [post]
func (h *Handlers) AddPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req addPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.AddPaymentInput{
		Category:    req.Category,
		Amount:      req.Amount,
		PaymentMode: req.PaymentMode,
		Reference:   req.Reference,
		Notes:       req.Notes,
	}
	if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
		input.PaymentDate = req.PaymentDate.Time
	}

	payment, err := h.services.Enrollment.AddPayment(c.Request.Context(), middleware.CurrentUserID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": payment.ToResponse()})
}

// ListPayments returns an enrollment's payment history
func (h *Handlers) ListPayments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	enrollment, err := h.services.Enrollment.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.PaymentResponse, 0, len(enrollment.Payments))
	for i := range enrollment.Payments {
		out = append(out, enrollment.Payments[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// PaymentReceipt streams a PDF receipt for one payment
func (h *Handlers) PaymentReceipt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	paymentID, ok := pathID(c, "paymentId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}

	enrollment, err := h.services.Enrollment.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	var payment *models.Payment
	for i := range enrollment.Payments {
		if enrollment.Payments[i].ID == paymentID {
			payment = &enrollment.Payments[i]
			break
		}
	}
	if payment == nil {
		respondError(c, services.ErrNotFound)
		return
	}

	pdf, err := h.services.Receipt.PaymentReceipt(c.Request.Context(), enrollment, payment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="receipt.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// FeeStatement streams the full fee statement PDF
func (h *Handlers) FeeStatement(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	enrollment, err := h.services.Enrollment.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	pdf, err := h.services.Receipt.FeeStatement(c.Request.Context(), enrollment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="statement.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// CompleteEnrollment marks the course finished and issues the certificate
func (h *Handlers) CompleteEnrollment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	enrollment, err := h.services.Enrollment.Complete(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": enrollment.ToResponse()})
}

// Certificate streams the completion certificate PDF, assigning a
// certificate number on first view.
func (h *Handlers) Certificate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	enrollment, err := h.services.Enrollment.Certificate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	pdf, err := h.services.Receipt.Certificate(c.Request.Context(), enrollment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="certificate.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// DeleteEnrollment soft-deletes an enrollment, cascading to the student
// when it was their last one.
func (h *Handlers) DeleteEnrollment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.services.Enrollment.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "enrollment moved to trash"})
}

// RestoreEnrollment brings a soft-deleted enrollment (and its student) back
func (h *Handlers) RestoreEnrollment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	enrollment, err := h.services.Enrollment.Restore(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": enrollment.ToResponse()})
}
