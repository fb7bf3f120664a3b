package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerpoint/institute-api/internal/middleware"
	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/services"
)

type createEnquiryRequest struct {
	FullName       string  `json:"full_name" binding:"required"`
	Phone          string  `json:"phone" binding:"required"`
	Email          *string `json:"email" binding:"omitempty,email"`
	CourseID       *uint   `json:"course_id"`
	ReferralSource string  `json:"referral_source"`
	Message        string  `json:"message"`
	FollowUpDate   *Date   `json:"follow_up_date"`
}

type updateEnquiryRequest struct {
	FullName       *string `json:"full_name"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email" binding:"omitempty,email"`
	CourseID       *uint   `json:"course_id"`
	ReferralSource *string `json:"referral_source"`
	Message        *string `json:"message"`
	Status         *string `json:"status"`
	FollowUpDate   *Date   `json:"follow_up_date"`
}

// CreateEnquiry records a prospective-student lead
func (h *Handlers) CreateEnquiry(c *gin.Context) {
	var req createEnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateEnquiryInput{
		FullName:       req.FullName,
		Phone:          req.Phone,
		Email:          req.Email,
		CourseID:       req.CourseID,
		ReferralSource: req.ReferralSource,
		Message:        req.Message,
	}
	if req.FollowUpDate != nil {
		input.FollowUpDate = req.FollowUpDate.TimePtr()
	}

	enquiry, err := h.services.Enquiry.Create(c.Request.Context(), middleware.CurrentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": enquiry.ToResponse()})
}

// ListEnquiries returns enquiries, optionally filtered by status
func (h *Handlers) ListEnquiries(c *gin.Context) {
	query := listQuery(c)
	enquiries, total, err := h.services.Enquiry.List(c.Request.Context(), query, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.EnquiryResponse, 0, len(enquiries))
	for i := range enquiries {
		out = append(out, enquiries[i].ToResponse())
	}
	respondList(c, out, total, query)
}

// ListEnquiryTrash returns soft-deleted enquiries
func (h *Handlers) ListEnquiryTrash(c *gin.Context) {
	query := listQuery(c)
	enquiries, total, err := h.services.Enquiry.ListTrash(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.EnquiryResponse, 0, len(enquiries))
	for i := range enquiries {
		out = append(out, enquiries[i].ToResponse())
	}
	respondList(c, out, total, query)
}

// GetEnquiry returns one enquiry
func (h *Handlers) GetEnquiry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	enquiry, err := h.services.Enquiry.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": enquiry.ToResponse()})
}

// UpdateEnquiry edits an enquiry
func (h *Handlers) UpdateEnquiry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateEnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.UpdateEnquiryInput{
		FullName:       req.FullName,
		Phone:          req.Phone,
		Email:          req.Email,
		CourseID:       req.CourseID,
		ReferralSource: req.ReferralSource,
		Message:        req.Message,
		Status:         req.Status,
	}
	if req.FollowUpDate != nil {
		input.FollowUpDate = req.FollowUpDate.TimePtr()
	}

	enquiry, err := h.services.Enquiry.Update(c.Request.Context(), middleware.CurrentUserID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": enquiry.ToResponse()})
}

// ConvertEnquiry turns an enquiry into an admitted student
func (h *Handlers) ConvertEnquiry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	enquiry, student, err := h.services.Enquiry.Convert(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":    enquiry.ToResponse(),
		"student": student.ToResponse(),
	})
}

// ResolveEnquiryReference looks up the student an enquirer named as a
// reference, by registration number or name
func (h *Handlers) ResolveEnquiryReference(c *gin.Context) {
	student, enrollments, err := h.services.Enquiry.ResolveReference(c.Request.Context(), c.Query("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		out = append(out, enrollments[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"student":     student.ToResponse(),
			"enrollments": out,
		},
	})
}

// DeleteEnquiry soft-deletes an enquiry
func (h *Handlers) DeleteEnquiry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.services.Enquiry.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "enquiry moved to trash"})
}

// RestoreEnquiry brings a soft-deleted enquiry back
func (h *Handlers) RestoreEnquiry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	enquiry, err := h.services.Enquiry.Restore(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": enquiry.ToResponse()})
}
