package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/careerpoint/institute-api/internal/middleware"
	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/services"
)

type createCourseRequest struct {
	Name           string          `json:"name" binding:"required"`
	Code           string          `json:"code"`
	Description    string          `json:"description"`
	DurationMonths int             `json:"duration_months" binding:"omitempty,min=0"`
	Fee            decimal.Decimal `json:"fee" binding:"required"`
	AdmissionFee   decimal.Decimal `json:"admission_fee"`
}

type updateCourseRequest struct {
	Name           *string          `json:"name"`
	Code           *string          `json:"code"`
	Description    *string          `json:"description"`
	DurationMonths *int             `json:"duration_months"`
	Fee            *decimal.Decimal `json:"fee"`
	AdmissionFee   *decimal.Decimal `json:"admission_fee"`
	IsActive       *bool            `json:"is_active"`
}

// CreateCourse adds a course to the catalogue
func (h *Handlers) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, err := h.services.Course.Create(c.Request.Context(), middleware.CurrentUserID(c), services.CreateCourseInput{
		Name:           req.Name,
		Code:           req.Code,
		Description:    req.Description,
		DurationMonths: req.DurationMonths,
		Fee:            req.Fee,
		AdmissionFee:   req.AdmissionFee,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": course.ToResponse()})
}

// ListCourses returns courses; ?active=true limits to open ones
func (h *Handlers) ListCourses(c *gin.Context) {
	query := listQuery(c)
	activeOnly := c.Query("active") == "true"
	courses, total, err := h.services.Course.List(c.Request.Context(), query, activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, courses[i].ToResponse())
	}
	respondList(c, out, total, query)
}

// ListCourseTrash returns soft-deleted courses
func (h *Handlers) ListCourseTrash(c *gin.Context) {
	query := listQuery(c)
	courses, total, err := h.services.Course.ListTrash(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, courses[i].ToResponse())
	}
	respondList(c, out, total, query)
}

// GetCourse returns one course
func (h *Handlers) GetCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	course, err := h.services.Course.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": course.ToResponse()})
}

// UpdateCourse edits a course
func (h *Handlers) UpdateCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, err := h.services.Course.Update(c.Request.Context(), middleware.CurrentUserID(c), id, services.UpdateCourseInput{
		Name:           req.Name,
		Code:           req.Code,
		Description:    req.Description,
		DurationMonths: req.DurationMonths,
		Fee:            req.Fee,
		AdmissionFee:   req.AdmissionFee,
		IsActive:       req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": course.ToResponse()})
}

// DeleteCourse soft-deletes a course without active enrollments
func (h *Handlers) DeleteCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.services.Course.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "course moved to trash"})
}

// RestoreCourse brings a soft-deleted course back
func (h *Handlers) RestoreCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	course, err := h.services.Course.Restore(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": course.ToResponse()})
}
