package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerpoint/institute-api/internal/middleware"
	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/services"
)

type createStudentRequest struct {
	FirstName      string  `json:"first_name" binding:"required"`
	LastName       string  `json:"last_name"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          string  `json:"phone" binding:"required"`
	AltPhone       string  `json:"alt_phone"`
	DateOfBirth    *Date   `json:"date_of_birth"`
	Gender         string  `json:"gender" binding:"omitempty,oneof=male female other"`
	Address        string  `json:"address"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	Pincode        string  `json:"pincode"`
	GuardianName   string  `json:"guardian_name"`
	GuardianPhone  string  `json:"guardian_phone"`
	Qualification  string  `json:"qualification"`
	ReferralSource string  `json:"referral_source"`
	ReferredByID   *uint   `json:"referred_by_id"`
	ReferredByName string  `json:"referred_by_name"`
	AdmissionDate  *Date   `json:"admission_date"`
}

type updateStudentRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone"`
	AltPhone       *string `json:"alt_phone"`
	DateOfBirth    *Date   `json:"date_of_birth"`
	Gender         *string `json:"gender" binding:"omitempty,oneof=male female other"`
	Address        *string `json:"address"`
	City           *string `json:"city"`
	State          *string `json:"state"`
	Pincode        *string `json:"pincode"`
	GuardianName   *string `json:"guardian_name"`
	GuardianPhone  *string `json:"guardian_phone"`
	Qualification  *string `json:"qualification"`
	ReferralSource *string `json:"referral_source"`
	ReferredByID   *uint   `json:"referred_by_id"`
	ReferredByName *string `json:"referred_by_name"`
}

// CreateStudent godoc
// @Summary Admit a new student
// @Tags students
// @Accept json
// @Produce json
// @Param body body createStudentRequest true "student"
// @Success 201 {object} models.StudentResponse
// @Router /api/v1/students [post]
func (h *Handlers) CreateStudent(c *gin.Context) {
	var req createStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateStudentInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		AltPhone:       req.AltPhone,
		Gender:         req.Gender,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		Pincode:        req.Pincode,
		GuardianName:   req.GuardianName,
		GuardianPhone:  req.GuardianPhone,
		Qualification:  req.Qualification,
		ReferralSource: req.ReferralSource,
		ReferredByID:   req.ReferredByID,
		ReferredByName: req.ReferredByName,
	}
	if req.DateOfBirth != nil {
		input.DateOfBirth = req.DateOfBirth.TimePtr()
	}
	if req.AdmissionDate != nil && !req.AdmissionDate.IsZero() {
		input.AdmissionDate = req.AdmissionDate.Time
	}

	student, err := h.services.Student.Create(c.Request.Context(), middleware.CurrentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": student.ToResponse()})
}

// ListStudents returns active students
func (h *Handlers) ListStudents(c *gin.Context) {
	query := listQuery(c)
	students, total, err := h.services.Student.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.StudentResponse, 0, len(students))
	for i := range students {
		out = append(out, students[i].ToResponse())
	}
	respondList(c, out, total, query)
}

// ListStudentTrash returns soft-deleted students
func (h *Handlers) ListStudentTrash(c *gin.Context) {
	query := listQuery(c)
	students, total, err := h.services.Student.ListTrash(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.StudentResponse, 0, len(students))
	for i := range students {
		out = append(out, students[i].ToResponse())
	}
	respondList(c, out, total, query)
}

// GetStudent returns one student with their enrollments
func (h *Handlers) GetStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	student, err := h.services.Student.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": student.ToResponse()})
}

// StudentEnrollments returns a student's active enrollments
func (h *Handlers) StudentEnrollments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	enrollments, err := h.services.Enrollment.ListByStudent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		out = append(out, enrollments[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// UpdateStudent edits a student's details
func (h *Handlers) UpdateStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.UpdateStudentInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		AltPhone:       req.AltPhone,
		Gender:         req.Gender,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		Pincode:        req.Pincode,
		GuardianName:   req.GuardianName,
		GuardianPhone:  req.GuardianPhone,
		Qualification:  req.Qualification,
		ReferralSource: req.ReferralSource,
		ReferredByID:   req.ReferredByID,
		ReferredByName: req.ReferredByName,
	}
	if req.DateOfBirth != nil {
		input.DateOfBirth = req.DateOfBirth.TimePtr()
	}

	student, err := h.services.Student.Update(c.Request.Context(), middleware.CurrentUserID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": student.ToResponse()})
}

// UploadStudentPhoto stores a processed photo for the student
func (h *Handlers) UploadStudentPhoto(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer src.Close()

	path, err := h.services.Image.SavePhoto("students", file.Filename, src)
	if err != nil {
		respondError(c, err)
		return
	}
	student, err := h.services.Student.SetPhoto(c.Request.Context(), middleware.CurrentUserID(c), id, path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": student.ToResponse()})
}

// DeleteStudent soft-deletes a student and their enrollments
func (h *Handlers) DeleteStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.services.Student.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "student moved to trash"})
}

// RestoreStudent brings a soft-deleted student back
func (h *Handlers) RestoreStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	student, err := h.services.Student.Restore(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": student.ToResponse()})
}
