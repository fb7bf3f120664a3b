package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/careerpoint/institute-api/internal/middleware"
	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/services"
)

type createTeamRequest struct {
	FullName    string          `json:"full_name" binding:"required"`
	Designation string          `json:"designation" binding:"required"`
	Phone       string          `json:"phone" binding:"required"`
	Email       *string         `json:"email" binding:"omitempty,email"`
	JoiningDate *Date           `json:"joining_date"`
	Salary      decimal.Decimal `json:"salary"`
}

type updateTeamRequest struct {
	FullName    *string          `json:"full_name"`
	Designation *string          `json:"designation"`
	Phone       *string          `json:"phone"`
	Email       *string          `json:"email" binding:"omitempty,email"`
	Salary      *decimal.Decimal `json:"salary"`
	IsActive    *bool            `json:"is_active"`
}

// CreateTeamMember adds a team member
func (h *Handlers) CreateTeamMember(c *gin.Context) {
	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateTeamInput{
		FullName:    req.FullName,
		Designation: req.Designation,
		Phone:       req.Phone,
		Email:       req.Email,
		Salary:      req.Salary,
	}
	if req.JoiningDate != nil && !req.JoiningDate.IsZero() {
		input.JoiningDate = req.JoiningDate.Time
	}

	member, err := h.services.Team.Create(c.Request.Context(), middleware.CurrentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": member.ToResponse()})
}

// ListTeamMembers returns team members
func (h *Handlers) ListTeamMembers(c *gin.Context) {
	query := listQuery(c)
	members, total, err := h.services.Team.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.TeamResponse, 0, len(members))
	for i := range members {
		out = append(out, members[i].ToResponse())
	}
	respondList(c, out, total, query)
}

// ListTeamTrash returns soft-deleted team members
func (h *Handlers) ListTeamTrash(c *gin.Context) {
	query := listQuery(c)
	members, total, err := h.services.Team.ListTrash(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.TeamResponse, 0, len(members))
	for i := range members {
		out = append(out, members[i].ToResponse())
	}
	respondList(c, out, total, query)
}

// GetTeamMember returns one team member
func (h *Handlers) GetTeamMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	member, err := h.services.Team.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": member.ToResponse()})
}

// UpdateTeamMember edits a team member
func (h *Handlers) UpdateTeamMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.services.Team.Update(c.Request.Context(), middleware.CurrentUserID(c), id, services.UpdateTeamInput{
		FullName:    req.FullName,
		Designation: req.Designation,
		Phone:       req.Phone,
		Email:       req.Email,
		Salary:      req.Salary,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": member.ToResponse()})
}

// UploadTeamPhoto stores a processed photo for the team member
func (h *Handlers) UploadTeamPhoto(c *gin.Context) {
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

	path, err := h.services.Image.SavePhoto("team", file.Filename, src)
	if err != nil {
		respondError(c, err)
		return
	}
	member, err := h.services.Team.SetPhoto(c.Request.Context(), middleware.CurrentUserID(c), id, path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": member.ToResponse()})
}

// DeleteTeamMember soft-deletes a team member
func (h *Handlers) DeleteTeamMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.services.Team.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "team member moved to trash"})
}

// RestoreTeamMember brings a soft-deleted team member back
func (h *Handlers) RestoreTeamMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	member, err := h.services.Team.Restore(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": member.ToResponse()})
}
