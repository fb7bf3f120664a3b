package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerpoint/institute-api/internal/middleware"
	"github.com/careerpoint/institute-api/internal/models"
)

// GetSettings returns all institute settings (admin only)
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, err := h.services.Setting.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settings})
}

// UpdateSettings upserts institute settings (admin only)
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.services.Setting.Set(c.Request.Context(), middleware.CurrentUserID(c), req); err != nil {
		respondError(c, err)
		return
	}
	settings, err := h.services.Setting.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settings})
}

// ListAuditLogs returns audit entries, optionally filtered by entity
func (h *Handlers) ListAuditLogs(c *gin.Context) {
	query := listQuery(c)
	var entityID uint
	if id, ok := uintQuery(c, "entity_id"); ok {
		entityID = id
	}

	logs, total, err := h.services.Audit.List(c.Request.Context(), c.Query("entity_type"), entityID, query)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.AuditLogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, logs[i].ToResponse())
	}
	respondList(c, out, total, query)
}
