package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/services"
)

// Dashboard returns the admin dashboard summary
func (h *Handlers) Dashboard(c *gin.Context) {
	summary, err := h.services.Report.Dashboard(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// MonthlyRevenue returns revenue, expenses and net per month for a year
func (h *Handlers) MonthlyRevenue(c *gin.Context) {
	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 2000 || y > 2100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		year = y
	}

	rows, err := h.services.Report.MonthlyRevenue(c.Request.Context(), year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "year": year})
}

// DuesList returns every open enrollment with money outstanding
func (h *Handlers) DuesList(c *gin.Context) {
	enrollments, err := h.services.Report.DuesList(c.Request.Context())
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

// ExportDues streams the dues list as CSV
func (h *Handlers) ExportDues(c *gin.Context) {
	data, err := h.services.Report.DuesCSV(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	name := services.ExportFilename("dues", "csv", time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ExportPayments streams payments in a date range as CSV or XLSX
func (h *Handlers) ExportPayments(c *gin.Context) {
	from, to, err := dateRangeQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range"})
		return
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		data, err := h.services.Report.PaymentsCSV(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		name := services.ExportFilename("payments", "csv", time.Now())
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, "text/csv", data)
	case "xlsx":
		data, err := h.services.Report.PaymentsXLSX(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		name := services.ExportFilename("payments", "xlsx", time.Now())
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
	}
}
