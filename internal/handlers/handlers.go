package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerpoint/institute-api/internal/middleware"
	"github.com/careerpoint/institute-api/internal/repository"
	"github.com/careerpoint/institute-api/internal/services"
	"github.com/careerpoint/institute-api/pkg/logger"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	services *services.Services
}

// NewHandlers creates the handler set over the service layer
func NewHandlers(svc *services.Services) *Handlers {
	return &Handlers{services: svc}
}

// RegisterRoutes mounts every route on the engine
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.RefreshToken)
	}

	protected := api.Group("")
	protected.Use(middleware.Auth(h.services.Auth))
	{
		protected.POST("/auth/logout", h.Logout)
		protected.POST("/auth/change-password", h.ChangePassword)
		protected.GET("/me", h.Me)

		students := protected.Group("/students")
		{
			students.POST("", h.CreateStudent)
			students.GET("", h.ListStudents)
			students.GET("/trash", h.ListStudentTrash)
			students.GET("/:id", h.GetStudent)
			students.PATCH("/:id", h.UpdateStudent)
			students.GET("/:id/enrollments", h.StudentEnrollments)
			students.POST("/:id/photo", h.UploadStudentPhoto)
			students.DELETE("/:id", h.DeleteStudent)
			students.POST("/:id/restore", h.RestoreStudent)
		}

		courses := protected.Group("/courses")
		{
			courses.POST("", h.CreateCourse)
			courses.GET("", h.ListCourses)
			courses.GET("/trash", h.ListCourseTrash)
			courses.GET("/:id", h.GetCourse)
			courses.PATCH("/:id", h.UpdateCourse)
			courses.DELETE("/:id", h.DeleteCourse)
			courses.POST("/:id/restore", h.RestoreCourse)
		}

		enrollments := protected.Group("/enrollments")
		{
			enrollments.POST("", h.CreateEnrollment)
			enrollments.GET("", h.ListEnrollments)
			enrollments.GET("/trash", h.ListEnrollmentTrash)
			enrollments.GET("/:id", h.GetEnrollment)
			enrollments.PATCH("/:id", h.UpdateEnrollment)
			enrollments.DELETE("/:id", h.DeleteEnrollment)
			enrollments.POST("/:id/restore", h.RestoreEnrollment)
			enrollments.POST("/:id/payments", h.AddPayment)
			enrollments.GET("/:id/payments", h.ListPayments)
			enrollments.GET("/:id/payments/:paymentId/receipt", h.PaymentReceipt)
			enrollments.GET("/:id/statement", h.FeeStatement)
			enrollments.POST("/:id/complete", h.CompleteEnrollment)
			enrollments.GET("/:id/certificate", h.Certificate)
		}

		team := protected.Group("/team")
		{
			team.POST("", h.CreateTeamMember)
			team.GET("", h.ListTeamMembers)
			team.GET("/trash", h.ListTeamTrash)
			team.GET("/:id", h.GetTeamMember)
			team.PATCH("/:id", h.UpdateTeamMember)
			team.POST("/:id/photo", h.UploadTeamPhoto)
			team.DELETE("/:id", h.DeleteTeamMember)
			team.POST("/:id/restore", h.RestoreTeamMember)
		}

		expenses := protected.Group("/expenses")
		{
			expenses.POST("", h.CreateExpense)
			expenses.GET("", h.ListExpenses)
			expenses.GET("/trash", h.ListExpenseTrash)
			expenses.GET("/:id", h.GetExpense)
			expenses.PATCH("/:id", h.UpdateExpense)
			expenses.DELETE("/:id", h.DeleteExpense)
			expenses.POST("/:id/restore", h.RestoreExpense)
		}

		enquiries := protected.Group("/enquiries")
		{
			enquiries.POST("", h.CreateEnquiry)
			enquiries.GET("", h.ListEnquiries)
			enquiries.GET("/reference-lookup", h.ResolveEnquiryReference)
			enquiries.GET("/trash", h.ListEnquiryTrash)
			enquiries.GET("/:id", h.GetEnquiry)
			enquiries.PATCH("/:id", h.UpdateEnquiry)
			enquiries.POST("/:id/convert", h.ConvertEnquiry)
			enquiries.DELETE("/:id", h.DeleteEnquiry)
			enquiries.POST("/:id/restore", h.RestoreEnquiry)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", h.ListNotifications)
			notifications.GET("/unread-count", h.UnreadNotificationCount)
			notifications.POST("/:id/read", h.MarkNotificationRead)
			notifications.POST("/read-all", h.MarkAllNotificationsRead)
		}

		reports := protected.Group("/reports")
		{
			reports.GET("/dashboard", h.Dashboard)
			reports.GET("/monthly-revenue", h.MonthlyRevenue)
			reports.GET("/dues", h.DuesList)
			reports.GET("/dues/export", h.ExportDues)
			reports.GET("/payments/export", h.ExportPayments)
		}

		admin := protected.Group("")
		admin.Use(middleware.AdminOnly())
		{
			admin.POST("/auth/register", h.Register)
			admin.GET("/users", h.ListUsers)
			admin.GET("/settings", h.GetSettings)
			admin.PUT("/settings", h.UpdateSettings)
			admin.GET("/audit-logs", h.ListAuditLogs)
		}
	}
}

// respondError maps service errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUnauthorized),
		errors.Is(err, services.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrAccountDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		logger.Error("internal error", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondList writes a paginated collection response
func respondList(c *gin.Context, items any, total int64, query repository.ListQuery) {
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"meta": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// Health godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
