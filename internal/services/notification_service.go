package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/repository"
	"github.com/careerpoint/institute-api/pkg/logger"
)

// NotificationService manages in-app notifications
type NotificationService struct {
	repos *repository.Repositories
}

// NewNotificationService creates a new notification service
func NewNotificationService(repos *repository.Repositories) *NotificationService {
	return &NotificationService{repos: repos}
}

// Notify creates a notification for a single user
func (s *NotificationService) Notify(ctx context.Context, userID uint, title, message, notificationType string) error {
	n := &models.Notification{
		UserID:           userID,
		Title:            title,
		Message:          message,
		NotificationType: &notificationType,
	}
	return s.repos.Notification.Create(ctx, n)
}

// NotifyAdmins fans a notification out to every active admin. Delivery
// failures are logged per recipient and do not fail the caller.
func (s *NotificationService) NotifyAdmins(ctx context.Context, title, message, notificationType string) {
	admins, err := s.repos.User.ListAdmins(ctx)
	if err != nil {
		logger.Error("failed to list admins for notification", "title", title, "error", err)
		return
	}
	for _, admin := range admins {
		if err := s.Notify(ctx, admin.ID, title, message, notificationType); err != nil {
			logger.Error("failed to create notification", "user_id", admin.ID, "title", title, "error", err)
		}
	}
}

// ListForUser returns a user's notifications
func (s *NotificationService) ListForUser(ctx context.Context, userID uint, unreadOnly bool, query repository.ListQuery) ([]models.Notification, int64, error) {
	return s.repos.Notification.ListByUser(ctx, userID, unreadOnly, query)
}

// UnreadCount returns the number of unread notifications for a user
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repos.Notification.CountUnread(ctx, userID)
}

// MarkRead marks one notification as read. Users can only touch their own.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) (*models.Notification, error) {
	n, err := s.repos.Notification.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrForbidden
	}
	if n.IsRead() {
		return n, nil
	}
	n.MarkAsRead()
	if err := s.repos.Notification.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// MarkAllRead marks all of a user's notifications as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repos.Notification.MarkAllRead(ctx, userID)
}

// SendDuesReminders notifies admins about enrollments past their due
// date with money still outstanding. Runs on the daily schedule.
func (s *NotificationService) SendDuesReminders(ctx context.Context) error {
	overdue, err := s.repos.Enrollment.ListOverdue(ctx, time.Now())
	if err != nil {
		return err
	}
	if len(overdue) == 0 {
		return nil
	}

	outstanding := decimal.Zero
	for i := range overdue {
		outstanding = outstanding.Add(overdue[i].AmountRemaining)
	}
	s.NotifyAdmins(ctx,
		"Fee dues overdue",
		fmt.Sprintf("%d enrollments are past their due date with %s outstanding", len(overdue), outstanding.StringFixed(2)),
		models.NotificationTypeOverdueDues)
	logger.Info("dues reminder sent", "enrollments", len(overdue), "outstanding", outstanding.StringFixed(2))
	return nil
}

// SendFollowUpReminders notifies admins about enquiries whose follow-up
// date has arrived. Runs on the daily schedule.
func (s *NotificationService) SendFollowUpReminders(ctx context.Context) error {
	due, err := s.repos.Enquiry.ListDueFollowUps(ctx, time.Now())
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}
	s.NotifyAdmins(ctx,
		"Enquiry follow-ups due",
		fmt.Sprintf("%d enquiries are waiting for a follow-up call", len(due)),
		models.NotificationTypeNewEnquiry)
	return nil
}
