package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/repository"
)

func (m *mockEnrollmentRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range m.enrollments {
		if !e.IsDeleted && e.Status == models.EnrollmentStatusActive && e.IsOverdue(asOf) {
			out = append(out, *e)
		}
	}
	return out, nil
}

type mockNotificationRepo struct {
	repository.NotificationRepository
	created []models.Notification
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	m.created = append(m.created, *n)
	return nil
}

type mockAdminUserRepo struct {
	repository.UserRepository
	admins []models.User
}

func (m *mockAdminUserRepo) ListAdmins(ctx context.Context) ([]models.User, error) {
	return m.admins, nil
}

func TestSendDuesReminders_OnlyCountsOverdueEnrollments(t *testing.T) {
	ctx := context.Background()

	enrollments := &mockEnrollmentRepo{enrollments: map[uint]*models.Enrollment{}}
	inbox := &mockNotificationRepo{}
	repos := &repository.Repositories{
		Enrollment:   enrollments,
		Notification: inbox,
		User:         &mockAdminUserRepo{admins: []models.User{{ID: 1, Role: models.RoleAdmin}}},
	}
	svc := NewNotificationService(repos)

	past := time.Now().AddDate(0, 0, -5)
	future := time.Now().AddDate(0, 0, 20)

	overdue := baseEnrollment(10, 1)
	overdue.DueDate = past
	overdue.AmountRemaining = decimal.NewFromInt(4000)
	enrollments.enrollments[10] = overdue

	// within the grace period, must not trigger a reminder
	current := baseEnrollment(11, 2)
	current.TransactionID = "E0002"
	current.DueDate = future
	current.AmountRemaining = decimal.NewFromInt(4000)
	enrollments.enrollments[11] = current

	// past due but fully settled
	settled := baseEnrollment(12, 3)
	settled.TransactionID = "E0003"
	settled.DueDate = past
	settled.AmountRemaining = decimal.Zero
	enrollments.enrollments[12] = settled

	require.NoError(t, svc.SendDuesReminders(ctx))

	require.Len(t, inbox.created, 1)
	n := inbox.created[0]
	assert.Equal(t, uint(1), n.UserID)
	assert.Contains(t, n.Message, "1 enrollments")
	assert.Contains(t, n.Message, "4000.00")
}

func TestSendDuesReminders_QuietWhenNothingOverdue(t *testing.T) {
	ctx := context.Background()

	enrollments := &mockEnrollmentRepo{enrollments: map[uint]*models.Enrollment{}}
	inbox := &mockNotificationRepo{}
	repos := &repository.Repositories{
		Enrollment:   enrollments,
		Notification: inbox,
		User:         &mockAdminUserRepo{admins: []models.User{{ID: 1, Role: models.RoleAdmin}}},
	}
	svc := NewNotificationService(repos)

	require.NoError(t, svc.SendDuesReminders(ctx))
	assert.Empty(t, inbox.created)
}
