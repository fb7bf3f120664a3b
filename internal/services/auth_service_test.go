package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/repository"
)

type mockFullUserRepo struct {
	repository.UserRepository
	users  map[uint]*models.User
	nextID uint
}

func (m *mockFullUserRepo) Create(ctx context.Context, u *models.User) error {
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockFullUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockFullUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFullUserRepo) Update(ctx context.Context, u *models.User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

type mockRefreshRepo struct {
	repository.RefreshTokenRepository
	tokens map[string]*models.RefreshToken
	nextID uint
}

func (m *mockRefreshRepo) Create(ctx context.Context, t *models.RefreshToken) error {
	m.nextID++
	t.ID = m.nextID
	cp := *t
	m.tokens[t.Token] = &cp
	return nil
}

func (m *mockRefreshRepo) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	t, ok := m.tokens[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockRefreshRepo) Delete(ctx context.Context, id uint) error {
	for token, t := range m.tokens {
		if t.ID == id {
			delete(m.tokens, token)
			return nil
		}
	}
	return nil
}

func (m *mockRefreshRepo) DeleteByUser(ctx context.Context, userID uint) error {
	for token, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, token)
		}
	}
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *mockFullUserRepo, *mockRefreshRepo) {
	t.Helper()
	users := &mockFullUserRepo{users: map[uint]*models.User{}}
	refresh := &mockRefreshRepo{tokens: map[string]*models.RefreshToken{}}
	repos := &repository.Repositories{
		User:         users,
		RefreshToken: refresh,
		AuditLog:     &mockAuditRepo{},
	}
	svc := NewAuthService(repos, NewAuditService(repos), "test-secret", 1)
	return svc, users, refresh
}

func seedUser(t *testing.T, users *mockFullUserRepo, email, password, status string) *models.User {
	t.Helper()
	u := &models.User{Email: email, FullName: "Test User", Role: models.RoleStaff, Status: status}
	require.NoError(t, u.SetPassword(password))
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestLogin_Success(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	seedUser(t, users, "staff@careerpoint.in", "sup3rsecret", models.UserStatusActive)

	user, tokens, err := svc.Login(context.Background(), "staff@careerpoint.in", "sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, "staff@careerpoint.in", user.Email)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.NotNil(t, users.users[user.ID].LastLoginAt)

	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleStaff, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	seedUser(t, users, "staff@careerpoint.in", "sup3rsecret", models.UserStatusActive)

	_, _, err := svc.Login(context.Background(), "staff@careerpoint.in", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, _, err := svc.Login(context.Background(), "nobody@careerpoint.in", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	seedUser(t, users, "old@careerpoint.in", "sup3rsecret", models.UserStatusDisabled)

	_, _, err := svc.Login(context.Background(), "old@careerpoint.in", "sup3rsecret")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRefresh_ConsumesToken(t *testing.T) {
	ctx := context.Background()
	svc, users, refresh := newAuthFixture(t)
	seedUser(t, users, "staff@careerpoint.in", "sup3rsecret", models.UserStatusActive)

	_, tokens, err := svc.Login(ctx, "staff@careerpoint.in", "sup3rsecret")
	require.NoError(t, err)

	_, fresh, err := svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, fresh.RefreshToken)

	// the old refresh token no longer works
	_, _, err = svc.Refresh(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_ = refresh
}

func TestRefresh_Expired(t *testing.T) {
	ctx := context.Background()
	svc, users, refresh := newAuthFixture(t)
	user := seedUser(t, users, "staff@careerpoint.in", "sup3rsecret", models.UserStatusActive)

	past := time.Now().Add(-time.Hour)
	expired := &models.RefreshToken{UserID: user.ID, Token: "stale-token", ExpiresAt: &past}
	require.NoError(t, refresh.Create(ctx, expired))

	_, _, err := svc.Refresh(ctx, "stale-token")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, err := svc.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newAuthFixture(t)
	seedUser(t, users, "staff@careerpoint.in", "sup3rsecret", models.UserStatusActive)

	_, err := svc.Register(ctx, nil, "staff@careerpoint.in", "anotherpass", "Someone Else", "", models.RoleStaff)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, err := svc.Register(context.Background(), nil, "new@careerpoint.in", "short", "New User", "", models.RoleStaff)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newAuthFixture(t)
	user := seedUser(t, users, "staff@careerpoint.in", "sup3rsecret", models.UserStatusActive)

	err := svc.ChangePassword(ctx, user.ID, "wrong", "newpassword1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "sup3rsecret", "newpassword1"))
	assert.True(t, users.users[user.ID].CheckPassword("newpassword1"))
}
