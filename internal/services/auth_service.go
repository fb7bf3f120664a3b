package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/repository"
	"github.com/careerpoint/institute-api/pkg/logger"
)

// Claims are the JWT claims carried by access tokens
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenPair bundles an access token with its refresh token
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthService handles authentication and token management
type AuthService struct {
	repos           *repository.Repositories
	audit           *AuditService
	jwtSecret       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(repos *repository.Repositories, audit *AuditService, jwtSecret string, expirationHours int) *AuthService {
	if expirationHours <= 0 {
		expirationHours = 24
	}
	return &AuthService{
		repos:           repos,
		audit:           audit,
		jwtSecret:       []byte(jwtSecret),
		accessTokenTTL:  time.Duration(expirationHours) * time.Hour,
		refreshTokenTTL: 30 * 24 * time.Hour,
	}
}

// Login verifies credentials and returns a token pair
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := s.repos.User.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !user.CheckPassword(password) {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, nil, ErrAccountDisabled
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.repos.User.Update(ctx, user); err != nil {
		logger.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	s.audit.Record(ctx, &user.ID, models.AuditActionLogin, "user", user.ID, "logged in")
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. The old
// refresh token is consumed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.User, *TokenPair, error) {
	stored, err := s.repos.RefreshToken.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, err
	}
	if stored.IsExpired() {
		_ = s.repos.RefreshToken.Delete(ctx, stored.ID)
		return nil, nil, ErrTokenExpired
	}

	user, err := s.repos.User.FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, nil, ErrUnauthorized
	}
	if !user.IsActive() {
		return nil, nil, ErrAccountDisabled
	}

	if err := s.repos.RefreshToken.Delete(ctx, stored.ID); err != nil {
		return nil, nil, err
	}
	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout revokes all refresh tokens for the user
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	return s.repos.RefreshToken.DeleteByUser(ctx, userID)
}

// ValidateToken parses and verifies an access token
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// Register creates a staff account. Only admins reach this path.
func (s *AuthService) Register(ctx context.Context, actorID *uint, email, password, fullName, phone, role string) (*models.User, error) {
	if email == "" || password == "" || fullName == "" {
		return nil, ValidationError("email, password and full name are required")
	}
	if len(password) < 8 {
		return nil, ValidationError("password must be at least 8 characters")
	}
	if role != models.RoleAdmin && role != models.RoleStaff {
		return nil, ValidationError("unknown role %q", role)
	}

	if _, err := s.repos.User.FindByEmail(ctx, email); err == nil {
		return nil, ConflictError("email %s is already registered", email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		FullName: fullName,
		Phone:    phone,
		Role:     role,
		Status:   models.UserStatusActive,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, models.AuditActionCreate, "user", user.ID,
		fmt.Sprintf("account created for %s (%s)", user.Email, user.Role))
	return user, nil
}

// ChangePassword updates a user's password after verifying the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.repos.User.FindByID(ctx, userID)
	if err != nil {
		return ErrNotFound
	}
	if !user.CheckPassword(current) {
		return ErrInvalidCredentials
	}
	if len(next) < 8 {
		return ValidationError("password must be at least 8 characters")
	}
	if err := user.SetPassword(next); err != nil {
		return err
	}
	if err := s.repos.User.Update(ctx, user); err != nil {
		return err
	}
	// force re-login everywhere
	return s.repos.RefreshToken.DeleteByUser(ctx, userID)
}

// ListUsers returns staff accounts matching the query
func (s *AuthService) ListUsers(ctx context.Context, query repository.ListQuery) ([]models.User, int64, error) {
	return s.repos.User.List(ctx, query)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	expiresAt := time.Now().Add(s.accessTokenTTL)
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	refreshExpiry := time.Now().Add(s.refreshTokenTTL)
	refresh := &models.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: &refreshExpiry,
	}
	if err := s.repos.RefreshToken.Create(ctx, refresh); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		ExpiresAt:    expiresAt,
	}, nil
}
