// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hargapangan/pangan-backend/internal/config"
	"github.com/hargapangan/pangan-backend/internal/models"
	"github.com/hargapangan/pangan-backend/internal/utils"
)

func newAuthServiceForTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-secret-key-for-auth-tests",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	return NewAuthService(db, cfg, NewAuditService(db)), db
}

func TestRegisterCreatesRegularUser(t *testing.T) {
	svc, db := newAuthServiceForTest(t)

	resp, err := svc.Register(&RegisterRequest{
		Username: "pedagang1",
		Email:    "pedagang1@example.com",
		Password: "Password123!",
		FullName: "Pedagang Satu",
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleUser, resp.User.Role)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	var stored models.User
	require.NoError(t, db.Where("username = ?", "pedagang1").First(&stored).Error)
	assert.NotEqual(t, "Password123!", stored.PasswordHash, "password is never stored in clear")
	assert.NoError(t, stored.CheckPassword("Password123!"))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, db := newAuthServiceForTest(t)
	createTestUser(t, db, "pedagang1", models.UserRoleUser)

	_, err := svc.Register(&RegisterRequest{
		Username: "lain",
		Email:    "pedagang1@example.com",
		Password: "Password123!",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")

	_, err = svc.Register(&RegisterRequest{
		Username: "pedagang1",
		Email:    "baru@example.com",
		Password: "Password123!",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username")
}

func TestRegisterValidatesInput(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)

	_, err := svc.Register(&RegisterRequest{
		Username: "pedagang1",
		Email:    "not-an-email",
		Password: "Password123!",
	})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Register(&RegisterRequest{
		Username: "pedagang1",
		Email:    "pedagang1@example.com",
		Password: "weak",
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestLogin(t *testing.T) {
	svc, db := newAuthServiceForTest(t)
	user := createTestUser(t, db, "pedagang1", models.UserRoleUser)

	resp, err := svc.Login(&LoginRequest{
		Email:    user.Email,
		Password: "Password123!",
	}, RequestMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotNil(t, resp.User.LastLoginAt)

	// Successful login leaves an audit trail entry.
	var entry models.AuditLog
	require.NoError(t, db.Where("action = ?", models.AuditActionLogin).First(&entry).Error)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, user.ID, *entry.UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, db := newAuthServiceForTest(t)
	user := createTestUser(t, db, "pedagang1", models.UserRoleUser)

	_, err := svc.Login(&LoginRequest{Email: user.Email, Password: "WrongPass1!"}, RequestMeta{})
	require.Error(t, err)

	_, err = svc.Login(&LoginRequest{Email: "ghost@example.com", Password: "Password123!"}, RequestMeta{})
	require.Error(t, err)

	var failures int64
	db.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionLoginFailed).Count(&failures)
	assert.Equal(t, int64(2), failures)
}

func TestLoginRejectsSuspendedAccount(t *testing.T) {
	svc, db := newAuthServiceForTest(t)
	user := createTestUser(t, db, "pedagang1", models.UserRoleUser)
	require.NoError(t, db.Model(user).Update("status", models.UserStatusSuspended).Error)

	_, err := svc.Login(&LoginRequest{Email: user.Email, Password: "Password123!"}, RequestMeta{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suspended")
}

func TestRefreshToken(t *testing.T) {
	svc, db := newAuthServiceForTest(t)
	user := createTestUser(t, db, "pedagang1", models.UserRoleUser)

	login, err := svc.Login(&LoginRequest{Email: user.Email, Password: "Password123!"}, RequestMeta{})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken("not-a-token")
	assert.Error(t, err)

	// A suspended account cannot refresh its session.
	require.NoError(t, db.Model(user).Update("status", models.UserStatusSuspended).Error)
	_, err = svc.RefreshToken(login.RefreshToken)
	assert.Error(t, err)
}

func TestGetProfile(t *testing.T) {
	svc, db := newAuthServiceForTest(t)
	user := createTestUser(t, db, "pedagang1", models.UserRoleUser)

	profile, err := svc.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, profile.Username)

	_, err = svc.GetProfile(uuid.New())
	assert.Error(t, err)
}
