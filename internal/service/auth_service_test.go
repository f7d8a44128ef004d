package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
	appErrors "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail      *models.User
	userByID         *models.User
	findByEmailErr   error
	findByIDErr      error
	refreshTokens    map[string]*models.RefreshToken
	lastLoginUpdated bool
	revokedUserIDs   []string
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.userByID != nil {
		return m.userByID, nil
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if m.userByEmail != nil && m.userByEmail.ID == id {
		m.userByEmail.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedUserIDs = append(m.revokedUserIDs, userID)
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func newAuthServiceFixture(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	})
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByEmail: &models.User{
		ID: "u1", Email: "user@example.edu", PasswordHash: string(password),
		FullName: "Test User", Role: models.RoleAdmin, Active: true,
	}}
	svc := newAuthServiceFixture(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.edu", Password: "password"})

	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "u1", res.User.ID)
	assert.True(t, repo.lastLoginUpdated)
	assert.Len(t, repo.refreshTokens, 1)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByEmail: &models.User{
		ID: "u1", Email: "user@example.edu", PasswordHash: string(password), Active: true, Role: models.RoleAdmin,
	}}
	svc := newAuthServiceFixture(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.edu", Password: "nope"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByEmail: &models.User{
		ID: "u1", Email: "user@example.edu", PasswordHash: string(password), Active: false, Role: models.RoleTeacher,
	}}
	svc := newAuthServiceFixture(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.edu", Password: "password"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenCarriesStudentNo(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	studentNo := "2021001"
	repo := &mockAuthRepo{userByEmail: &models.User{
		ID: "u2", Email: "student@example.edu", PasswordHash: string(password),
		Role: models.RoleStudent, StudentNo: &studentNo, Active: true,
	}}
	svc := newAuthServiceFixture(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "student@example.edu", Password: "password"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u2", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "2021001", claims.StudentNo)
}

func TestAuthServiceValidateTokenRejectsWrongSecret(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByEmail: &models.User{
		ID: "u1", Email: "user@example.edu", PasswordHash: string(password), Active: true, Role: models.RoleAdmin,
	}}
	svc := newAuthServiceFixture(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.edu", Password: "password"})
	require.NoError(t, err)

	other := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "different",
		AccessTokenExpiry: time.Hour,
	})
	_, err = other.ValidateToken(res.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	user := &models.User{ID: "u1", Email: "user@example.edu", Role: models.RoleTeacher, Active: true}
	repo := &mockAuthRepo{
		userByID: user,
		refreshTokens: map[string]*models.RefreshToken{
			"old-token": {ID: "rt1", UserID: "u1", Token: "old-token", ExpiresAt: time.Now().Add(time.Hour)},
		},
	}
	svc := newAuthServiceFixture(repo)

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})

	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "old-token", res.RefreshToken)
	assert.True(t, repo.refreshTokens["old-token"].Revoked)
}

func TestAuthServiceRefreshExpiredToken(t *testing.T) {
	repo := &mockAuthRepo{
		refreshTokens: map[string]*models.RefreshToken{
			"stale": {ID: "rt1", UserID: "u1", Token: "stale", ExpiresAt: time.Now().Add(-time.Minute)},
		},
	}
	svc := newAuthServiceFixture(repo)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutRejectsForeignToken(t *testing.T) {
	repo := &mockAuthRepo{
		refreshTokens: map[string]*models.RefreshToken{
			"tok": {ID: "rt1", UserID: "u1", Token: "tok", ExpiresAt: time.Now().Add(time.Hour)},
		},
	}
	svc := newAuthServiceFixture(repo)

	err := svc.Logout(context.Background(), "tok", "someone-else")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByEmail: &models.User{
		ID: "u1", Email: "user@example.edu", PasswordHash: string(password), Active: true, Role: models.RoleAdmin,
	}}
	svc := newAuthServiceFixture(repo)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "old-password",
		NewPassword: "brand-new-password",
	})

	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.userByEmail.PasswordHash), []byte("brand-new-password")))
	assert.Equal(t, []string{"u1"}, repo.revokedUserIDs)
}
