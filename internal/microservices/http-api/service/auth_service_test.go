package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"commenthub/internal/clock"
	"commenthub/internal/config"
	"commenthub/internal/middleware/auth"
	"commenthub/internal/microservices/http-api/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "test-secret-test-secret-test-secret",
		AccessTokenTTL: 15 * time.Minute,
	}
}

func TestRegister_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testAuthConfig(), clock.NewManual(t0), nil)

	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := authService.Register(context.Background(), "testuser", "Test@Example.com", "password123")

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "test@example.com", user.Email)
	assert.NotEqual(t, "password123", user.Password)
	assert.NoError(t, auth.VerifyPassword(user.Password, "password123"))
	mockUserRepo.AssertExpectations(t)
}

func TestRegister_UsernameExists(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testAuthConfig(), clock.NewManual(t0), nil)

	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(&models.User{Username: "testuser"}, nil)

	user, err := authService.Register(context.Background(), "testuser", "test@example.com", "password123")

	assert.Equal(t, ErrNameInUse, err)
	assert.Nil(t, user)
	mockUserRepo.AssertExpectations(t)
}

func TestRegister_EmailExists(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testAuthConfig(), clock.NewManual(t0), nil)

	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(&models.User{Email: "test@example.com"}, nil)

	user, err := authService.Register(context.Background(), "testuser", "test@example.com", "password123")

	assert.Equal(t, ErrEmailInUse, err)
	assert.Nil(t, user)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testAuthConfig(), clock.NewManual(t0), nil)

	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)

	// 40 two-byte runes pass a 72 character limit but not bcrypt's 72 bytes
	password := strings.Repeat("é", 40)
	_, err := authService.Register(context.Background(), "testuser", "test@example.com", password)

	assert.ErrorIs(t, err, ErrInvalidInput)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_LookupFailure(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testAuthConfig(), clock.NewManual(t0), nil)

	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(nil, errors.New("db down"))

	_, err := authService.Register(context.Background(), "testuser", "test@example.com", "password123")

	assert.EqualError(t, err, "db down")
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func registeredUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	return &models.User{ID: "user-123", Username: "testuser", Email: "test@example.com", Password: hash}
}

func TestLogin_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	clk := clock.NewManual(t0)
	authService := NewAuthService(mockUserRepo, testAuthConfig(), clk, nil)
	user := registeredUser(t)

	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)

	for _, identifier := range []string{"testuser", "Test@Example.com"} {
		token, got, err := authService.Login(context.Background(), identifier, "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "user-123", got.ID)

		claims, err := authService.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
		assert.Equal(t, "testuser", claims.Username)
		assert.True(t, claims.ExpiresAt.Time.Equal(t0.Add(15*time.Minute)))
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testAuthConfig(), clock.NewManual(t0), nil)

	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(registeredUser(t), nil)
	mockUserRepo.On("FindByUsername", mock.Anything, "nobody").Return(nil, gorm.ErrRecordNotFound)

	_, _, err := authService.Login(context.Background(), "testuser", "wrongpassword")
	assert.Equal(t, ErrInvalidCredentials, err)

	_, _, err = authService.Login(context.Background(), "nobody", "password123")
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestValidateToken_Expired(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	clk := clock.NewManual(t0)
	authService := NewAuthService(mockUserRepo, testAuthConfig(), clk, nil)
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(registeredUser(t), nil)

	token, _, err := authService.Login(context.Background(), "testuser", "password123")
	require.NoError(t, err)

	clk.Advance(16 * time.Minute)
	_, err = authService.ValidateToken(token)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestValidateToken_Rejects(t *testing.T) {
	authService := NewAuthService(new(MockUserRepository), testAuthConfig(), clock.NewManual(t0), nil)

	_, err := authService.ValidateToken("not-a-jwt")
	assert.Equal(t, ErrInvalidToken, err)

	// signed with another secret
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           "user-123",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour))},
	})
	signed, err := other.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = authService.ValidateToken(signed)
	assert.Equal(t, ErrInvalidToken, err)

	// no expiry
	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-123"})
	signed, err = noExp.SignedString([]byte(testAuthConfig().JWTSecret))
	require.NoError(t, err)
	_, err = authService.ValidateToken(signed)
	assert.Equal(t, ErrInvalidToken, err)
}
