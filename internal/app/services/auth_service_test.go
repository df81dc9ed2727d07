package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/offerdesk/internal/app/models"
	"github.com/yigit/offerdesk/internal/app/models/dto"
	"github.com/yigit/offerdesk/internal/pkg/apperrors"
	"github.com/yigit/offerdesk/internal/pkg/auth"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 1
		user.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return args.Error(0)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func newAuthService(users UserStore) (*AuthService, *auth.JWTService) {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "offerdesk",
	})
	return NewAuthService(users, jwtService, zerolog.Nop()), jwtService
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserStore)
	users.On("EmailExists", ctx, "hr@suvidha.org").Return(false, nil)
	users.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "hr@suvidha.org" && auth.CheckPassword(u.Password, "S3curePass!")
	})).Return(nil)

	svc, jwtService := newAuthService(users)
	resp, err := svc.Register(ctx, &dto.RegisterRequest{Email: " HR@suvidha.org ", Password: "S3curePass!", FullName: "Priya Sharma"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Equal(t, 3600, resp.Token.ExpiresIn)
	assert.Equal(t, int64(1), resp.User.ID)

	claims, err := jwtService.ValidateAndExtractClaims(resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	users.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserStore)
	users.On("EmailExists", ctx, "hr@suvidha.org").Return(true, nil)

	svc, _ := newAuthService(users)
	_, err := svc.Register(ctx, &dto.RegisterRequest{Email: "hr@suvidha.org", Password: "S3curePass!", FullName: "Priya"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hashed, err := auth.HashPassword("S3curePass!")
	require.NoError(t, err)

	users := new(mockUserStore)
	users.On("GetByEmail", ctx, "hr@suvidha.org").Return(&models.User{ID: 3, Email: "hr@suvidha.org", Password: hashed}, nil)
	users.On("GetByEmail", ctx, "nobody@suvidha.org").Return(nil, apperrors.NewResourceNotFoundError("User not found"))

	svc, _ := newAuthService(users)

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "hr@suvidha.org", Password: "S3curePass!"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.User.ID)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "hr@suvidha.org", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@suvidha.org", Password: "S3curePass!"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestEnsureUser(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserStore)
	users.On("EmailExists", ctx, "admin@suvidha.org").Return(true, nil)

	svc, _ := newAuthService(users)
	created, err := svc.EnsureUser(ctx, "admin@suvidha.org", "S3curePass!", "HR Admin")
	require.NoError(t, err)
	assert.False(t, created)
}
