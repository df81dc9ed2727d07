package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/yigit/offerdesk/internal/app/models/dto"
	"github.com/yigit/offerdesk/internal/pkg/apperrors"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.AuthResponse)
	return resp, args.Error(1)
}

func (m *mockAuthenticator) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.AuthResponse)
	return resp, args.Error(1)
}

func (m *mockAuthenticator) Profile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).(*dto.UserResponse)
	return resp, args.Error(1)
}

func newAuthRouter(svc Authenticator) *gin.Engine {
	ctrl := NewAuthController(svc, zerolog.Nop())
	r := gin.New()
	r.POST("/auth/register", ctrl.Register)
	r.POST("/auth/login", ctrl.Login)
	r.GET("/auth/me", withUser, ctrl.Profile)
	return r
}

func TestAuthController_Register(t *testing.T) {
	svc := new(mockAuthenticator)
	svc.On("Register", mock.Anything, mock.MatchedBy(func(req *dto.RegisterRequest) bool {
		return req.Email == "hr@suvidha.org" && req.FullName == "Priya Sharma"
	})).Return(&dto.AuthResponse{Token: dto.TokenResponse{AccessToken: "tok", TokenType: "Bearer"}}, nil)

	w := doJSON(newAuthRouter(svc), http.MethodPost, "/auth/register", dto.RegisterRequest{
		Email: "hr@suvidha.org", Password: "S3curePass!", FullName: "Priya Sharma",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"accessToken":"tok"`)
}

func TestAuthController_RegisterShortPassword(t *testing.T) {
	svc := new(mockAuthenticator)
	w := doJSON(newAuthRouter(svc), http.MethodPost, "/auth/register", dto.RegisterRequest{
		Email: "hr@suvidha.org", Password: "short", FullName: "Priya Sharma",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestAuthController_RegisterDuplicate(t *testing.T) {
	svc := new(mockAuthenticator)
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, apperrors.ErrEmailAlreadyExists)

	w := doJSON(newAuthRouter(svc), http.MethodPost, "/auth/register", dto.RegisterRequest{
		Email: "hr@suvidha.org", Password: "S3curePass!", FullName: "Priya Sharma",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthController_Login(t *testing.T) {
	svc := new(mockAuthenticator)
	svc.On("Login", mock.Anything, &dto.LoginRequest{Email: "hr@suvidha.org", Password: "right"}).
		Return(&dto.AuthResponse{}, nil)
	svc.On("Login", mock.Anything, &dto.LoginRequest{Email: "hr@suvidha.org", Password: "wrong"}).
		Return(nil, apperrors.ErrInvalidCredentials)
	r := newAuthRouter(svc)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/auth/login", dto.LoginRequest{Email: "hr@suvidha.org", Password: "right"}).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodPost, "/auth/login", dto.LoginRequest{Email: "hr@suvidha.org", Password: "wrong"}).Code)
}

func TestAuthController_Profile(t *testing.T) {
	svc := new(mockAuthenticator)
	svc.On("Profile", mock.Anything, testUserID).Return(&dto.UserResponse{ID: testUserID, Email: "hr@suvidha.org"}, nil)

	w := doJSON(newAuthRouter(svc), http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":42`)
}
