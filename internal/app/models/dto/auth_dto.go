package dto

import (
	"time"

	"github.com/yigit/offerdesk/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"hr@suvidha.org"`
	Password string `json:"password" binding:"required" example:"S3curePass!"`
}

// RegisterRequest creates an HR staff account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"hr@suvidha.org"`
	Password string `json:"password" binding:"required,min=8" example:"S3curePass!"`
	FullName string `json:"fullName" binding:"required,notblank,min=2,max=100" example:"Priya Sharma"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int    `json:"expiresIn" example:"43200"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID        int64     `json:"id" example:"1"`
	Email     string    `json:"email" example:"hr@suvidha.org"`
	FullName  string    `json:"fullName" example:"Priya Sharma"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// NewUserResponse maps a user model without its password hash
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
}
