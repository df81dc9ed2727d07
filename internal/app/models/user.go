package models

import (
	"time"
)

// User defines an HR staff account based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Email     string    `json:"email" db:"email" example:"hr@suvidha.org"`
	Password  string    `json:"-" db:"password"`
	FullName  string    `json:"fullName" db:"full_name" example:"Priya Sharma"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"`
}
