package models

import "time"

// User is an admin account. Password holds the bcrypt hash.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // never serialize
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SignupRequest is the JSON body for POST /api/auth/signup.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// VerifyOTPRequest is the JSON body for POST /api/auth/verify-otp.
type VerifyOTPRequest struct {
	Username string `json:"username" validate:"required"`
	OTP      string `json:"otp"      validate:"required,len=6,numeric"`
}

// ProfileUpdate is the JSON body for PUT /api/profile. Empty fields are
// left unchanged.
type ProfileUpdate struct {
	Username string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=8"`
}
