package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the bearer token and the caller's profile.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	IssuedAt  time.Time `json:"issued_at"`
	User      *User     `json:"user"`
}

// RegisterRequest is the self-registration payload for department users.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	FullName        string `json:"full_name" validate:"required"`
	InstitutionID   string `json:"institution_id" validate:"required"`
	DepartmentID    string `json:"department_id" validate:"required"`
	IP              string `json:"-"`
	UserAgent       string `json:"-"`
}

// ChangePasswordRequest payload for updating the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// UpdateProfileRequest holds self-service profile fields.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1"`
	Theme    *string `json:"theme" validate:"omitempty,oneof=light dark system"`
}

// JWTClaims is the access token payload.
type JWTClaims struct {
	UserID        string   `json:"user_id"`
	Role          UserRole `json:"role"`
	Email         string   `json:"email"`
	FullName      string   `json:"full_name"`
	InstitutionID string   `json:"institution_id,omitempty"`
	DepartmentID  string   `json:"department_id,omitempty"`
	jwt.RegisteredClaims
}

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	UserID        string
	Role          UserRole
	InstitutionID string
	DepartmentID  string
	IP            string
	UserAgent     string
}

// ActorFromClaims builds an Actor from verified token claims.
func ActorFromClaims(claims *JWTClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{
		UserID:        claims.UserID,
		Role:          claims.Role,
		InstitutionID: claims.InstitutionID,
		DepartmentID:  claims.DepartmentID,
	}
}
