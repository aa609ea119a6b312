package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the authenticated user and an access token.
type LoginResponse struct {
	User               *User  `json:"user"`
	Token              string `json:"token"`
	ExpiresIn          int64  `json:"expires_in"`
	MustChangePassword bool   `json:"must_change_password"`
	Message            string `json:"message"`
}

// ResetPasswordRequest starts the temporary password flow.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

// ResetPasswordResponse carries the temporary password. It is the only place
// the plaintext ever leaves the service.
type ResetPasswordResponse struct {
	Message      string `json:"message"`
	TempPassword string `json:"tempPassword"`
	Email        string `json:"email"`
}

// ChangePasswordRequest payload for updating password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	jwt.RegisteredClaims
}
